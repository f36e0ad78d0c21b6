package tasq

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEnv(t *testing.T) {
	var testCases = []struct {
		description string
		env         map[string]string
		input       string
		expect      string
	}{
		{description: "no expressions", input: "redis://localhost:6379", expect: "redis://localhost:6379"},
		{
			description: "single expression",
			env:         map[string]string{"TASQ_HOST": "db"},
			input:       "postgres://${env.TASQ_HOST}:5432/tasq",
			expect:      "postgres://db:5432/tasq",
		},
		{
			description: "multiple expressions",
			env:         map[string]string{"TASQ_A": "1", "TASQ_B": "2"},
			input:       "${env.TASQ_A}-${env.TASQ_B}-${env.TASQ_A}",
			expect:      "1-2-1",
		},
		{description: "unset variable", input: "x=${env.TASQ_NOT_SET}-end", expect: "x=-end"},
		{
			description: "invalid key keeps prefix",
			env:         map[string]string{"TASQ_Y": "y"},
			input:       "start ${env.X and ${env.TASQ_Y} end",
			expect:      "start ${env.X and y end",
		},
		{description: "unterminated", input: "start ${env.X", expect: "start ${env.X"},
		{description: "empty key", input: "oops ${env.} done", expect: "oops ${env.} done"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			for k, v := range testCase.env {
				t.Setenv(k, v)
			}
			assert.Equal(t, testCase.expect, expandEnv(testCase.input))
		})
	}
}
