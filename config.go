package tasq

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/tasq/service/broker"
	"github.com/viant/tasq/service/secret"
	"github.com/viant/tasq/service/worker"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the service configuration.
// Broker URL, prefix and secret URL may use ${env.NAME} expressions.
type Config struct {
	Broker  BrokerConfig  `json:"broker" yaml:"broker"`
	Worker  WorkerConfig  `json:"worker" yaml:"worker"`
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`
}

// BrokerConfig selects and addresses the broker backend
type BrokerConfig struct {
	Vendor broker.Vendor `json:"vendor" yaml:"vendor"`
	URL    string        `json:"url,omitempty" yaml:"url,omitempty"`
	Prefix string        `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Secret *secret.Ref   `json:"secret,omitempty" yaml:"secret,omitempty"`
}

// WorkerConfig represents worker polling settings
type WorkerConfig struct {
	BackoffMs int `json:"backoffMs" yaml:"backoffMs"`
}

// Backoff returns the idle wait as duration
func (w *WorkerConfig) Backoff() time.Duration {
	return time.Duration(w.BackoffMs) * time.Millisecond
}

// TracingConfig enables the stdout span exporter when Service is set
type TracingConfig struct {
	Service string `json:"service,omitempty" yaml:"service,omitempty"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	Output  string `json:"output,omitempty" yaml:"output,omitempty"`
}

// DefaultConfig returns an in-memory broker configuration
func DefaultConfig() *Config {
	return &Config{
		Broker: BrokerConfig{Vendor: broker.VendorMemory},
		Worker: WorkerConfig{BackoffMs: int(worker.DefaultBackoff / time.Millisecond)},
	}
}

// Validate returns an error describing invalid settings or nil
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	switch c.Broker.Vendor {
	case broker.VendorMemory:
	case broker.VendorFs, broker.VendorPostgres, broker.VendorRedis:
		if c.Broker.URL == "" {
			return fmt.Errorf("broker.url is required for %v broker", c.Broker.Vendor)
		}
	default:
		return fmt.Errorf("unsupported broker.vendor: %q", c.Broker.Vendor)
	}
	if c.Worker.BackoffMs <= 0 {
		return fmt.Errorf("worker.backoffMs must be > 0")
	}
	return nil
}

// LoadConfig downloads a YAML (or JSON) config from URL on top of
// DefaultConfig and expands environment expressions
func LoadConfig(ctx context.Context, URL string, options ...storage.Option) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %v: %w", URL, err)
	}
	ret := DefaultConfig()
	if err = yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to decode config %v: %w", URL, err)
	}
	ret.Broker.URL = expandEnv(ret.Broker.URL)
	ret.Broker.Prefix = expandEnv(ret.Broker.Prefix)
	if ret.Broker.Secret != nil {
		ret.Broker.Secret.URL = expandEnv(ret.Broker.Secret.URL)
	}
	return ret, ret.Validate()
}
