// Package secret resolves broker credentials stored with viant/scy and
// injects them into connection URLs, so configuration files never carry
// plain passwords.
package secret

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/viant/scy"
	"github.com/viant/scy/cred"
	_ "github.com/viant/scy/kms/blowfish"
)

// Ref points to an encrypted basic credential
type Ref struct {
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
	Key string `json:"key,omitempty" yaml:"key,omitempty"`
}

// Resolver loads credentials with scy
type Resolver struct {
	service *scy.Service
}

// New creates a resolver
func New() *Resolver {
	return &Resolver{service: scy.New()}
}

// Resolve returns rawURL with the credential referenced by ref; a nil or
// empty ref returns rawURL unchanged
func (r *Resolver) Resolve(ctx context.Context, rawURL string, ref *Ref) (string, error) {
	if ref == nil || ref.URL == "" {
		return rawURL, nil
	}
	targetType, err := cred.TargetType("basic")
	if err != nil {
		return "", err
	}
	resource := scy.NewResource(targetType, ref.URL, ref.Key)
	secret, err := r.service.Load(ctx, resource)
	if err != nil {
		return "", fmt.Errorf("failed to load secret from %s: %w", ref.URL, err)
	}
	basic, ok := secret.Target.(*cred.Basic)
	if !ok {
		return "", fmt.Errorf("unsupported secret type %T at %s", secret.Target, ref.URL)
	}
	return Inject(rawURL, basic.Username, basic.Password)
}

// Inject sets username and password on rawURL. URLs with a scheme get the
// credential as user info; key=value DSNs get user and password pairs.
func Inject(rawURL, username, password string) (string, error) {
	if !strings.Contains(rawURL, "://") {
		var pairs []string
		if rawURL != "" {
			pairs = append(pairs, rawURL)
		}
		if username != "" {
			pairs = append(pairs, "user="+quote(username))
		}
		if password != "" {
			pairs = append(pairs, "password="+quote(password))
		}
		return strings.Join(pairs, " "), nil
	}
	URL, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if password == "" {
		URL.User = url.User(username)
	} else {
		URL.User = url.UserPassword(username, password)
	}
	return URL.String(), nil
}

// quote escapes a libpq key=value value
func quote(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `'`, `\'`)
	return "'" + value + "'"
}
