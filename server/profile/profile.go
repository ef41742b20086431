// Package profile holds the runtime configuration of the server, assembled
// once at process start and passed by reference everywhere a component needs
// it. There is no other process-wide configuration state.
package profile

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Profile is the resolved server configuration.
type Profile struct {
	// Mode is either "prod" or "dev".
	Mode string
	// Addr is the bind address. Empty binds all interfaces.
	Addr string
	// Port is the bind port.
	Port int
	// Data is the data directory for local files (sqlite database, uploads).
	Data string
	// Driver is the database driver: sqlite, mysql or postgres.
	Driver string
	// DSN is the database connection string for mysql/postgres.
	DSN string
	// Secret signs access tokens.
	Secret string

	// DeepSeekAPIKey takes priority over OpenAIAPIKey when both are set.
	DeepSeekAPIKey string
	OpenAIAPIKey   string
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// HTTPAddr returns the host:port the HTTP server listens on.
func (p *Profile) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", p.Addr, p.Port)
}

// usable reports whether key looks like a real credential. Placeholder
// values left in .env templates count as unset.
func usable(key string) bool {
	return key != "" && !strings.Contains(key, "placeholder")
}

// CompletionAPIKey returns the credential for the chat-completion provider,
// preferring DeepSeek. Empty means no provider is configured.
func (p *Profile) CompletionAPIKey() string {
	if usable(p.DeepSeekAPIKey) {
		return p.DeepSeekAPIKey
	}
	if usable(p.OpenAIAPIKey) {
		return p.OpenAIAPIKey
	}
	return ""
}

// CompletionBaseURL returns the chat-completion endpoint base for the
// selected provider.
func (p *Profile) CompletionBaseURL() string {
	if usable(p.DeepSeekAPIKey) {
		return "https://api.deepseek.com"
	}
	return "https://api.openai.com/v1"
}

// CompletionModel returns the model identifier for the selected provider.
func (p *Profile) CompletionModel() string {
	if usable(p.DeepSeekAPIKey) {
		return "deepseek-chat"
	}
	return "gpt-3.5-turbo"
}

func (p *Profile) validate() error {
	if p.Mode != "prod" && p.Mode != "dev" {
		return errors.Errorf("invalid mode %q", p.Mode)
	}
	switch p.Driver {
	case "sqlite":
	case "mysql", "postgres":
		if p.DSN == "" {
			return errors.Errorf("driver %q requires a dsn", p.Driver)
		}
	default:
		return errors.Errorf("invalid driver %q", p.Driver)
	}
	if p.Secret == "" {
		return errors.New("secret must not be empty")
	}
	return nil
}

// GetProfile resolves the profile from viper (flags + LEGALCHAT_* env).
func GetProfile() (*Profile, error) {
	p := &Profile{
		Mode:           viper.GetString("mode"),
		Addr:           viper.GetString("addr"),
		Port:           viper.GetInt("port"),
		Data:           viper.GetString("data"),
		Driver:         viper.GetString("driver"),
		DSN:            viper.GetString("dsn"),
		Secret:         viper.GetString("secret"),
		DeepSeekAPIKey: viper.GetString("deepseek-api-key"),
		OpenAIAPIKey:   viper.GetString("openai-api-key"),
	}
	if err := p.validate(); err != nil {
		return nil, errors.Wrap(err, "invalid profile")
	}
	return p, nil
}
