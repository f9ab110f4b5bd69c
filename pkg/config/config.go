package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default request behavior; overridable per account in the config file.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxAttempts = 3
	DefaultBackoffBase = 500 * time.Millisecond
)

// Account holds the credentials and endpoint for one LogicMonitor
// account. BaseURL is derived from Company when left empty.
type Account struct {
	Company   string `yaml:"company"`
	AccessID  string `yaml:"access_id"`
	AccessKey string `yaml:"access_key"`
	BaseURL   string `yaml:"base_url,omitempty"`

	Timeout     Duration `yaml:"timeout,omitempty"`
	MaxAttempts int      `yaml:"max_attempts,omitempty"`
	BackoffBase Duration `yaml:"backoff_base,omitempty"`
}

// Load reads an account configuration. The file is optional; environment
// variables overlay the file, and the CLI applies flag overrides on top
// of whatever Load returns.
//
// Environment variables: LMSTATE_COMPANY, LMSTATE_ACCESS_ID,
// LMSTATE_ACCESS_KEY, LMSTATE_BASE_URL.
func Load(path string) (*Account, error) {
	acct := &Account{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, acct); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if v := os.Getenv("LMSTATE_COMPANY"); v != "" {
		acct.Company = v
	}
	if v := os.Getenv("LMSTATE_ACCESS_ID"); v != "" {
		acct.AccessID = v
	}
	if v := os.Getenv("LMSTATE_ACCESS_KEY"); v != "" {
		acct.AccessKey = v
	}
	if v := os.Getenv("LMSTATE_BASE_URL"); v != "" {
		acct.BaseURL = v
	}

	return acct, nil
}

// Validate checks that the account is usable. Called after flag
// overrides, immediately before the first remote call.
func (a *Account) Validate() error {
	if a.Company == "" && a.BaseURL == "" {
		return fmt.Errorf("company is required (or set an explicit base_url)")
	}
	if a.AccessID == "" {
		return fmt.Errorf("access_id is required")
	}
	if a.AccessKey == "" {
		return fmt.Errorf("access_key is required")
	}
	return nil
}

// ResolvedBaseURL returns the portal REST endpoint for this account.
func (a *Account) ResolvedBaseURL() string {
	if a.BaseURL != "" {
		return a.BaseURL
	}
	return fmt.Sprintf("https://%s.logicmonitor.com/santaba/rest", a.Company)
}

// GetTimeout returns the HTTP timeout with default
func (a *Account) GetTimeout() time.Duration {
	if a.Timeout <= 0 {
		return DefaultTimeout
	}
	return time.Duration(a.Timeout)
}

// GetMaxAttempts returns the retry attempt budget with default
func (a *Account) GetMaxAttempts() int {
	if a.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return a.MaxAttempts
}

// GetBackoffBase returns the initial retry backoff with default
func (a *Account) GetBackoffBase() time.Duration {
	if a.BackoffBase <= 0 {
		return DefaultBackoffBase
	}
	return time.Duration(a.BackoffBase)
}

// Duration is a wrapper around time.Duration for YAML unmarshalling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}
