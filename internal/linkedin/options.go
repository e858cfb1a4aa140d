package linkedin

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ClientOptions holds the browser-level settings of a LinkedIn client
type ClientOptions struct {
	BaseURL   string `yaml:"base_url"`
	Headless  bool   `yaml:"headless"`
	UserAgent string `yaml:"user_agent"`

	// Per-page timeouts in milliseconds
	NavigateTimeoutMs int `yaml:"navigate_timeout_ms"`
	ElementTimeoutMs  int `yaml:"element_timeout_ms"`

	// Search result cap per operation
	MaxSearchResults int `yaml:"max_search_results"`
}

// DefaultOptions returns the options used when no config file is given
func DefaultOptions() ClientOptions {
	return ClientOptions{
		BaseURL:           "https://www.linkedin.com/",
		Headless:          true,
		NavigateTimeoutMs: 30000,
		ElementTimeoutMs:  5000,
		MaxSearchResults:  50,
	}
}

// LoadOptions reads client options from a yaml file, applying defaults for
// any missing fields. A missing file yields the defaults.
func LoadOptions(path string) (ClientOptions, error) {
	opts := DefaultOptions()
	if path == "" {
		return opts, nil
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return opts, nil
	} else if err != nil {
		return opts, fmt.Errorf("failed to read options file: %w", err)
	}

	if err := yaml.Unmarshal(raw, &opts); err != nil {
		return opts, fmt.Errorf("failed to parse options file: %w", err)
	}

	if opts.BaseURL == "" {
		opts.BaseURL = DefaultOptions().BaseURL
	}
	if opts.NavigateTimeoutMs <= 0 {
		opts.NavigateTimeoutMs = DefaultOptions().NavigateTimeoutMs
	}
	if opts.ElementTimeoutMs <= 0 {
		opts.ElementTimeoutMs = DefaultOptions().ElementTimeoutMs
	}
	if opts.MaxSearchResults <= 0 {
		opts.MaxSearchResults = DefaultOptions().MaxSearchResults
	}
	return opts, nil
}
