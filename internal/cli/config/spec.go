package config

import "time"

// CLIConfig is the configuration for hashguard-cli.
type CLIConfig struct {
	// Server is used when no profile is selected.
	Server string `yaml:"server" json:"server"`
	// Output is the default output format: table, json or yaml.
	Output  string        `yaml:"output" json:"output"`
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// Profiles maps a name to a saved server address.
	Profiles map[string]Profile `yaml:"profiles,omitempty" json:"profiles,omitempty"`
	// Current names the selected profile.
	Current string `yaml:"current,omitempty" json:"current,omitempty"`
}

// Profile stores a saved server.
type Profile struct {
	Server string `yaml:"server" json:"server"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server:   "http://127.0.0.1:5080",
		Output:   "table",
		Timeout:  30 * time.Second,
		Profiles: make(map[string]Profile),
	}
}

// ServerAddr returns the server of the current profile, or Server when no
// profile is selected.
func (c *CLIConfig) ServerAddr() string {
	if p, ok := c.Profiles[c.Current]; ok && c.Current != "" {
		return p.Server
	}
	return c.Server
}
