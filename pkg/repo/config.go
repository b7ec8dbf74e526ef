package repo

import (
	"fmt"
)

// UserConfig identifies the author recorded on new shoves.
type UserConfig struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
}

// CoreConfig holds repository-wide settings.
type CoreConfig struct {
	DefaultTimeline string   `toml:"default_timeline"`
	IgnorePatterns  []string `toml:"ignore_patterns,omitempty"`
}

// AuthKind selects how a remote authenticates.
type AuthKind string

const (
	AuthNone   AuthKind = "none"
	AuthBasic  AuthKind = "basic"
	AuthToken  AuthKind = "token"
	AuthSSHKey AuthKind = "ssh-key"
)

// RemoteAuth carries the credentials for one remote. Only the fields for the
// selected kind are meaningful.
type RemoteAuth struct {
	Kind     AuthKind `toml:"kind"`
	Username string   `toml:"username,omitempty"`
	Password string   `toml:"password,omitempty"`
	Token    string   `toml:"token,omitempty"`
	KeyPath  string   `toml:"key_path,omitempty"`
}

// RemoteConfig describes one named remote.
type RemoteConfig struct {
	URL  string     `toml:"url"`
	Auth RemoteAuth `toml:"auth"`
}

// RemoteDefaults names the remote used when none is given on the command line.
type RemoteDefaults struct {
	DefaultRemote string `toml:"default_remote,omitempty"`
}

// Config is the repository configuration stored at .pocket/config.toml.
type Config struct {
	User    UserConfig              `toml:"user"`
	Core    CoreConfig              `toml:"core"`
	Remote  RemoteDefaults          `toml:"remote"`
	Remotes map[string]RemoteConfig `toml:"remotes,omitempty"`
}

// DefaultConfig returns the configuration written by repository creation.
// The author placeholder keeps shove creation working before the user sets
// their identity.
func DefaultConfig() *Config {
	return &Config{
		User: UserConfig{
			Name:  "Pocket User",
			Email: "pocket@localhost",
		},
		Core: CoreConfig{
			DefaultTimeline: "main",
		},
		Remotes: make(map[string]RemoteConfig),
	}
}

// LoadConfig reads the configuration file at path.
func LoadConfig(path string) (*Config, error) {
	var c Config
	if err := readTOMLFile(path, &c); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if c.Remotes == nil {
		c.Remotes = make(map[string]RemoteConfig)
	}
	return &c, nil
}

// Save writes the configuration atomically.
func (c *Config) Save(path string) error {
	if err := writeTOMLFile(path, c); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// LookupRemote resolves a remote by name, falling back to the configured
// default when name is empty.
func (c *Config) LookupRemote(name string) (string, RemoteConfig, error) {
	if name == "" {
		name = c.Remote.DefaultRemote
	}
	if name == "" {
		return "", RemoteConfig{}, fmt.Errorf("no remote given and no default remote configured")
	}
	rc, ok := c.Remotes[name]
	if !ok {
		return "", RemoteConfig{}, fmt.Errorf("remote %q is not configured", name)
	}
	return name, rc, nil
}
