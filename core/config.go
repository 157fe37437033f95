package core

// DefaultServerURL is used when no endpoint is configured.
const DefaultServerURL = "http://localhost:3000"

// Config mirrors the YAML layout consumed through viper.
type Config struct {
	Server struct {
		URL   string `mapstructure:"url"`
		Token string `mapstructure:"token"`
		// Options is handed to the underlying transport untouched;
		// the adapter never interprets its contents.
		Options map[string]any `mapstructure:"options"`
	} `mapstructure:"server"`

	Logging struct {
		Level   string   `mapstructure:"level"`
		Format  string   `mapstructure:"format"`
		Outputs []string `mapstructure:"outputs"`
	} `mapstructure:"logging"`
}

func (c *Config) applyDefaults() {
	if c.Server.URL == "" {
		c.Server.URL = DefaultServerURL
	}
	if c.Server.Options == nil {
		c.Server.Options = map[string]any{}
	}
}
