package config

// Client is the connection configuration the example CLI (and any embedding
// application) feeds into the driver layer.
type Client struct {
	Version  string `yaml:"version"`
	URL      string `yaml:"url"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Charset  string `yaml:"charset"`
	SSL      bool   `yaml:"ssl"`
	Log      Log    `yaml:"log"`
}

type Log struct {
	Level string `yaml:"level"`
}

// Params flattens the driver-specific options into the parameter mapping the
// driver layer consumes alongside the credentials.
func (c *Client) Params() map[string]string {
	params := map[string]string{
		"user":     c.User,
		"password": c.Password,
	}
	if c.Charset != "" {
		params["charset"] = c.Charset
	}
	if c.SSL {
		params["ssl"] = "true"
	}
	return params
}
