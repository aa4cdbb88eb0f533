// Package config loads and validates the apibgen configuration file.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is the configuration file looked up in the project root
// when no explicit path is given.
const DefaultFileName = "apibgen.yaml"

// DefaultRouterTypes are the routing-object type names recognized when the
// configuration does not list its own.
var DefaultRouterTypes = []string{"Router", "Mux", "Engine", "Echo", "Group"}

// Config is the validated configuration consumed by a generation pass.
// It is read-only once loaded; a pass never mutates it.
type Config struct {
	// Output is the destination path of the generated blueprint.
	Output string `yaml:"output"`
	// Host is rendered as the blueprint HOST line when set.
	Host string `yaml:"host,omitempty"`
	// Title is the top-level document title.
	Title string `yaml:"title,omitempty"`
	// Description is the top-level document description.
	Description string `yaml:"description,omitempty"`
	// Routers lists the routing-object type names whose method calls
	// qualify as route registrations.
	Routers []string `yaml:"routers,omitempty"`
	// Defaults are the per-kind example values used when no override applies.
	Defaults Defaults `yaml:"defaults,omitempty"`
	// Examples are the named literal example overrides.
	Examples Examples `yaml:"examples,omitempty"`
	// AfterHook is a shell command executed after the output file is closed.
	AfterHook string `yaml:"afterHook,omitempty"`
}

// Defaults holds the type-specific example values.
type Defaults struct {
	String  string  `yaml:"string"`
	Number  float64 `yaml:"number"`
	Boolean bool    `yaml:"boolean"`
	// JSONKey names the synthesized entry appended for
	// additional-properties object schemas.
	JSONKey string `yaml:"jsonKey"`
}

// Examples holds the named literal example overrides per lookup context.
// Entries in Both are copied into Response and Param at load time; an
// explicit entry in either table wins over the Both bucket.
type Examples struct {
	Response map[string]any `yaml:"response,omitempty"`
	Param    map[string]any `yaml:"param,omitempty"`
	Both     map[string]any `yaml:"both,omitempty"`
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads, parses and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", path)
	}
	c := &Config{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file %s", path)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config file %s", path)
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Output == "" {
		c.Output = "blueprint.apib"
	}
	if len(c.Routers) == 0 {
		c.Routers = DefaultRouterTypes
	}
	if c.Defaults.String == "" {
		c.Defaults.String = "text"
	}
	if c.Defaults.JSONKey == "" {
		c.Defaults.JSONKey = "key"
	}
	if c.Examples.Response == nil {
		c.Examples.Response = map[string]any{}
	}
	if c.Examples.Param == nil {
		c.Examples.Param = map[string]any{}
	}
	// The "both" bucket applies to the response and param contexts alike.
	// Explicit context entries take precedence over it.
	for name, value := range c.Examples.Both {
		if _, ok := c.Examples.Response[name]; !ok {
			c.Examples.Response[name] = value
		}
		if _, ok := c.Examples.Param[name]; !ok {
			c.Examples.Param[name] = value
		}
	}
}

// Validate checks the configuration for conditions that would make a
// generation pass meaningless. Failures are run-fatal.
func (c *Config) Validate() error {
	if c.Output == "" {
		return errors.New("output must not be empty")
	}
	if len(c.Routers) == 0 {
		return errors.New("routers must name at least one routing-object type")
	}
	for _, name := range c.Routers {
		if name == "" {
			return errors.New("routers must not contain empty type names")
		}
	}
	return nil
}
