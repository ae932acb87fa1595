package correlation

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the file form of the correlation settings: the server pipeline's
// options, and options for each named outgoing client.
//
//	server:
//	  accepted_header_names: [X-Correlation-Id, X-Request-Id]
//	  enrich_log: false
//	clients:
//	  billing:
//	    default_header_name: X-Billing-Correlation
//
// Settings missing from the file keep their DefaultOptions value.
type Config struct {
	Server  Options
	Clients map[string]Options
}

type rawConfig struct {
	Server  yaml.Node            `yaml:"server"`
	Clients map[string]yaml.Node `yaml:"clients"`
}

var optionKeys = map[string]struct{}{
	"try_use_request_header": {},
	"accepted_header_names":  {},
	"enrich_log":             {},
	"log_property_name":      {},
	"write_to_response":      {},
	"default_header_name":    {},
}

// LoadConfigFile reads a YAML config from path.
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening correlation config: %w", err)
	}
	defer f.Close()
	return LoadConfig(f)
}

// LoadConfig reads a YAML config from r. Unknown keys are rejected. An empty
// document yields the defaults.
func LoadConfig(r io.Reader) (*Config, error) {
	cfg := &Config{Server: DefaultOptions()}

	var raw rawConfig
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return cfg, nil
		}
		return nil, fmt.Errorf("decoding correlation config: %w", err)
	}

	var err error
	if cfg.Server, err = decodeOptions(&raw.Server); err != nil {
		return nil, fmt.Errorf("decoding server options: %w", err)
	}
	if len(raw.Clients) > 0 {
		cfg.Clients = make(map[string]Options, len(raw.Clients))
	}
	for name, node := range raw.Clients {
		o, err := decodeOptions(&node)
		if err != nil {
			return nil, fmt.Errorf("decoding client %q options: %w", name, err)
		}
		cfg.Clients[name] = o
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every problem with cfg, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	problems := c.Server.validate()
	for name, o := range c.Clients {
		if strings.TrimSpace(name) == "" {
			problems = append(problems, "client with blank name")
		}
		for _, p := range o.validate() {
			problems = append(problems, fmt.Sprintf("client %q: %s", name, p))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func decodeOptions(node *yaml.Node) (Options, error) {
	o := DefaultOptions()
	if node.Kind == 0 || (node.Kind == yaml.ScalarNode && node.Tag == "!!null") {
		return o, nil
	}
	if node.Kind != yaml.MappingNode {
		return o, fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	for i := 0; i < len(node.Content); i += 2 {
		k := node.Content[i]
		if _, ok := optionKeys[k.Value]; !ok {
			return o, fmt.Errorf("line %d: unknown field %q", k.Line, k.Value)
		}
	}
	if err := node.Decode(&o); err != nil {
		return o, err
	}
	return o, nil
}
