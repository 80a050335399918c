package cli

import (
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/krew-solutions/ascetic-dynamodb-go/asceticdynamo/request"
	"github.com/krew-solutions/ascetic-dynamodb-go/asceticdynamo/specification/celfilter"
	s "github.com/krew-solutions/ascetic-dynamodb-go/asceticdynamo/specification/domain"
	spec "github.com/krew-solutions/ascetic-dynamodb-go/asceticdynamo/specification/infrastructure"
)

// Config is the YAML file given with --config.
type Config struct {
	// Table is required by scan.
	Table  string               `yaml:"table"`
	Client request.ClientConfig `yaml:"client"`

	// Subject is the CEL variable standing for the item, e.g. "item" in
	// item.total > 10. Empty means bare identifiers are attributes.
	Subject string `yaml:"subject,omitempty"`

	// Attributes maps field paths used in predicates to attribute names.
	Attributes map[string]string `yaml:"attributes,omitempty"`

	// Bindings are named values predicates can refer to.
	Bindings map[string]any `yaml:"bindings,omitempty"`
}

// LoadConfig reads path; an empty path gives the zero config.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	return cfg, nil
}

// Parse reads a CEL predicate with the configured subject and bindings.
func (c *Config) Parse(text string) (s.Visitable, error) {
	var opts []celfilter.Option
	if c.Subject != "" {
		opts = append(opts, celfilter.WithSubject(c.Subject))
	}
	if len(c.Bindings) > 0 {
		opts = append(opts, celfilter.WithBindings(c.Bindings))
	}
	return celfilter.Parse(text, opts...)
}

func (c *Config) Schema() *spec.AttributeSchema {
	if len(c.Attributes) == 0 {
		return nil
	}
	schema := spec.NewAttributeSchema()
	for path, name := range c.Attributes {
		schema.Register(path, name)
	}
	return schema
}

func (c *Config) VisitorOptions(logger *slog.Logger) []spec.DynamodbVisitorOption {
	opts := []spec.DynamodbVisitorOption{spec.WithLogger(logger)}
	if schema := c.Schema(); schema != nil {
		opts = append(opts, spec.WithSchema(schema))
	}
	return opts
}
