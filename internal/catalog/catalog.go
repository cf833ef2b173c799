// Package catalog loads the static event catalog. The catalog is read-only
// configuration: it is parsed and validated once at startup, and every
// validation failure is reported in that one pass rather than surfacing as
// wrong schedules later.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	appLog "gamecal/internal/log"
	"gamecal/internal/model"
)

// defaultCatalog is the built-in event table, used when the config names no
// catalog file of its own.
//
//go:embed default.yaml
var defaultCatalog []byte

// Catalog is the immutable ordered event table.
type Catalog struct {
	Events []model.EventDescriptor `yaml:"events"`

	byName map[string]*model.EventDescriptor
}

// Load reads and validates a catalog. An empty path selects the embedded
// default catalog.
func Load(path string) (*Catalog, error) {
	data := defaultCatalog
	source := "embedded"
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("catalog: read %s: %w", path, err)
		}
		source = path
	}

	cat, err := Parse(data)
	if err != nil {
		return nil, err
	}
	appLog.Info("catalog loaded", "source", source, "event_count", len(cat.Events))
	return cat, nil
}

// Parse unmarshals and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}
	if err := cat.validate(); err != nil {
		return nil, err
	}
	cat.index()
	return &cat, nil
}

// validate checks every descriptor and aggregates all failures so that a
// broken catalog is reported in full on the first run.
func (c *Catalog) validate() error {
	var errs []error
	names := make(map[string]bool, len(c.Events))

	for i := range c.Events {
		ev := &c.Events[i]
		if err := ev.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if names[ev.Name] {
			errs = append(errs, fmt.Errorf("catalog: duplicate event name %q", ev.Name))
		}
		names[ev.Name] = true

		if ev.Availability != nil && ev.TimeLimited() {
			// Not rejected: availability simply wins as the existence gate.
			appLog.Info("catalog: event has both availability and date ranges; availability takes precedence",
				"event", ev.Name)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (c *Catalog) index() {
	c.byName = make(map[string]*model.EventDescriptor, len(c.Events))
	for i := range c.Events {
		c.byName[c.Events[i].Name] = &c.Events[i]
	}
}

// ByName looks up an event by its unique name.
func (c *Catalog) ByName(name string) (*model.EventDescriptor, bool) {
	ev, ok := c.byName[name]
	return ev, ok
}
