// Package catalog reads, validates and edits the JSON files the activity
// registry is seeded from.
package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"activity-signup/internal/models"

	"github.com/xeipuuv/gojsonschema"
)

var (
	ErrInvalidCatalog = errors.New("INVALID_CATALOG")
	ErrEntryNotFound  = errors.New("ENTRY_NOT_FOUND")
	ErrDuplicateEntry = errors.New("DUPLICATE_ENTRY")
)

//go:embed default.json
var defaultCatalog []byte

var schemaLoader = gojsonschema.NewStringLoader(catalogSchema)

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// Load reads and validates the catalog at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse validates data against the catalog schema, then decodes it and
// checks the rules the schema cannot express.
func Parse(data []byte) (*Catalog, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidCatalog, strings.Join(msgs, "; "))
	}

	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks name uniqueness and that no roster exceeds its capacity.
func (c *Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Activities))
	var errs []error
	for _, e := range c.Activities {
		if seen[e.Name] {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateEntry, e.Name))
		}
		seen[e.Name] = true

		if len(e.Participants) > e.MaxParticipants {
			errs = append(errs, fmt.Errorf("%s has %d participants but max_participants is %d",
				e.Name, len(e.Participants), e.MaxParticipants))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidCatalog, errors.Join(errs...))
	}
	return nil
}

// Records converts the catalog to registry records keyed by name.
func (c *Catalog) Records() map[string]models.Activity {
	out := make(map[string]models.Activity, len(c.Activities))
	for _, e := range c.Activities {
		participants := slices.Clone(e.Participants)
		if participants == nil {
			participants = []string{}
		}
		out[e.Name] = models.Activity{
			Description:     e.Description,
			Schedule:        e.Schedule,
			MaxParticipants: e.MaxParticipants,
			Participants:    participants,
		}
	}
	return out
}

// Find returns the entry called name.
func (c *Catalog) Find(name string) (*Entry, bool) {
	for i := range c.Activities {
		if c.Activities[i].Name == name {
			return &c.Activities[i], true
		}
	}
	return nil, false
}

// Add appends a new entry.
func (c *Catalog) Add(e Entry) error {
	if _, exists := c.Find(e.Name); exists {
		return fmt.Errorf("%w: %s", ErrDuplicateEntry, e.Name)
	}
	if e.Participants == nil {
		e.Participants = []string{}
	}
	c.Activities = append(c.Activities, e)
	c.touch()
	return nil
}

// Update sets one field of the entry called name.
func (c *Catalog) Update(name, field, value string) error {
	e, ok := c.Find(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}

	switch field {
	case "description":
		e.Description = value
	case "schedule":
		e.Schedule = value
	case "max_participants":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid max_participants value: %q", value)
		}
		e.MaxParticipants = n
	default:
		return fmt.Errorf("unknown field: %s", field)
	}
	c.touch()
	return nil
}

func (c *Catalog) touch() {
	c.LastUpdated = time.Now().UTC().Format(time.RFC3339)
}

// Save writes the catalog as indented JSON, creating parent directories.
func (c *Catalog) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return nil
}
