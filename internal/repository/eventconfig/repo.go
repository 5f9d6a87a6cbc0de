// Package eventconfig serves event configurations loaded from YAML files.
package eventconfig

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/opencrvs/crvs-search/internal/domain"
	"github.com/opencrvs/crvs-search/internal/domain/event"
)

// Repo is an immutable in-memory set of validated event configurations.
type Repo struct {
	index map[string]event.Config
	ids   []string
}

// New validates configs and indexes them by id.
func New(configs ...event.Config) (*Repo, error) {
	r := &Repo{index: make(map[string]event.Config, len(configs))}
	for _, c := range configs {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.index[c.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate event id %q", domain.ErrInvalidConfig, c.ID)
		}
		r.index[c.ID] = c
		r.ids = append(r.ids, c.ID)
	}
	slices.Sort(r.ids)
	return r, nil
}

// Load reads every *.yaml and *.yml file of dir, one event configuration per file.
func Load(dir string) (*Repo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("loading event configs: %w", err)
	}

	var configs []event.Config
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		c, err := LoadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}

	r, err := New(configs...)
	if err != nil {
		return nil, fmt.Errorf("loading event configs: %w", err)
	}
	return r, nil
}

// LoadFile reads a single event configuration.
func LoadFile(path string) (event.Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return event.Config{}, fmt.Errorf("loading event config %s: %w", path, err)
	}

	var c event.Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return event.Config{}, fmt.Errorf("loading event config %s: %w: %w", path, domain.ErrInvalidConfig, err)
	}
	return c, nil
}

// Get returns the configuration with the given id.
func (r *Repo) Get(_ context.Context, id string) (event.Config, error) {
	c, ok := r.index[id]
	if !ok {
		return event.Config{}, fmt.Errorf("%w: %q", domain.ErrEventNotFound, id)
	}
	return c, nil
}

// List returns all configurations sorted by id.
func (r *Repo) List(_ context.Context) ([]event.Config, error) {
	out := make([]event.Config, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.index[id])
	}
	return out, nil
}

// Count returns the number of loaded configurations.
func (r *Repo) Count() int {
	return len(r.ids)
}
