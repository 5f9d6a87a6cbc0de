package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/opencrvs/crvs-search/internal/domain/event"
	"github.com/opencrvs/crvs-search/internal/domain/event/field"
	"github.com/opencrvs/crvs-search/internal/repository/eventconfig"
	correctionuc "github.com/opencrvs/crvs-search/internal/usecase/correction"
	searchuc "github.com/opencrvs/crvs-search/internal/usecase/search"
	"github.com/opencrvs/crvs-search/internal/usecase/searchfield"
)

type services struct {
	search      *searchuc.Service
	corrections *correctionuc.Service
}

// loadServices wires the offline services from the persistent flags.
func loadServices(cmd *cobra.Command) (*services, error) {
	dir, err := cmd.Flags().GetString("events")
	if err != nil {
		return nil, err
	}
	tz, err := cmd.Flags().GetString("timezone")
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}

	events, err := eventconfig.Load(dir)
	if err != nil {
		return nil, err
	}
	resolver := searchfield.New(searchfield.DefaultTable())
	builder := searchuc.NewBuilder(resolver, searchuc.WithLocation(loc))
	return &services{
		search:      searchuc.New(events, resolver, builder),
		corrections: correctionuc.New(events, correctionuc.NewEngine(nil)),
	}, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readState decodes an event state from a JSON file, or from stdin for "-".
func readState(cmd *cobra.Command, path string) (event.State, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return parseState(data)
}

func parseState(data []byte) (event.State, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	return toState(raw), nil
}

func toState(m map[string]any) event.State {
	state := make(event.State, len(m))
	for k, v := range m {
		state[field.ID(k)] = v
	}
	return state
}
