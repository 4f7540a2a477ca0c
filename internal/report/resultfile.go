// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/price-scout/internal/pipeline"
	"github.com/pdiddy/price-scout/pkg/types"
)

// ResultFile is the on-disk form of a finished search.
type ResultFile struct {
	Search    pipeline.Request      `yaml:"search"`
	Groups    []types.LocationGroup `yaml:"groups"`
	Citations []types.Citation      `yaml:"citations,omitempty"`
	Summary   Summary               `yaml:"summary"`
}

// Summary records how the search ended.
type Summary struct {
	RunID      string             `yaml:"run_id,omitempty"`
	State      string             `yaml:"state"`
	Descriptor string             `yaml:"descriptor,omitempty"`
	Center     *types.Coordinates `yaml:"center,omitempty"`
	Info       string             `yaml:"info,omitempty"`
	Error      string             `yaml:"error,omitempty"`
	Candidates int                `yaml:"candidates"`
	Items      int                `yaml:"items"`
	Timestamp  time.Time          `yaml:"timestamp"`
}

// WriteResultFile saves a search request and its final snapshot as YAML.
func WriteResultFile(path string, req pipeline.Request, snap pipeline.Snapshot) error {
	rf := ResultFile{
		Search:    req,
		Groups:    snap.Groups,
		Citations: snap.Citations,
		Summary: Summary{
			RunID:      snap.RunID,
			State:      snap.State.String(),
			Descriptor: snap.Descriptor,
			Center:     snap.Center,
			Info:       snap.Info,
			Error:      snap.Error,
			Candidates: snap.Candidates,
			Items:      snap.ItemCount(),
			Timestamp:  snap.FinishedAt,
		},
	}
	if rf.Summary.Timestamp.IsZero() {
		rf.Summary.Timestamp = time.Now()
	}

	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling result file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadResultFile loads a previously saved result file from disk.
func ReadResultFile(path string) (*ResultFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result file: %w", err)
	}
	var rf ResultFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing result file: %w", err)
	}
	return &rf, nil
}

// Snapshot rebuilds the snapshot the file was written from, enough to
// render it again.
func (rf *ResultFile) Snapshot() (pipeline.Snapshot, error) {
	var state pipeline.State
	if err := state.UnmarshalText([]byte(rf.Summary.State)); err != nil {
		return pipeline.Snapshot{}, fmt.Errorf("result file: %w", err)
	}
	return pipeline.Snapshot{
		RunID:       rf.Summary.RunID,
		State:       state,
		Query:       rf.Search.Query,
		RadiusMiles: rf.Search.RadiusMiles,
		Descriptor:  rf.Summary.Descriptor,
		Center:      rf.Summary.Center,
		Error:       rf.Summary.Error,
		Info:        rf.Summary.Info,
		Candidates:  rf.Summary.Candidates,
		Groups:      rf.Groups,
		Citations:   rf.Citations,
		FinishedAt:  rf.Summary.Timestamp,
	}, nil
}
