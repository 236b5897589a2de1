package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pthm-cable/antsim/components"
	"github.com/pthm-cable/antsim/systems"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot is a write-only export of one tick's state for external
// consumers such as renderers and notebooks. The engine never reads it back.
type Snapshot struct {
	Version int    `json:"version"`
	RunID   string `json:"run_id,omitempty"`
	Tick    int32  `json:"tick"`
	Digest  uint64 `json:"digest"`

	Width  int `json:"width"`
	Height int `json:"height"`

	Ants  []AntState  `json:"ants"`
	Cells []CellState `json:"cells"` // Non-zero cells only
}

// AntState holds one ant's exported state.
type AntState struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	VelX        float64 `json:"vel_x"`
	VelY        float64 `json:"vel_y"`
	FoodCarried float64 `json:"food_carried"`
	Energy      float64 `json:"energy"`
}

// CellState holds the concentrations of one non-zero cell.
type CellState struct {
	X    int     `json:"x"`
	Y    int     `json:"y"`
	Path float64 `json:"path"`
	Food float64 `json:"food"`
}

// NewSnapshot captures field and ants. Only cells with any pheromone are kept.
func NewSnapshot(tick int32, digest uint64, field *systems.PheromoneField, ants []components.Ant) *Snapshot {
	w, h := field.Size()
	s := &Snapshot{
		Version: SnapshotVersion,
		Tick:    tick,
		Digest:  digest,
		Width:   w,
		Height:  h,
		Ants:    make([]AntState, len(ants)),
	}

	for i, a := range ants {
		s.Ants[i] = AntState{
			X:           a.Position.X,
			Y:           a.Position.Y,
			VelX:        a.Velocity.X,
			VelY:        a.Velocity.Y,
			FoodCarried: a.FoodCarried,
			Energy:      a.Energy,
		}
	}

	for i, c := range field.Cells() {
		if c.Path == 0 && c.Food == 0 {
			continue
		}
		s.Cells = append(s.Cells, CellState{X: i % w, Y: i / w, Path: c.Path, Food: c.Food})
	}

	return s
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("state_%d.json", snapshot.Tick))

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// ReadSnapshot decodes an exported snapshot for offline consumers.
func ReadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}
