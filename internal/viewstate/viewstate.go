package viewstate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/storymap/internal/graph"
)

// ViewState is the presentation state of one workspace.
type ViewState struct {
	Zoom           float64                `json:"zoom"`
	Scroll         graph.Point            `json:"scroll"`
	Positions      map[string]graph.Point `json:"positions,omitempty"`
	NarrativeOrder []string               `json:"narrative_order,omitempty"`
}

// NewViewState returns the default state: unit zoom, origin scroll.
func NewViewState() ViewState {
	return ViewState{Zoom: 1, Positions: map[string]graph.Point{}}
}

// KV is the storage port. Get returns false when the key is absent.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Store reads and writes one workspace's view state through a KV.
type Store struct {
	kv  KV
	key string
}

// NewStore binds a store to a workspace path.
func NewStore(kv KV, workspace string) *Store {
	return &Store{kv: kv, key: "viewstate:" + workspace}
}

// Load returns the saved state, or the default state when none exists.
func (s *Store) Load(ctx context.Context) (ViewState, error) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return ViewState{}, fmt.Errorf("loading view state: %w", err)
	}
	if !ok {
		return NewViewState(), nil
	}
	var vs ViewState
	if err := json.Unmarshal(raw, &vs); err != nil {
		return ViewState{}, fmt.Errorf("decoding view state: %w", err)
	}
	if vs.Positions == nil {
		vs.Positions = map[string]graph.Point{}
	}
	if vs.Zoom == 0 {
		vs.Zoom = 1
	}
	return vs, nil
}

// Save replaces the saved state.
func (s *Store) Save(ctx context.Context, vs ViewState) error {
	raw, err := json.Marshal(vs)
	if err != nil {
		return fmt.Errorf("encoding view state: %w", err)
	}
	if err := s.kv.Put(ctx, s.key, raw); err != nil {
		return fmt.Errorf("saving view state: %w", err)
	}
	return nil
}

// Reset removes the saved state.
func (s *Store) Reset(ctx context.Context) error {
	return s.kv.Delete(ctx, s.key)
}

// WritePosition records one node's position override. Read-modify-write
// of the whole document; the single-writer session makes that safe.
func (s *Store) WritePosition(ctx context.Context, nodeID string, p graph.Point) error {
	vs, err := s.Load(ctx)
	if err != nil {
		return err
	}
	vs.Positions[nodeID] = p
	return s.Save(ctx, vs)
}

// MemKV is the in-memory KV used by tests.
type MemKV struct {
	m map[string][]byte
}

// NewMemKV creates an empty in-memory KV.
func NewMemKV() *MemKV {
	return &MemKV{m: map[string][]byte{}}
}

func (kv *MemKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := kv.m[key]
	return v, ok, nil
}

func (kv *MemKV) Put(_ context.Context, key string, value []byte) error {
	kv.m[key] = append([]byte(nil), value...)
	return nil
}

func (kv *MemKV) Delete(_ context.Context, key string) error {
	delete(kv.m, key)
	return nil
}
