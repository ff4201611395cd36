package board

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
)

var ErrFilterName = errors.New("filter name is required")

// SavedFilter is a named filter preset.
type SavedFilter struct {
	Name    string  `json:"name"`
	Filters Filters `json:"filters"`
	SortBy  SortKey `json:"sortBy,omitempty"`
}

// SavedFilters holds presets in the order they were first saved.
type SavedFilters struct {
	mu    sync.RWMutex
	items []SavedFilter
}

// Save stores a copy of f under name, replacing a preset with the same name.
func (s *SavedFilters) Save(name string, f Filters, sortBy SortKey) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrFilterName
	}
	cp := make(Filters, len(f))
	for k, v := range f {
		cp[k] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	preset := SavedFilter{Name: name, Filters: cp, SortBy: sortBy}
	for i := range s.items {
		if s.items[i].Name == name {
			s.items[i] = preset
			return nil
		}
	}
	s.items = append(s.items, preset)
	return nil
}

func (s *SavedFilters) Load(name string) (SavedFilter, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.items {
		if p.Name == name {
			return p.clone(), true
		}
	}
	return SavedFilter{}, false
}

func (s *SavedFilters) List() []SavedFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]SavedFilter, len(s.items))
	for i, p := range s.items {
		out[i] = p.clone()
	}
	return out
}

func (p SavedFilter) clone() SavedFilter {
	cp := make(Filters, len(p.Filters))
	for k, v := range p.Filters {
		cp[k] = v
	}
	p.Filters = cp
	return p
}

func (s *SavedFilters) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.items {
		if p.Name == name {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// Encode writes the presets as JSON.
func (s *SavedFilters) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s.List())
}

// DecodeSavedFilters reads presets written by Encode. Presets without a name
// are skipped.
func DecodeSavedFilters(r io.Reader) (*SavedFilters, error) {
	var items []SavedFilter
	if err := json.NewDecoder(r).Decode(&items); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	s := &SavedFilters{}
	for _, p := range items {
		_ = s.Save(p.Name, p.Filters, p.SortBy)
	}
	return s, nil
}
