package graph

import (
	"errors"
	"fmt"
)

// ErrFrozen is returned when a frozen model is modified.
var ErrFrozen = errors.New("graph: model is frozen")

// Model maps entity names to class entities while remembering declaration
// order, so every consumer iterates entities in the same sequence.
//
// A Model is built by a single writer and frozen before analysis; after
// Freeze it is safe for concurrent readers.
type Model struct {
	order    []string
	entities map[string]*ClassEntity
	frozen   bool
}

// NewModel returns an empty, writable model.
func NewModel() *Model {
	return &Model{entities: make(map[string]*ClassEntity)}
}

// Put stores e under its name. A second entity with the same name replaces
// the first (last wins) but keeps the original position in the order.
func (m *Model) Put(e ClassEntity) error {
	if m.frozen {
		return fmt.Errorf("put %s: %w", e.Name, ErrFrozen)
	}
	if e.Name == "" {
		return fmt.Errorf("graph: entity without a name")
	}
	if _, ok := m.entities[e.Name]; !ok {
		m.order = append(m.order, e.Name)
	}
	stored := e
	m.entities[e.Name] = &stored
	return nil
}

// Freeze makes the model read-only.
func (m *Model) Freeze() { m.frozen = true }

// Frozen reports whether Freeze has been called.
func (m *Model) Frozen() bool { return m.frozen }

// Get returns the entity with the given name, or nil.
func (m *Model) Get(name string) *ClassEntity {
	return m.entities[name]
}

// Has reports whether name is a known entity.
func (m *Model) Has(name string) bool {
	_, ok := m.entities[name]
	return ok
}

// Len returns the number of entities.
func (m *Model) Len() int { return len(m.order) }

// Names returns entity names in declaration order.
func (m *Model) Names() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Entities returns the entities in declaration order.
func (m *Model) Entities() []*ClassEntity {
	out := make([]*ClassEntity, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.entities[name])
	}
	return out
}
