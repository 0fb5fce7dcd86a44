// Package surface defines the contract between the dashboard core and whatever
// materialises it: read a value by name, write text by name, toggle a class by
// name. Missing targets are reported through the boolean results so callers
// can log and carry on.
package surface

import (
	"maps"
	"slices"
	"sync"
)

// Surface is the rendering collaborator.
type Surface interface {
	Value(name string) (string, bool)
	SetText(name, text string) bool
	Toggle(name, class string, on bool) bool
}

// Element is the state of one named region or control.
type Element struct {
	Text    string          `json:"text"`
	Classes map[string]bool `json:"classes,omitempty"`
}

// HasClass reports whether class is toggled on.
func (e Element) HasClass(class string) bool {
	return e.Classes[class]
}

// Memory is an in-process Surface. Only registered names resolve; everything
// else is a missing target.
type Memory struct {
	mu       sync.RWMutex
	elements map[string]*Element
}

// NewMemory returns a surface with the given names registered.
func NewMemory(names ...string) *Memory {
	m := &Memory{elements: make(map[string]*Element, len(names))}
	m.Register(names...)
	return m
}

// Register adds names to the surface. Existing elements keep their state.
func (m *Memory) Register(names ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := m.elements[name]; !ok {
			m.elements[name] = &Element{}
		}
	}
}

// Value implements Surface.
func (m *Memory) Value(name string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	el, ok := m.elements[name]
	if !ok {
		return "", false
	}
	return el.Text, true
}

// SetText implements Surface.
func (m *Memory) SetText(name, text string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	el, ok := m.elements[name]
	if !ok {
		return false
	}
	el.Text = text
	return true
}

// Toggle implements Surface.
func (m *Memory) Toggle(name, class string, on bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	el, ok := m.elements[name]
	if !ok {
		return false
	}
	if el.Classes == nil {
		el.Classes = make(map[string]bool)
	}
	if on {
		el.Classes[class] = true
	} else {
		delete(el.Classes, class)
	}
	return true
}

// Element returns a copy of the named element.
func (m *Memory) Element(name string) (Element, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	el, ok := m.elements[name]
	if !ok {
		return Element{}, false
	}
	return Element{Text: el.Text, Classes: maps.Clone(el.Classes)}, true
}

// Names lists registered names in sorted order.
func (m *Memory) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.elements))
}

// WithClass lists the registered names that currently carry class.
func (m *Memory) WithClass(class string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for name, el := range m.elements {
		if el.Classes[class] {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}
