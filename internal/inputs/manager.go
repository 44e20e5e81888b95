package inputs

import (
	"fmt"
	"sync"
)

// Manager owns the ordered input groups. The upload coordinator reads
// snapshots from its timer goroutine, so every method locks.
type Manager struct {
	mu     sync.RWMutex
	nextID int
	groups []Group
}

func NewManager() *Manager {
	return &Manager{}
}

// Add appends a new text group. IDs grow monotonically and are never reused.
func (m *Manager) Add() Group {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	group := Group{ID: m.nextID, Type: SourceText}
	m.groups = append(m.groups, group)
	return group
}

// Remove deletes the group if present and reports whether it existed.
func (m *Manager) Remove(id int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.indexOf(id)
	if idx < 0 {
		return false
	}
	m.groups = append(m.groups[:idx], m.groups[idx+1:]...)
	return true
}

// SetType switches the active field. A selected file that the new type does
// not accept is dropped.
func (m *Manager) SetType(id int, t SourceType) error {
	if _, err := ParseSourceType(string(t)); err != nil {
		return err
	}
	return m.update(id, func(g *Group) error {
		g.Type = t
		if g.FilePath != "" && (!t.AcceptsFile() || !allowsExtension(t, g.FilePath)) {
			g.FilePath = ""
			g.Pages = 0
		}
		return nil
	})
}

// AttachFile preflights path against the group's type and stores it.
func (m *Manager) AttachFile(id int, path string) (Group, error) {
	current, ok := m.Get(id)
	if !ok {
		return Group{}, fmt.Errorf("%w: %d", ErrUnknownGroup, id)
	}
	info, err := Preflight(current.Type, path)
	if err != nil {
		return current, err
	}
	var updated Group
	err = m.update(id, func(g *Group) error {
		if g.Type != current.Type {
			return fmt.Errorf("group %d changed type during preflight", id)
		}
		g.FilePath = path
		g.Pages = info.Pages
		updated = *g
		return nil
	})
	return updated, err
}

// ClearFile unselects the group's file.
func (m *Manager) ClearFile(id int) error {
	return m.update(id, func(g *Group) error {
		g.FilePath = ""
		g.Pages = 0
		return nil
	})
}

func (m *Manager) SetURL(id int, url string) error {
	return m.update(id, func(g *Group) error {
		g.URL = url
		return nil
	})
}

func (m *Manager) SetPasted(id int, text string) error {
	return m.update(id, func(g *Group) error {
		g.Pasted = text
		return nil
	})
}

func (m *Manager) Get(id int) (Group, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx := m.indexOf(id)
	if idx < 0 {
		return Group{}, false
	}
	return m.groups[idx], true
}

// Groups returns an ordered copy of the current groups.
func (m *Manager) Groups() []Group {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Group(nil), m.groups...)
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.groups)
}

func (m *Manager) ValidCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, g := range m.groups {
		if g.Valid() {
			count++
		}
	}
	return count
}

func (m *Manager) update(id int, fn func(*Group) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownGroup, id)
	}
	return fn(&m.groups[idx])
}

func (m *Manager) indexOf(id int) int {
	for i, g := range m.groups {
		if g.ID == id {
			return i
		}
	}
	return -1
}
