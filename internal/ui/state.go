// Package ui holds view-tree scoped presentation state: the navigation
// chrome and per-entity in-flight flags. Nothing here is a singleton; the
// root command creates one State and passes it down.
package ui

import (
	"strconv"
	"sync"

	"github.com/goatkit/kamdesk/internal/constants"
)

// Prefs persists small UI preferences between runs.
type Prefs interface {
	Pref(key string) string
	SetPref(key, value string) error
}

// NavItem is one entry of the navigation menu.
type NavItem struct {
	Title   string `json:"title" yaml:"title"`
	Command string `json:"command" yaml:"command"`
	Active  bool   `json:"active" yaml:"active"`
}

var navItems = []NavItem{
	{Title: "Dashboard", Command: "dashboard"},
	{Title: "Tickets", Command: "tickets list"},
	{Title: "Users", Command: "users list"},
}

// State is the sidebar state. The sidebar is expanded while pinned or hovered.
type State struct {
	mu      sync.Mutex
	prefs   Prefs
	pinned  bool
	hovered bool
	active  string
}

// NewState loads the pinned preference from prefs (which may be nil).
func NewState(prefs Prefs) *State {
	s := &State{prefs: prefs}
	if prefs != nil {
		s.pinned, _ = strconv.ParseBool(prefs.Pref(constants.PrefSidebarPinned))
	}
	return s
}

// Expanded reports whether the navigation renders with labels.
func (s *State) Expanded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pinned || s.hovered
}

// Pinned reports whether the sidebar is pinned open.
func (s *State) Pinned() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pinned
}

// SetPinned changes and persists the pinned preference.
func (s *State) SetPinned(pinned bool) error {
	s.mu.Lock()
	s.pinned = pinned
	prefs := s.prefs
	s.mu.Unlock()

	if prefs == nil {
		return nil
	}
	return prefs.SetPref(constants.PrefSidebarPinned, strconv.FormatBool(pinned))
}

// TogglePin flips the pinned preference and returns the new value.
func (s *State) TogglePin() (bool, error) {
	next := !s.Pinned()
	return next, s.SetPinned(next)
}

// SetHovered records transient hover (or focus) on the sidebar.
func (s *State) SetHovered(hovered bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hovered = hovered
}

// SetActive marks the command of the current page.
func (s *State) SetActive(command string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = command
}

// NavItems returns the navigation entries with the active one marked.
func (s *State) NavItems() []NavItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]NavItem, len(navItems))
	for i, item := range navItems {
		item.Active = item.Command == s.active
		items[i] = item
	}
	return items
}
