// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package sidebar implements the responsive navigation panel. The panel is open while it
// carries the "open" class.
package sidebar

import (
	"errors"
	"fmt"
	"sync"

	"github.com/wneessen/powerboard/internal/dom"
)

const (
	PanelID           = "sidebar"
	ToggleID          = "hamburger"
	OpenClass         = "open"
	DefaultBreakpoint = 768
)

// Sidebar tracks the viewport width and opens or closes the panel.
type Sidebar struct {
	panel      *dom.Element
	toggle     *dom.Element
	breakpoint int

	mu    sync.Mutex
	width int
}

// New looks up the panel and its toggle control. The initial width is treated as narrow.
func New(doc *dom.Document, breakpoint int) (*Sidebar, error) {
	if doc == nil {
		return nil, errors.New("document is required")
	}
	if breakpoint <= 0 {
		breakpoint = DefaultBreakpoint
	}
	panel, err := doc.Element(PanelID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up sidebar panel: %w", err)
	}
	toggle, err := doc.Element(ToggleID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up sidebar toggle: %w", err)
	}
	return &Sidebar{panel: panel, toggle: toggle, breakpoint: breakpoint, width: breakpoint}, nil
}

func (s *Sidebar) IsOpen() bool {
	return s.panel.HasClass(OpenClass)
}

// Toggle opens a closed panel and closes an open one.
func (s *Sidebar) Toggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.panel.HasClass(OpenClass) {
		s.panel.RemoveClass(OpenClass)
		return false
	}
	s.panel.AddClass(OpenClass)
	return true
}

// Resize records the viewport width. Widening past the breakpoint closes the panel.
func (s *Sidebar) Resize(width int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	if width > s.breakpoint {
		s.panel.RemoveClass(OpenClass)
	}
}

// Click closes an open panel on narrow viewports when target lies outside both the panel and
// the toggle. A nil target counts as outside.
func (s *Sidebar) Click(target *dom.Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > s.breakpoint || !s.panel.HasClass(OpenClass) {
		return
	}
	if s.panel.Contains(target) || s.toggle.Contains(target) {
		return
	}
	s.panel.RemoveClass(OpenClass)
}
