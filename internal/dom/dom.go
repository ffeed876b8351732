// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package dom implements the render targets the widgets write into: a document of named
// elements carrying text, an input value, CSS classes and inline styles.
package dom

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrNoSuchElement is returned when a widget addresses an element that is not part of
	// the document. It always points at a wiring defect.
	ErrNoSuchElement = errors.New("no such element")

	// ErrDuplicateElement is returned when an element id is added twice.
	ErrDuplicateElement = errors.New("duplicate element")
)

// Document is a flat index of elements by id. The parent chain of each element is kept so
// that containment checks work like they do in a browser.
type Document struct {
	mu       sync.RWMutex
	elements map[string]*Element
}

// Element is a single addressable node of a Document. All accessors go through the
// document lock.
type Element struct {
	doc     *Document
	id      string
	parent  *Element
	text    string
	value   string
	classes map[string]struct{}
	styles  map[string]string
}

// Snapshot is a point-in-time copy of an element, safe to hand to templates and encoders.
type Snapshot struct {
	ID      string            `json:"id"`
	Text    string            `json:"text,omitempty"`
	Value   string            `json:"value,omitempty"`
	Classes []string          `json:"classes,omitempty"`
	Styles  map[string]string `json:"styles,omitempty"`
}

func New() *Document {
	return &Document{elements: make(map[string]*Element)}
}

// Add creates a new element with the given id below parentID. An empty parentID attaches the
// element to the document root.
func (d *Document) Add(id, parentID string) (*Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.elements[id]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateElement, id)
	}
	var parent *Element
	if parentID != "" {
		p, ok := d.elements[parentID]
		if !ok {
			return nil, fmt.Errorf("failed to add %q: parent %w: %q", id, ErrNoSuchElement, parentID)
		}
		parent = p
	}
	elem := &Element{
		doc:     d,
		id:      id,
		parent:  parent,
		classes: make(map[string]struct{}),
		styles:  make(map[string]string),
	}
	d.elements[id] = elem
	return elem, nil
}

// Element looks up the element with the given id.
func (d *Document) Element(id string) (*Element, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	elem, ok := d.elements[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoSuchElement, id)
	}
	return elem, nil
}

// Has reports whether an element with the given id exists.
func (d *Document) Has(id string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.elements[id]
	return ok
}

// SetText sets the text content of the element with the given id.
func (d *Document) SetText(id, text string) error {
	elem, err := d.Element(id)
	if err != nil {
		return err
	}
	elem.SetText(text)
	return nil
}

// SetValue sets the input value of the element with the given id.
func (d *Document) SetValue(id, value string) error {
	elem, err := d.Element(id)
	if err != nil {
		return err
	}
	elem.SetValue(value)
	return nil
}

// Snapshot returns copies of all elements keyed by id.
func (d *Document) Snapshot() map[string]Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	snap := make(map[string]Snapshot, len(d.elements))
	for id, elem := range d.elements {
		snap[id] = elem.snapshotLocked()
	}
	return snap
}

func (e *Element) ID() string {
	return e.id
}

func (e *Element) Text() string {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return e.text
}

func (e *Element) SetText(text string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.text = text
}

func (e *Element) Value() string {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return e.value
}

func (e *Element) SetValue(value string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.value = value
}

func (e *Element) AddClass(class string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.classes[class] = struct{}{}
}

func (e *Element) RemoveClass(class string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	delete(e.classes, class)
}

func (e *Element) HasClass(class string) bool {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	_, ok := e.classes[class]
	return ok
}

// SetStyle sets an inline style property. An empty value removes the property.
func (e *Element) SetStyle(property, value string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if value == "" {
		delete(e.styles, property)
		return
	}
	e.styles[property] = value
}

func (e *Element) Style(property string) string {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return e.styles[property]
}

// Contains reports whether other is e itself or one of its descendants. A nil other is
// never contained.
func (e *Element) Contains(other *Element) bool {
	for node := other; node != nil; node = node.parent {
		if node == e {
			return true
		}
	}
	return false
}

func (e *Element) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:    e.id,
		Text:  e.text,
		Value: e.value,
	}
	for class := range e.classes {
		snap.Classes = append(snap.Classes, class)
	}
	sort.Strings(snap.Classes)
	if len(e.styles) > 0 {
		snap.Styles = make(map[string]string, len(e.styles))
		for k, v := range e.styles {
			snap.Styles[k] = v
		}
	}
	return snap
}
