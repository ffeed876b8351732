// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package dom

import (
	"errors"
	"testing"
)

func TestDocument_Add(t *testing.T) {
	t.Run("adding elements succeeds", func(t *testing.T) {
		doc := New()
		if _, err := doc.Add("sidebar", ""); err != nil {
			t.Fatalf("failed to add element: %s", err)
		}
		if _, err := doc.Add("nav-power", "sidebar"); err != nil {
			t.Fatalf("failed to add child element: %s", err)
		}
		if !doc.Has("nav-power") {
			t.Error("expected document to contain child element")
		}
	})
	t.Run("adding a duplicate element fails", func(t *testing.T) {
		doc := New()
		if _, err := doc.Add("location", ""); err != nil {
			t.Fatalf("failed to add element: %s", err)
		}
		_, err := doc.Add("location", "")
		if !errors.Is(err, ErrDuplicateElement) {
			t.Errorf("expected ErrDuplicateElement, got %v", err)
		}
	})
	t.Run("adding below an unknown parent fails", func(t *testing.T) {
		doc := New()
		_, err := doc.Add("child", "missing")
		if !errors.Is(err, ErrNoSuchElement) {
			t.Errorf("expected ErrNoSuchElement, got %v", err)
		}
	})
}

func TestDocument_SetText(t *testing.T) {
	t.Run("text is written to an existing slot", func(t *testing.T) {
		doc := New()
		elem, _ := doc.Add("current-temp", "")
		if err := doc.SetText("current-temp", "40"); err != nil {
			t.Fatalf("failed to set text: %s", err)
		}
		if elem.Text() != "40" {
			t.Errorf("expected text to be %q, got %q", "40", elem.Text())
		}
	})
	t.Run("writing to a missing slot fails loudly", func(t *testing.T) {
		doc := New()
		err := doc.SetText("current-temp", "40")
		if !errors.Is(err, ErrNoSuchElement) {
			t.Fatalf("expected ErrNoSuchElement, got %v", err)
		}
		want := `no such element: "current-temp"`
		if err.Error() != want {
			t.Errorf("expected error %q, got %q", want, err)
		}
	})
	t.Run("writing a value to a missing control fails", func(t *testing.T) {
		doc := New()
		if err := doc.SetValue("timeRange", "24"); !errors.Is(err, ErrNoSuchElement) {
			t.Errorf("expected ErrNoSuchElement, got %v", err)
		}
	})
}

func TestElement_Contains(t *testing.T) {
	doc := New()
	sidebar, _ := doc.Add("sidebar", "")
	nav, _ := doc.Add("nav", "sidebar")
	link, _ := doc.Add("nav-link", "nav")
	content, _ := doc.Add("content", "")

	tests := []struct {
		name   string
		target *Element
		want   bool
	}{
		{"self", sidebar, true},
		{"direct child", nav, true},
		{"grandchild", link, true},
		{"sibling", content, false},
		{"nil", nil, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := sidebar.Contains(tc.target); got != tc.want {
				t.Errorf("expected Contains to return %t, got %t", tc.want, got)
			}
		})
	}
}

func TestElement_ClassesAndStyles(t *testing.T) {
	doc := New()
	elem, _ := doc.Add("refresh", "")

	elem.AddClass("open")
	if !elem.HasClass("open") {
		t.Error("expected element to have class open")
	}
	elem.RemoveClass("open")
	if elem.HasClass("open") {
		t.Error("expected class open to be removed")
	}

	elem.SetStyle("transform", "rotate(360deg)")
	if got := elem.Style("transform"); got != "rotate(360deg)" {
		t.Errorf("expected transform style, got %q", got)
	}
	elem.SetStyle("transform", "")
	if got := elem.Style("transform"); got != "" {
		t.Errorf("expected transform style to be removed, got %q", got)
	}
}

func TestDocument_Snapshot(t *testing.T) {
	doc := New()
	elem, _ := doc.Add("sidebar", "")
	elem.AddClass("sidebar")
	elem.AddClass("open")
	elem.SetStyle("width", "240px")
	input, _ := doc.Add("timeRange", "")
	input.SetValue("12")

	snap := doc.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 elements in snapshot, got %d", len(snap))
	}
	side := snap["sidebar"]
	if len(side.Classes) != 2 || side.Classes[0] != "open" || side.Classes[1] != "sidebar" {
		t.Errorf("expected sorted classes [open sidebar], got %v", side.Classes)
	}
	if side.Styles["width"] != "240px" {
		t.Errorf("expected width style in snapshot, got %v", side.Styles)
	}
	if snap["timeRange"].Value != "12" {
		t.Errorf("expected value 12, got %q", snap["timeRange"].Value)
	}

	// snapshots are detached from the document
	elem.RemoveClass("open")
	if len(side.Classes) != 2 {
		t.Error("expected snapshot to be unaffected by later changes")
	}
}
