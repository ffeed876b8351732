// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package chart renders the production and consumption series. Renderers keep their data
// buffers between updates: SetData replaces the buffers, Redraw renders them.
package chart

import (
	"errors"
	"sync"
)

const (
	ProductionName   = "Production"
	ConsumptionName  = "Consumption"
	ProductionColor  = "#2196f3"
	ConsumptionColor = "#f44336"
	AxisUnit         = "MW"
)

// ErrLengthMismatch is returned when the buffers of a renderer differ in length.
var ErrLengthMismatch = errors.New("labels and series must have the same length")

// Renderer receives a new data set and redraws.
type Renderer interface {
	SetData(labels []string, production, consumption []float64)
	Redraw() error
}

// buffers holds the data shared by all renderers.
type buffers struct {
	mu          sync.RWMutex
	labels      []string
	production  []float64
	consumption []float64
}

func (b *buffers) SetData(labels []string, production, consumption []float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.labels = append([]string(nil), labels...)
	b.production = append([]float64(nil), production...)
	b.consumption = append([]float64(nil), consumption...)
}

func (b *buffers) snapshot() ([]string, []float64, []float64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.production) != len(b.labels) || len(b.consumption) != len(b.labels) {
		return nil, nil, nil, ErrLengthMismatch
	}
	return b.labels, b.production, b.consumption, nil
}

// Multi fans one update out to several renderers.
type Multi []Renderer

func (m Multi) SetData(labels []string, production, consumption []float64) {
	for _, r := range m {
		r.SetData(labels, production, consumption)
	}
}

// Redraw redraws every renderer and joins their errors.
func (m Multi) Redraw() error {
	var errs []error
	for _, r := range m {
		if err := r.Redraw(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
