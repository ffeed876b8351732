// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package page builds the dashboard document both widgets render into.
package page

import (
	"fmt"
	"strconv"

	"github.com/wneessen/powerboard/internal/dom"
	"github.com/wneessen/powerboard/internal/power"
	"github.com/wneessen/powerboard/internal/sidebar"
	"github.com/wneessen/powerboard/internal/weather"
)

const (
	RootID        = "dashboard"
	ContentID     = "content"
	WeatherCardID = "weather-card"
	PowerPanelID  = "power-panel"
	ChartID       = "powerChart"
	toggleIconID  = "hamburger-icon"
)

// NavLinks are the entries of the sidebar navigation.
var NavLinks = []string{"nav-dashboard", "nav-weather", "nav-power"}

// New returns a document with every slot and control of the dashboard. The power controls
// start with the values of defaults.
func New(defaults power.Config) (*dom.Document, error) {
	doc := dom.New()
	add := func(id, parent string) error {
		if _, err := doc.Add(id, parent); err != nil {
			return fmt.Errorf("failed to build page: %w", err)
		}
		return nil
	}

	for _, elem := range []struct{ id, parent string }{
		{RootID, ""},
		{sidebar.ToggleID, RootID},
		{toggleIconID, sidebar.ToggleID},
		{sidebar.PanelID, RootID},
		{ContentID, RootID},
		{WeatherCardID, ContentID},
		{weather.ControlRefresh, WeatherCardID},
		{PowerPanelID, ContentID},
		{ChartID, PowerPanelID},
		{power.ControlTimeRange, PowerPanelID},
		{power.ControlMaxProduction, PowerPanelID},
		{power.ControlMaxConsumption, PowerPanelID},
		{power.ControlDate, PowerPanelID},
	} {
		if err := add(elem.id, elem.parent); err != nil {
			return nil, err
		}
	}
	for _, id := range NavLinks {
		if err := add(id, sidebar.PanelID); err != nil {
			return nil, err
		}
	}
	for _, id := range weather.Slots() {
		if err := add(id, WeatherCardID); err != nil {
			return nil, err
		}
	}
	for _, id := range power.Slots() {
		if err := add(id, PowerPanelID); err != nil {
			return nil, err
		}
	}

	controls := map[string]string{
		power.ControlTimeRange:      strconv.Itoa(defaults.TimeRange),
		power.ControlMaxProduction:  strconv.FormatFloat(defaults.MaxProduction, 'f', -1, 64),
		power.ControlMaxConsumption: strconv.FormatFloat(defaults.MaxConsumption, 'f', -1, 64),
	}
	for id, value := range controls {
		if err := doc.SetValue(id, value); err != nil {
			return nil, err
		}
	}
	return doc, nil
}
