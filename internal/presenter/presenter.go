// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/wneessen/powerboard/internal/config"
	"github.com/wneessen/powerboard/internal/power"
	"github.com/wneessen/powerboard/internal/weather"
)

// CardContext is the data the weather card template is executed with.
type CardContext struct {
	Record   weather.Record
	Icon     string
	Forecast []weather.ForecastDay
}

type Presenter struct {
	card     *template.Template
	overview *template.Template
}

// New parses the configured templates and executes each of them once against sample data, so
// broken templates fail at startup instead of on first use.
func New(conf *config.Config) (*Presenter, error) {
	pres := new(Presenter)

	tpl, err := template.New("card").Funcs(templateFuncMap()).Parse(conf.Templates.Card)
	if err != nil {
		return nil, fmt.Errorf("failed to parse card template: %w", err)
	}
	pres.card = tpl

	tpl, err = template.New("overview").Funcs(templateFuncMap()).Parse(conf.Templates.Overview)
	if err != nil {
		return nil, fmt.Errorf("failed to parse overview template: %w", err)
	}
	pres.overview = tpl

	if _, err = pres.Card(pres.BuildCardContext(weather.DefaultRecord(), time.Now())); err != nil {
		return nil, err
	}
	if _, err = pres.Overview(power.Overview{}); err != nil {
		return nil, err
	}

	return pres, nil
}

// BuildCardContext resolves the icon and the forecast dates of record relative to now.
func (p *Presenter) BuildCardContext(record weather.Record, now time.Time) CardContext {
	return CardContext{
		Record:   record,
		Icon:     weather.IconFor(record.WeatherCondition),
		Forecast: weather.ComputeForecastDates(now, weather.ForecastDays, record.Forecast),
	}
}

// Card renders the weather card as text.
func (p *Presenter) Card(ctx CardContext) (string, error) {
	buf := bytes.NewBuffer(nil)
	if err := p.card.Execute(buf, ctx); err != nil {
		return "", fmt.Errorf("failed to render card template: %w", err)
	}
	return buf.String(), nil
}

// Overview renders the data overview of the power chart.
func (p *Presenter) Overview(overview power.Overview) (string, error) {
	buf := bytes.NewBuffer(nil)
	if err := p.overview.Execute(buf, overview); err != nil {
		return "", fmt.Errorf("failed to render overview template: %w", err)
	}
	return buf.String(), nil
}
