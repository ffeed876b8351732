// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/wneessen/powerboard/internal/dom"
	"github.com/wneessen/powerboard/internal/logger"
	"github.com/wneessen/powerboard/internal/metrics"
	"github.com/wneessen/powerboard/internal/power"
	"github.com/wneessen/powerboard/internal/weather"
)

const (
	eventResize = "resize"
	eventClick  = "click"
)

// powerControls are the form fields POST /power accepts.
var powerControls = []string{
	power.ControlTimeRange,
	power.ControlMaxProduction,
	power.ControlMaxConsumption,
	power.ControlDate,
}

type weatherResponse struct {
	weather.Record
	Icon string `json:"icon"`
}

type powerResponse struct {
	Series power.Series `json:"series"`
	Stats  power.Stats  `json:"stats"`
}

type sidebarResponse struct {
	Open bool `json:"open"`
}

type sidebarEvent struct {
	Type   string `json:"type"`
	Width  int    `json:"width"`
	Target string `json:"target"`
}

// pageView gives the index template access to the document snapshot.
type pageView struct {
	elements map[string]dom.Snapshot
}

func (v pageView) Text(id string) string {
	return v.elements[id].Text
}

func (v pageView) Value(id string) string {
	return v.elements[id].Value
}

func (v pageView) Style(id, property string) string {
	return v.elements[id].Styles[property]
}

func (v pageView) Classes(id string) []string {
	return v.elements[id].Classes
}

func (v pageView) ForecastDays() []int {
	days := make([]int, weather.ForecastDays)
	for i := range days {
		days[i] = i + 1
	}
	return days
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	view := pageView{elements: s.components.Document.Snapshot()}
	buf := bytes.NewBuffer(nil)
	if err := s.tmpl.ExecuteTemplate(buf, "index.html", view); err != nil {
		s.logger.Error("failed to render dashboard", logger.Err(err))
		http.Error(w, "failed to render dashboard", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleChart(w http.ResponseWriter, _ *http.Request) {
	html := s.components.Chart.HTML()
	if len(html) == 0 {
		http.Error(w, "chart not rendered yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(html)
}

func (s *Server) handleChartImage(w http.ResponseWriter, _ *http.Request) {
	image := s.components.Image.Image()
	if len(image) == 0 {
		http.Error(w, "chart not rendered yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(image)
}

func (s *Server) handleAPIWeather(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.weatherResponse())
}

func (s *Server) handleWeatherRefresh(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		metrics.RefreshRequestsLimited.Inc()
		http.Error(w, "too many refresh requests", http.StatusTooManyRequests)
		return
	}
	if err := s.components.Weather.HandleRefresh(r.Context()); err != nil {
		s.logger.Error("failed to handle weather refresh", logger.Err(err))
		http.Error(w, "failed to refresh weather", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, s.weatherResponse())
}

func (s *Server) handleAPIPower(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.powerResponse())
}

func (s *Server) handlePowerUpdate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}
	values := make(map[string]string)
	for _, id := range powerControls {
		if _, ok := r.PostForm[id]; ok {
			values[id] = r.PostForm.Get(id)
		}
	}
	if err := s.components.Power.Apply(r.Context(), values); err != nil {
		s.logger.Warn("rejected chart parameters", logger.Err(err))
		http.Error(w, fmt.Sprintf("invalid chart parameters: %s", err), http.StatusBadRequest)
		return
	}
	s.writeJSON(w, http.StatusOK, s.powerResponse())
}

func (s *Server) handlePowerReset(w http.ResponseWriter, r *http.Request) {
	if err := s.components.Power.Reset(r.Context()); err != nil {
		s.logger.Error("failed to reset power chart", logger.Err(err))
		http.Error(w, "failed to reset chart", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, s.powerResponse())
}

func (s *Server) handlePowerOverview(w http.ResponseWriter, _ *http.Request) {
	text, err := s.components.Power.ShowOverview()
	if err != nil {
		s.logger.Error("failed to build data overview", logger.Err(err))
		http.Error(w, "failed to build data overview", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(text))
}

func (s *Server) handleSidebarToggle(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, sidebarResponse{Open: s.components.Sidebar.Toggle()})
}

func (s *Server) handleSidebarEvent(w http.ResponseWriter, r *http.Request) {
	var event sidebarEvent
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&event); err != nil {
		http.Error(w, "invalid sidebar event", http.StatusBadRequest)
		return
	}

	switch event.Type {
	case eventResize:
		s.components.Sidebar.Resize(event.Width)
	case eventClick:
		if event.Width > 0 {
			s.components.Sidebar.Resize(event.Width)
		}
		// Unknown targets are outside of every element.
		target, _ := s.components.Document.Element(event.Target)
		s.components.Sidebar.Click(target)
	default:
		http.Error(w, fmt.Sprintf("unsupported sidebar event: %q", event.Type), http.StatusBadRequest)
		return
	}
	s.writeJSON(w, http.StatusOK, sidebarResponse{Open: s.components.Sidebar.IsOpen()})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) weatherResponse() weatherResponse {
	record := s.components.Weather.Record()
	return weatherResponse{Record: record, Icon: weather.IconFor(record.WeatherCondition)}
}

func (s *Server) powerResponse() powerResponse {
	return powerResponse{Series: s.components.Power.Series(), Stats: s.components.Power.Stats()}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", logger.Err(err), slog.Int("status", status))
	}
}
