// Package api exposes the controller over HTTP: a small REST surface for
// ports, connection state, mappings and throttle settings, plus a
// WebSocket stream of parameter updates.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/markxbrooks/Mol-MiDial/internal/database/models"
	"github.com/markxbrooks/Mol-MiDial/internal/database/repositories"
	"github.com/markxbrooks/Mol-MiDial/internal/logger"
	"github.com/markxbrooks/Mol-MiDial/internal/services/midi"
	"github.com/markxbrooks/Mol-MiDial/internal/services/pubsub"
)

// Server wires HTTP handlers to the controller and persistence layer.
type Server struct {
	controller *midi.Controller
	pubsub     *pubsub.PubSub

	mappingRepo *repositories.MappingRepository
	settingRepo *repositories.SettingRepository
}

// NewServer creates an API server. db may be nil, in which case mapping
// changes are not persisted across restarts.
func NewServer(controller *midi.Controller, ps *pubsub.PubSub, db *gorm.DB) *Server {
	s := &Server{
		controller: controller,
		pubsub:     ps,
	}
	if db != nil {
		s.mappingRepo = repositories.NewMappingRepository(db)
		s.settingRepo = repositories.NewSettingRepository(db)
	}
	return s
}

// Routes registers all API routes on the given router.
func (s *Server) Routes(router chi.Router) {
	router.Route("/api", func(r chi.Router) {
		r.Get("/ports", s.handlePorts)
		r.Post("/connect", s.handleConnect)
		r.Post("/disconnect", s.handleDisconnect)
		r.Post("/start", s.handleStart)
		r.Post("/stop", s.handleStop)
		r.Get("/status", s.handleStatus)

		r.Get("/mappings", s.handleListMappings)
		r.Post("/mappings", s.handleAddMapping)
		r.Delete("/mappings/{name}", s.handleRemoveMapping)
		r.Post("/mappings/{name}/enable", s.handleEnableMapping)
		r.Post("/mappings/{name}/disable", s.handleDisableMapping)

		r.Get("/throttle", s.handleGetThrottle)
		r.Put("/throttle", s.handleSetThrottle)
		r.Delete("/throttle/state", s.handleClearThrottleState)
	})
	router.Get("/ws/updates", s.handleUpdates)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handlePorts(w http.ResponseWriter, r *http.Request) {
	ports, err := s.controller.Ports()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ports": ports})
}

type connectRequest struct {
	Port string `json:"port"`
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Port == "" {
		writeError(w, http.StatusBadRequest, "port is required")
		return
	}
	if err := s.controller.Connect(req.Port); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	s.saveSetting(r, models.SettingMIDIPort, req.Port)
	writeJSON(w, http.StatusOK, s.controller.Status())
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	s.controller.Disconnect()
	writeJSON(w, http.StatusOK, s.controller.Status())
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if err := s.controller.Start(); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.controller.Status())
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.controller.Stop()
	writeJSON(w, http.StatusOK, s.controller.Status())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.controller.Status())
}

func (s *Server) handleListMappings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"mappings": s.controller.MappingInfo(),
	})
}

func (s *Server) handleAddMapping(w http.ResponseWriter, r *http.Request) {
	var req midi.MappingInfo
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.TargetFunction == "" {
		writeError(w, http.StatusBadRequest, "targetFunction is required")
		return
	}
	if req.TargetMin >= req.TargetMax {
		writeError(w, http.StatusBadRequest, "targetMin must be less than targetMax")
		return
	}

	mapping := midi.Mapping{
		Control:        req.Control,
		Channel:        req.Channel,
		Type:           req.Type,
		TargetFunction: req.TargetFunction,
		TargetMin:      req.TargetMin,
		TargetMax:      req.TargetMax,
		Enabled:        req.Enabled,
		Description:    req.Description,
	}
	s.controller.AddMapping(req.Name, mapping)

	if s.mappingRepo != nil {
		record := &models.ControlMapping{
			Name:           req.Name,
			Control:        int(req.Control),
			Channel:        int(req.Channel),
			ControlType:    string(req.Type),
			TargetFunction: req.TargetFunction,
			TargetMin:      req.TargetMin,
			TargetMax:      req.TargetMax,
			Enabled:        req.Enabled,
			Description:    req.Description,
		}
		if err := s.mappingRepo.Upsert(r.Context(), record); err != nil {
			logger.Error("failed to persist mapping", err)
		}
	}

	s.pubsub.Publish(pubsub.TopicMappingChanged, "", req)
	writeJSON(w, http.StatusCreated, req)
}

func (s *Server) handleRemoveMapping(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if _, ok := s.controller.Mapping(name); !ok {
		writeError(w, http.StatusNotFound, "mapping not found")
		return
	}
	s.controller.RemoveMapping(name)

	if s.mappingRepo != nil {
		if err := s.mappingRepo.Delete(r.Context(), name); err != nil {
			logger.Error("failed to delete persisted mapping", err)
		}
	}

	s.pubsub.Publish(pubsub.TopicMappingChanged, "", map[string]string{"removed": name})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEnableMapping(w http.ResponseWriter, r *http.Request) {
	s.setMappingEnabled(w, r, true)
}

func (s *Server) handleDisableMapping(w http.ResponseWriter, r *http.Request) {
	s.setMappingEnabled(w, r, false)
}

func (s *Server) setMappingEnabled(w http.ResponseWriter, r *http.Request, enabled bool) {
	name := chi.URLParam(r, "name")
	if _, ok := s.controller.Mapping(name); !ok {
		writeError(w, http.StatusNotFound, "mapping not found")
		return
	}
	if enabled {
		s.controller.EnableMapping(name)
	} else {
		s.controller.DisableMapping(name)
	}

	if s.mappingRepo != nil {
		if err := s.mappingRepo.SetEnabled(r.Context(), name, enabled); err != nil {
			logger.Error("failed to persist mapping state", err)
		}
	}

	s.pubsub.Publish(pubsub.TopicMappingChanged, "", map[string]interface{}{
		"name": name, "enabled": enabled,
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{"name": name, "enabled": enabled})
}

// throttleResponse reports intervals in milliseconds for wire friendliness.
type throttleResponse struct {
	DefaultMs int64            `json:"defaultMs"`
	Overrides map[string]int64 `json:"overrides"`
}

type throttleRequest struct {
	DefaultMs *int64           `json:"defaultMs,omitempty"`
	Overrides map[string]int64 `json:"overrides,omitempty"`
}

func (s *Server) handleGetThrottle(w http.ResponseWriter, r *http.Request) {
	info := s.controller.ThrottleSettings()
	resp := throttleResponse{
		DefaultMs: info.DefaultInterval.Milliseconds(),
		Overrides: make(map[string]int64, len(info.Overrides)),
	}
	for target, interval := range info.Overrides {
		resp.Overrides[target] = interval.Milliseconds()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetThrottle(w http.ResponseWriter, r *http.Request) {
	var req throttleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DefaultMs != nil {
		s.controller.SetDefaultThrottleInterval(time.Duration(*req.DefaultMs) * time.Millisecond)
	}
	for target, ms := range req.Overrides {
		s.controller.SetThrottleInterval(target, time.Duration(ms)*time.Millisecond)
	}
	s.handleGetThrottle(w, r)
}

func (s *Server) handleClearThrottleState(w http.ResponseWriter, r *http.Request) {
	s.controller.ClearThrottleState()
	w.WriteHeader(http.StatusNoContent)
}

// saveSetting records a small key/value setting, ignoring persistence
// failures beyond logging them.
func (s *Server) saveSetting(r *http.Request, key, value string) {
	if s.settingRepo == nil {
		return
	}
	if _, err := s.settingRepo.Upsert(r.Context(), key, value); err != nil {
		logger.Error("failed to persist setting "+key, err)
	}
}
