package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quietroom/lockcore/internal/emergency"
	"github.com/quietroom/lockcore/internal/history"
	"github.com/quietroom/lockcore/internal/lock"
)

// ─── Lock operations ─────────────────────────────────────────────────────────

// handleStatus returns the engine's current status snapshot.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Status())
}

// triggerRequest is the request body for POST /triggers.
type triggerRequest struct {
	Kind    lock.TriggerKind `json:"kind"`
	Payload lock.Payload     `json:"payload"`
}

// triggerResponse pairs the trigger result with the resulting state.
type triggerResponse struct {
	Result lock.Result `json:"result"`
	State  lock.State  `json:"state"`
}

// handleTrigger submits one trigger to the engine. Rejected triggers
// still return 200: rejection is a domain outcome, not an HTTP error.
func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	var req triggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if !req.Kind.IsValid() {
		writeBadRequest(w, fmt.Sprintf("unknown trigger kind %q", req.Kind))
		return
	}
	if req.Payload == nil {
		req.Payload = lock.Payload{}
	}

	res := s.engine.ProcessTrigger(req.Kind, req.Payload)
	writeJSON(w, http.StatusOK, triggerResponse{
		Result: res,
		State:  s.engine.Status().CurrentState,
	})
}

// handleTick drives the time-based transitions (lockout expiry and
// auto-lock) and returns any transitions that fired.
func (s *Server) handleTick(w http.ResponseWriter, _ *http.Request) {
	transitions := s.engine.Tick(time.Now())
	if transitions == nil {
		transitions = []lock.Transition{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"transitions": transitions,
		"count":       len(transitions),
	})
}

// ─── History ─────────────────────────────────────────────────────────────────

// handleListHistory returns persisted lock events, newest first.
// Supported query parameters: to_state, trigger, user_id, since, until
// (RFC3339), limit, offset.
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	result, err := s.repo.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("history list failed", "error", err)
		writeInternalError(w, "failed to query history")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleHistoryStats returns aggregate counts over the event log.
func (s *Server) handleHistoryStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.repo.Stats(r.Context())
	if err != nil {
		s.logger.Error("history stats failed", "error", err)
		writeInternalError(w, "failed to query history statistics")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleExportHistory streams the full (filtered) event log as CSV or
// JSON, selected with ?format=.
func (s *Server) handleExportHistory(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="lock_log.csv"`)
		err = s.exporter.WriteCSV(r.Context(), w, filter)
	case "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="lock_log.json"`)
		err = s.exporter.WriteJSON(r.Context(), w, filter)
	default:
		writeBadRequest(w, fmt.Sprintf("unsupported export format %q", format))
		return
	}

	// Headers are already sent; an export failure mid-stream can only be
	// logged.
	if err != nil {
		s.logger.Error("history export failed", "format", format, "error", err)
	}
}

// filterFromQuery builds a history filter from request query parameters.
func filterFromQuery(r *http.Request) (history.Filter, error) {
	q := r.URL.Query()
	filter := history.Filter{
		ToState:     q.Get("to_state"),
		TriggerKind: q.Get("trigger"),
		UserID:      q.Get("user_id"),
	}

	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, fmt.Errorf("invalid since timestamp: %s", v)
		}
		filter.Since = t
	}
	if v := q.Get("until"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, fmt.Errorf("invalid until timestamp: %s", v)
		}
		filter.Until = t
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, fmt.Errorf("invalid limit: %s", v)
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, fmt.Errorf("invalid offset: %s", v)
		}
		filter.Offset = n
	}

	return filter, nil
}

// ─── User registry ───────────────────────────────────────────────────────────

// addUserRequest is the request body for POST /users.
type addUserRequest struct {
	ID          string     `json:"id"`
	Level       string     `json:"level"`
	Code        string     `json:"code,omitempty"`
	BiometricID string     `json:"biometric_id,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// handleAddUser registers or replaces an authorized user.
func (s *Server) handleAddUser(w http.ResponseWriter, r *http.Request) {
	var req addUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	level, ok := parseSecurityLevel(req.Level)
	if !ok {
		writeBadRequest(w, fmt.Sprintf("unknown security level %q", req.Level))
		return
	}

	user := lock.AuthorizedUser{
		ID:          req.ID,
		Level:       level,
		Code:        req.Code,
		BiometricID: req.BiometricID,
		ExpiresAt:   req.ExpiresAt,
	}
	if err := s.engine.AddUser(user); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":    user.ID,
		"level": user.Level.String(),
	})
}

// handleRemoveUser deletes a user from the registry. The reserved admin
// user cannot be removed.
func (s *Server) handleRemoveUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.engine.RemoveUser(id) {
		writeNotFound(w, fmt.Sprintf("user %q not found or not removable", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseSecurityLevel maps the wire representation onto a SecurityLevel.
func parseSecurityLevel(level string) (lock.SecurityLevel, bool) {
	switch level {
	case "guest":
		return lock.LevelGuest, true
	case "user":
		return lock.LevelUser, true
	case "admin":
		return lock.LevelAdmin, true
	case "emergency":
		return lock.LevelEmergency, true
	default:
		return 0, false
	}
}

// ─── Security ────────────────────────────────────────────────────────────────

// securityResetRequest is the request body for POST /security/reset.
type securityResetRequest struct {
	AdminCode string `json:"admin_code"`
}

// handleSecurityReset clears the failed-attempt counter and recovers a
// locked-out or tampered lock. The admin keypad code is required even
// with an admin token: possession of the physical credential is part of
// the reset ceremony.
func (s *Server) handleSecurityReset(w http.ResponseWriter, r *http.Request) {
	var req securityResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if !s.engine.ResetSecurity(req.AdminCode) {
		writeForbidden(w, "admin code rejected")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"reset": true,
		"state": s.engine.Status().CurrentState,
	})
}

// ─── Emergencies ─────────────────────────────────────────────────────────────

// emergencyRequest is the request body for POST /emergency.
type emergencyRequest struct {
	Type   emergency.Type `json:"emergency_type"`
	Source string         `json:"source"`
}

// handleEmergency activates the protocol for an emergency type.
func (s *Server) handleEmergency(w http.ResponseWriter, r *http.Request) {
	if s.emergency == nil {
		writeNotFound(w, "emergency handling not configured")
		return
	}

	var req emergencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Source == "" {
		req.Source = "api"
	}

	rec, err := s.emergency.Handle(req.Type, req.Source)
	switch {
	case errors.Is(err, emergency.ErrUnknownType):
		writeBadRequest(w, err.Error())
	case errors.Is(err, emergency.ErrActionFailed):
		// The protocol ran but the engine refused the action; the record
		// carries the rejection detail.
		writeJSON(w, http.StatusConflict, rec)
	case err != nil:
		s.logger.Error("emergency handling failed", "error", err)
		writeInternalError(w, "emergency handling failed")
	default:
		writeJSON(w, http.StatusOK, rec)
	}
}

// overrideRequest is the request body for POST /emergency/override.
type overrideRequest struct {
	Code     string         `json:"code"`
	Type     emergency.Type `json:"emergency_type"`
	Operator string         `json:"operator"`
}

// handleEmergencyOverride validates a first-responder override code and
// activates the requested protocol.
func (s *Server) handleEmergencyOverride(w http.ResponseWriter, r *http.Request) {
	if s.emergency == nil {
		writeNotFound(w, "emergency handling not configured")
		return
	}

	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	rec, err := s.emergency.ProcessOverride(req.Code, req.Type, req.Operator)
	switch {
	case errors.Is(err, emergency.ErrInvalidOverride):
		writeForbidden(w, "override code rejected")
	case errors.Is(err, emergency.ErrUnknownType):
		writeBadRequest(w, err.Error())
	case errors.Is(err, emergency.ErrActionFailed):
		writeJSON(w, http.StatusConflict, rec)
	case err != nil:
		s.logger.Error("override handling failed", "error", err)
		writeInternalError(w, "override handling failed")
	default:
		writeJSON(w, http.StatusOK, rec)
	}
}

// handleEmergencyHealth returns the lock's health report.
func (s *Server) handleEmergencyHealth(w http.ResponseWriter, _ *http.Request) {
	if s.emergency == nil {
		writeNotFound(w, "emergency handling not configured")
		return
	}
	writeJSON(w, http.StatusOK, s.emergency.HealthReport())
}

// handleEmergencyLog returns the in-memory emergency activation log.
func (s *Server) handleEmergencyLog(w http.ResponseWriter, _ *http.Request) {
	if s.emergency == nil {
		writeNotFound(w, "emergency handling not configured")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"records": s.emergency.Records(),
	})
}
