package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"github.com/tripweave/tripweave/pipeline"
	"github.com/tripweave/tripweave/render"
	"github.com/tripweave/tripweave/session"
	"github.com/tripweave/tripweave/trip"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCreateTrip starts a new session and streams generation progress
// as server-sent events. The first event carries the session id.
func (s *Server) handleCreateTrip(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req trip.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, errors.New("prompt is required"))
		return
	}

	sess := session.New(s.pipe, s.classifier, s.generator, s.logger)
	s.addSession(sess)

	stream, err := sess.Generate(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}

	sse, err := newSSEWriter(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	sse.send("session", map[string]string{"session_id": sess.ID})
	s.streamMessages(r, sse, stream)
}

// streamMessages forwards pipeline messages until the stream closes or
// the client goes away.
func (s *Server) streamMessages(r *http.Request, sse *sseWriter, stream <-chan pipeline.Message) {
	for {
		select {
		case <-r.Context().Done():
			// Client gone; drain so the session can finish and commit.
			for range stream {
			}
			return
		case msg, ok := <-stream:
			if !ok {
				return
			}
			sse.send(string(msg.Kind), msg)
		}
	}
}

func (s *Server) handleGetSession(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	sess := s.lookupSession(ps.ByName("id"))
	if sess == nil {
		writeError(w, http.StatusNotFound, errors.New("session not found"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sess.ID,
		"skeleton":   sess.Skeleton(),
		"days":       sess.Days(),
	})
}

// handleDocument assembles the full itinerary markup from the current
// skeleton and day results.
func (s *Server) handleDocument(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	sess := s.lookupSession(ps.ByName("id"))
	if sess == nil {
		writeError(w, http.StatusNotFound, errors.New("session not found"))
		return
	}
	skeleton := sess.Skeleton()
	if skeleton == nil {
		writeError(w, http.StatusConflict, session.ErrNoItinerary)
		return
	}

	days := sess.Days()
	markup := make([]string, len(days))
	for i, d := range days {
		markup[i] = d.Markup
	}
	doc, err := render.Document(skeleton, markup)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, doc)
}

type followUpRequest struct {
	Message string `json:"message"`
}

// handleFollowUp routes a free-text follow-up. Full regenerations
// stream like trip creation; everything else answers with one JSON
// object.
func (s *Server) handleFollowUp(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess := s.lookupSession(ps.ByName("id"))
	if sess == nil {
		writeError(w, http.StatusNotFound, errors.New("session not found"))
		return
	}

	var req followUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, errors.New("message is required"))
		return
	}

	res, err := sess.FollowUp(r.Context(), req.Message)
	if err != nil {
		if errors.Is(err, session.ErrBusy) {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if res.Stream != nil {
		sse, err := newSSEWriter(w)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		sse.send("classification", res.Classification)
		s.streamMessages(r, sse, res.Stream)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"classification": res.Classification,
		"day":            res.Day,
		"answer":         res.Answer,
		"search":         res.Search,
	})
}

type editDayRequest struct {
	Instruction string `json:"instruction"`
}

// handleEditDay applies a confirmed single-day edit.
func (s *Server) handleEditDay(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess := s.lookupSession(ps.ByName("id"))
	if sess == nil {
		writeError(w, http.StatusNotFound, errors.New("session not found"))
		return
	}
	day, err := strconv.Atoi(ps.ByName("day"))
	if err != nil || day < 1 {
		writeError(w, http.StatusBadRequest, errors.New("invalid day number"))
		return
	}

	var req editDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}

	result, err := sess.EditDay(r.Context(), day, req.Instruction)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrBusy):
			writeError(w, http.StatusConflict, err)
		case errors.Is(err, session.ErrNoItinerary):
			writeError(w, http.StatusConflict, err)
		default:
			writeError(w, http.StatusInternalServerError, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleVersions(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	sess := s.lookupSession(ps.ByName("id"))
	if sess == nil {
		writeError(w, http.StatusNotFound, errors.New("session not found"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"versions": sess.Versions()})
}

func (s *Server) handleDiff(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	sess := s.lookupSession(ps.ByName("id"))
	if sess == nil {
		writeError(w, http.StatusNotFound, errors.New("session not found"))
		return
	}
	older, err1 := strconv.Atoi(ps.ByName("older"))
	newer, err2 := strconv.Atoi(ps.ByName("newer"))
	if err1 != nil || err2 != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid version numbers"))
		return
	}

	diff, err := sess.CompareVersions(older, newer)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, diff)
}

func (s *Server) handleRestore(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	sess := s.lookupSession(ps.ByName("id"))
	if sess == nil {
		writeError(w, http.StatusNotFound, errors.New("session not found"))
		return
	}
	v, err := strconv.Atoi(ps.ByName("version"))
	if err != nil || v < 1 {
		writeError(w, http.StatusBadRequest, errors.New("invalid version number"))
		return
	}

	snap, err := sess.Restore(v)
	if err != nil {
		if errors.Is(err, session.ErrBusy) {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
