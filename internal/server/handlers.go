package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/lexikid/lexikid/internal/lesson"
)

type sessionResponse struct {
	ID        string       `json:"id"`
	HasAPIKey bool         `json:"has_api_key"`
	State     lesson.State `json:"state"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// intentStatus maps controller intent rejections to HTTP statuses. These are
// state conflicts, not malformed requests.
func intentStatus(err error) int {
	switch {
	case errors.Is(err, lesson.ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, lesson.ErrUnknownWord):
		return http.StatusNotFound
	case errors.Is(err, lesson.ErrAudioPending):
		return http.StatusAccepted
	default:
		return http.StatusConflict
	}
}

func (s *Server) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if s.historyRepo == nil {
		writeError(w, http.StatusNotFound, "quiz history is not enabled")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be a number")
			return
		}
		limit = parsed
	}

	results, err := s.historyRepo.Recent(limit)
	if err != nil {
		s.logger.Error("failed to load quiz history", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load quiz history")
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleGetHistoryStats(w http.ResponseWriter, r *http.Request) {
	if s.historyRepo == nil {
		writeError(w, http.StatusNotFound, "quiz history is not enabled")
		return
	}

	stats, err := s.historyRepo.CategoryStats()
	if err != nil {
		s.logger.Error("failed to load quiz history stats", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load quiz history stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		APIKey string `json:"api_key"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	sess := s.createSession(body.APIKey)
	writeJSON(w, http.StatusCreated, sessionResponse{
		ID:        sess.id,
		HasAPIKey: sess.hasOwnKey(),
		State:     s.stateFor(sess),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		ID:        sess.id,
		HasAPIKey: sess.hasOwnKey(),
		State:     s.stateFor(sess),
	})
}

func (s *Server) handleSelectCategory(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	var body struct {
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	category, ok := s.catalog.FindCategory(body.Category)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown category")
		return
	}

	if err := sess.controller.SelectCategory(r.Context(), category.ID); err != nil {
		writeError(w, intentStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, sessionResponse{
		ID:        sess.id,
		HasAPIKey: sess.hasOwnKey(),
		State:     s.stateFor(sess),
	})
}

func (s *Server) handleSelectScenario(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	var body struct {
		Scenario string `json:"scenario"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	entry, ok := s.catalog.FindScenario(body.Scenario)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown scenario")
		return
	}

	if err := sess.controller.SelectScenario(entry.Setting, entry.Greeting); err != nil {
		writeError(w, intentStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		ID:        sess.id,
		HasAPIKey: sess.hasOwnKey(),
		State:     s.stateFor(sess),
	})
}

func (s *Server) handleSessionEvent(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	var body struct {
		Event string `json:"event"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var err error
	switch body.Event {
	case "next_card":
		err = sess.controller.NextCard()
	case "prev_card":
		err = sess.controller.PrevCard()
	case "switch_to_quiz":
		err = sess.controller.SwitchToQuiz()
	case "switch_to_learn":
		err = sess.controller.SwitchToLearn()
	case "advance":
		err = sess.controller.Advance()
	case "go_home":
		sess.controller.GoHome()
	default:
		writeError(w, http.StatusBadRequest, "unknown event")
		return
	}
	if err != nil {
		writeError(w, intentStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		ID:        sess.id,
		HasAPIKey: sess.hasOwnKey(),
		State:     s.stateFor(sess),
	})
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	var body struct {
		Option string `json:"option"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	correct, err := sess.controller.SubmitAnswer(body.Option)
	if err != nil {
		writeError(w, intentStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Correct bool         `json:"correct"`
		State   lesson.State `json:"state"`
	}{
		Correct: correct,
		State:   s.stateFor(sess),
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	reply, err := sess.controller.SendMessage(r.Context(), body.Message)
	if err != nil {
		writeError(w, intentStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Reply string       `json:"reply"`
		State lesson.State `json:"state"`
	}{
		Reply: reply.Text,
		State: s.stateFor(sess),
	})
}

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	word := r.URL.Query().Get("word")
	if word == "" {
		writeError(w, http.StatusBadRequest, "word query parameter is required")
		return
	}

	audio, mimeType, err := sess.controller.EnsureAudio(r.Context(), word)
	if err != nil {
		status := intentStatus(err)
		if status == http.StatusConflict && !errors.Is(err, lesson.ErrSessionReset) {
			// A gateway failure, not an intent rejection.
			status = http.StatusBadGateway
		}
		writeError(w, status, err.Error())
		return
	}

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}
