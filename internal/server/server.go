// Package server exposes the lesson session controller as a JSON HTTP API
// for the single-page app. Handlers are thin: they decode an intent, call
// the controller, and return the resulting session state.
package server

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/lexikid/lexikid/internal/gateway"
	"github.com/lexikid/lexikid/internal/history"
	"github.com/lexikid/lexikid/internal/lesson"
	"github.com/lexikid/lexikid/internal/scenario"
)

// GatewayFactory builds a gateway client for a credential. Sessions created
// with their own API key get their own client.
type GatewayFactory func(apiKey string) gateway.Client

// Server owns the live sessions and their controllers.
type Server struct {
	catalog       *scenario.Catalog
	historyRepo   *history.Repository
	newGateway    GatewayFactory
	defaultAPIKey string
	wordCount     int
	logger        *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	id         string
	controller *lesson.Controller

	mu     sync.Mutex
	apiKey string // per-session credential; empty means the server default
}

// Options configures a Server.
type Options struct {
	Catalog       *scenario.Catalog
	HistoryRepo   *history.Repository // nil disables quiz history
	NewGateway    GatewayFactory
	DefaultAPIKey string
	WordCount     int
	Logger        *slog.Logger
}

// New creates a Server.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		catalog:       opts.Catalog,
		historyRepo:   opts.HistoryRepo,
		newGateway:    opts.NewGateway,
		defaultAPIKey: opts.DefaultAPIKey,
		wordCount:     opts.WordCount,
		logger:        logger,
	}
}

// createSession registers a new session, optionally with its own API key.
func (s *Server) createSession(apiKey string) *session {
	id := uuid.NewString()

	key := apiKey
	if key == "" {
		key = s.defaultAPIKey
	}

	options := []lesson.Option{
		lesson.WithLogger(s.logger),
	}
	if s.wordCount > 0 {
		options = append(options, lesson.WithWordCount(s.wordCount))
	}
	if s.historyRepo != nil {
		options = append(options, lesson.WithQuizFinishedHook(func(category string, score, total int) {
			if err := s.historyRepo.Record(&history.Result{
				SessionID: id,
				Category:  category,
				Score:     score,
				Total:     total,
			}); err != nil {
				s.logger.Error("failed to record quiz result",
					"session_id", id,
					"category", category,
					"error", err,
				)
			}
		}))
	}

	sess := &session{
		id:         id,
		controller: lesson.NewController(s.newGateway(key), options...),
		apiKey:     apiKey,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions == nil {
		s.sessions = make(map[string]*session)
	}
	s.sessions[id] = sess
	return sess
}

func (s *Server) lookupSession(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// stateFor snapshots a session and applies the credential policy: an
// authorization failure clears the session's stored key so the user is asked
// to enter it again; every other failure kind retains it.
func (s *Server) stateFor(sess *session) lesson.State {
	state := sess.controller.Snapshot()
	if state.ErrorKind == gateway.FailureUnauthorized {
		sess.mu.Lock()
		if sess.apiKey != "" {
			sess.apiKey = ""
			s.logger.Info("cleared session credential after authorization failure",
				"session_id", sess.id)
		}
		sess.mu.Unlock()
	}
	return state
}

func (sess *session) hasOwnKey() bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.apiKey != ""
}
