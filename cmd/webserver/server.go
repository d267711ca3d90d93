package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"partyhistory"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	cookieName   = "partyhistory-session"
	viewerKey    = "viewer"
	journalLimit = 50
)

// Server exposes the quiz, tutor and timeline as a JSON API. Each browser is
// identified by a signed cookie and owns one in-memory viewer.
type Server struct {
	ctx      context.Context // bounds background question fetches
	store    sessions.Store
	viewers  *partyhistory.SessionStore
	timeline func(context.Context) []partyhistory.TimelineEvent
	journal  *partyhistory.Journal
	logger   *zap.Logger
}

// NewServer creates a server backed by app.
func NewServer(ctx context.Context, app *partyhistory.App, store sessions.Store) *Server {
	viewers := partyhistory.NewSessionStore(app.Config.HTTP.MaxViewers, func(id string) *partyhistory.Viewer {
		return &partyhistory.Viewer{
			Quiz: app.NewQuizSession(),
			Chat: app.NewChatSession(),
		}
	})

	return &Server{
		ctx:      ctx,
		store:    store,
		viewers:  viewers,
		timeline: app.Timeline,
		journal:  app.Journal,
		logger:   app.Logger.Named("http"),
	}
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/quiz", s.handleQuizState)
	mux.HandleFunc("POST /api/quiz/start", s.handleQuizStart)
	mux.HandleFunc("POST /api/quiz/select", s.handleQuizSelect)
	mux.HandleFunc("POST /api/quiz/advance", s.handleQuizAdvance)
	mux.HandleFunc("GET /api/timeline", s.handleTimeline)
	mux.HandleFunc("GET /api/chat", s.handleChatHistory)
	mux.HandleFunc("POST /api/chat", s.handleChatSend)
	mux.HandleFunc("GET /api/journal", s.handleJournal)
	return mux
}

// newCookieStore returns the signed cookie store that identifies viewers.
// Cookies are not marked Secure so the API also works behind plain HTTP.
func newCookieStore(secret string, maxAge int) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// viewer resolves the caller's viewer, issuing a cookie on first contact.
func (s *Server) viewer(w http.ResponseWriter, r *http.Request) *partyhistory.Viewer {
	// A cookie that fails to decode still yields a usable fresh session.
	session, err := s.store.Get(r, cookieName)
	if err != nil {
		s.logger.Debug("Discarding undecodable session cookie", zap.Error(err))
	}

	id, ok := session.Values[viewerKey].(string)
	if !ok || id == "" {
		id = uuid.NewString()
		session.Values[viewerKey] = id
		if err := session.Save(r, w); err != nil {
			s.logger.Error("Session save error", zap.Error(err))
		}
	}
	return s.viewers.Get(id)
}

type quizResponse struct {
	Accepted *bool                     `json:"accepted,omitempty"`
	State    partyhistory.SessionState `json:"state"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "viewers": s.viewers.Size()})
}

func (s *Server) handleQuizState(w http.ResponseWriter, r *http.Request) {
	v := s.viewer(w, r)
	writeJSON(w, http.StatusOK, quizResponse{State: v.Quiz.Snapshot()})
}

func (s *Server) handleQuizStart(w http.ResponseWriter, r *http.Request) {
	v := s.viewer(w, r)
	// The fetch outlives this request, so it runs under the server context.
	v.Quiz.Start(s.ctx)
	writeJSON(w, http.StatusAccepted, quizResponse{State: v.Quiz.Snapshot()})
}

func (s *Server) handleQuizSelect(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Option *int `json:"option"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Option == nil {
		writeError(w, http.StatusBadRequest, "option is required")
		return
	}

	v := s.viewer(w, r)
	accepted := v.Quiz.SelectOption(*body.Option)
	writeJSON(w, http.StatusOK, quizResponse{Accepted: &accepted, State: v.Quiz.Snapshot()})
}

func (s *Server) handleQuizAdvance(w http.ResponseWriter, r *http.Request) {
	v := s.viewer(w, r)
	accepted := v.Quiz.Advance()
	writeJSON(w, http.StatusOK, quizResponse{Accepted: &accepted, State: v.Quiz.Snapshot()})
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": s.timeline(r.Context())})
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	v := s.viewer(w, r)
	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": v.Chat.Messages()})
}

func (s *Server) handleChatSend(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	v := s.viewer(w, r)
	reply, err := v.Chat.Send(r.Context(), body.Message)
	switch {
	case errors.Is(err, partyhistory.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, partyhistory.ErrChatBusy):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, partyhistory.ErrTutorUnavailable):
		writeJSON(w, http.StatusBadGateway, map[string]interface{}{"reply": reply, "error": err.Error()})
	case err != nil:
		s.logger.Error("Chat send failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "chat failed")
	default:
		writeJSON(w, http.StatusOK, map[string]interface{}{"reply": reply})
	}
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeError(w, http.StatusNotFound, "journal disabled")
		return
	}

	limit := journalLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	rows, err := s.journal.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to read journal", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read journal")
		return
	}
	counts, err := s.journal.CountByOutcome(r.Context())
	if err != nil {
		s.logger.Error("Failed to count journal outcomes", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read journal")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"acquisitions": rows, "outcomes": counts})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
