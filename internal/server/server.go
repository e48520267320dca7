// ABOUTME: HTTP server wiring for the booking API
// ABOUTME: Route table, access policy, and middleware chain assembly

package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/lotus-studio/bookingd/internal/account"
	"github.com/lotus-studio/bookingd/internal/auth"
	"github.com/lotus-studio/bookingd/internal/booking"
)

// Server exposes the booking API over HTTP.
type Server struct {
	accounts *account.Service
	bookings *booking.Service
	users    auth.UserResolver
	verifier auth.TokenVerifier
	logger   *slog.Logger
}

// New creates a Server. users resolves token subjects for the auth
// middleware; verifier validates incoming bearer tokens.
func New(accounts *account.Service, bookings *booking.Service, users auth.UserResolver, verifier auth.TokenVerifier, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		accounts: accounts,
		bookings: bookings,
		users:    users,
		verifier: verifier,
		logger:   logger.With("component", "server"),
	}
}

// accessRules is the route-level authentication policy: login and register
// are reachable anonymously, health is public, everything else requires a
// principal. First match wins.
var accessRules = []auth.AccessRule{
	{PathPrefix: "/api/auth/", Public: true},
	{PathPrefix: "/health", Public: true},
	{PathPrefix: "/", Public: false},
}

// Handler builds the full middleware chain and route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)

	mux.HandleFunc("GET /api/session", s.handleListSessions)
	mux.HandleFunc("POST /api/session", s.handleCreateSession)
	mux.HandleFunc("GET /api/session/{id}", s.handleGetSession)
	mux.HandleFunc("PUT /api/session/{id}", s.handleUpdateSession)
	mux.HandleFunc("DELETE /api/session/{id}", s.handleDeleteSession)
	mux.HandleFunc("POST /api/session/{id}/participate/{userId}", s.handleParticipate)
	mux.HandleFunc("DELETE /api/session/{id}/participate/{userId}", s.handleUnparticipate)

	mux.HandleFunc("GET /api/user/{id}", s.handleGetUser)
	mux.HandleFunc("DELETE /api/user/{id}", s.handleDeleteUser)

	mux.HandleFunc("GET /api/teacher", s.handleListTeachers)
	mux.HandleFunc("GET /api/teacher/{id}", s.handleGetTeacher)

	policy := auth.NewAccessPolicy(accessRules)

	var handler http.Handler = mux
	handler = policy.Enforce(handler)
	handler = auth.Middleware(s.users, s.verifier, s.logger)(handler)
	handler = s.requestLog(handler)
	return handler
}

// requestLog attaches a correlation ID to each request and logs its outcome.
func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Info("request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.status = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// pathID parses a numeric path parameter. Reports false (after writing a 400)
// when the value is not an integer.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Bad request")
		return 0, false
	}
	return id, true
}
