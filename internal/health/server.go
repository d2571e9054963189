// Package health serves liveness and readiness probes. Readiness is derived
// entirely from registered collaborator checks; there is no manual ready flag.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const checkTimeout = 3 * time.Second

// Pinger is the connectivity check a collaborator exposes.
type Pinger interface {
	Ping(ctx context.Context) error
}

type check struct {
	name   string
	pinger Pinger
}

// Server answers /live and /ready for the container runtime.
type Server struct {
	info   buildInfo
	addr   string
	logger *logrus.Logger
	checks []check
	server *http.Server
}

type buildInfo struct {
	Service string `json:"service"`
	Version string `json:"version,omitempty"`
	Commit  string `json:"commit,omitempty"`
}

type checkResult struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
	Took    string `json:"took"`
}

type readiness struct {
	Status string        `json:"status"`
	Checks []checkResult `json:"checks"`
	buildInfo
}

// NewServer creates a probe server for the given service identity. Checks are
// registered with AddCheck before Start.
func NewServer(serviceName, version, commit, addr string, logger *logrus.Logger) *Server {
	if addr == "" {
		addr = ":8080"
	}
	return &Server{
		info:   buildInfo{Service: serviceName, Version: version, Commit: commit},
		addr:   addr,
		logger: logger,
	}
}

// AddCheck registers a named collaborator whose connectivity gates readiness.
// Not safe to call after Start.
func (s *Server) AddCheck(name string, p Pinger) {
	s.checks = append(s.checks, check{name: name, pinger: p})
}

// Handler builds the probe routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /live", s.handleLive)
	mux.HandleFunc("GET /ready", s.handleReady)
	// Historical alias for /live kept for existing probes
	mux.HandleFunc("GET /health", s.handleLive)
	return mux
}

// Start serves the probe endpoints until ctx is cancelled.
func (s *Server) Start(ctx context.Context) {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		s.logger.WithFields(logrus.Fields{
			"addr":    s.addr,
			"service": s.info.Service,
		}).Info("Health probe server starting")

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Error("Health probe server error")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.server.Shutdown(shutdownCtx)
	}()
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeProbe(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildInfo
	}{Status: "ok", buildInfo: s.info})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	results := make([]checkResult, 0, len(s.checks))
	healthy := true

	for _, c := range s.checks {
		results = append(results, s.runCheck(r.Context(), c))
		if !results[len(results)-1].Healthy {
			healthy = false
		}
	}

	status := http.StatusOK
	body := readiness{Status: "ready", Checks: results, buildInfo: s.info}
	if !healthy {
		status = http.StatusServiceUnavailable
		body.Status = "not_ready"
	}
	writeProbe(w, status, body)
}

func (s *Server) runCheck(ctx context.Context, c check) checkResult {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	err := c.pinger.Ping(ctx)
	result := checkResult{
		Name:    c.name,
		Healthy: err == nil,
		Took:    time.Since(start).String(),
	}
	if err != nil {
		result.Error = err.Error()
		s.logger.WithError(err).WithField("check", c.name).Warn("Readiness check failed")
	}
	return result
}

func writeProbe(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
