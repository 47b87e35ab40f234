// Package httpapi implements the gateway's HTTP control surface: a
// net/http ServeMux exposing monitor listing and subscription management,
// backed by the same registries the session engine and dispatcher read.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/vpbank/intellivue-gateway/models"
	"github.com/vpbank/intellivue-gateway/pkg/gateway/dispatch"
	"github.com/vpbank/intellivue-gateway/pkg/gateway/session"
)

// Server is the HTTP control surface. Its lifecycle follows the same
// Start(ctx)/Stop() shape as every other component.
type Server struct {
	addr     string
	monitors *session.MonitorTable
	subs     *dispatch.SubscriptionTable
	logger   *slog.Logger

	httpServer *http.Server
}

// Handler returns the server's routed http.Handler, for use with
// httptest.NewServer in tests that don't need the Start/Stop lifecycle.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// New builds a Server bound to addr (e.g. ":8080"), reading/writing the
// given monitor and subscription registries.
func New(addr string, monitors *session.MonitorTable, subs *dispatch.SubscriptionTable, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}
	s := &Server{addr: addr, monitors: monitors, subs: subs, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/monitors", s.handleListMonitors)
	mux.HandleFunc("POST /api/monitor/{mac}/subscribe", s.handleSubscribe)
	mux.HandleFunc("DELETE /api/subscribe/{subscription_id}", s.handleUnsubscribe)

	s.httpServer = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Start launches ListenAndServe in a background goroutine. A failure to bind
// is reported on the returned channel; a nil value means the server ran
// until Stop shut it down cleanly.
func (s *Server) Start(ctx context.Context) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("httpapi: listen failed", "addr", s.addr, "error", err.Error())
			errCh <- fmt.Errorf("httpapi: listen %s: %w", s.addr, err)
			return
		}
		errCh <- nil
	}()
	return errCh
}

// Stop gracefully shuts the HTTP server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type monitorView struct {
	MAC      string `json:"mac_address"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	LastSeen string `json:"last_seen"`
}

func (s *Server) handleListMonitors(w http.ResponseWriter, r *http.Request) {
	monitors := s.monitors.List()
	views := make([]monitorView, 0, len(monitors))
	for _, m := range monitors {
		views = append(views, monitorView{
			MAC:      m.MAC,
			Host:     m.Host,
			Port:     m.Port,
			LastSeen: m.LastSeen.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	mac := strings.ToLower(r.PathValue("mac"))
	if _, ok := s.monitors.Get(mac); !ok {
		http.Error(w, "monitor not found", http.StatusNotFound)
		return
	}

	var req models.SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		http.Error(w, "body must be {\"url\": \"...\"}", http.StatusBadRequest)
		return
	}

	sub := models.Subscription{ID: uuid.NewString(), MonitorMAC: mac, URL: req.URL}
	s.subs.Add(sub)

	s.logger.Info("httpapi: subscription created", "mac", mac, "subscription_id", sub.ID)
	writeJSON(w, http.StatusCreated, models.SubscribeResponse{
		MonitorID:      mac,
		URL:            req.URL,
		SubscriptionID: sub.ID,
	})
}

func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("subscription_id")
	if ok := s.subs.Remove(id); !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	s.logger.Info("httpapi: subscription removed", "subscription_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }
