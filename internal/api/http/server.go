// Package http exposes the HTTP side of the booking server: evidence
// uploads for the local store, invalidation WebSockets, metrics and health.
package http

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"carrental-backend/internal/events"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/observability"
	"carrental-backend/internal/storage"
)

type contextKey string

const requestIDKey contextKey = "request-id"

// Options selects the optional routes of the router.
type Options struct {
	Files          storage.LocalFiles
	MaxUploadSize  int64
	Hub            *events.Hub
	AllowedOrigins []string
	EnableMetrics  bool
}

// NewRouter builds the HTTP router with recovery, request ids and metrics.
func NewRouter(opts Options) *mux.Router {
	router := mux.NewRouter()
	router.Use(recoverMiddleware, requestIDMiddleware, observabilityMiddleware)

	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	if opts.EnableMetrics {
		router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}
	if opts.Files != nil {
		h := NewEvidenceHandler(opts.Files, opts.MaxUploadSize)
		router.HandleFunc("/api/v1/upload/{token}", h.HandleUpload).Methods(http.MethodPut)
		router.HandleFunc("/api/v1/download/{name}", h.HandleDownload).Methods(http.MethodGet)
	}
	if opts.Hub != nil {
		ws := newInvalidationHandler(opts.Hub, opts.AllowedOrigins)
		router.HandleFunc("/ws/invalidations", ws.ServeHTTP).Methods(http.MethodGet)
	}
	return router
}

type invalidationHandler struct {
	hub      *events.Hub
	upgrader websocket.Upgrader
}

func newInvalidationHandler(hub *events.Hub, allowedOrigins []string) *invalidationHandler {
	h := &invalidationHandler{hub: hub}
	if len(allowedOrigins) > 0 {
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			for _, o := range allowedOrigins {
				if o == "*" || strings.EqualFold(o, origin) {
					return true
				}
			}
			return false
		}
	}
	return h
}

// ServeHTTP subscribes the connection to ?booking=<number>, or to every
// booking when the parameter is absent. Incoming frames are discarded.
func (h *invalidationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	channel := r.URL.Query().Get("booking")
	if channel == "" {
		channel = events.AllBookings
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	unsubscribe := h.hub.Add(channel, conn)
	logger.Debug("Invalidation subscriber connected", "channel", channel)

	go func() {
		defer unsubscribe()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)
		ctx := context.WithValue(r.Context(), requestIDKey, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func observabilityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		route := routeTemplate(r)
		status := strconv.Itoa(ww.status)
		observability.HTTPRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
		observability.HTTPRequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())

		logger.Debug("http_request",
			"method", r.Method,
			"route", route,
			"status", ww.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_addr", remoteIP(r),
			"request_id", requestIDFromContext(r.Context()),
		)
	})
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic recovered", "error", rec, "path", r.URL.Path)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (r *responseWriter) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack keeps WebSocket upgrades working behind the status recorder.
func (r *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hj.Hijack()
}

func requestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

func routeTemplate(r *http.Request) string {
	if current := mux.CurrentRoute(r); current != nil {
		if tmpl, err := current.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return r.URL.Path
}

func remoteIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return strings.TrimSpace(strings.Split(ip, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
