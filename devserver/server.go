// Package devserver is a stand-in for the assistant backend. It speaks the
// same protocol as the real service (/api/chat, /api/chat/stream, /health)
// and answers every message with a canned echo, which is enough to drive the
// client locally and in tests.
package devserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const (
	ServiceName    = "electronics-product-rag"
	ServiceVersion = "1.0.0"
	DefaultAddr    = "127.0.0.1:8000"

	// DefaultWordDelay paces streamed words.
	DefaultWordDelay = 30 * time.Millisecond
)

type Options struct {
	// WordDelay is the pause after each streamed word. Zero disables it.
	WordDelay time.Duration
	Logger    zerolog.Logger
}

// Server is the development backend HTTP server.
type Server struct {
	httpServer *http.Server
	handler    *handler
}

// NewServer creates a server that will listen on addr.
func NewServer(addr string, opts Options) *Server {
	h := newHandler(opts)
	return &Server{
		httpServer: &http.Server{
			Addr:    addr,
			Handler: h.routes(),
		},
		handler: h,
	}
}

// NewRouter returns the backend routes without a listener, for httptest.
func NewRouter(opts Options) http.Handler {
	return newHandler(opts).routes()
}

// Start begins listening. It blocks until the server is stopped.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.handler.log.Info().Str("addr", ln.Addr().String()).Msg("development backend listening")
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type handler struct {
	wordDelay time.Duration
	log       zerolog.Logger
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	fragments prometheus.Counter
}

func newHandler(opts Options) *handler {
	h := &handler{
		wordDelay: opts.WordDelay,
		log:       opts.Logger,
		registry:  prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "devserver_requests_total",
			Help: "Requests served, by endpoint.",
		}, []string{"endpoint"}),
		fragments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "devserver_stream_fragments_total",
			Help: "Text fragments written to streaming responses.",
		}),
	}
	h.registry.MustRegister(h.requests, h.fragments)
	return h
}

func (h *handler) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(allowAllOrigins)

	r.Get("/", h.handleRoot)
	r.Get("/health", h.handleHealth)
	r.Post("/api/chat", h.handleChat)
	r.Post("/api/chat/stream", h.handleChatStream)
	r.Handle("/metrics", promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{}))

	return r
}

// allowAllOrigins answers CORS preflights and marks every response as
// shareable with any origin.
func allowAllOrigins(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
