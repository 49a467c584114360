// Package server exposes the HTTP surface: the form UI, the prediction
// endpoint, Prometheus metrics, and a health probe.
package server

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"driftserve/internal/present"
	"driftserve/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

//go:embed index.html
var templateFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templateFS, "index.html"))

// Server serves the inference UI and endpoints. Each request runs to
// completion on its own goroutine in the stock net/http pool; the wrapped
// Service is immutable and safe to share.
type Server struct {
	svc    *service.Service
	server *http.Server
}

// New wires the routes. The gatherer is the registry the service's counters
// are registered on, so /metrics always exposes the counters the pipeline
// increments.
func New(svc *service.Service, gatherer prometheus.Gatherer, port int) *Server {
	s := &Server{svc: svc}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHome)
	mux.HandleFunc("/predict", s.handlePredict)
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("starting inference server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler returns the server's root handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.render(w, http.StatusOK, present.View{})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, present.View{ErrorText: "Error: malformed form data"})
		return
	}

	form := make(map[string]string, len(r.PostForm))
	for name := range r.PostForm {
		form[name] = r.PostForm.Get(name)
	}

	view, err := s.svc.Handle(form)
	if err != nil {
		// Validation and inference failures both surface as a 400 with
		// the cause; neither produces a prediction or drift payload.
		s.render(w, http.StatusBadRequest, present.View{ErrorText: "Error: " + err.Error()})
		return
	}
	s.render(w, http.StatusOK, view)
}

func (s *Server) render(w http.ResponseWriter, status int, view present.View) {
	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, view); err != nil {
		log.Error().Err(err).Msg("template render failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
