package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jaminalder/codex-reversi/internal/app"
	"github.com/jaminalder/codex-reversi/internal/domain"
	"github.com/zeromicro/go-zero/core/logx"
)

const defaultHeartbeat = 15 * time.Second

// Option configures the server.
type Option func(*handlers)

// WithDefaultVariant sets the variant used when a create request names none.
func WithDefaultVariant(v domain.Variant) Option {
	return func(h *handlers) { h.defaultVariant = v }
}

// WithHeartbeat sets the SSE keep-alive interval.
func WithHeartbeat(d time.Duration) Option {
	return func(h *handlers) {
		if d > 0 {
			h.heartbeat = d
		}
	}
}

// NewServer wires routes and returns an http.Handler. It installs the board
// fragment as the service's broadcast renderer.
func NewServer(s *app.Service, opts ...Option) http.Handler {
	h := &handlers{
		svc:            s,
		tpl:            loadTemplates(),
		defaultVariant: domain.CellVariant,
		heartbeat:      defaultHeartbeat,
	}
	for _, opt := range opts {
		opt(h)
	}
	s.SetRenderer(func(gs app.GameState) []byte { return h.renderBoard(gs, "") })

	r := chi.NewRouter()
	r.Use(middleware.Recoverer, logRequests)
	r.Get("/", h.index)
	r.Post("/game", h.create)
	r.Route("/game/{id}", func(r chi.Router) {
		r.Get("/", h.view)
		r.Post("/play", h.play)
		r.Post("/pass", h.pass)
		r.Post("/reset", h.reset)
		r.Get("/state", h.state)
		r.Get("/events", h.events)
	})
	return r
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logx.WithContext(r.Context()).WithDuration(time.Since(start)).Infow("http",
			logx.Field("method", r.Method),
			logx.Field("path", r.URL.Path),
			logx.Field("status", ww.Status()),
		)
	})
}
