package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/samvad-hq/samvad-api-helper/internal/commands"
	"go.uber.org/zap"
)

const (
	shutdownTimeout     = 10 * time.Second
	defaultMaxBodyBytes = 8 << 20
)

// Invoker runs named commands.
type Invoker interface {
	Invoke(ctx context.Context, name string, args json.RawMessage) (any, error)
}

// Options configures the bridge server.
type Options struct {
	Addr         string
	MaxBodyBytes int64
	// Token must accompany every invoke call. A random one is generated
	// when empty.
	Token string
	// AllowedOrigins lists the browser origins permitted to call the bridge.
	AllowedOrigins []string
	// Ready is called with the bound address and the token once listening.
	Ready  func(addr, token string)
	Logger *zap.Logger
}

// Server exposes the command registry to the desktop frontend over loopback HTTP.
type Server struct {
	addr    string
	token   string
	ready   func(addr, token string)
	handler http.Handler
	log     *zap.Logger
}

// New builds a bridge over inv.
func New(inv Invoker, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	token := opts.Token
	if token == "" {
		token = uuid.NewString()
	}
	return &Server{
		addr:    opts.Addr,
		token:   token,
		ready:   opts.Ready,
		handler: newRouter(inv, newGuard(token, opts.AllowedOrigins), opts.AllowedOrigins, opts.MaxBodyBytes, log),
		log:     log,
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Token returns the token callers must present in TokenHeader.
func (s *Server) Token() string { return s.token }

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("bridge listening", zap.String("address", ln.Addr().String()))
		if s.ready != nil {
			s.ready(ln.Addr().String(), s.token)
		}
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown bridge: %w", err)
	}
	s.log.Info("bridge stopped")
	return nil
}

func newRouter(inv Invoker, g *guard, origins []string, maxBody int64, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))
	r.Use(g.scope)
	if len(g.origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Content-Type", TokenHeader},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Post("/invoke/{command}", func(w http.ResponseWriter, req *http.Request) {
		if !g.authorize(w, req) {
			return
		}
		invoke(w, req, inv, maxBody, log)
	})
	return r
}

func invoke(w http.ResponseWriter, r *http.Request, inv Invoker, maxBody int64, log *zap.Logger) {
	name := chi.URLParam(r, "command")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, commands.Failure{
				Message: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
				Kind:    commands.KindInvalidArguments,
			})
			return
		}
		writeJSON(w, http.StatusBadRequest, commands.Failure{Message: err.Error(), Kind: commands.KindInvalidArguments})
		return
	}
	if len(body) > 0 && !json.Valid(body) {
		writeJSON(w, http.StatusBadRequest, commands.Failure{Message: "arguments are not valid JSON", Kind: commands.KindInvalidArguments})
		return
	}

	out, err := inv.Invoke(r.Context(), name, body)
	if err != nil {
		f := commands.FailureOf(err)
		log.Debug("command failed",
			zap.String("command", name),
			zap.String("kind", f.Kind),
			zap.String("request.id", middleware.GetReqID(r.Context())),
		)
		writeJSON(w, statusFor(f.Kind), f)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// statusFor maps a failure kind to the bridge status code. Executor failures
// map to 422.
func statusFor(kind string) int {
	switch kind {
	case commands.KindUnknownCommand:
		return http.StatusNotFound
	case commands.KindInvalidArguments:
		return http.StatusBadRequest
	case commands.KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
