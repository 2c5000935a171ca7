package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/fwojciec/sous"
	"github.com/fwojciec/sous/ndjson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	defaultMaxResults = 5
	shutdownTimeout   = 5 * time.Second
)

// Server relays generated replies to chat clients as NDJSON streams.
type Server struct {
	store      sous.RecipeStore
	generator  sous.Generator
	logger     *zap.Logger
	limiter    *rate.Limiter
	maxResults int
	handler    http.Handler
}

// ServerOption configures a [Server].
type ServerOption func(*Server)

// WithLogger sets the server logger. The default discards everything.
func WithLogger(l *zap.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

// WithRateLimit admits at most r chat requests per second with bursts of
// burst. Excess requests are refused with 429. r <= 0 disables limiting.
func WithRateLimit(r float64, burst int) ServerOption {
	return func(s *Server) {
		if r <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(r), burst)
	}
}

// WithMaxResults sets how many recipes are looked up per message.
func WithMaxResults(n int) ServerOption {
	return func(s *Server) { s.maxResults = n }
}

// NewServer creates a Server answering from store and generator.
func NewServer(store sous.RecipeStore, generator sous.Generator, opts ...ServerOption) *Server {
	s := &Server{
		store:      store,
		generator:  generator,
		logger:     zap.NewNop(),
		maxResults: defaultMaxResults,
	}
	for _, o := range opts {
		o(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+chatPath, s.handleChat)
	mux.HandleFunc("GET "+healthPath, s.handleHealth)
	s.handler = s.logRequests(mux)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("http: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.limiter != nil && !s.limiter.Allow() {
		http.Error(w, "Too many requests.", http.StatusTooManyRequests)
		return
	}

	var req sous.ChatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&req); err != nil {
		s.logger.Debug("invalid chat request", zap.Error(err))
		http.Error(w, "Invalid request body.", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "No message provided.", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	recipes, err := s.store.Search(ctx, req.Message, s.maxResults)
	if err != nil {
		// Answer without context rather than refusing the turn.
		s.logger.Warn("recipe search failed", zap.Error(err))
		recipes = nil
	}
	s.logger.Info("chat request",
		zap.Int("message_len", len(req.Message)),
		zap.Int("recipes", len(recipes)))

	w.Header().Set("Content-Type", ndjsonType)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	out := newRelay(w)
	n, err := s.forward(ctx, out, sous.BuildPrompt(req.Message, recipes))
	if err != nil {
		s.logger.Warn("relay ended early", zap.Int("records", n), zap.Error(err))
		return
	}
	s.logger.Info("stream complete", zap.Int("records", n))
}

// forward copies generated records to out until the generator finishes, an
// error record is sent, or the client goes away. Generator failures are sent
// to the client as error records.
func (s *Server) forward(ctx context.Context, out *relay, prompt string) (int, error) {
	stream, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("generator failed", zap.Error(err))
		return 0, out.send(sous.ErrorRecord(upstreamMessage(err)))
	}
	defer stream.Close()

	n := 0
	for {
		rec, err := stream.Next()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			s.logger.Warn("generator stream failed", zap.Int("records", n), zap.Error(err))
			return n, out.send(sous.ErrorRecord(upstreamMessage(err)))
		}
		if err := out.send(rec); err != nil {
			return n, err
		}
		n++
		if rec.IsError() {
			return n, nil
		}
	}
}

// upstreamMessage maps a generator failure to the message shown to the user.
func upstreamMessage(err error) string {
	var te interface{ Timeout() bool }
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &te) && te.Timeout()) {
		return sous.UpstreamTimeoutMessage
	}
	return sous.UpstreamUnavailableMessage
}

// relay writes records to a response, flushing after each one so the client
// sees tokens as they are generated.
type relay struct {
	enc *ndjson.Encoder
	rc  *http.ResponseController
}

func newRelay(w http.ResponseWriter) *relay {
	return &relay{
		enc: ndjson.NewEncoder(w),
		rc:  http.NewResponseController(w),
	}
}

func (r *relay) send(rec sous.Record) error {
	if err := r.enc.Encode(rec); err != nil {
		return err
	}
	if err := r.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	return nil
}

// logRequests logs each request with its status and duration.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Duration("duration", time.Since(start)))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
