// Package service exposes projections over HTTP.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/theirongolddev/finproj/internal/projection"
)

// Config controls the service runtime behavior.
type Config struct {
	Addr        string
	MaxMonths   int
	ReadTimeout time.Duration
}

// Service provides the HTTP API. Every projection request builds its own
// engine; the mutex guards only the counters.
type Service struct {
	cfg Config
	log *zap.Logger

	mu          sync.Mutex
	startedAt   time.Time
	requests    int64
	projections int64
	failed      int64
}

// New returns a new service with the provided config.
func New(cfg Config, log *zap.Logger) *Service {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.MaxMonths < 1 {
		cfg.MaxMonths = 1200
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		cfg:       cfg,
		log:       log,
		startedAt: time.Now(),
	}
}

// Run listens on the configured address until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve handles requests on ln until ctx is canceled, then shuts down
// gracefully.
func (s *Service) Serve(ctx context.Context, ln net.Listener) error {
	server := &fasthttp.Server{
		Handler:      s.Handler,
		Name:         "finproj",
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.ReadTimeout,
		Logger:       zap.NewStdLog(s.log),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()

	s.log.Info("service listening", zap.String("addr", ln.Addr().String()), zap.Int("max_months", s.cfg.MaxMonths))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("service shutting down")
		if err := server.ShutdownWithContext(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}

// Handler routes a request.
func (s *Service) Handler(ctx *fasthttp.RequestCtx) {
	s.count(&s.requests)

	switch string(ctx.Path()) {
	case "/healthz":
		if !ctx.IsGet() {
			s.methodNotAllowed(ctx, fasthttp.MethodGet)
			return
		}
		ctx.SetContentType("text/plain; charset=utf-8")
		ctx.SetBodyString("ok")
	case "/v1/status":
		if !ctx.IsGet() {
			s.methodNotAllowed(ctx, fasthttp.MethodGet)
			return
		}
		s.writeJSON(ctx, fasthttp.StatusOK, s.Status())
	case "/v1/projections":
		if !ctx.IsPost() {
			s.methodNotAllowed(ctx, fasthttp.MethodPost)
			return
		}
		s.handleProjection(ctx)
	case "/v1/arpu":
		if !ctx.IsPost() {
			s.methodNotAllowed(ctx, fasthttp.MethodPost)
			return
		}
		s.handleARPU(ctx)
	default:
		s.writeError(ctx, fasthttp.StatusNotFound, "not found")
	}
}

// Status returns a snapshot of the service counters.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		StartedAt:   s.startedAt,
		Requests:    s.requests,
		Projections: s.projections,
		Errors:      s.failed,
		MaxMonths:   s.cfg.MaxMonths,
	}
}

func (s *Service) handleProjection(ctx *fasthttp.RequestCtx) {
	start := time.Now()

	var req ProjectionRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Months > s.cfg.MaxMonths {
		s.writeError(ctx, fasthttp.StatusBadRequest,
			fmt.Sprintf("months must be at most %d, got %d", s.cfg.MaxMonths, req.Months))
		return
	}

	cfg, dropped, err := req.scenario().ProjectionConfig()
	if err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	}

	_, skipped := projection.BlendTiers(cfg.Tiers)
	res, err := projection.Project(cfg)
	if err != nil {
		status := fasthttp.StatusInternalServerError
		if errors.Is(err, projection.ErrInvalidConfig) ||
			errors.Is(err, projection.ErrUserOverflow) ||
			errors.Is(err, projection.ErrRevenueOverflow) {
			status = fasthttp.StatusBadRequest
		}
		s.writeError(ctx, status, err.Error())
		return
	}

	resp := ProjectionResponse{
		ID:            uuid.NewString(),
		EffectiveARPU: res.EffectiveARPU,
		SkippedTiers:  dropped + skipped,
		Records:       res.Records,
		Summary:       projection.Summarize(res),
		DurationMs:    time.Since(start).Milliseconds(),
	}
	s.count(&s.projections)

	s.log.Debug("projection complete",
		zap.String("id", resp.ID),
		zap.Int("months", cfg.Months),
		zap.Int("skipped_tiers", resp.SkippedTiers),
		zap.Duration("took", time.Since(start)),
	)
	s.writeJSON(ctx, fasthttp.StatusOK, resp)
}

func (s *Service) handleARPU(ctx *fasthttp.RequestCtx) {
	var req ARPURequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	parsed, dropped := tiers(req.Tiers)
	arpu, skipped := projection.BlendTiers(parsed)
	if math.IsNaN(arpu) || math.IsInf(arpu, 0) {
		s.writeError(ctx, fasthttp.StatusBadRequest, "blended ARPU is not a finite number")
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, ARPUResponse{
		EffectiveARPU: arpu,
		SkippedTiers:  dropped + skipped,
	})
}

func (s *Service) methodNotAllowed(ctx *fasthttp.RequestCtx, allow string) {
	ctx.Response.Header.Set(fasthttp.HeaderAllow, allow)
	s.writeError(ctx, fasthttp.StatusMethodNotAllowed, "method not allowed")
}

func (s *Service) writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	s.count(&s.failed)
	s.log.Warn("request rejected",
		zap.ByteString("method", ctx.Method()),
		zap.ByteString("path", ctx.Path()),
		zap.Int("status", status),
		zap.String("message", message),
	)
	s.writeJSON(ctx, status, ErrorResponse{Status: status, Message: message})
}

func (s *Service) writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.count(&s.failed)
		s.log.Error("encoding response", zap.Error(err))
		ctx.Error("internal error", fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}

func (s *Service) count(n *int64) {
	s.mu.Lock()
	*n++
	s.mu.Unlock()
}
