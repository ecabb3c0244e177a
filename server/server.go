// Package server 通过 HTTP 暴露雪花 ID 的生成、解析与传输编码。
//
// 路由：
//
//	POST /v1/snowflakes?timestamp=<ms>     生成
//	GET  /v1/snowflakes/:id                解析
//	GET  /v1/snowflakes/:id/transport      编码为传输字符串
//	GET  /v1/transport?token=<t>           解码传输字符串
//	GET  /healthz                          存活检查
//
// 响应默认为 JSON，Accept 为 application/msgpack 或 application/x-msgpack 时返回 MessagePack。
package server

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ceyewan/flake/clog"
	"github.com/ceyewan/flake/metrics"
	"github.com/ceyewan/flake/ratelimit"
	"github.com/ceyewan/flake/snowflake"
	"github.com/ceyewan/flake/trace"
	"github.com/ceyewan/flake/xerrors"
)

// Generator 服务依赖的生成与解析能力，由 *snowflake.Generator 实现
type Generator interface {
	Generate() (string, error)
	GenerateMillis(ms float64) (string, error)
	Deconstruct(s string) (*snowflake.Deconstructed, error)
}

// Codec 服务依赖的传输编码能力，由 *transport.Encoder 实现
type Codec interface {
	Encode(s string) (string, error)
	Decode(t string) (*snowflake.Deconstructed, error)
}

// Server HTTP 服务
type Server struct {
	cfg    *Config
	gen    Generator
	codec  Codec
	engine *gin.Engine
	logger clog.Logger
}

// New 创建 HTTP 服务，cfg 为 nil 时使用 DefaultConfig
func New(gen Generator, codec Codec, cfg *Config, opts ...Option) (*Server, error) {
	if gen == nil || codec == nil {
		return nil, xerrors.WithCode(xerrors.Wrap(ErrInvalidConfig, "generator and codec are required"), "dependency_required")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	o := applyOptions(opts...)
	logger := o.logger.With(clog.Component("server"))

	httpMetrics, err := metrics.NewHTTPServerMetrics(o.meter, metrics.DefaultHTTPServerMetricsConfig(o.serviceName))
	if err != nil {
		return nil, err
	}
	rejected, err := o.meter.Counter(MetricRateLimited, "Total number of requests rejected by the rate limiter.")
	if err != nil {
		return nil, err
	}

	var global, clients *ratelimit.Limiter
	if cfg.RateLimit > 0 {
		global, err = ratelimit.New(&ratelimit.Config{
			Limit:   ratelimit.Limit{Rate: cfg.RateLimit, Burst: cfg.Burst},
			MaxKeys: 1,
		}, ratelimit.WithLogger(logger))
		if err != nil {
			return nil, err
		}
	}
	if cfg.ClientRateLimit > 0 {
		clients, err = ratelimit.New(&ratelimit.Config{
			Limit:       ratelimit.Limit{Rate: cfg.ClientRateLimit, Burst: cfg.ClientBurst},
			MaxKeys:     cfg.MaxClients,
			IdleTimeout: cfg.ClientIdleTimeout,
		}, ratelimit.WithLogger(logger))
		if err != nil {
			return nil, err
		}
	}

	gin.SetMode(cfg.Mode)
	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.NoRoute(func(c *gin.Context) {
		render(c, http.StatusNotFound, newErrorBody(CodeNotFound, "route not found", ""))
	})
	engine.NoMethod(func(c *gin.Context) {
		render(c, http.StatusMethodNotAllowed, newErrorBody(CodeMethodNotAllowed, "method not allowed", ""))
	})
	engine.Use(requestID())
	if o.tracing {
		engine.Use(trace.GinMiddleware(o.serviceName), traceContext())
	}
	engine.Use(
		accessLog(logger),
		recovery(logger),
		metrics.GinHTTPMiddleware(httpMetrics),
		rateLimit(global, clients, rejected, logger),
	)

	s := &Server{
		cfg:    cfg,
		gen:    gen,
		codec:  codec,
		engine: engine,
		logger: logger,
	}
	s.registerRoutes(engine)
	return s, nil
}

// Handler 返回底层 http.Handler，便于测试或挂载到其他服务
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run 监听 cfg.Addr 并阻塞，直到 ctx 结束后优雅关闭
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return xerrors.Wrapf(err, "listen %s", s.cfg.Addr)
	}
	return s.Serve(ctx, ln)
}

// Serve 在给定 listener 上提供服务，ctx 结束后在 ShutdownTimeout 内关闭
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("http server started", clog.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return xerrors.Wrap(err, "http server")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return xerrors.Wrap(err, "shutdown http server")
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return xerrors.Wrap(err, "http server")
	}
	s.logger.Info("http server stopped")
	return nil
}
