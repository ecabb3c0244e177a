// Package bootstrap 按配置组装 flaked 的全部组件。
package bootstrap

import (
	"context"
	"fmt"

	"github.com/ceyewan/flake/clog"
	"github.com/ceyewan/flake/config"
	"github.com/ceyewan/flake/metrics"
	"github.com/ceyewan/flake/server"
	"github.com/ceyewan/flake/snowflake"
	"github.com/ceyewan/flake/trace"
	"github.com/ceyewan/flake/transport"
	"github.com/ceyewan/flake/xerrors"
)

// AppConfig flaked 的完整配置，与 configs/flaked.yaml 一一对应
type AppConfig struct {
	App       AppInfo          `mapstructure:"app"`
	Log       clog.Config      `mapstructure:"log"`
	Metrics   metrics.Config   `mapstructure:"metrics"`
	Trace     trace.Config     `mapstructure:"trace"`
	Snowflake snowflake.Config `mapstructure:"snowflake"`
	Transport transport.Config `mapstructure:"transport"`
	Server    server.Config    `mapstructure:"server"`
}

// AppInfo 应用信息
type AppInfo struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// Defaults 返回全部配置项的默认值
//
// 每个 key 都需要默认值，否则仅通过环境变量提供的配置无法被 Unmarshal 读到。
func Defaults() map[string]any {
	return map[string]any{
		"app.name":    "flaked",
		"app.version": "dev",

		"log.level":     "info",
		"log.format":    "json",
		"log.output":    "stdout",
		"log.addSource": false,

		"metrics.enabled":      true,
		"metrics.service_name": "flaked",
		"metrics.version":      "dev",
		"metrics.port":         9090,
		"metrics.path":         "/metrics",
		"metrics.runtime":      true,

		"trace.enabled":  false,
		"trace.endpoint": "localhost:4317",
		"trace.sampler":  1.0,
		"trace.batcher":  trace.BatcherBatch,
		"trace.insecure": true,

		"snowflake.epoch":      "2015-01-01T00:00:00Z",
		"snowflake.worker_id":  snowflake.DefaultWorkerID,
		"snowflake.process_id": snowflake.DefaultProcessID,
		"snowflake.increment":  0,

		"transport.encoding": transport.EncodingStd,

		"server.addr":                ":8080",
		"server.mode":                "release",
		"server.read_timeout":        "5s",
		"server.write_timeout":       "5s",
		"server.shutdown_timeout":    "10s",
		"server.rate_limit":          0,
		"server.burst":               0,
		"server.client_rate_limit":   0,
		"server.client_burst":        0,
		"server.client_idle_timeout": "5m",
		"server.max_clients":         10000,
	}
}

// Shutdown 组件关闭函数
type Shutdown func(context.Context) error

// App 组装完成的应用
type App struct {
	Config    *AppConfig
	Logger    clog.Logger
	Meter     metrics.Meter
	Generator *snowflake.Generator
	Encoder   *transport.Encoder
	Server    *server.Server

	loader    config.Loader
	shutdowns []Shutdown
}

// Init 从已加载的 loader 读取配置并创建各组件
// 任一步失败时已创建的组件会被关闭
func Init(ctx context.Context, loader config.Loader) (*App, error) {
	cfg := &AppConfig{}
	if err := loader.Unmarshal(cfg); err != nil {
		return nil, err
	}

	app := &App{Config: cfg, loader: loader}
	if err := app.init(ctx); err != nil {
		_ = app.Shutdown(ctx)
		return nil, err
	}
	return app, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.Config

	logger, err := clog.New(&cfg.Log,
		clog.WithNamespace(cfg.App.Name),
		clog.WithStandardContext(),
	)
	if err != nil {
		return xerrors.Wrap(err, "init logger")
	}
	a.Logger = logger
	a.shutdowns = append(a.shutdowns, func(context.Context) error {
		logger.Flush()
		return nil
	})

	if cfg.Metrics.ServiceName == "" {
		cfg.Metrics.ServiceName = cfg.App.Name
	}
	meter, err := metrics.New(&cfg.Metrics, metrics.WithLogger(logger))
	if err != nil {
		return xerrors.Wrap(err, "init metrics")
	}
	a.Meter = meter
	a.shutdowns = append(a.shutdowns, meter.Shutdown)

	if cfg.Trace.ServiceName == "" {
		cfg.Trace.ServiceName = cfg.App.Name
	}
	traceShutdown, err := trace.Init(ctx, &cfg.Trace)
	if err != nil {
		return xerrors.Wrap(err, "init trace")
	}
	a.shutdowns = append(a.shutdowns, Shutdown(traceShutdown))

	gen, err := snowflake.New(&cfg.Snowflake,
		snowflake.WithLogger(logger),
		snowflake.WithMeter(meter),
	)
	if err != nil {
		return xerrors.Wrap(err, "init snowflake generator")
	}
	a.Generator = gen

	codec, err := transport.NewBase64Codec(cfg.Transport.Encoding)
	if err != nil {
		return xerrors.Wrap(err, "init transport codec")
	}
	enc, err := transport.NewEncoder(gen,
		transport.WithCodec(codec),
		transport.WithLogger(logger),
		transport.WithMeter(meter),
	)
	if err != nil {
		return xerrors.Wrap(err, "init transport encoder")
	}
	a.Encoder = enc

	srv, err := server.New(gen, enc, &cfg.Server,
		server.WithLogger(logger),
		server.WithMeter(meter),
		server.WithServiceName(cfg.App.Name),
		server.WithTracing(),
	)
	if err != nil {
		return xerrors.Wrap(err, "init http server")
	}
	a.Server = srv

	logger.Info("application initialized",
		clog.String("version", cfg.App.Version),
		clog.Int64("worker_id", *cfg.Snowflake.WorkerID),
		clog.Int64("process_id", *cfg.Snowflake.ProcessID),
		clog.String("transport", codec.Name()),
		clog.Bool("trace_export", cfg.Trace.Enabled),
	)
	return nil
}

// WatchLogLevel 监听 log.level 并应用到运行中的 Logger，ctx 结束时停止
func (a *App) WatchLogLevel(ctx context.Context) error {
	ch, err := a.loader.Watch(ctx, "log.level")
	if err != nil {
		return err
	}

	go func() {
		for event := range ch {
			if err := applyLogLevel(a.Logger, event.Value); err != nil {
				a.Logger.Warn("ignore invalid log level", clog.Error(err))
				continue
			}
			a.Logger.Info("log level changed",
				clog.Any("old", event.OldValue),
				clog.Any("new", event.Value),
			)
		}
	}()
	return nil
}

func applyLogLevel(logger clog.Logger, value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("log level %v is not a string", value)
	}
	level, err := clog.ParseLevel(s)
	if err != nil {
		return err
	}
	return logger.SetLevel(level)
}

// Shutdown 按创建的逆序关闭组件并合并所有错误
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		if err := a.shutdowns[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.shutdowns = nil
	return xerrors.Combine(errs...)
}
