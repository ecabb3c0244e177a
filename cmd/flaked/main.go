// flaked 是雪花 ID 的 HTTP 服务。
//
//	flaked --config flaked --config-path ./configs
//
// 所有配置项都可以用 FLAKE_ 前缀的环境变量覆盖，例如 FLAKE_SNOWFLAKE_WORKER_ID=3。
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/ceyewan/flake/clog"
	"github.com/ceyewan/flake/config"
	"github.com/ceyewan/flake/internal/bootstrap"
)

var (
	configName  = pflag.StringP("config", "c", "flaked", "配置文件名，不含扩展名")
	configPaths = pflag.StringSlice("config-path", []string{".", "./configs"}, "配置文件搜索路径")
	envPrefix   = pflag.String("env-prefix", config.DefaultEnvPrefix, "环境变量前缀")
)

func main() {
	pflag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "flaked: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) (err error) {
	loader, err := config.New(&config.Config{
		Name:      *configName,
		Paths:     *configPaths,
		EnvPrefix: *envPrefix,
	}, config.WithDefaults(bootstrap.Defaults()))
	if err != nil {
		return err
	}
	if err := loader.Load(ctx); err != nil {
		return err
	}

	app, err := bootstrap.Init(ctx, loader)
	if err != nil {
		return err
	}
	defer func() {
		// ctx 已被信号取消，关闭使用独立的超时
		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
		defer cancel()
		if serr := app.Shutdown(shutdownCtx); serr != nil && err == nil {
			err = serr
		}
	}()

	if err := app.WatchLogLevel(ctx); err != nil {
		app.Logger.Warn("log level hot reload disabled", clog.Error(err))
	}

	app.Logger.Info("flaked starting",
		clog.String("addr", app.Config.Server.Addr),
		clog.String("version", app.Config.App.Version),
	)
	return app.Server.Run(ctx)
}
