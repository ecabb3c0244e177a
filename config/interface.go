// Package config 为 flake 提供统一的配置管理能力，基于 Viper 实现。
//
// 配置来源与优先级（高到低）：
//
//	环境变量 (FLAKE_SNOWFLAKE_WORKER_ID) > .env 文件 > config.<env>.yaml > config.yaml > 默认值
//
// 其中 <env> 取自环境变量 <PREFIX>_ENV。文件变化时会自动重新加载，
// 并通过 Watch 返回的 channel 通知订阅者。
//
// 基本使用：
//
//	loader, err := config.New(&config.Config{
//		Name:      "flaked",
//		Paths:     []string{".", "./configs"},
//		EnvPrefix: "FLAKE",
//	}, config.WithDefaults(map[string]any{"server.addr": ":8080"}))
//	if err != nil {
//		return err
//	}
//	if err := loader.Load(ctx); err != nil {
//		return err
//	}
//
//	var sf snowflake.Config
//	_ = loader.UnmarshalKey("snowflake", &sf)
//
//	ch, _ := loader.Watch(ctx, "log.level")
//	for event := range ch {
//		fmt.Printf("%s: %v -> %v\n", event.Key, event.OldValue, event.Value)
//	}
package config

import (
	"context"
	"time"
)

// Loader 定义配置加载器的核心行为
type Loader interface {
	// Load 从所有来源加载配置并启动文件监听
	Load(ctx context.Context) error

	// Get 获取原始配置值，不存在时返回 nil
	Get(key string) any

	// Unmarshal 将整个配置反序列化到结构体
	Unmarshal(v any) error

	// UnmarshalKey 将指定 Key 的配置反序列化到结构体
	UnmarshalKey(key string, v any) error

	// Watch 监听配置变化，ctx 结束时关闭返回的 channel
	Watch(ctx context.Context, key string) (<-chan Event, error)

	// Validate 验证当前配置的有效性
	Validate() error
}

// Event 配置变更事件
type Event struct {
	Key       string // 配置 key
	Value     any    // 新值
	OldValue  any    // 旧值
	Source    string // 目前只有 "file"
	Timestamp time.Time
}
