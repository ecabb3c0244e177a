package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ceyewan/flake/clog"
	"github.com/ceyewan/flake/xerrors"
)

// watchBuffer 每个订阅 channel 的缓冲大小，满了之后丢弃事件
const watchBuffer = 10

// loader 实现 Loader 接口
type loader struct {
	v      *viper.Viper
	cfg    *Config
	logger clog.Logger

	mu        sync.Mutex
	watches   map[string][]chan Event
	oldValues map[string]any
	watchOnce sync.Once
}

// newLoader 创建一个新的配置加载器（内部使用）
func newLoader(cfg *Config, opts ...Option) *loader {
	o := applyOptions(opts...)

	v := viper.New()
	for key, value := range o.defaults {
		v.SetDefault(key, value)
	}

	return &loader{
		v:         v,
		cfg:       cfg,
		logger:    o.logger.With(clog.Component("config")),
		watches:   make(map[string][]chan Event),
		oldValues: make(map[string]any),
	}
}

// Load 初始化并从所有来源加载配置
func (l *loader) Load(ctx context.Context) error {
	// 1. 配置文件位置
	l.v.SetConfigName(l.cfg.Name)
	l.v.SetConfigType(l.cfg.FileType)
	for _, path := range l.cfg.Paths {
		l.v.AddConfigPath(path)
	}

	// 2. 环境变量（最高优先级），server.addr -> FLAKE_SERVER_ADDR
	l.v.SetEnvPrefix(l.cfg.EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	// 3. .env 文件只补充尚未设置的环境变量
	if err := l.loadDotEnv(); err != nil {
		l.logger.Debug("no .env file loaded", clog.Error(err))
	}

	// 4. 基础配置文件，不存在时只依赖默认值和环境变量
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return wrapLoadError(err, "read config file %s", l.cfg.Name)
		}
		l.logger.Warn("no configuration file found",
			clog.String("name", l.cfg.Name),
			clog.String("paths", strings.Join(l.cfg.Paths, ",")),
		)
	} else {
		l.logger.Info("configuration file loaded", clog.String("file", l.v.ConfigFileUsed()))
	}

	// 5. 环境特定配置
	if err := l.loadEnvironmentConfig(); err != nil {
		return err
	}

	// 6. 验证
	if err := l.Validate(); err != nil {
		return err
	}

	// 7. 记录基线后启动文件监听
	l.captureCurrentValues()
	if l.v.ConfigFileUsed() != "" {
		l.watchOnce.Do(func() {
			l.v.OnConfigChange(l.onConfigChange)
			l.v.WatchConfig()
		})
	}

	return nil
}

func (l *loader) onConfigChange(e fsnotify.Event) {
	l.logger.Info("configuration file changed",
		clog.String("file", e.Name),
		clog.String("op", e.Op.String()),
	)
	if err := l.loadEnvironmentConfig(); err != nil {
		l.logger.Error("reload environment config failed", clog.Error(err))
	}
	if err := l.loadDotEnv(); err != nil {
		l.logger.Debug("no .env file reloaded", clog.Error(err))
	}
	l.notifyWatches()
}

// loadDotEnv 依次尝试工作目录和各搜索路径下的 .env，任一成功即可
func (l *loader) loadDotEnv() error {
	var loaded bool
	var lastErr error

	candidates := []string{".env"}
	for _, path := range l.cfg.Paths {
		candidates = append(candidates, filepath.Join(path, ".env"))
	}
	for _, file := range candidates {
		if err := godotenv.Load(file); err != nil {
			lastErr = err
			continue
		}
		loaded = true
	}

	if !loaded {
		return lastErr
	}
	return nil
}

// loadEnvironmentConfig 根据 <PREFIX>_ENV 合并 <name>.<env> 配置文件
func (l *loader) loadEnvironmentConfig() error {
	env := os.Getenv(fmt.Sprintf("%s_ENV", l.cfg.EnvPrefix))
	if env == "" {
		return nil
	}

	envConfigName := fmt.Sprintf("%s.%s", l.cfg.Name, env)
	l.v.SetConfigName(envConfigName)
	defer l.v.SetConfigName(l.cfg.Name)

	if err := l.v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return wrapLoadError(err, "merge environment config %s", envConfigName)
		}
		l.logger.Info("no environment configuration file", clog.String("env", env))
		return nil
	}

	l.logger.Info("environment configuration merged", clog.String("env", env))
	return nil
}

// captureCurrentValues 保存当前配置值用于变更检测
func (l *loader) captureCurrentValues() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key := range l.watches {
		l.oldValues[key] = l.v.Get(key)
	}
}

func (l *loader) Get(key string) any {
	return l.v.Get(key)
}

func (l *loader) Unmarshal(v any) error {
	if err := l.v.Unmarshal(v, decodeHook()); err != nil {
		return wrapLoadError(err, "unmarshal config")
	}
	return nil
}

// UnmarshalKey 从 AllSettings 取子树再解码。
// viper 自带的 UnmarshalKey 直接解码文件里的嵌套 map，子 key 上的环境变量覆盖会丢失。
func (l *loader) UnmarshalKey(key string, v any) error {
	var input any = l.v.AllSettings()
	for _, part := range strings.Split(strings.ToLower(key), ".") {
		m, ok := input.(map[string]any)
		if !ok {
			input = nil
			break
		}
		input = m[part]
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       decodeHookFunc(),
		WeaklyTypedInput: true,
		Result:           v,
	})
	if err != nil {
		return wrapLoadError(err, "unmarshal key %q", key)
	}
	if err := dec.Decode(input); err != nil {
		return wrapLoadError(err, "unmarshal key %q", key)
	}
	return nil
}

// decodeHookFunc RFC 3339 字符串转 time.Time，"5s" 转 time.Duration，逗号分隔字符串转切片
func decodeHookFunc() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

func decodeHook() viper.DecoderConfigOption {
	return viper.DecodeHook(decodeHookFunc())
}

// Watch 订阅特定配置 key 的变更
func (l *loader) Watch(ctx context.Context, key string) (<-chan Event, error) {
	if key == "" {
		return nil, xerrors.WithCode(xerrors.Wrap(ErrInvalidConfig, "watch key is empty"), "empty_watch_key")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ch := make(chan Event, watchBuffer)
	l.watches[key] = append(l.watches[key], ch)
	if _, ok := l.oldValues[key]; !ok {
		l.oldValues[key] = l.v.Get(key)
	}

	go func() {
		<-ctx.Done()
		l.removeWatch(key, ch)
	}()

	return ch, nil
}

// removeWatch 注销并关闭 channel；发送与关闭都在 l.mu 内，不会向已关闭的 channel 写入
func (l *loader) removeWatch(key string, ch chan Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	chans := l.watches[key]
	for i, c := range chans {
		if c == ch {
			l.watches[key] = append(chans[:i:i], chans[i+1:]...)
			break
		}
	}
	if len(l.watches[key]) == 0 {
		delete(l.watches, key)
		delete(l.oldValues, key)
	}
	close(ch)
}

// Validate 配置为空视为失败
func (l *loader) Validate() error {
	if len(l.v.AllSettings()) == 0 {
		return xerrors.Wrap(ErrValidationFailed, "configuration is empty")
	}
	return nil
}

// notifyWatches 对比新旧值，变化时通知该 key 的所有订阅者
func (l *loader) notifyWatches() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, channels := range l.watches {
		newValue := l.v.Get(key)
		oldValue := l.oldValues[key]
		if reflect.DeepEqual(oldValue, newValue) {
			continue
		}

		event := Event{
			Key:       key,
			Value:     newValue,
			OldValue:  oldValue,
			Source:    "file",
			Timestamp: time.Now(),
		}
		l.oldValues[key] = newValue

		for _, ch := range channels {
			select {
			case ch <- event:
			default:
				l.logger.Warn("watch channel is full, event dropped", clog.String("key", key))
			}
		}
	}
}
