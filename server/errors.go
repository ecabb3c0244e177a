package server

import "github.com/ceyewan/flake/xerrors"

// ErrInvalidConfig HTTP 服务配置非法
var ErrInvalidConfig = xerrors.New("server: invalid config")
