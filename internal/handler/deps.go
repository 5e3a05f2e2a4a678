package handler

import (
	"gambit/internal/app/gateway"
	"gambit/internal/configs"
)

// AppDeps bundles the dependencies the HTTP handlers need.
type AppDeps struct {
	Gateway *gateway.Gateway
	Config  *configs.AppConfig
}
