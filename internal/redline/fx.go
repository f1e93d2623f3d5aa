package redline

import (
	"github.com/groundworklabs/groundwork/internal/redline/service"
	"go.uber.org/fx"
)

var Module = fx.Module("redline.service",
	fx.Provide(service.NewService),
)
