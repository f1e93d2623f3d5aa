package foreman

import (
	"github.com/groundworklabs/groundwork/internal/foreman/service"
	"go.uber.org/fx"
)

var Module = fx.Module("foreman.service",
	fx.Provide(service.NewService),
)
