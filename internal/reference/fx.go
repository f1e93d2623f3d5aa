package reference

import (
	"github.com/groundworklabs/groundwork/internal/reference/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reference.service",
	fx.Provide(service.NewService),
)
