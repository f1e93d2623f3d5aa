package bootstrap

import (
	"context"

	"go.uber.org/fx"
)

// EnforceSchemaGate hooks the gate into fx startup. The check runs
// before the HTTP server accepts traffic.
func EnforceSchemaGate(lc fx.Lifecycle, gate SchemaGate) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return gate.MustBeActive(ctx)
		},
	})
}
