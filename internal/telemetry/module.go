package telemetry

import (
	"context"
	"log/slog"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"

	"github.com/HannahHaeusler/labor/internal/config"
)

// Module installs the global tracer provider and flushes it on stop.
var Module = fx.Options(
	fx.Provide(newProvider),
	fx.Invoke(registerLifecycle),
)

type providerParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
}

func newProvider(p providerParams) (*sdktrace.TracerProvider, error) {
	tp, err := NewTracerProvider(p.Ctx, p.Config.Tracing)
	if err != nil {
		return nil, err
	}
	Install(tp)
	return tp, nil
}

func registerLifecycle(lc fx.Lifecycle, tp *sdktrace.TracerProvider, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := tp.Shutdown(ctx); err != nil {
				logger.Error("tracer provider shutdown failed", slog.String("error", err.Error()))
				return err
			}
			return nil
		},
	})
}
