package di

import (
	"go.uber.org/fx"

	"github.com/HannahHaeusler/labor/internal/adapter/dok"
	"github.com/HannahHaeusler/labor/internal/app"
	"github.com/HannahHaeusler/labor/internal/config"
	"github.com/HannahHaeusler/labor/internal/logger"
	"github.com/HannahHaeusler/labor/internal/metrics"
	"github.com/HannahHaeusler/labor/internal/server/http/handlers"
	"github.com/HannahHaeusler/labor/internal/server/http/router"
	"github.com/HannahHaeusler/labor/internal/storage"
	"github.com/HannahHaeusler/labor/internal/telemetry"
	"github.com/HannahHaeusler/labor/internal/usecase"
)

// Module assembles the full application graph. opts are appended last so tests can
// replace any provided value.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		metrics.Module,
		telemetry.Module,
		storage.Module,
		dok.Module,
		fx.Provide(func(client dok.Client) usecase.OwnerProvider { return client }),
		fx.Provide(func(store storage.Store) app.HealthChecker { return store }),
		usecase.Module,
		fx.Provide(func(f *app.LaborFacade) handlers.LaborFacade { return f }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
