package dok

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/HannahHaeusler/labor/internal/config"
	"github.com/HannahHaeusler/labor/internal/metrics"
)

// Module exposes the owner client to the fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

func newClient(p clientParams) (Client, error) {
	httpClient, err := NewHTTPClient(p.Config.Dok, p.Logger)
	if err != nil {
		return nil, err
	}
	return NewObservableClient(httpClient, p.Metrics), nil
}
