package postgres

import (
	"context"
	"log/slog"

	"github.com/HannahHaeusler/labor/internal/config"
)

// Open connects to the database configured in cfg.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Storage, error) {
	return New(ctx, cfg.DatabaseURI, cfg.DatabaseMaxConn, logger)
}
