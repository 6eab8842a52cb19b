package dok

import (
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/HannahHaeusler/labor/internal/config"
	"github.com/HannahHaeusler/labor/internal/metrics"
)

func TestNewClientUsesConfig(t *testing.T) {
	cfg := &config.Config{Dok: config.DokConfig{Scheme: "http", Host: "dok", Port: "8080"}}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	client, err := newClient(clientParams{Config: cfg, Logger: logger, Metrics: metrics.New(prometheus.NewRegistry())})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := client.(*ObservableClient); !ok {
		t.Fatalf("expected observable decorator, got %T", client)
	}
}

func TestNewClientRejectsMissingHost(t *testing.T) {
	cfg := &config.Config{Dok: config.DokConfig{Scheme: "http", Port: "8080"}}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	if _, err := newClient(clientParams{Config: cfg, Logger: logger, Metrics: metrics.New(prometheus.NewRegistry())}); err == nil {
		t.Fatal("expected error for missing host")
	}
}
