package dok

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/HannahHaeusler/labor/internal/config"
	domainErrors "github.com/HannahHaeusler/labor/internal/domain/errors"
	"github.com/HannahHaeusler/labor/internal/domain/model"
	"github.com/HannahHaeusler/labor/internal/telemetry"
)

// Client resolves owners by id. Implementations must not cache results.
type Client interface {
	FetchOwner(ctx context.Context, ownerID string) (*model.Owner, error)
}

// HTTPClient implements Client via the owner service REST API.
type HTTPClient struct {
	baseURL    *url.URL
	username   string
	password   string
	httpClient *http.Client
	logger     *slog.Logger
}

// response mirrors JSON payload of the owner service.
type response struct {
	ID       string `json:"id"`
	LastName string `json:"lastName"`
}

// NewHTTPClient creates owner client from explicit configuration.
func NewHTTPClient(cfg config.DokConfig, logger *slog.Logger) (*HTTPClient, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("dok host must be provided")
	}
	parsed, err := url.Parse(cfg.BaseURL())
	if err != nil {
		return nil, fmt.Errorf("parse dok url: %w", err)
	}
	if !parsed.IsAbs() || parsed.Host == "" {
		return nil, fmt.Errorf("dok url must be absolute")
	}
	return &HTTPClient{
		baseURL:  parsed,
		username: cfg.Username,
		password: cfg.Password,
		logger:   logger,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}, nil
}

// FetchOwner performs GET /api/{ownerId}, forwarding the trace context of ctx.
// Failures are returned, not logged; callers report them.
func (c *HTTPClient) FetchOwner(ctx context.Context, ownerID string) (*model.Owner, error) {
	endpoint := c.baseURL.JoinPath("api", url.PathEscape(ownerID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", domainErrors.ErrDependencyUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	telemetry.InjectHTTP(ctx, req.Header)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domainErrors.ErrDependencyUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: read body: %w", domainErrors.ErrDependencyUnavailable, err)
		}
		var data response
		if err := json.Unmarshal(body, &data); err != nil {
			return nil, fmt.Errorf("%w: decode owner: %w", domainErrors.ErrDependencyUnavailable, err)
		}
		if data.ID == "" {
			data.ID = ownerID
		}
		c.logger.DebugContext(ctx, "owner fetched", slog.String("owner_id", ownerID), slog.Duration("latency", time.Since(start)))
		return &model.Owner{ID: data.ID, LastName: data.LastName}, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", domainErrors.ErrOwnerNotFound, ownerID)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		c.logger.DebugContext(ctx, "owner request rejected", slog.String("owner_id", ownerID), slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return nil, fmt.Errorf("%w: unexpected status %s", domainErrors.ErrDependencyUnavailable, resp.Status)
	}
}
