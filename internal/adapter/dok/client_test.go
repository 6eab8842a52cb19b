package dok

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/HannahHaeusler/labor/internal/config"
	domainErrors "github.com/HannahHaeusler/labor/internal/domain/errors"
	"github.com/HannahHaeusler/labor/internal/domain/model"
	"github.com/HannahHaeusler/labor/internal/metrics"
	"github.com/HannahHaeusler/labor/internal/telemetry"
	"github.com/HannahHaeusler/labor/internal/test"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// configFor points a DokConfig at an httptest server.
func configFor(t *testing.T, srv *httptest.Server) config.DokConfig {
	t.Helper()
	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	host, port, err := net.SplitHostPort(u.Host)
	if err != nil {
		t.Fatalf("split host: %v", err)
	}
	return config.DokConfig{
		Scheme:   u.Scheme,
		Host:     host,
		Port:     port,
		Username: "admin",
		Password: "p",
		Timeout:  time.Second,
	}
}

func TestNewHTTPClientValidatesURL(t *testing.T) {
	if _, err := NewHTTPClient(config.DokConfig{Scheme: "http", Host: "", Port: ""}, testLogger()); err == nil {
		t.Fatal("expected error for missing host")
	}
	if _, err := NewHTTPClient(config.DokConfig{Scheme: "ht tp", Host: "dok", Port: "8080"}, testLogger()); err == nil {
		t.Fatal("expected error for invalid scheme")
	}
	client, err := NewHTTPClient(config.DokConfig{Scheme: "http", Host: "dok", Port: "8080"}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.baseURL.String() != "http://dok:8080" {
		t.Fatalf("unexpected base url %s", client.baseURL)
	}
}

func TestFetchOwnerSuccess(t *testing.T) {
	var gotPath, gotUser, gotPassword, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPassword, _ = r.BasicAuth()
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"00000000-0000-0000-0000-000000000001","lastName":"Alpha","email":"ignored@example.com"}`)
	}))
	defer srv.Close()

	client, err := NewHTTPClient(configFor(t, srv), testLogger())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	owner, err := client.FetchOwner(context.Background(), "00000000-0000-0000-0000-000000000001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if owner.LastName != "Alpha" {
		t.Fatalf("expected last name Alpha, got %q", owner.LastName)
	}
	if gotPath != "/api/00000000-0000-0000-0000-000000000001" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotUser != "admin" || gotPassword != "p" {
		t.Fatalf("unexpected basic auth %q/%q", gotUser, gotPassword)
	}
	if gotAccept != "application/json" {
		t.Fatalf("unexpected accept header %q", gotAccept)
	}
}

func TestFetchOwnerFillsMissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"lastName":"Beta"}`)
	}))
	defer srv.Close()

	client, err := NewHTTPClient(configFor(t, srv), testLogger())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	owner, err := client.FetchOwner(context.Background(), "b-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if owner.ID != "b-1" {
		t.Fatalf("expected requested id, got %q", owner.ID)
	}
}

func TestFetchOwnerFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{name: "not found", handler: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}, wantErr: domainErrors.ErrOwnerNotFound},
		{name: "server error", handler: func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}, wantErr: domainErrors.ErrDependencyUnavailable},
		{name: "unauthorized", handler: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}, wantErr: domainErrors.ErrDependencyUnavailable},
		{name: "malformed body", handler: func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"lastName":`)
		}, wantErr: domainErrors.ErrDependencyUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client, err := NewHTTPClient(configFor(t, srv), testLogger())
			if err != nil {
				t.Fatalf("failed to create client: %v", err)
			}

			_, err = client.FetchOwner(context.Background(), "1")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestFetchOwnerNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	cfg := configFor(t, srv)
	srv.Close()

	client, err := NewHTTPClient(cfg, testLogger())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	_, err = client.FetchOwner(context.Background(), "1")
	if !errors.Is(err, domainErrors.ErrDependencyUnavailable) {
		t.Fatalf("expected dependency unavailable, got %v", err)
	}
	if errors.Is(err, domainErrors.ErrOwnerNotFound) {
		t.Fatal("network failure must not look like a missing owner")
	}
}

func TestFetchOwnerTimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg := configFor(t, srv)
	cfg.Timeout = 50 * time.Millisecond
	client, err := NewHTTPClient(cfg, testLogger())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	start := time.Now()
	_, err = client.FetchOwner(context.Background(), "1")
	if !errors.Is(err, domainErrors.ErrDependencyUnavailable) {
		t.Fatalf("expected dependency unavailable, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("timeout not applied, took %v", elapsed)
	}
}

type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return nil
}
func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func TestFetchOwnerLeavesFailureReportingToCaller(t *testing.T) {
	handler := &recordingHandler{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/missing":
			w.WriteHeader(http.StatusNotFound)
		default:
			http.Error(w, "boom", http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	client, err := NewHTTPClient(configFor(t, srv), slog.New(handler))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	if _, err := client.FetchOwner(context.Background(), "123"); !errors.Is(err, domainErrors.ErrDependencyUnavailable) {
		t.Fatalf("expected dependency unavailable, got %v", err)
	}
	if _, err := client.FetchOwner(context.Background(), "missing"); !errors.Is(err, domainErrors.ErrOwnerNotFound) {
		t.Fatalf("expected owner not found, got %v", err)
	}

	handler.mu.Lock()
	defer handler.mu.Unlock()
	var sawRejection bool
	for _, rec := range handler.records {
		if rec.Level > slog.LevelDebug {
			t.Fatalf("client must not log failures above debug, got %v %q", rec.Level, rec.Message)
		}
		if rec.Message == "owner request rejected" {
			sawRejection = true
		}
	}
	if !sawRejection {
		t.Fatal("expected debug record with the rejected response")
	}
}

func TestFetchOwnerPropagatesTraceContext(t *testing.T) {
	recorder := test.InstallTracing(t)

	headers := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Get("traceparent")
		_, _ = io.WriteString(w, `{"id":"o-1","lastName":"Alpha"}`)
	}))
	defer srv.Close()

	httpClient, err := NewHTTPClient(configFor(t, srv), testLogger())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	client := NewObservableClient(httpClient, metrics.New(prometheus.NewRegistry()))

	ctx, parent := telemetry.StartSpan(context.Background(), "GET /api")
	if _, err := client.FetchOwner(ctx, "o-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	parent.End()

	var traceparent string
	select {
	case traceparent = <-headers:
	case <-time.After(time.Second):
		t.Fatal("owner service was not called")
	}

	var lookup sdktrace.ReadOnlySpan
	for _, span := range recorder.Ended() {
		if span.Name() == "dok.FetchOwner" {
			lookup = span
		}
	}
	if lookup == nil {
		t.Fatal("expected dok.FetchOwner span")
	}
	if lookup.SpanKind() != trace.SpanKindClient {
		t.Fatalf("expected client span, got %v", lookup.SpanKind())
	}
	if lookup.Parent().SpanID() != parent.SpanContext().SpanID() {
		t.Fatalf("expected lookup span to be a child of the request span")
	}

	want := "00-" + parent.SpanContext().TraceID().String() + "-" + lookup.SpanContext().SpanID().String() + "-01"
	if traceparent != want {
		t.Fatalf("expected traceparent %q, got %q", want, traceparent)
	}
}

type countingClient struct {
	calls atomic.Int32
	err   error
}

func (c *countingClient) FetchOwner(_ context.Context, ownerID string) (*model.Owner, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return &model.Owner{ID: ownerID, LastName: "Name-" + ownerID}, nil
}

func TestObservableClientForwardsEveryCall(t *testing.T) {
	next := &countingClient{}
	m := metrics.New(prometheus.NewRegistry())
	client := NewObservableClient(next, m)

	for i := 0; i < 3; i++ {
		owner, err := client.FetchOwner(context.Background(), "same")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if owner.LastName != "Name-same" {
			t.Fatalf("unexpected owner %+v", owner)
		}
	}
	if got := next.calls.Load(); got != 3 {
		t.Fatalf("expected 3 forwarded calls, got %d", got)
	}
}

func TestObservableClientPropagatesErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	client := NewObservableClient(&countingClient{err: domainErrors.ErrOwnerNotFound}, m)

	if _, err := client.FetchOwner(context.Background(), "x"); !errors.Is(err, domainErrors.ErrOwnerNotFound) {
		t.Fatalf("expected owner not found, got %v", err)
	}

	if got := testutil.CollectAndCount(reg, "labor_owner_lookups_total"); got != 1 {
		t.Fatalf("expected one lookup series, got %d", got)
	}
}

func TestOutcomeOf(t *testing.T) {
	cases := map[string]error{
		metrics.OutcomeSuccess:     nil,
		metrics.OutcomeNotFound:    domainErrors.ErrOwnerNotFound,
		metrics.OutcomeUnavailable: errors.New("dial tcp: refused"),
	}
	for want, err := range cases {
		if got := outcomeOf(err); got != want {
			t.Fatalf("expected %s for %v, got %s", want, err, got)
		}
	}
}
