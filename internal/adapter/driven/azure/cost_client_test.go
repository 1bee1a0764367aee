package azure

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"

	"github.com/bychkov/AzureCosts/internal/shared/types"
)

// staticCredential entrega sempre o mesmo token, sem rede.
type staticCredential struct {
	token string
}

func (c staticCredential) GetToken(ctx context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{Token: c.token, ExpiresOn: time.Now().Add(time.Hour)}, nil
}

// newTestRepository aponta o repositório para o servidor de teste e registra
// as esperas pedidas pela política de retry.
func newTestRepository(server *httptest.Server) (*AzureRepositoryImpl, *[]time.Duration) {
	var slept []time.Duration
	repo := &AzureRepositoryImpl{
		baseURL:    server.URL,
		httpClient: server.Client(),
		credential: staticCredential{token: "test-token"},
		sleep:      func(d time.Duration) { slept = append(slept, d) },
	}
	return repo, &slept
}

func costResponseBody() string {
	return `{
		"properties": {
			"columns": [
				{"name": "PreTaxCost", "type": "Number"},
				{"name": "UsageDate", "type": "Number"},
				{"name": "Currency", "type": "String"}
			],
			"rows": [[12.34, 20240115, "USD"]]
		}
	}`
}

func TestQueryCostYear_Success(t *testing.T) {
	var gotPayload costQueryPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-token" {
			t.Errorf("unexpected authorization header: %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(costResponseBody()))
	}))
	defer server.Close()

	repo, slept := newTestRepository(server)
	from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.December, 31, 23, 59, 59, 0, time.UTC)

	totals, err := repo.QueryCostYear(context.Background(), "sub-1", from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := totals["2024-01"].Cost.StringFixed(2); got != "12.34" {
		t.Errorf("unexpected total: %s", got)
	}
	if len(*slept) != 0 {
		t.Errorf("no sleeps expected on first-attempt success, got %v", *slept)
	}

	if gotPayload.Type != "ActualCost" || gotPayload.Timeframe != "Custom" {
		t.Errorf("unexpected payload: %+v", gotPayload)
	}
	if gotPayload.Dataset.Granularity != "Daily" {
		t.Errorf("unexpected granularity: %q", gotPayload.Dataset.Granularity)
	}
	if gotPayload.TimePeriod.From != "2024-01-01T00:00:00Z" {
		t.Errorf("unexpected time period start: %q", gotPayload.TimePeriod.From)
	}
}

func TestQueryCostYear_RecoversFromThrottling(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error": {"code": "429", "message": "Too many requests. Please retry."}}`))
			return
		}
		w.Write([]byte(costResponseBody()))
	}))
	defer server.Close()

	repo, slept := newTestRepository(server)
	totals, err := repo.QueryCostYear(context.Background(), "sub-1", time.Now().UTC(), time.Now().UTC())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
	if len(*slept) != 2 || (*slept)[0] != 10*time.Second || (*slept)[1] != 10*time.Second {
		t.Errorf("throttling waits a fixed 10s per retry, got %v", *slept)
	}
	if len(totals) != 1 {
		t.Errorf("expected the final response to be normalized, got %v", totals)
	}
}

func TestQueryCostYear_ServerErrorsExhaustAttempts(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error": {"code": "ServiceUnavailable", "message": "try again later"}}`))
	}))
	defer server.Close()

	repo, slept := newTestRepository(server)
	_, err := repo.QueryCostYear(context.Background(), "sub-1", time.Now().UTC(), time.Now().UTC())

	var apiErr *types.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusServiceUnavailable {
		t.Fatalf("expected the final APIError to propagate, got %v", err)
	}
	if attempts != 6 {
		t.Errorf("expected 6 attempts, got %d", attempts)
	}
	want := []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second, 32 * time.Second}
	if len(*slept) != len(want) {
		t.Fatalf("expected %d sleeps, got %v", len(want), *slept)
	}
	for i, d := range want {
		if (*slept)[i] != d {
			t.Errorf("sleep %d = %v, want %v", i, (*slept)[i], d)
		}
	}
}

func TestQueryCostYear_BadRequestIsImmediate(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"code": "BadRequest", "message": "Invalid query definition"}}`))
	}))
	defer server.Close()

	repo, slept := newTestRepository(server)
	_, err := repo.QueryCostYear(context.Background(), "sub-1", time.Now().UTC(), time.Now().UTC())

	var apiErr *types.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected an APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Code != "BadRequest" {
		t.Errorf("unexpected APIError: %+v", apiErr)
	}
	if attempts != 1 {
		t.Errorf("client errors must not be retried, got %d attempts", attempts)
	}
	if len(*slept) != 0 {
		t.Errorf("no sleeps expected, got %v", *slept)
	}
}

func TestQueryCostYear_MalformedResponseNotRetried(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		// Resposta 200 sem as colunas esperadas.
		w.Write([]byte(`{"properties": {"columns": [{"name": "Unrelated", "type": "String"}], "rows": []}}`))
	}))
	defer server.Close()

	repo, _ := newTestRepository(server)
	_, err := repo.QueryCostYear(context.Background(), "sub-1", time.Now().UTC(), time.Now().UTC())
	if !errors.Is(err, types.ErrMissingColumns) {
		t.Fatalf("expected ErrMissingColumns, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("normalization failures are permanent, got %d attempts", attempts)
	}
}
