package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bychkov/AzureCosts/internal/domain/entity"
)

const costQueryAPIVersion = "2023-03-01"

// costQueryPayload é o corpo da consulta de custo real com granularidade
// diária e soma do PreTaxCost.
type costQueryPayload struct {
	Type       string           `json:"type"`
	Timeframe  string           `json:"timeframe"`
	TimePeriod costQueryPeriod  `json:"timePeriod"`
	Dataset    costQueryDataset `json:"dataset"`
}

type costQueryPeriod struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type costQueryDataset struct {
	Granularity string                          `json:"granularity"`
	Aggregation map[string]costQueryAggregation `json:"aggregation"`
}

type costQueryAggregation struct {
	Name     string `json:"name"`
	Function string `json:"function"`
}

// QueryCostYear consulta os custos de um ano civil (ou ano parcial, limitado
// ao fim do mês corrente) e devolve os totais mensais normalizados. Entregas
// são tentadas até 6 vezes conforme a política de retry: 429 espera 10s fixos,
// 5xx faz backoff exponencial limitado a 60s, qualquer outra falha propaga na
// hora. Erros de normalização são definitivos e nunca re-tentados.
func (r *AzureRepositoryImpl) QueryCostYear(ctx context.Context, scopeID string, from, to time.Time) (map[string]entity.MonthTotal, error) {
	payload := costQueryPayload{
		Type:      "ActualCost",
		Timeframe: "Custom",
		TimePeriod: costQueryPeriod{
			From: from.UTC().Format(time.RFC3339),
			To:   to.UTC().Format(time.RFC3339),
		},
		Dataset: costQueryDataset{
			Granularity: "Daily",
			Aggregation: map[string]costQueryAggregation{
				"totalCost": {Name: "PreTaxCost", Function: "Sum"},
			},
		},
	}

	endpoint := fmt.Sprintf("%s/subscriptions/%s/providers/Microsoft.CostManagement/query?api-version=%s",
		r.baseURL, url.PathEscape(scopeID), costQueryAPIVersion)

	policy := retryPolicy{
		MaxAttempts: queryMaxAttempts,
		Classify:    classifyQueryFailure,
		Delay:       queryDelay,
	}

	var totals map[string]entity.MonthTotal
	err := withRetry(policy, r.sleep, func() error {
		resp, err := r.postCostQuery(ctx, endpoint, payload)
		if err != nil {
			return err
		}
		totals, err = normalizeQueryResponse(resp)
		return err
	})
	if err != nil {
		return nil, err
	}
	return totals, nil
}

// postCostQuery entrega uma única tentativa da consulta. O corpo é remontado
// a cada tentativa.
func (r *AzureRepositoryImpl) postCostQuery(ctx context.Context, endpoint string, payload costQueryPayload) (*costQueryResponse, error) {
	token, err := r.armToken(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cost query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseAPIError(resp.StatusCode, data)
	}

	// json.Number preserva os custos exatos até a conversão para decimal.
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var out costQueryResponse
	if err := decoder.Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode cost query response: %w", err)
	}
	return &out, nil
}
