package azure

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bychkov/AzureCosts/internal/domain/entity"
	"github.com/bychkov/AzureCosts/internal/shared/types"
)

// Nomes candidatos, em ordem de preferência, para localizar as colunas lógicas
// na resposta da consulta. A comparação é sensível a maiúsculas e o primeiro
// nome encontrado vence.
var (
	costColumnCandidates = []string{"PreTaxCost", "Cost", "totalCost"}
	dateColumnCandidates = []string{"UsageDate", "BillingMonth", "UsageMonth"}
)

const currencyColumnName = "Currency"

// costQueryResponse é o corpo de sucesso da API de Cost Management.
type costQueryResponse struct {
	Properties *costQueryProperties `json:"properties"`
}

type costQueryProperties struct {
	Columns []costQueryColumn `json:"columns"`
	Rows    [][]interface{}   `json:"rows"`
}

type costQueryColumn struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// normalizeQueryResponse converte a resposta heterogênea da consulta em um
// mapa mês → total. Meses sem linhas ficam ausentes; o chamador preenche o
// zero. Qualquer linha com data inanalisável rejeita a resposta inteira.
func normalizeQueryResponse(resp *costQueryResponse) (map[string]entity.MonthTotal, error) {
	if resp == nil || resp.Properties == nil || len(resp.Properties.Columns) == 0 {
		return nil, types.ErrEmptyResponse
	}

	columns := resp.Properties.Columns
	costIdx, costOK := findColumn(columns, costColumnCandidates)
	dateIdx, dateOK := findColumn(columns, dateColumnCandidates)
	if !costOK || !dateOK {
		return nil, fmt.Errorf("%w (columns: %s)", types.ErrMissingColumns, columnNames(columns))
	}
	currencyIdx, hasCurrency := findColumn(columns, []string{currencyColumnName})

	totals := make(map[string]entity.MonthTotal)
	for _, row := range resp.Properties.Rows {
		if costIdx >= len(row) || dateIdx >= len(row) {
			continue
		}

		date, err := parseUsageDate(row[dateIdx])
		if err != nil {
			return nil, err
		}
		cost, err := parseCostValue(row[costIdx])
		if err != nil {
			return nil, err
		}

		currency := ""
		if hasCurrency && currencyIdx < len(row) {
			if s, ok := row[currencyIdx].(string); ok {
				currency = s
			}
		}

		key := entity.MonthKeyOf(date)
		total, ok := totals[key]
		if !ok {
			total = entity.NewMonthTotal()
		}
		total.Add(cost, currency)
		totals[key] = total
	}

	return totals, nil
}

// findColumn retorna o índice da primeira coluna cujo nome bate com um dos
// candidatos, respeitando a ordem dos candidatos.
func findColumn(columns []costQueryColumn, candidates []string) (int, bool) {
	for _, candidate := range candidates {
		for i, col := range columns {
			if col.Name == candidate {
				return i, true
			}
		}
	}
	return 0, false
}

func columnNames(columns []costQueryColumn) string {
	names := make([]string, len(columns))
	for i, col := range columns {
		names[i] = col.Name
	}
	return strings.Join(names, ", ")
}

// Formatos genéricos aceitos quando o valor não é 6 nem 8 dígitos.
var genericDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseUsageDate aplica a política de datas da resposta: 6 dígitos é yyyyMM
// (dia 1), 8 dígitos é yyyyMMdd, caso contrário tenta os formatos genéricos.
func parseUsageDate(value interface{}) (time.Time, error) {
	raw := rawCellString(value)

	if isDigits(raw) {
		switch len(raw) {
		case 6:
			if t, err := time.ParseInLocation("200601", raw, time.UTC); err == nil {
				return t, nil
			}
		case 8:
			if t, err := time.ParseInLocation("20060102", raw, time.UTC); err == nil {
				return t, nil
			}
		}
	}

	for _, layout := range genericDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", types.ErrUnparseableDate, raw)
}

// parseCostValue converte a célula de custo em decimal exato, sem passar por
// float64 quando o decoder preservou o número como json.Number.
func parseCostValue(value interface{}) (decimal.Decimal, error) {
	switch v := value.(type) {
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		return decimal.NewFromString(v)
	case float64:
		return decimal.NewFromFloat(v), nil
	default:
		return decimal.Zero, fmt.Errorf("invalid cost value %v (%T)", value, value)
	}
}

func rawCellString(value interface{}) string {
	switch v := value.(type) {
	case json.Number:
		return v.String()
	case string:
		return v
	default:
		return fmt.Sprint(value)
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
