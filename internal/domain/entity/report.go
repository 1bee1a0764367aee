package entity

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// YearRange é o intervalo de anos solicitado pelo usuário, imutável após o parse.
// Invariante: 2000 <= Start <= End <= 2100.
type YearRange struct {
	Start int
	End   int
}

func (r YearRange) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("%d", r.Start)
	}
	return fmt.Sprintf("%d:%d", r.Start, r.End)
}

// MonthKeyOf retorna a chave canônica "YYYY-MM" do mês de t (UTC).
// A ordem lexicográfica das chaves coincide com a ordem cronológica.
func MonthKeyOf(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// MonthTotal acumula o custo exato e o conjunto de moedas observadas em um mês.
// O custo nunca passa por float: as linhas do provedor são somadas como decimais.
type MonthTotal struct {
	Cost       decimal.Decimal
	Currencies map[string]struct{}
}

// NewMonthTotal cria um acumulador zerado.
func NewMonthTotal() MonthTotal {
	return MonthTotal{
		Cost:       decimal.Zero,
		Currencies: make(map[string]struct{}),
	}
}

// Add soma o custo de uma linha e registra a moeda, quando presente.
func (m *MonthTotal) Add(cost decimal.Decimal, currency string) {
	m.Cost = m.Cost.Add(cost)
	if currency != "" {
		if m.Currencies == nil {
			m.Currencies = make(map[string]struct{})
		}
		m.Currencies[currency] = struct{}{}
	}
}

// CurrencyList retorna as moedas do mês ordenadas e separadas por vírgula.
func (m MonthTotal) CurrencyList() string {
	if len(m.Currencies) == 0 {
		return ""
	}
	codes := make([]string, 0, len(m.Currencies))
	for c := range m.Currencies {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return strings.Join(codes, ",")
}

// ReportRow é a unidade final do relatório: um mês, seu custo e as moedas vistas.
type ReportRow struct {
	Month    string          `json:"month"`
	Cost     decimal.Decimal `json:"cost"`
	Currency string          `json:"currency,omitempty"`
}
