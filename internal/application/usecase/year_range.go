package usecase

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bychkov/AzureCosts/internal/domain/entity"
	"github.com/bychkov/AzureCosts/internal/shared/types"
)

const (
	minReportYear = 2000
	maxReportYear = 2100
)

// YearPlan é o resultado da resolução do intervalo de anos: os inícios de mês
// (UTC, ascendentes) que o relatório deve cobrir e o rótulo do período efetivo.
// Months vazio significa término limpo, não erro; FullyFuture distingue um
// intervalo inteiramente no futuro de um que não rendeu nenhum mês.
type YearPlan struct {
	Range       entity.YearRange
	Months      []time.Time
	Label       string
	FullyFuture bool
}

// ResolveYearRange interpreta "YYYY" ou "YYYY:YYYY" (espaços em volta de ":"
// tolerados) e enumera os meses não-futuros do intervalo, incluindo o mês
// corrente parcial e nunca nada além dele.
func ResolveYearRange(expr string, nowUTC time.Time) (YearPlan, error) {
	yr, err := parseYearRange(expr)
	if err != nil {
		return YearPlan{}, err
	}

	now := nowUTC.UTC()
	currentMonthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	// Intervalo inteiramente no futuro: saída limpa, sem meses.
	if yr.Start > now.Year() {
		return YearPlan{
			Range:       yr,
			Label:       fmt.Sprintf("%s (entirely in the future)", yr),
			FullyFuture: true,
		}, nil
	}

	effectiveEnd := yr.End
	if effectiveEnd > now.Year() {
		effectiveEnd = now.Year()
	}

	var months []time.Time
	for year := yr.Start; year <= effectiveEnd; year++ {
		for month := time.January; month <= time.December; month++ {
			start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
			if start.After(currentMonthStart) {
				break
			}
			months = append(months, start)
		}
	}

	plan := YearPlan{Range: yr, Months: months}
	if len(months) == 0 {
		plan.Label = fmt.Sprintf("%s (no reportable months)", yr)
		return plan, nil
	}

	last := months[len(months)-1]
	plan.Label = fmt.Sprintf("%s (through %s)", yr, entity.MonthKeyOf(last))
	return plan, nil
}

// parseYearRange valida a expressão e os limites [2000, 2100].
func parseYearRange(expr string) (entity.YearRange, error) {
	var startStr, endStr string

	parts := strings.Split(expr, ":")
	switch len(parts) {
	case 1:
		startStr = strings.TrimSpace(parts[0])
		endStr = startStr
	case 2:
		startStr = strings.TrimSpace(parts[0])
		endStr = strings.TrimSpace(parts[1])
	default:
		return entity.YearRange{}, types.ErrInvalidRangeFormat
	}

	start, err := parseYear(startStr)
	if err != nil {
		return entity.YearRange{}, err
	}
	end, err := parseYear(endStr)
	if err != nil {
		return entity.YearRange{}, err
	}

	if start < minReportYear || start > maxReportYear || end < minReportYear || end > maxReportYear {
		return entity.YearRange{}, fmt.Errorf("%w: %s", types.ErrRangeOutOfBounds, expr)
	}
	if start > end {
		return entity.YearRange{}, fmt.Errorf("%w: %s", types.ErrRangeInverted, expr)
	}

	return entity.YearRange{Start: start, End: end}, nil
}

func parseYear(s string) (int, error) {
	if len(s) != 4 {
		return 0, fmt.Errorf("%w: %q", types.ErrInvalidRangeFormat, s)
	}
	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", types.ErrInvalidRangeFormat, s)
	}
	return year, nil
}
