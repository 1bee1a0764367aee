package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bychkov/AzureCosts/internal/domain/entity"
	"github.com/bychkov/AzureCosts/internal/domain/repository"
	"github.com/bychkov/AzureCosts/internal/shared/types"
)

// interYearPause é a pausa fixa entre consultas de anos consecutivos, para não
// pressionar o limite de QPU da API de Cost Management.
const interYearPause = 3 * time.Second

// CostReportUseCase handles the monthly cost report functionality.
type CostReportUseCase struct {
	azureRepo  repository.AzureRepository
	exportRepo repository.ExportRepository
	configRepo repository.ConfigRepository
	console    types.ConsoleInterface

	// pause é injetável para os testes não dormirem de verdade.
	pause func(time.Duration)
	now   func() time.Time
}

// NewCostReportUseCase creates a new cost report use case.
func NewCostReportUseCase(
	azureRepo repository.AzureRepository,
	exportRepo repository.ExportRepository,
	configRepo repository.ConfigRepository,
	console types.ConsoleInterface,
) *CostReportUseCase {
	return &CostReportUseCase{
		azureRepo:  azureRepo,
		exportRepo: exportRepo,
		configRepo: configRepo,
		console:    console,
		pause:      time.Sleep,
		now:        time.Now,
	}
}

// RunReport executa a funcionalidade principal: resolve o intervalo de anos,
// fixa o escopo, consulta os custos ano a ano e apresenta/exporta o relatório.
func (uc *CostReportUseCase) RunReport(ctx context.Context, args *types.CLIArgs) error {
	if args.ConfigFile != "" {
		if err := uc.applyConfigFile(args); err != nil {
			return err
		}
	}

	// Padrões resolvidos só depois da fusão com o arquivo de configuração,
	// para que valores do arquivo não sejam mascarados pelos padrões das flags.
	if args.Years == "" {
		args.Years = fmt.Sprintf("%d", uc.now().UTC().Year())
	}
	if args.Sort == "" {
		args.Sort = types.SortAscending
	}
	if args.Sort != types.SortAscending && args.Sort != types.SortDescending {
		return fmt.Errorf("invalid sort order %q, expected asc or desc", args.Sort)
	}
	if len(args.ReportType) == 0 {
		args.ReportType = []string{"csv"}
	}

	plan, err := ResolveYearRange(args.Years, uc.now().UTC())
	if err != nil {
		return err
	}

	// Intervalos que não rendem nenhum mês são término limpo, não erro.
	if len(plan.Months) == 0 {
		if plan.FullyFuture {
			uc.console.LogInfo("The requested range %s is entirely in the future. Nothing to report.", plan.Range)
		} else {
			uc.console.LogInfo("The requested range %s contains no reportable months.", plan.Range)
		}
		return nil
	}

	principal, err := uc.resolvePrincipal(ctx, args)
	if err != nil {
		return err
	}

	authz := NewAuthorizationResolver(uc.azureRepo, uc.console)
	selector := NewScopeSelector(uc.azureRepo, authz, uc.console)

	var scope entity.BillingScope
	if args.SubscriptionID != "" {
		scope, err = selector.ResolveDirect(ctx, args.SubscriptionID, principal)
	} else {
		scope, err = selector.ResolveInteractive(ctx, principal)
	}
	if err != nil {
		return err
	}

	status := uc.console.Status(fmt.Sprintf("Querying costs for %s, period %s...", scope.DisplayName, plan.Label))
	rows, total, err := uc.BuildReport(ctx, scope, plan.Months, args.Sort, status)
	status.Stop()
	if err != nil {
		return err
	}

	// Total exatamente zero: resultado "sem atividade", sem tabela.
	if total.IsZero() {
		uc.console.LogInfo("No billing activity for %s in %s.", scope.DisplayName, plan.Label)
		return nil
	}

	uc.renderTable(scope, plan.Label, rows, total, args.ShowCurrency)
	uc.exportReport(rows, scope, plan.Label, args)

	return nil
}

// resolvePrincipal obtém o principal ativo, forçando novo sign-in se pedido.
func (uc *CostReportUseCase) resolvePrincipal(ctx context.Context, args *types.CLIArgs) (entity.Principal, error) {
	if args.Reauthenticate {
		principal, err := uc.azureRepo.SignIn(ctx, false)
		if err != nil {
			return entity.Principal{}, fmt.Errorf("interactive sign-in failed: %w", err)
		}
		return principal, nil
	}

	principal, err := uc.azureRepo.GetActivePrincipal(ctx)
	if err != nil {
		uc.console.LogWarning("No active session found, signing in...")
		principal, err = uc.azureRepo.SignIn(ctx, false)
		if err != nil {
			return entity.Principal{}, fmt.Errorf("interactive sign-in failed: %w", err)
		}
	}
	return principal, nil
}

// BuildReport agrupa os meses por ano, emite uma consulta por ano (ascendente,
// com a pausa fixa entre anos, nunca após o último) e funde os resultados em
// uma linha por mês solicitado. Meses sem atividade aparecem com custo zero em
// vez de serem omitidos. Retorna também o total acumulado do período.
func (uc *CostReportUseCase) BuildReport(
	ctx context.Context,
	scope entity.BillingScope,
	months []time.Time,
	order types.SortOrder,
	status types.StatusHandle,
) ([]entity.ReportRow, decimal.Decimal, error) {
	byYear := make(map[int][]time.Time)
	var years []int
	for _, m := range months {
		if _, seen := byYear[m.Year()]; !seen {
			years = append(years, m.Year())
		}
		byYear[m.Year()] = append(byYear[m.Year()], m)
	}
	sort.Ints(years)

	// Anos distintos produzem chaves de mês disjuntas, então a fusão é uma
	// união simples.
	totals := make(map[string]entity.MonthTotal)
	for i, year := range years {
		if i > 0 {
			uc.pause(interYearPause)
		}
		if status != nil {
			status.Update(fmt.Sprintf("Querying costs for %s, year %d...", scope.DisplayName, year))
		}

		yearMonths := byYear[year]
		from := yearMonths[0]
		to := endOfMonth(yearMonths[len(yearMonths)-1])

		yearTotals, err := uc.azureRepo.QueryCostYear(ctx, scope.ID, from, to)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("cost query for year %d failed: %w", year, err)
		}
		for key, total := range yearTotals {
			totals[key] = total
		}
	}

	rows := make([]entity.ReportRow, 0, len(months))
	total := decimal.Zero
	for _, m := range months {
		key := entity.MonthKeyOf(m)
		row := entity.ReportRow{Month: key, Cost: decimal.Zero}
		if mt, ok := totals[key]; ok {
			row.Cost = mt.Cost
			row.Currency = mt.CurrencyList()
		}
		total = total.Add(row.Cost)
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if order == types.SortDescending {
			return rows[i].Month > rows[j].Month
		}
		return rows[i].Month < rows[j].Month
	})

	return rows, total, nil
}

// renderTable monta e imprime a tabela final do relatório.
func (uc *CostReportUseCase) renderTable(scope entity.BillingScope, periodLabel string, rows []entity.ReportRow, total decimal.Decimal, showCurrency bool) {
	uc.console.Printf("\nSubscription: %s\nPeriod: %s\n\n", scope.DisplayName, periodLabel)

	table := uc.console.CreateTable()
	table.AddColumn("Month")
	table.AddColumn("Cost")
	if showCurrency {
		table.AddColumn("Currency")
	}

	for _, row := range rows {
		if showCurrency {
			table.AddRow(row.Month, row.Cost.StringFixed(2), row.Currency)
		} else {
			table.AddRow(row.Month, row.Cost.StringFixed(2))
		}
	}
	if showCurrency {
		table.AddRow("Total", total.StringFixed(2), "")
	} else {
		table.AddRow("Total", total.StringFixed(2))
	}

	uc.console.Print(table.Render())
}

// exportReport grava os relatórios solicitados e copia para a área de
// transferência quando pedido. Falhas de exportação são avisos, não abortam.
func (uc *CostReportUseCase) exportReport(rows []entity.ReportRow, scope entity.BillingScope, periodLabel string, args *types.CLIArgs) {
	if args.Clipboard {
		if err := uc.exportRepo.CopyToClipboard(rows, args.ShowCurrency); err != nil {
			uc.console.LogError("Failed to copy report to clipboard: %s", err)
		} else {
			uc.console.LogSuccess("Report copied to clipboard")
		}
	}

	if args.ReportName == "" {
		return
	}
	for _, reportType := range args.ReportType {
		switch reportType {
		case "csv":
			path, err := uc.exportRepo.ExportToCSV(rows, args.ShowCurrency, args.ReportName, args.Dir)
			if err != nil {
				uc.console.LogError("Failed to export to CSV: %s", err)
			} else {
				uc.console.LogSuccess("Successfully exported to CSV: %s", path)
			}
		case "json":
			path, err := uc.exportRepo.ExportToJSON(rows, args.ReportName, args.Dir)
			if err != nil {
				uc.console.LogError("Failed to export to JSON: %s", err)
			} else {
				uc.console.LogSuccess("Successfully exported to JSON: %s", path)
			}
		case "pdf":
			path, err := uc.exportRepo.ExportToPDF(rows, args.ShowCurrency, scope.DisplayName, periodLabel, args.ReportName, args.Dir)
			if err != nil {
				uc.console.LogError("Failed to export to PDF: %s", err)
			} else {
				uc.console.LogSuccess("Successfully exported to PDF: %s", path)
			}
		default:
			uc.console.LogWarning("Unknown report type: %s", reportType)
		}
	}
}

// applyConfigFile preenche argumentos não informados com os valores do arquivo.
func (uc *CostReportUseCase) applyConfigFile(args *types.CLIArgs) error {
	cfg, err := uc.configRepo.LoadConfigFile(args.ConfigFile)
	if err != nil {
		return err
	}

	if args.Years == "" && cfg.Years != "" {
		args.Years = cfg.Years
	}
	if cfg.Sort != "" && args.Sort == "" {
		args.Sort = types.SortOrder(cfg.Sort)
	}
	if args.SubscriptionID == "" {
		args.SubscriptionID = cfg.SubscriptionID
	}
	if cfg.ShowCurrency {
		args.ShowCurrency = true
	}
	if args.ReportName == "" {
		args.ReportName = cfg.ReportName
	}
	if len(args.ReportType) == 0 && len(cfg.ReportType) > 0 {
		args.ReportType = cfg.ReportType
	}
	if args.Dir == "" && cfg.Dir != "" {
		args.Dir = cfg.Dir
	}
	return nil
}

// endOfMonth retorna o último instante (UTC) do mês de t.
func endOfMonth(t time.Time) time.Time {
	firstOfNext := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return firstOfNext.Add(-time.Second)
}
