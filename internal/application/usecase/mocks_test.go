package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/bychkov/AzureCosts/internal/domain/entity"
	"github.com/bychkov/AzureCosts/internal/shared/types"
)

// mockAzureRepository implementa o AzureRepository com funções injetáveis.
type mockAzureRepository struct {
	getActivePrincipalFn       func(ctx context.Context) (entity.Principal, error)
	signInFn                   func(ctx context.Context, expandedScope bool) (entity.Principal, error)
	listBillingScopesFn        func(ctx context.Context) ([]entity.BillingScope, error)
	getBillingScopeFn          func(ctx context.Context, scopeID string) (entity.BillingScope, error)
	listOwnerRoleAssignmentsFn func(ctx context.Context, scopeID string, principal entity.Principal) ([]entity.RoleAssignment, error)
	queryCostYearFn            func(ctx context.Context, scopeID string, from, to time.Time) (map[string]entity.MonthTotal, error)

	signInCalls []bool
	queryCalls  []queryCall
}

type queryCall struct {
	scopeID string
	from    time.Time
	to      time.Time
}

func (m *mockAzureRepository) GetActivePrincipal(ctx context.Context) (entity.Principal, error) {
	if m.getActivePrincipalFn != nil {
		return m.getActivePrincipalFn(ctx)
	}
	return entity.Principal{ID: "default-oid", Kind: entity.PrincipalUser}, nil
}

func (m *mockAzureRepository) SignIn(ctx context.Context, expandedScope bool) (entity.Principal, error) {
	m.signInCalls = append(m.signInCalls, expandedScope)
	if m.signInFn != nil {
		return m.signInFn(ctx, expandedScope)
	}
	return entity.Principal{ID: "signed-in-oid", Kind: entity.PrincipalUser}, nil
}

func (m *mockAzureRepository) ListBillingScopes(ctx context.Context) ([]entity.BillingScope, error) {
	if m.listBillingScopesFn != nil {
		return m.listBillingScopesFn(ctx)
	}
	return nil, nil
}

func (m *mockAzureRepository) GetBillingScope(ctx context.Context, scopeID string) (entity.BillingScope, error) {
	if m.getBillingScopeFn != nil {
		return m.getBillingScopeFn(ctx, scopeID)
	}
	return entity.BillingScope{}, fmt.Errorf("not configured")
}

func (m *mockAzureRepository) ListOwnerRoleAssignments(ctx context.Context, scopeID string, principal entity.Principal) ([]entity.RoleAssignment, error) {
	if m.listOwnerRoleAssignmentsFn != nil {
		return m.listOwnerRoleAssignmentsFn(ctx, scopeID, principal)
	}
	return nil, nil
}

func (m *mockAzureRepository) QueryCostYear(ctx context.Context, scopeID string, from, to time.Time) (map[string]entity.MonthTotal, error) {
	m.queryCalls = append(m.queryCalls, queryCall{scopeID: scopeID, from: from, to: to})
	if m.queryCostYearFn != nil {
		return m.queryCostYearFn(ctx, scopeID, from, to)
	}
	return nil, nil
}

// mockConsole registra as mensagens emitidas e responde Select com um índice fixo.
type mockConsole struct {
	infos     []string
	warnings  []string
	errors    []string
	successes []string

	selectIndex int
	selectCalls [][]string
}

func (c *mockConsole) Print(a ...interface{})                 {}
func (c *mockConsole) Printf(format string, a ...interface{}) {}
func (c *mockConsole) Println(a ...interface{})               {}

func (c *mockConsole) LogInfo(format string, a ...interface{}) {
	c.infos = append(c.infos, fmt.Sprintf(format, a...))
}

func (c *mockConsole) LogWarning(format string, a ...interface{}) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, a...))
}

func (c *mockConsole) LogError(format string, a ...interface{}) {
	c.errors = append(c.errors, fmt.Sprintf(format, a...))
}

func (c *mockConsole) LogSuccess(format string, a ...interface{}) {
	c.successes = append(c.successes, fmt.Sprintf(format, a...))
}

func (c *mockConsole) Status(message string) types.StatusHandle {
	return &mockStatus{}
}

func (c *mockConsole) CreateTable() types.TableInterface {
	return &mockTable{}
}

func (c *mockConsole) Select(label string, options []string) (int, error) {
	c.selectCalls = append(c.selectCalls, options)
	return c.selectIndex, nil
}

type mockStatus struct{}

func (s *mockStatus) Update(message string) {}
func (s *mockStatus) Stop()                 {}

type mockTable struct{}

func (t *mockTable) AddColumn(name string, options ...interface{}) {}
func (t *mockTable) AddRow(cells ...interface{})                   {}
func (t *mockTable) Render() string                                { return "" }

// mockExportRepository registra as exportações pedidas.
type mockExportRepository struct {
	csvCalls       int
	jsonCalls      int
	pdfCalls       int
	clipboardCalls int
	clipboardRows  []entity.ReportRow
	jsonRows       []entity.ReportRow
	jsonDir        string
}

func (m *mockExportRepository) ExportToCSV(rows []entity.ReportRow, showCurrency bool, filename, outputDir string) (string, error) {
	m.csvCalls++
	return "/tmp/report.csv", nil
}

func (m *mockExportRepository) ExportToJSON(rows []entity.ReportRow, filename, outputDir string) (string, error) {
	m.jsonCalls++
	m.jsonRows = rows
	m.jsonDir = outputDir
	return "/tmp/report.json", nil
}

func (m *mockExportRepository) ExportToPDF(rows []entity.ReportRow, showCurrency bool, scopeName, periodLabel, filename, outputDir string) (string, error) {
	m.pdfCalls++
	return "/tmp/report.pdf", nil
}

func (m *mockExportRepository) CopyToClipboard(rows []entity.ReportRow, showCurrency bool) error {
	m.clipboardCalls++
	m.clipboardRows = rows
	return nil
}

// mockConfigRepository devolve uma configuração fixa.
type mockConfigRepository struct {
	config *types.Config
	err    error
}

func (m *mockConfigRepository) LoadConfigFile(filePath string) (*types.Config, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.config, nil
}
