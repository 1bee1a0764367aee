package cli

import (
	"path/filepath"
	"testing"

	"github.com/bychkov/AzureCosts/internal/shared/types"
)

func parseWithFlags(t *testing.T, flags []string) *types.CLIArgs {
	t.Helper()
	app := NewCLIApp("test")
	if err := app.rootCmd.ParseFlags(flags); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	args, err := app.parseArgs(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return args
}

func TestParseArgs_DefaultsStayUnset(t *testing.T) {
	// Sem flags, os campos fusíveis com o arquivo de configuração ficam vazios;
	// os padrões (asc, csv, diretório corrente) são resolvidos depois da fusão.
	args := parseWithFlags(t, nil)

	if args.Sort != "" {
		t.Errorf("sort must stay unset without the flag, got %q", args.Sort)
	}
	if len(args.ReportType) != 0 {
		t.Errorf("report types must stay unset without the flag, got %v", args.ReportType)
	}
	if args.Dir != "" {
		t.Errorf("dir must stay unset without the flag, got %q", args.Dir)
	}
}

func TestParseArgs_FlagsApply(t *testing.T) {
	args := parseWithFlags(t, []string{
		"--sort", "desc",
		"--report-type", "json,pdf",
		"--dir", "reports",
		"--subscription", "sub-1",
		"--currency",
	})

	if args.Sort != types.SortDescending {
		t.Errorf("sort = %q, want desc", args.Sort)
	}
	if len(args.ReportType) != 2 || args.ReportType[0] != "json" {
		t.Errorf("unexpected report types: %v", args.ReportType)
	}
	if !filepath.IsAbs(args.Dir) {
		t.Errorf("dir must be made absolute, got %q", args.Dir)
	}
	if args.SubscriptionID != "sub-1" || !args.ShowCurrency {
		t.Errorf("unexpected args: %+v", args)
	}
}

func TestParseArgs_PositionalYearRange(t *testing.T) {
	app := NewCLIApp("test")
	if err := app.rootCmd.ParseFlags(nil); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	args, err := app.parseArgs([]string{"2023:2025"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if args.Years != "2023:2025" {
		t.Errorf("positional year range not applied, got %q", args.Years)
	}
}

func TestParseArgs_InvalidSortRejected(t *testing.T) {
	app := NewCLIApp("test")
	if err := app.rootCmd.ParseFlags([]string{"--sort", "sideways"}); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	if _, err := app.parseArgs(nil); err == nil {
		t.Error("expected an error for an invalid sort order")
	}
}
