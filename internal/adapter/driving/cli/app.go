package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bychkov/AzureCosts/internal/application/usecase"
	"github.com/bychkov/AzureCosts/internal/shared/types"
	"github.com/bychkov/AzureCosts/pkg/version"
)

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd       *cobra.Command
	reportUseCase *usecase.CostReportUseCase
	version       string
}

// NewCLIApp cria uma nova aplicação CLI.
func NewCLIApp(versionStr string) *CLIApp {
	app := &CLIApp{
		version: versionStr,
	}

	formattedVersion := version.FormatVersion()

	rootCmd := &cobra.Command{
		Use:     "azure-costs [year-range]",
		Short:   "Azure monthly cost report CLI",
		Long:    "Reports per-month Azure spending for one subscription over a year or year range (YYYY or YYYY:YYYY).",
		Args:    cobra.MaximumNArgs(1),
		Version: formattedVersion,
		RunE:    app.runCommand,
	}

	rootCmd.SetVersionTemplate(`{{printf "AzureCosts version: %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	rootCmd.PersistentFlags().StringP("years", "y", "", "Year range to report, YYYY or YYYY:YYYY (default: current year)")
	rootCmd.PersistentFlags().StringP("sort", "o", "", "Sort report rows by month: asc or desc (default: asc)")
	rootCmd.PersistentFlags().StringP("subscription", "s", "", "Subscription ID to query directly (default: interactive selection)")
	rootCmd.PersistentFlags().BoolP("currency", "c", false, "Include a currency column in the report")
	rootCmd.PersistentFlags().Bool("clipboard", false, "Copy the report to the clipboard, tab-delimited")
	rootCmd.PersistentFlags().StringP("report-name", "n", "", "Base name for the report file (without extension)")
	rootCmd.PersistentFlags().StringSliceP("report-type", "t", nil, "Report types: csv, json, pdf (default: csv)")
	rootCmd.PersistentFlags().StringP("dir", "d", "", "Directory to save the report files (default: current directory)")
	rootCmd.PersistentFlags().Bool("reauth", false, "Force a new interactive sign-in before querying")

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// parseArgs parses command-line arguments into a CLIArgs struct.
func (app *CLIApp) parseArgs(positional []string) (*types.CLIArgs, error) {
	configFile, _ := app.rootCmd.Flags().GetString("config-file")
	years, _ := app.rootCmd.Flags().GetString("years")
	sortOrder, _ := app.rootCmd.Flags().GetString("sort")
	subscription, _ := app.rootCmd.Flags().GetString("subscription")
	currency, _ := app.rootCmd.Flags().GetBool("currency")
	clip, _ := app.rootCmd.Flags().GetBool("clipboard")
	reportName, _ := app.rootCmd.Flags().GetString("report-name")
	reportType, _ := app.rootCmd.Flags().GetStringSlice("report-type")
	dir, _ := app.rootCmd.Flags().GetString("dir")
	reauth, _ := app.rootCmd.Flags().GetBool("reauth")

	// O intervalo de anos pode vir como argumento posicional ou flag.
	if len(positional) > 0 && positional[0] != "" {
		years = positional[0]
	}

	// Valores vazios ficam vazios aqui: o arquivo de configuração ainda pode
	// preenchê-los, e os padrões (asc, csv, diretório corrente) são resolvidos
	// depois da fusão.
	if sortOrder != "" && sortOrder != string(types.SortAscending) && sortOrder != string(types.SortDescending) {
		return nil, fmt.Errorf("invalid sort order %q, expected asc or desc", sortOrder)
	}

	if dir != "" {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		dir = absDir
	}

	args := &types.CLIArgs{
		ConfigFile:     configFile,
		Years:          years,
		Sort:           types.SortOrder(sortOrder),
		SubscriptionID: subscription,
		ShowCurrency:   currency,
		Clipboard:      clip,
		ReportName:     reportName,
		ReportType:     reportType,
		Dir:            dir,
		Reauthenticate: reauth,
	}

	return args, nil
}

// runCommand é o ponto de entrada principal para o comando CLI.
func (app *CLIApp) runCommand(cmd *cobra.Command, args []string) error {
	displayWelcomeBanner(app.version)

	go version.CheckLatestVersion(app.version)

	cliArgs, err := app.parseArgs(args)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return app.reportUseCase.RunReport(ctx, cliArgs)
}

// SetReportUseCase sets the cost report use case for the CLI app.
func (app *CLIApp) SetReportUseCase(useCase *usecase.CostReportUseCase) {
	app.reportUseCase = useCase
}
