package main

import (
	"fmt"
	"os"

	"github.com/bychkov/AzureCosts/internal/adapter/driven/azure"
	"github.com/bychkov/AzureCosts/internal/adapter/driven/config"
	"github.com/bychkov/AzureCosts/internal/adapter/driven/export"
	"github.com/bychkov/AzureCosts/internal/adapter/driving/cli"
	"github.com/bychkov/AzureCosts/internal/application/usecase"
	"github.com/bychkov/AzureCosts/pkg/console"
	"github.com/bychkov/AzureCosts/pkg/version"
)

func main() {
	// Inicializa o aplicativo CLI
	app := cli.NewCLIApp(version.Version)

	// Inicializa os repositórios
	azureRepo := azure.NewAzureRepository()
	exportRepo := export.NewExportRepository()
	configRepo := config.NewConfigRepository()
	consoleImpl := console.NewConsole()

	// Inicializa o caso de uso
	reportUseCase := usecase.NewCostReportUseCase(
		azureRepo,
		exportRepo,
		configRepo,
		consoleImpl,
	)

	// Define o caso de uso no aplicativo CLI
	app.SetReportUseCase(reportUseCase)

	// Executa o aplicativo
	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
