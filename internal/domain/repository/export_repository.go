package repository

import "github.com/bychkov/AzureCosts/internal/domain/entity"

// ExportRepository defines the interface for exporting report data.
type ExportRepository interface {
	ExportToCSV(rows []entity.ReportRow, showCurrency bool, filename, outputDir string) (string, error)
	ExportToJSON(rows []entity.ReportRow, filename, outputDir string) (string, error)
	ExportToPDF(rows []entity.ReportRow, showCurrency bool, scopeName, periodLabel, filename, outputDir string) (string, error)

	// CopyToClipboard coloca as linhas do relatório na área de transferência
	// em formato delimitado por tabulação.
	CopyToClipboard(rows []entity.ReportRow, showCurrency bool) error
}
