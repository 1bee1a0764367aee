package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/bychkov/AzureCosts/internal/domain/entity"
	"github.com/bychkov/AzureCosts/internal/domain/repository"
)

// ExportRepositoryImpl implementa o ExportRepository.
type ExportRepositoryImpl struct{}

// NewExportRepository cria uma nova implementação do ExportRepository.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{}
}

func (r *ExportRepositoryImpl) ExportToCSV(rows []entity.ReportRow, showCurrency bool, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	if err := writeCSVReport(file, rows, showCurrency); err != nil {
		return "", fmt.Errorf("error writing CSV file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// writeCSVReport escreve o relatório em CSV e reporta falhas de escrita do
// destino (o csv.Writer engole erros até o Flush).
func writeCSVReport(w io.Writer, rows []entity.ReportRow, showCurrency bool) error {
	writer := csv.NewWriter(w)

	headers := []string{"Month", "Cost"}
	if showCurrency {
		headers = append(headers, "Currency")
	}
	writer.Write(headers)

	total := decimal.Zero
	for _, row := range rows {
		record := []string{row.Month, row.Cost.StringFixed(2)}
		if showCurrency {
			record = append(record, row.Currency)
		}
		writer.Write(record)
		total = total.Add(row.Cost)
	}

	totalRecord := []string{"Total", total.StringFixed(2)}
	if showCurrency {
		totalRecord = append(totalRecord, "")
	}
	writer.Write(totalRecord)

	writer.Flush()
	return writer.Error()
}

func (r *ExportRepositoryImpl) ExportToJSON(rows []entity.ReportRow, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(rows); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportToPDF(rows []entity.ReportRow, showCurrency bool, scopeName, periodLabel, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFillColor(40, 40, 40)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr(fmt.Sprintf("  Monthly costs: %s", scopeName)), "", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(50, 50, 50)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("  Period: %s", periodLabel)), "", 1, "L", true, 0, "")
	pdf.Ln(8)

	colWidths := []float64{50, 50}
	headers := []string{"Month", "Cost"}
	if showCurrency {
		colWidths = append(colWidths, 50)
		headers = append(headers, "Currency")
	}

	pdf.SetFont("Arial", "B", 10)
	for i, header := range headers {
		pdf.CellFormat(colWidths[i], 8, header, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	total := decimal.Zero
	for _, row := range rows {
		pdf.CellFormat(colWidths[0], 7, row.Month, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[1], 7, row.Cost.StringFixed(2), "1", 0, "R", false, 0, "")
		if showCurrency {
			pdf.CellFormat(colWidths[2], 7, tr(row.Currency), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
		total = total.Add(row.Cost)
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(colWidths[0], 7, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(colWidths[1], 7, total.StringFixed(2), "1", 0, "R", false, 0, "")
	if showCurrency {
		pdf.CellFormat(colWidths[2], 7, "", "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// CopyToClipboard coloca o relatório na área de transferência em formato
// delimitado por tabulação, pronto para colar em uma planilha.
func (r *ExportRepositoryImpl) CopyToClipboard(rows []entity.ReportRow, showCurrency bool) error {
	var sb strings.Builder

	if showCurrency {
		sb.WriteString("Month\tCost\tCurrency\n")
	} else {
		sb.WriteString("Month\tCost\n")
	}
	for _, row := range rows {
		if showCurrency {
			fmt.Fprintf(&sb, "%s\t%s\t%s\n", row.Month, row.Cost.StringFixed(2), row.Currency)
		} else {
			fmt.Fprintf(&sb, "%s\t%s\n", row.Month, row.Cost.StringFixed(2))
		}
	}

	if err := clipboard.WriteAll(sb.String()); err != nil {
		return fmt.Errorf("error writing to clipboard: %w", err)
	}
	return nil
}

// generateFilename monta o caminho do arquivo de saída com timestamp.
func generateFilename(baseName, outputDir, extension string) (string, error) {
	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return "", fmt.Errorf("error creating output directory: %w", err)
		}
	}
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", baseName, timestamp, extension)
	return filepath.Join(outputDir, filename), nil
}
