package types

// SortOrder controla a ordenação das linhas do relatório por mês.
type SortOrder string

const (
	SortAscending  SortOrder = "asc"
	SortDescending SortOrder = "desc"
)

// CLIArgs represents the command-line arguments.
type CLIArgs struct {
	ConfigFile     string
	Years          string
	Sort           SortOrder
	SubscriptionID string
	ShowCurrency   bool
	Clipboard      bool
	ReportName     string
	ReportType     []string
	Dir            string
	Reauthenticate bool
}
