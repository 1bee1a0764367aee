package types

// Config representa o arquivo de configuração opcional (TOML, YAML ou JSON).
// Valores presentes no arquivo são usados como padrão quando a flag
// correspondente não foi informada na linha de comando.
type Config struct {
	Years          string   `toml:"years" yaml:"years" json:"years"`
	Sort           string   `toml:"sort" yaml:"sort" json:"sort"`
	SubscriptionID string   `toml:"subscription_id" yaml:"subscription_id" json:"subscription_id"`
	ShowCurrency   bool     `toml:"show_currency" yaml:"show_currency" json:"show_currency"`
	ReportName     string   `toml:"report_name" yaml:"report_name" json:"report_name"`
	ReportType     []string `toml:"report_type" yaml:"report_type" json:"report_type"`
	Dir            string   `toml:"dir" yaml:"dir" json:"dir"`
}
