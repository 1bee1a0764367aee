package cli

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/bychkov/AzureCosts/pkg/version"
)

// displayWelcomeBanner exibe o banner de boas-vindas com informações de versão.
func displayWelcomeBanner(versionStr string) {
	banner := `
         /$$$$$$                                           /$$$$$$                      /$$
        /$$__  $$                                         /$$__  $$                    | $$
       | $$  \ $$ /$$$$$$$$ /$$   /$$  /$$$$$$   /$$$$$$ | $$  \__/  /$$$$$$   /$$$$$$$/$$$$$$   /$$$$$$$
       | $$$$$$$$|____ /$$/| $$  | $$ /$$__  $$ /$$__  $$| $$       /$$__  $$ /$$_____/_  $$_/  /$$_____/
       | $$__  $$   /$$$$/ | $$  | $$| $$  \__/| $$$$$$$$| $$      | $$  \ $$|  $$$$$$  | $$   |  $$$$$$
       | $$  | $$  /$$__/  | $$  | $$| $$      | $$_____/| $$    $$| $$  | $$ \____  $$ | $$ /$$\____  $$
       | $$  | $$ /$$$$$$$$|  $$$$$$/| $$      |  $$$$$$$|  $$$$$$/|  $$$$$$/ /$$$$$$$/ |  $$$$//$$$$$$$/
       |__/  |__/|________/ \______/ |__/       \_______/ \______/  \______/ |_______/   \___/ |_______/
       `
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()

	fmt.Println(blue(banner))

	// Obtem a string formatada da versão através do pacote version
	formattedVersion := version.FormatVersion()
	fmt.Println(cyan(fmt.Sprintf("Azure Costs CLI (v%s)", formattedVersion)))
}
