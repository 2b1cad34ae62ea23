package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mtsignal/sigweave/internal/importer"
)

var templateOut string

var templateCmd = &cobra.Command{
	Use:   "template <signals|boxes>",
	Short: "Write an empty CSV template with the expected header",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var columns []string
		switch args[0] {
		case "signals":
			columns = importer.SignalCSVColumns
		case "boxes":
			columns = importer.BoxConnCSVColumns
		default:
			fail("Error: unknown template %q (expected signals or boxes)", args[0])
		}

		header := strings.Join(columns, ",") + "\n"
		if templateOut == "" || templateOut == "-" {
			fmt.Print(header)
			return
		}
		if err := os.WriteFile(templateOut, []byte(header), 0o644); err != nil {
			fail("Error: failed to write template: %v", err)
		}
		fmt.Println(successStyle.Render("✓ wrote " + templateOut))
	},
}

func init() {
	templateCmd.Flags().StringVarP(&templateOut, "output", "o", "", "Write to a file instead of stdout")
	rootCmd.AddCommand(templateCmd)
}
