package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mtsignal/sigweave/internal/search"
	"github.com/mtsignal/sigweave/internal/types"
)

var searchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Search signals by id, description, address, or routing box",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := openStore(cmd.Context())
		defer func() { _ = store.Close() }()

		svc := search.New(store)
		results, err := svc.Search(cmd.Context(), args[0])
		if err != nil {
			fail("Error: search failed: %v", err)
		}
		if len(results) == 0 {
			fmt.Println(dimStyle.Render("no matches"))
			return
		}
		for _, sig := range results {
			printSignalLine(sig)
		}
		fmt.Println(dimStyle.Render(fmt.Sprintf("%d match(es)", len(results))))
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func printSignalLine(sig *types.Signal) {
	route := routeString(sig)
	line := fmt.Sprintf("%s  %-8s  %s", accentStyle.Render(fmt.Sprintf("%-10s", sig.ID)), sig.Kind, sig.Description)
	if route != "" {
		line += dimStyle.Render("  [" + route + "]")
	}
	fmt.Println(line)
}

func routeString(sig *types.Signal) string {
	if sig.FromBox == "" && len(sig.ViaBoxes) == 0 && sig.ToBox == "" {
		return ""
	}
	parts := []string{sig.FromBox}
	parts = append(parts, sig.ViaBoxes...)
	parts = append(parts, sig.ToBox)
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " > ")
}
