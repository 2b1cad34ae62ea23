package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mtsignal/sigweave/internal/search"
	"github.com/mtsignal/sigweave/internal/storage"
)

var showCmd = &cobra.Command{
	Use:   "show <signal-id>",
	Short: "Show one signal with its routing and logic expression",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := openStore(cmd.Context())
		defer func() { _ = store.Close() }()
		svc := search.New(store)

		sig, err := svc.Signal(cmd.Context(), args[0])
		if errors.Is(err, storage.ErrNotFound) {
			fail("Error: signal %s not found", args[0])
		}
		if err != nil {
			fail("Error: %v", err)
		}

		fmt.Println(accentStyle.Render(sig.ID) + "  " + string(sig.Kind))
		fmt.Println("  " + sig.Description)
		if route := routeString(sig); route != "" {
			fmt.Println("  route:   " + route)
		}
		if sig.ProgramAddress != "" {
			fmt.Println("  address: " + sig.ProgramAddress)
		}
		if sig.LogicGroup != "" {
			fmt.Println("  group:   " + sig.LogicGroup)
		}

		eq, err := svc.Expression(cmd.Context(), sig.ID)
		if errors.Is(err, storage.ErrNotFound) {
			fmt.Println(dimStyle.Render("  no logic expression recorded"))
			return
		}
		if err != nil {
			fail("Error: %v", err)
		}

		fmt.Println("  logic:   " + sig.ID + " = " + search.RenderNegations(eq.NormalizedExpr))
		source := eq.SourceLabel
		if eq.SourcePage != nil {
			source = fmt.Sprintf("%s p.%d", source, *eq.SourcePage)
		}
		if source != "" {
			fmt.Println(dimStyle.Render("  source:  " + source))
		}
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
