package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mtsignal/sigweave/internal/search"
)

var setExprCmd = &cobra.Command{
	Use:   "set-expr <signal-id> <expression>",
	Short: "Record or replace a signal's logic expression by hand",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		store := openStore(cmd.Context())
		defer func() { _ = store.Close() }()
		svc := search.New(store)

		raw := strings.Join(args[1:], " ")
		if err := svc.SetExpression(cmd.Context(), args[0], raw); err != nil {
			fail("Error: %v", err)
		}

		eq, err := svc.Expression(cmd.Context(), args[0])
		if err != nil {
			fail("Error: %v", err)
		}
		fmt.Println(successStyle.Render("✓ ") + eq.TargetSignalID + " = " + search.RenderNegations(eq.NormalizedExpr))
	},
}

func init() {
	rootCmd.AddCommand(setExprCmd)
}
