package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mtsignal/sigweave/internal/favorites"
	"github.com/mtsignal/sigweave/internal/search"
)

var groupsCmd = &cobra.Command{
	Use:   "groups [name]",
	Short: "List logic groups, or the signals of one group",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := openStore(cmd.Context())
		defer func() { _ = store.Close() }()
		svc := search.New(store)

		if len(args) == 1 {
			sigs, err := svc.GroupSignals(cmd.Context(), args[0])
			if err != nil {
				fail("Error: %v", err)
			}
			if len(sigs) == 0 {
				fmt.Println(dimStyle.Render("no signals in group " + args[0]))
				return
			}
			for _, sig := range sigs {
				printSignalLine(sig)
			}
			return
		}

		groups, err := svc.LogicGroups(cmd.Context())
		if err != nil {
			fail("Error: %v", err)
		}
		if len(groups) == 0 {
			fmt.Println(dimStyle.Render("no logic groups"))
			return
		}

		fav := favorites.NewStore(cfg.FavoritesPath)
		for _, g := range groups {
			marker := "  "
			if ok, _ := fav.Contains(g); ok {
				marker = accentStyle.Render("★ ")
			}
			fmt.Println(marker + g)
		}
	},
}

func init() {
	rootCmd.AddCommand(groupsCmd)
}
