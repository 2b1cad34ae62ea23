package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mtsignal/sigweave/internal/favorites"
)

var favoriteList bool

var favoriteCmd = &cobra.Command{
	Use:   "favorite [group]",
	Short: "Toggle a logic group as favorite, or list favorites",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fav := favorites.NewStore(cfg.FavoritesPath)

		if favoriteList || len(args) == 0 {
			list, err := fav.List()
			if err != nil {
				fail("Error: %v", err)
			}
			if len(list) == 0 {
				fmt.Println(dimStyle.Render("no favorites"))
				return
			}
			for _, g := range list {
				fmt.Println(accentStyle.Render("★ ") + g)
			}
			return
		}

		added, err := fav.Toggle(args[0])
		if err != nil {
			fail("Error: %v", err)
		}
		if added {
			fmt.Println(successStyle.Render("★ added " + args[0]))
		} else {
			fmt.Println(dimStyle.Render("removed " + args[0]))
		}
	},
}

func init() {
	favoriteCmd.Flags().BoolVarP(&favoriteList, "list", "l", false, "List favorite groups")
	rootCmd.AddCommand(favoriteCmd)
}
