package main

import (
	"fmt"

	"github.com/blogicum/internal/seed"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with demo categories, users, posts and comments",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, gdb, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		summary, err := seed.Run(cmd.Context(), gdb, log)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "categories: %d, locations: %d, users: %d, posts: %d, comments: %d\n",
			summary.Categories, summary.Locations, summary.Users, summary.Posts, summary.Comments)
		fmt.Fprintf(out, "demo users alice and bob share the password %q\n", seed.DemoPassword)
		return nil
	},
}
