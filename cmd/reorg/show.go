package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fumiya-kume/reorg/internal/reorg"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <base>..<head>",
	Short: "Render the commits in a range, annotated with PR/issue titles when available",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		base, head, err := parseRange(args[0])
		if err != nil {
			return err
		}

		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		ctx := context.Background()

		o, err := reorg.Open(ctx, cfg, wd)
		if err != nil {
			return err
		}

		entries, err := o.Show(ctx, base, head)
		if err != nil {
			return err
		}

		fmt.Print(reorg.Render(entries))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
