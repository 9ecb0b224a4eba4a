package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fumiya-kume/reorg/internal/reorg"
	"github.com/spf13/cobra"
)

var abortCmd = &cobra.Command{
	Use:     "abort",
	Aliases: []string{"undo"},
	Short:   "Cancel an in-progress reorganize and restore the branch",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		ctx := context.Background()

		o, err := reorg.Open(ctx, cfg, wd)
		if err != nil {
			return err
		}

		if err := o.Abort(ctx); err != nil {
			return err
		}

		fmt.Println("restored branch to its pre-reorganize state")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(abortCmd)
}
