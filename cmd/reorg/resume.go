package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fumiya-kume/reorg/internal/reorg"
	"github.com/fumiya-kume/reorg/pkg/executor"
	"github.com/spf13/cobra"
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Continue an in-progress reorganize from where it left off",
	Args:  cobra.NoArgs,
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

		opts := executor.Options{NoVerify: cfg.Reorg.NoVerify, NoEditor: cfg.Reorg.NoEditor}
		applied, err := o.Resume(ctx, opts)
		if err != nil {
			if applied != nil {
				fmt.Printf("stopped after %d/%d commits; run `reorg resume` again to continue\n", applied.NextCommitIndex, len(applied.Commits))
			}
			return err
		}

		fmt.Printf("applied %d commit(s)\n", len(applied.Commits))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resumeCmd)
}
