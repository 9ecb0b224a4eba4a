package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fumiya-kume/reorg/internal/reorg"
	"github.com/fumiya-kume/reorg/pkg/executor"
	"github.com/spf13/cobra"
)

var reorganizeCmd = &cobra.Command{
	Use:   "reorganize <base>..<head>",
	Short: "Plan and apply a new commit sequence for a commit range",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		base, head, err := parseRange(args[0])
		if err != nil {
			return err
		}

		strategyName, err := cmd.Flags().GetString("strategy")
		if err != nil {
			return err
		}
		dryRun, err := cmd.Flags().GetBool("dry-run")
		if err != nil {
			return err
		}
		noEditor, err := cmd.Flags().GetBool("no-editor")
		if err != nil {
			return err
		}
		noVerify, err := cmd.Flags().GetBool("no-verify")
		if err != nil {
			return err
		}

		if strategyName != "" {
			cfg.Reorg.Strategy = strategyName
		}
		if noEditor {
			cfg.Reorg.NoEditor = true
		}
		if noVerify {
			cfg.Reorg.NoVerify = true
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

		plan, err := o.Plan(ctx, base, head)
		if err != nil {
			return err
		}

		if dryRun {
			printPlanPreview(plan)
			return nil
		}

		if err := o.Save(ctx, plan); err != nil {
			return err
		}

		opts := executor.Options{NoVerify: cfg.Reorg.NoVerify, NoEditor: cfg.Reorg.NoEditor}
		applied, err := o.Resume(ctx, opts)
		if err != nil {
			fmt.Printf("stopped after %d/%d commits; run `reorg resume` to continue\n", applied.NextCommitIndex, len(applied.Commits))
			return err
		}

		fmt.Printf("applied %d commit(s)\n", len(applied.Commits))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reorganizeCmd)
	reorganizeCmd.Flags().String("strategy", "", "strategy to use (preserve, by-file, squash, absorb); defaults to the configured strategy")
	reorganizeCmd.Flags().Bool("dry-run", false, "print the planned commits without touching the repository")
	reorganizeCmd.Flags().Bool("no-editor", false, "use planned commit messages verbatim instead of opening an editor")
	reorganizeCmd.Flags().Bool("no-verify", false, "skip commit verification hooks")
}
