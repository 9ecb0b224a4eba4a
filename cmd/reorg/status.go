package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fumiya-kume/reorg/internal/reorg"
	"github.com/fumiya-kume/reorg/pkg/cancel"
	"github.com/fumiya-kume/reorg/pkg/diffmodel"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the progress of an in-progress reorganize",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		watch, err := cmd.Flags().GetBool("watch")
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

		if !watch {
			plan, err := o.Status(ctx)
			if err != nil {
				return err
			}
			printStatus(plan)
			return nil
		}

		stop := make(chan struct{})
		handler := cancel.RegisterHandler()
		defer handler.Stop()

		plans, err := o.WatchStatus(stop)
		if err != nil {
			return err
		}

		stopped := false
		requestStop := func() {
			if !stopped {
				stopped = true
				close(stop)
			}
		}

		for {
			select {
			case plan, ok := <-plans:
				if !ok {
					return nil
				}
				printStatus(plan)
				if plan != nil && plan.IsComplete() {
					requestStop()
				}
			case <-time.After(100 * time.Millisecond):
				if cancel.IsCancelled() {
					requestStop()
					return nil
				}
			}
		}
	},
}

func printStatus(plan *diffmodel.SavedPlan) {
	if plan == nil {
		fmt.Println("no reorganize in progress on this branch")
		return
	}

	completed := plan.NextCommitIndex
	fmt.Printf("strategy: %s\n", plan.Strategy)
	fmt.Printf("progress: %d/%d commits\n", completed, len(plan.Commits))

	skipped := 0
	for _, c := range plan.Commits {
		if c.IsSkipped() {
			skipped++
		}
	}
	if skipped > 0 {
		fmt.Printf("skipped: %d commit(s) with no remaining changes\n", skipped)
	}

	if completed < len(plan.Commits) {
		fmt.Printf("next: %s\n", plan.Commits[completed].ShortDescription)
	} else {
		fmt.Println("complete")
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().Bool("watch", false, "keep reporting progress as the plan advances, via fsnotify, until it completes or Ctrl+C")
}
