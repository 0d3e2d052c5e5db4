package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/me/memstage/internal/report"
	"github.com/me/memstage/internal/workload"
)

func newSelftestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "selftest",
		Short: "Run a synthetic staged workload and print its memory report",
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker, cleanup := newTracker()
			defer cleanup()

			metrics := workload.Run(tracker, workload.DefaultSizes(), logger)
			if len(metrics) == 0 {
				fmt.Println("No metrics collected (tracking disabled).")
				return nil
			}

			rep := report.New(metrics)
			fmt.Printf("Run %s\n\n", rep.RunID)
			return rep.WriteTable(os.Stdout)
		},
	}
}
