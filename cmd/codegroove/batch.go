package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dygy/codegroove/internal/batch"
	"github.com/dygy/codegroove/internal/progress"
)

var batchJobs int

var batchCmd = &cobra.Command{
	Use:   "batch <files...>",
	Short: "Compose many files in parallel",
	Long: `Compose every file and print a summary row per file.

Example:
  codegroove batch --jobs 8 src/*.go`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func initBatchFlags() {
	batchCmd.Flags().IntVarP(&batchJobs, "jobs", "j", 0, "Files composed in parallel (default: $CODEGROOVE_BATCH_JOBS or 4)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	scale, err := selectedScale()
	if err != nil {
		return err
	}

	jobs := batchJobs
	if jobs <= 0 {
		jobs = cfg.BatchJobs
	}

	results := batch.Run(cmd.Context(), args, batch.Config{
		Jobs:     jobs,
		Scale:    scale,
		MaxBytes: cfg.MaxSourceBytes,
	})

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tSIZE\tBPM\tEVENTS\tTIME")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%s\terror: %v\t\t\t\n", r.Path, r.Err)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			r.Path,
			humanize.Bytes(uint64(r.Bytes)),
			r.Composition.BPM,
			humanize.Comma(int64(len(r.Composition.Events))),
			progress.FormatDuration(r.Elapsed))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	sum := batch.Summarize(results)
	fmt.Fprintf(cmd.OutOrStdout(), "\n%s files, %s, %s events\n",
		humanize.Comma(int64(sum.Files)), humanize.Bytes(uint64(sum.Bytes)), humanize.Comma(int64(sum.Events)))

	if sum.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", sum.Failed, sum.Files)
	}
	return nil
}
