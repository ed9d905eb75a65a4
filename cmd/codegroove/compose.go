package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dygy/codegroove/internal/batch"
	"github.com/dygy/codegroove/internal/compose"
	"github.com/dygy/codegroove/internal/playback"
	"github.com/dygy/codegroove/internal/progress"
	"github.com/dygy/codegroove/internal/scales"
)

var (
	composeFormat string
	composeOutput string
)

var composeCmd = &cobra.Command{
	Use:   "compose [file|-]",
	Short: "Compose source code into events",
	Long: `Compose a source file (or stdin) into a tempo and a list of
musical events.

Examples:
  codegroove compose main.go
  cat app.js | codegroove compose --format table
  codegroove compose -s blues -o events.json main.c`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCompose,
}

func initComposeFlags() {
	composeCmd.Flags().StringVarP(&composeFormat, "format", "f", "json", "Output format: json or table")
	composeCmd.Flags().StringVarP(&composeOutput, "output", "o", "", "Output file (default: stdout)")
}

func runCompose(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(composeFormat)
	if format != "json" && format != "table" {
		return fmt.Errorf("invalid format %q (must be json or table)", composeFormat)
	}

	report := newReporter(cmd)
	c, err := composeInput(cmd, args, report)
	if err != nil {
		return err
	}

	var sb strings.Builder
	if format == "table" {
		writeTable(&sb, c)
	} else {
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal composition: %w", err)
		}
		sb.Write(data)
		sb.WriteString("\n")
	}

	return writeOutput(cmd, composeOutput, []byte(sb.String()), report)
}

// composeInput reads the source named by args and composes it with the
// selected scale.
func composeInput(cmd *cobra.Command, args []string, report *progress.Reporter) (compose.Composition, error) {
	scale, err := selectedScale()
	if err != nil {
		return compose.Composition{}, err
	}

	report.StartStage(progress.StageRead)
	source, err := readInput(cmd, args)
	if err != nil {
		return compose.Composition{}, err
	}
	return composeSource(source, scale, report), nil
}

func composeSource(source string, scale scales.Scale, report *progress.Reporter) compose.Composition {
	report.SourceRead(int64(len(source)), strings.Count(source, "\n")+1)

	report.StartStage(progress.StageCompose)
	c := compose.Compose(source, scale)
	report.Composed(c.BPM, len(c.Events), playback.NewSession(c).LoopDuration())
	return c
}

// readInput reads a file argument, or stdin for "-" or no argument.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		return batch.ReadLimited(cmd.InOrStdin(), cfg.MaxSourceBytes)
	}
	return batch.ReadSource(args[0], cfg.MaxSourceBytes)
}

// writeOutput writes data to path, or to the command's stdout when path is empty.
func writeOutput(cmd *cobra.Command, path string, data []byte, report *progress.Reporter) error {
	report.StartStage(progress.StageWrite)
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	report.Done(path, len(data))
	return nil
}

// writeTable prints one row per event.
func writeTable(out io.Writer, c compose.Composition) {
	sess := playback.NewSession(c)
	fmt.Fprintf(out, "BPM %d, %d events, loop %s (%s)\n\n",
		c.BPM, len(c.Events), sess.LoopEnd(), progress.FormatDuration(sess.LoopDuration()))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tNOTE\tDUR\tDRUM\tVELOCITY")
	for _, e := range c.Events {
		note := "-"
		if e.HasNote {
			note = e.Note
		}
		drum := "-"
		if e.IsDrum() {
			drum = e.Drum.String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\n", e.Time(), note, e.Duration, drum, e.Velocity)
	}
	w.Flush()
}
