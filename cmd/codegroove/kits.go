package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dygy/codegroove/internal/render"
	"github.com/dygy/codegroove/internal/strudel"
)

var kitsCmd = &cobra.Command{
	Use:   "kits",
	Short: "List drum kits, melody styles and output formats",
	Long: `List the values accepted by render --kit, --style and --to.

The kit marked (default) is used when neither --kit nor
$CODEGROOVE_DRUM_KIT is set.`,
	Args: cobra.NoArgs,
	RunE: runKits,
}

func runKits(cmd *cobra.Command, args []string) error {
	def := strudel.ParseDrumKit(cfg.DrumKit)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIT\tBANK\tSOUND")
	for _, k := range strudel.DrumKits() {
		name := string(k)
		if k == def {
			name += " (default)"
		}
		bank := k.Bank()
		if bank == "" {
			bank = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, bank, k.Description())
	}

	fmt.Fprintln(w, "\nSTYLE\tSOUND")
	for _, s := range strudel.Styles() {
		fmt.Fprintf(w, "%s\t%s\n", s, s.Description())
	}

	fmt.Fprintln(w, "\nFORMAT\tFILE")
	for _, f := range render.Formats() {
		fmt.Fprintf(w, "%s\t*%s\n", f, f.Extension())
	}
	return w.Flush()
}

// joinNames renders a value list for flag help, e.g. "synth, piano".
func joinNames[T ~string](values []T) string {
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = string(v)
	}
	return strings.Join(names, ", ")
}
