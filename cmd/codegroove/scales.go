package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dygy/codegroove/internal/scales"
)

var scalesCmd = &cobra.Command{
	Use:   "scales",
	Short: "List available scales",
	Long: `List the built-in scales plus any loaded with --scales.

Custom scales are declared in HCL:

  scale "lydian" {
    notes = ["F3", "G3", "A3", "B3", "C4", "D4", "E4"]
  }`,
	Args: cobra.NoArgs,
	RunE: runScales,
}

func runScales(cmd *cobra.Command, args []string) error {
	def, err := registry.Lookup("")
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tNOTES\tRANGE")
	for _, s := range registry.All() {
		name := s.Name
		if scales.Normalize(s.Name) == scales.Normalize(def.Name) {
			name += " (default)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, strings.Join(s.Notes, " "), noteRange(s))
	}
	return w.Flush()
}

// noteRange describes the lowest and highest pitch of s.
func noteRange(s scales.Scale) string {
	lo, hi := 128, -1
	for _, n := range s.Notes {
		key, err := scales.ParsePitch(n)
		if err != nil {
			continue
		}
		lo = min(lo, key)
		hi = max(hi, key)
	}
	if hi < 0 {
		return "-"
	}
	return fmt.Sprintf("%s-%s", scales.PitchName(lo), scales.PitchName(hi))
}
