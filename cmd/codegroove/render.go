package main

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dygy/codegroove/internal/cache"
	"github.com/dygy/codegroove/internal/logging"
	"github.com/dygy/codegroove/internal/progress"
	"github.com/dygy/codegroove/internal/render"
	"github.com/dygy/codegroove/internal/strudel"
)

var (
	renderTo     string
	renderKit    string
	renderStyle  string
	renderOutput string
	noCache      bool
)

var renderCmd = &cobra.Command{
	Use:   "render [file|-]",
	Short: "Render source code as Strudel code or a MIDI file",
	Long: `Compose a source file (or stdin) and render it as Strudel
live-coding code or a Standard MIDI File.

Examples:
  codegroove render main.go
  codegroove render main.go -o groove.mid
  codegroove render --to strudel --kit tr909 --style lofi app.js`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func initRenderFlags() {
	renderCmd.Flags().StringVarP(&renderTo, "to", "t", "", "Output format: "+joinNames(render.Formats())+" (default: from --output extension, else strudel)")
	renderCmd.Flags().StringVar(&renderKit, "kit", "", "Drum kit: "+joinNames(strudel.DrumKits())+" (default: $CODEGROOVE_DRUM_KIT or tr808)")
	renderCmd.Flags().StringVar(&renderStyle, "style", string(strudel.StyleSynth), "Melody sound style: "+joinNames(strudel.Styles()))
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Output file (default: stdout)")
	renderCmd.Flags().BoolVar(&noCache, "no-cache", false, "Skip the render cache")
}

func runRender(cmd *cobra.Command, args []string) error {
	format, err := renderFormat()
	if err != nil {
		return err
	}

	kitName := renderKit
	if kitName == "" {
		kitName = cfg.DrumKit
	}
	opts := render.Options{
		Kit:   strudel.ParseDrumKit(kitName),
		Style: strudel.SoundStyle(renderStyle),
	}

	scale, err := selectedScale()
	if err != nil {
		return err
	}

	report := newReporter(cmd)
	logger := logging.FromContext(cmd.Context())

	report.StartStage(progress.StageRead)
	source, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	// Custom scales may reuse a built-in name, so the notes are part of the key.
	scaleKey := scale.Name + ":" + strings.Join(scale.Notes, " ")
	key := cache.Key(source, scaleKey, string(format), string(opts.Kit)+":"+string(opts.Style))

	var store *cache.RenderCache
	if !noCache {
		store, err = cache.NewDefault()
		if err != nil {
			logger.Debug("render cache unavailable", "error", err)
			report.Warning("render cache unavailable, rendering without it: %v", err)
		} else if out, body, ok := store.Get(key); ok {
			report.CacheHit(key, out.CreatedAt)
			return writeOutput(cmd, renderOutput, body, report)
		} else {
			report.Update("cache miss %s", key)
		}
	}

	c := composeSource(source, scale, report)

	report.StartStage(progress.StageRender)
	var buf bytes.Buffer
	if err := render.Render(&buf, format, c, opts); err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}
	report.StageComplete("%s output", format)

	if store != nil {
		meta := &cache.CachedOutput{
			Format: string(format),
			Scale:  scale.Name,
			Kit:    string(opts.Kit),
			BPM:    c.BPM,
			Events: len(c.Events),
		}
		if err := store.Put(key, meta, buf.Bytes()); err != nil {
			logger.Debug("failed to cache render", "key", key, "error", err)
			report.Warning("could not cache render: %v", err)
		}
	}

	return writeOutput(cmd, renderOutput, buf.Bytes(), report)
}

// renderFormat resolves --to, falling back to the output file extension.
func renderFormat() (render.Format, error) {
	if renderTo != "" {
		return render.ParseFormat(renderTo)
	}
	if ext := filepath.Ext(renderOutput); ext != "" {
		if f, err := render.ParseFormat(ext); err == nil {
			return f, nil
		}
	}
	return render.FormatStrudel, nil
}
