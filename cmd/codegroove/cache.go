package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dygy/codegroove/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the render cache",
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show render cache location and size",
	Args:  cobra.NoArgs,
	RunE:  runCacheInfo,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached renders",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

func runCacheInfo(cmd *cobra.Command, args []string) error {
	store, err := cache.NewDefault()
	if err != nil {
		return err
	}
	size, count, err := store.Size()
	if err != nil {
		return fmt.Errorf("measure cache: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s renders, %s\n", store.Dir(), humanize.Comma(int64(count)), humanize.Bytes(uint64(size)))
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	store, err := cache.NewDefault()
	if err != nil {
		return err
	}
	size, count, _ := store.Size()
	if err := store.Clear(); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s renders (%s)\n", humanize.Comma(int64(count)), humanize.Bytes(uint64(size)))
	return nil
}
