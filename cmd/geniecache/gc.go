package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ollie314/genie-agent-cache/cache"
)

var gcCmd = &cobra.Command{
	Use:   "gc <resourceId> <keepVersion>",
	Short: "Evict cached versions of a resource older than keepVersion",
	Long: `gc removes the data and download files of every cached version of
resourceId strictly older than keepVersion, leaving each evicted
version's lock file in place so a concurrent fetcher can still
rendezvous on it. resourceId is the value returned by "geniecache get"'s
logs, or cache.IDOf(uri) computed out of band.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		resourceID := cache.ResourceID(args[0])
		keepVersion, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("geniecache: keepVersion must be an integer: %w", err)
		}

		// gc never downloads, so it needs no concrete ResourceLoader;
		// a nil loader is safe here because CleanUpOlderResourceVersions
		// never calls through to the Fetcher.
		engine, err := cache.New(cfg.CacheDirectory, nil, cache.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("geniecache: %w", err)
		}
		defer engine.Close()

		if err := engine.CleanUpOlderResourceVersions(cmd.Context(), resourceID, cache.Version(keepVersion)); err != nil {
			return fmt.Errorf("geniecache: gc %s: %w", resourceID, err)
		}
		return nil
	},
}
