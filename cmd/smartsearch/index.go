package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type indexOptions struct {
	serverURL string
	noRecurse bool
}

func newIndexCmd(g *globalOptions) *cobra.Command {
	o := &indexOptions{}
	cmd := &cobra.Command{
		Use:   "index [flags] [file-or-directory...]",
		Short: "Add files to the document catalog",
		Long: `Extract files into the document catalog.

Directories are synced: new and modified files are extracted and files
that disappeared are dropped. Without arguments the configured watch
directories are synced. A running server is asked to rebuild its index
afterwards; pass --server "" to skip that.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, g, o, args)
		},
	}
	cmd.Flags().StringVar(&o.serverURL, "server", defaultServerURL, `server to notify after indexing ("" to skip)`)
	cmd.Flags().BoolVar(&o.noRecurse, "no-recurse", false, "do not descend into subdirectories")
	return cmd
}

func runIndex(cmd *cobra.Command, g *globalOptions, o *indexOptions, args []string) error {
	ctx := cmd.Context()
	cfg, _, logger, err := g.setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	c, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	recursive := cfg.Watch.RecursiveOrDefault() && !o.noRecurse
	if len(args) == 0 {
		args = cfg.Watch.Directories
	}
	if len(args) == 0 {
		return fmt.Errorf("nothing to index: pass paths or configure watch.directories")
	}

	out := cmd.OutOrStdout()
	var dirs []string
	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if info.IsDir() {
			dirs = append(dirs, path)
			continue
		}
		changed, err := c.Indexer.IndexFile(ctx, path)
		if err != nil {
			return fmt.Errorf("index %s: %w", path, err)
		}
		if changed {
			fmt.Fprintf(out, "Indexed %s\n", path)
		} else {
			fmt.Fprintf(out, "Unchanged %s\n", path)
		}
	}
	if len(dirs) > 0 {
		report, err := c.Indexer.SyncDirectories(ctx, dirs, recursive)
		if report != nil {
			fmt.Fprintf(out, "Scanned %d file(s): %d indexed, %d unchanged, %d removed, %d failed\n",
				report.Scanned, report.Indexed, report.Unchanged, report.Removed, report.Failed)
		}
		if err != nil {
			return err
		}
	}

	if o.serverURL != "" {
		if err := newClient(o.serverURL).do(ctx, "POST", "/api/v1/index/build", nil, nil); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Server not notified: %v\n", err)
		}
	}
	return nil
}
