package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperjump/smartsearch/internal/cli"
	"github.com/hyperjump/smartsearch/internal/models"
)

type searchOptions struct {
	serverURL string
	mode      string
	scope     string
	page      int
	pageSize  int
	filters   map[string]string
	userID    string
	output    string
}

func newSearchCmd(g *globalOptions) *cobra.Command {
	o := &searchOptions{}
	cmd := &cobra.Command{
		Use:   "search [flags] <query>",
		Short: "Search documents",
		Long: `Search documents.

The query is all remaining arguments joined by spaces, so multi-word
queries work with or without quotes. With --server set to "" the catalog
is opened directly instead of calling a running server.

Examples:
  smartsearch search period cramps
  smartsearch search --mode fuzzy ibuprofn
  smartsearch search --scope tools --filter lang=en breathing
  smartsearch search --output json "heat therapy"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, g, o, args)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.serverURL, "server", defaultServerURL, `server URL ("" opens the catalog directly)`)
	f.StringVar(&o.mode, "mode", "", "search mode: keyword, fuzzy, semantic or hybrid (default from config)")
	f.StringVar(&o.scope, "scope", "", "scope: all, articles, pdfs, tools or guides")
	f.IntVar(&o.page, "page", 1, "page number")
	f.IntVarP(&o.pageSize, "limit", "n", 0, "results per page (default from config)")
	f.StringToStringVar(&o.filters, "filter", nil, "metadata filter key=value (repeatable)")
	f.StringVar(&o.userID, "user", "", "user id recorded in analytics")
	f.StringVarP(&o.output, "output", "o", "text", "output format: text, compact or json")
	return cmd
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func (o *searchOptions) request(args []string) *models.SearchOptions {
	req := &models.SearchOptions{
		Query:    buildSearchQuery(args),
		Scope:    models.Scope(o.scope),
		Mode:     models.Mode(o.mode),
		Page:     o.page,
		PageSize: o.pageSize,
		UserID:   o.userID,
	}
	if len(o.filters) > 0 {
		req.Filters = o.filters
	}
	return req
}

func runSearch(cmd *cobra.Command, g *globalOptions, o *searchOptions, args []string) error {
	format, err := cli.ParseOutputFormat(o.output)
	if err != nil {
		return err
	}
	req := o.request(args)
	if req.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}

	var resp *models.SearchResponse
	if o.serverURL != "" {
		// Use the HTTP API when a server is running; it owns the index.
		resp = &models.SearchResponse{}
		if err := newClient(o.serverURL).do(cmd.Context(), "POST", "/api/v1/search", req, resp); err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
	} else {
		resp, err = searchDirect(cmd.Context(), g, req)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
	}
	return cli.WriteSearchResults(cmd.OutOrStdout(), resp, format)
}

func searchDirect(ctx context.Context, g *globalOptions, req *models.SearchOptions) (*models.SearchResponse, error) {
	cfg, _, logger, err := g.setup()
	if err != nil {
		return nil, err
	}
	defer func() { _ = logger.Sync() }()
	c, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	if err := c.Engine.BuildIndex(ctx); err != nil {
		return nil, err
	}
	return c.Engine.Search(ctx, req)
}
