package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperjump/smartsearch/internal/analytics"
	"github.com/hyperjump/smartsearch/internal/cli"
)

// client talks to a running server's HTTP API.
type client struct {
	baseURL string
	http    *http.Client
}

func newClient(baseURL string) *client {
	return &client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// do sends in as JSON (when non-nil) and decodes the response into out (when
// non-nil). Non-2xx responses become errors carrying the server's message.
func (c *client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(b, &e) == nil && e.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, e.Error)
		}
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func newAnalyticsCmd() *cobra.Command {
	var serverURL, start, end, output string
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show search analytics from a running server",
		Long: `Show search analytics from a running server.

--start and --end take RFC 3339 timestamps and are both inclusive.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := cli.ParseOutputFormat(output)
			if err != nil {
				return err
			}
			q := url.Values{}
			for name, v := range map[string]string{"start": start, "end": end} {
				if v == "" {
					continue
				}
				if _, err := time.Parse(time.RFC3339, v); err != nil {
					return fmt.Errorf("invalid --%s: expected RFC 3339", name)
				}
				q.Set(name, v)
			}
			path := "/api/v1/analytics"
			if len(q) > 0 {
				path += "?" + q.Encode()
			}
			var rep analytics.Report
			if err := newClient(serverURL).do(cmd.Context(), http.MethodGet, path, nil, &rep); err != nil {
				return err
			}
			return cli.WriteReport(cmd.OutOrStdout(), &rep, format)
		},
	}
	f := cmd.Flags()
	f.StringVar(&serverURL, "server", defaultServerURL, "server URL")
	f.StringVar(&start, "start", "", "report start (RFC 3339)")
	f.StringVar(&end, "end", "", "report end (RFC 3339)")
	f.StringVarP(&output, "output", "o", "text", "output format: text or json")
	return cmd
}

type statusResponse struct {
	Documents       int64            `json:"documents"`
	DocumentsByType map[string]int64 `json:"documents_by_type"`
	Index           struct {
		Generation uint64    `json:"generation"`
		Documents  int       `json:"documents"`
		BuiltAt    time.Time `json:"built_at"`
	} `json:"index"`
	CacheEnabled     bool     `json:"cache_enabled"`
	AnalyticsEvents  int      `json:"analytics_events"`
	DiskUsageBytes   *int64   `json:"disk_usage_bytes,omitempty"`
	WatchDirectories []string `json:"watch_directories,omitempty"`
}

func newStatusCmd() *cobra.Command {
	var serverURL, output string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show catalog and index status of a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := cli.ParseOutputFormat(output)
			if err != nil {
				return err
			}
			c := newClient(serverURL)
			if format == cli.OutputJSON {
				var raw map[string]interface{}
				if err := c.do(cmd.Context(), http.MethodGet, "/api/v1/status", nil, &raw); err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(raw)
			}
			var st statusResponse
			if err := c.do(cmd.Context(), http.MethodGet, "/api/v1/status", nil, &st); err != nil {
				return err
			}
			writeStatus(cmd.OutOrStdout(), &st)
			return nil
		},
	}
	cmd.Flags().StringVar(&serverURL, "server", defaultServerURL, "server URL")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text or json")
	return cmd
}

func writeStatus(w io.Writer, st *statusResponse) {
	fmt.Fprintf(w, "documents:        %d\n", st.Documents)
	types := make([]string, 0, len(st.DocumentsByType))
	for t := range st.DocumentsByType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(w, "  %-14s %d\n", t, st.DocumentsByType[t])
	}
	fmt.Fprintf(w, "index:            generation %d, %d document(s)\n", st.Index.Generation, st.Index.Documents)
	if !st.Index.BuiltAt.IsZero() {
		fmt.Fprintf(w, "index_built_at:   %s\n", st.Index.BuiltAt.Format(time.RFC3339))
	}
	fmt.Fprintf(w, "cache_enabled:    %t\n", st.CacheEnabled)
	fmt.Fprintf(w, "analytics_events: %d\n", st.AnalyticsEvents)
	if st.DiskUsageBytes != nil {
		fmt.Fprintf(w, "disk_usage:       %d bytes\n", *st.DiskUsageBytes)
	}
	for _, d := range st.WatchDirectories {
		fmt.Fprintf(w, "watching:         %s\n", d)
	}
}

func newDeleteCmd() *cobra.Command {
	var serverURL string
	cmd := &cobra.Command{
		Use:   "delete <document-id>",
		Short: "Delete a document from the catalog and the index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/documents/" + url.PathEscape(args[0])
			if err := newClient(serverURL).do(cmd.Context(), http.MethodDelete, path, nil, nil); err != nil {
				return err
			}
			cmd.Printf("Deleted %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&serverURL, "server", defaultServerURL, "server URL")
	return cmd
}

func newWatchCmd() *cobra.Command {
	var serverURL string
	var noSync bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Manage the directories a running server watches",
	}
	cmd.PersistentFlags().StringVar(&serverURL, "server", defaultServerURL, "server URL")

	list := &cobra.Command{
		Use:   "list",
		Short: "List watched directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp struct {
				Directories []string `json:"directories"`
			}
			if err := newClient(serverURL).do(cmd.Context(), http.MethodGet, "/api/v1/watch/directories", nil, &resp); err != nil {
				return err
			}
			for _, d := range resp.Directories {
				cmd.Println(d)
			}
			return nil
		},
	}
	add := &cobra.Command{
		Use:   "add <directory>",
		Short: "Watch a directory and index its files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sync := !noSync
			req := map[string]interface{}{"path": args[0], "sync": sync}
			var resp struct {
				Path string `json:"path"`
			}
			if err := newClient(serverURL).do(cmd.Context(), http.MethodPost, "/api/v1/watch/directories", req, &resp); err != nil {
				return err
			}
			cmd.Printf("Watching %s\n", resp.Path)
			return nil
		},
	}
	add.Flags().BoolVar(&noSync, "no-sync", false, "do not index files already in the directory")
	remove := &cobra.Command{
		Use:   "remove <directory>",
		Short: "Stop watching a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/watch/directories?" + url.Values{"path": {args[0]}}.Encode()
			var resp struct {
				Path string `json:"path"`
			}
			if err := newClient(serverURL).do(cmd.Context(), http.MethodDelete, path, nil, &resp); err != nil {
				return err
			}
			cmd.Printf("Stopped watching %s\n", resp.Path)
			return nil
		},
	}
	cmd.AddCommand(list, add, remove)
	return cmd
}
