package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/smartsearch/internal/config"
	"github.com/hyperjump/smartsearch/pkg/utils"
)

const (
	defaultConfigPath = "/usr/local/etc/smartsearch/config.yaml"
	defaultServerURL  = "http://localhost:8080"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	debug      bool
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}
	root := &cobra.Command{
		Use:   "smartsearch",
		Short: "Unified keyword, fuzzy and semantic search over health content",
		Long: `smartsearch - unified search for articles, PDFs, tools and guides
  - keyword, fuzzy and TF-IDF semantic retrieval fused into one ranking
  - medical synonym expansion and query intent weighting
  - HTTP API, directory watching and search analytics`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", defaultConfigPath, "config file path")
	root.PersistentFlags().BoolVar(&g.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newServeCmd(g),
		newSearchCmd(g),
		newIndexCmd(g),
		newAnalyticsCmd(),
		newStatusCmd(),
		newDeleteCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)
	return root
}

// loadConfig loads config from path. When path is the default and a
// config.yaml exists in the working directory, that file is used instead.
// Returns the config and the path actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, err := os.Getwd(); err == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, err := os.Stat(fallback); err == nil {
				path = fallback
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// setup loads the config and builds the logger.
func (g *globalOptions) setup() (*config.Config, string, *zap.Logger, error) {
	cfg, path, err := loadConfig(g.configPath)
	if err != nil {
		return nil, "", nil, err
	}
	logger, err := utils.NewLogger(cfg.Debug || g.debug)
	if err != nil {
		return nil, "", nil, err
	}
	logger.Debug("Config loaded", zap.String("config_path", path))
	return cfg, path, logger, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("smartsearch version %s\n", version)
		},
	}
}
