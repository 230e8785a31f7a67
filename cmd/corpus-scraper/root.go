package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/Caia-Tech/bilingual-corpus/pkg/logging"
	"github.com/Caia-Tech/bilingual-corpus/pkg/pipeline"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// app carries state shared by every subcommand
type app struct {
	cfgFile   string
	logLevel  string
	logFormat string
	config    *pipeline.Config
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "corpus-scraper",
		Short: "Build an English/Chinese parallel corpus from bilingual blogs",
		Long: `corpus-scraper discovers articles on a blog's Chinese listing page,
pairs each with its English counterpart, extracts both and exports the pairs
as a dataset directory and a JSON-lines file.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is ./corpus.yaml or ./config/corpus.yaml)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: pretty or json")

	root.AddCommand(
		newScrapeCommand(a),
		newSitesCommand(a),
		newInspectCommand(),
		newVersionCommand(),
	)
	return root
}

// setup loads .env and the config file and initializes logging.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := pipeline.Load(a.cfgFile)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = a.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Logging.Format = a.logFormat
	}
	if err := logging.SetupLogger(cfg.Logging); err != nil {
		return err
	}

	a.config = cfg
	log.Debug().Str("config", a.cfgFile).Strs("sites", cfg.SiteNames()).Msg("Configuration loaded")
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		// no config needed
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "corpus-scraper version %s\n", version)
		},
	}
}
