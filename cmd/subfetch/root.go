package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"subfetch/internal/catalog"
	"subfetch/internal/history"
	"subfetch/internal/language"
	"subfetch/internal/logging"
	"subfetch/internal/subtitle"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string
	var logFormatFlag string
	var langsFlag string
	var allFlag bool

	ctx := newCommandContext(&configFlag, &logLevelFlag, &logFormatFlag)

	rootCmd := &cobra.Command{
		Use:   "subfetch [flags] FILES...",
		Short: "Download subtitles matched by video fingerprint",
		Long: `subfetch fingerprints each video file and downloads the best-scored
subtitles for the requested languages from the OpenSubtitles catalog.
Output files are written next to their videos as <stem>.<lang>.<format>.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, ctx, langsFlag, allFlag, args)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Log format (console, json)")
	rootCmd.Flags().StringVarP(&langsFlag, "langs", "l", "", "Comma-separated subtitle languages (default from config, \"eng\")")
	rootCmd.Flags().BoolVarP(&allFlag, "all", "a", false, "Download every matching subtitle, not just the best one")

	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func runDownload(cmd *cobra.Command, cmdCtx *commandContext, langsFlag string, allFlag bool, files []string) error {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := cmdCtx.ensureLogger()
	if err != nil {
		return err
	}

	languages := cfg.RequestedLanguages()
	if trimmed := strings.TrimSpace(langsFlag); trimmed != "" {
		languages = strings.Split(trimmed, ",")
	}
	if len(languages) == 0 {
		return fmt.Errorf("no subtitle languages requested")
	}
	for _, lang := range languages {
		if !language.Known(lang) {
			logger.Warn("language token not recognized, passing through verbatim",
				logging.String(logging.FieldLanguage, lang))
		}
	}

	mode := subtitle.Best
	if allFlag || cfg.Subtitles.DownloadAll {
		mode = subtitle.All
	}

	client, err := catalog.New(catalog.Config{
		Endpoint:   cfg.Catalog.APIURL,
		UserAgent:  cfg.Catalog.UserAgent,
		HTTPClient: &http.Client{Timeout: cfg.RequestTimeout()},
	})
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	log := logger.With(logging.String(logging.FieldComponent, "download"), logging.String(logging.FieldRunID, runID))

	var journal subtitle.Journal
	if cfg.History.Enabled {
		store, storeErr := history.Open(cfg.HistoryDBPath())
		if storeErr != nil {
			log.Warn("history journal unavailable", logging.Error(storeErr))
		} else {
			defer store.Close()
			journal = store
		}
	}

	log.Info("starting run",
		logging.String(logging.FieldLanguage, strings.Join(languages, ",")),
		logging.String("mode", mode.String()),
		logging.Int("files", len(files)))

	token, err := client.Login(cmd.Context())
	if err != nil {
		return fmt.Errorf("authenticate with catalog: %w", err)
	}

	runner := &subtitle.Runner{
		Catalog:   client,
		Languages: languages,
		Mode:      mode,
		RunID:     runID,
		Logger:    log,
		Journal:   journal,
		Out:       cmd.OutOrStdout(),
		ErrOut:    cmd.ErrOrStderr(),
	}
	attempts := runner.Run(cmd.Context(), token, files)

	printRunSummary(cmd.ErrOrStderr(), attempts)

	// Per-unit failures were already reported; the batch itself succeeded.
	return nil
}
