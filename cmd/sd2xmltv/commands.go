// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ManuGH/sd2xmltv/internal/config"
	"github.com/ManuGH/sd2xmltv/internal/epg"
	"github.com/ManuGH/sd2xmltv/internal/jobs"
	xglog "github.com/ManuGH/sd2xmltv/internal/log"
	"github.com/ManuGH/sd2xmltv/internal/netutil"
	"github.com/ManuGH/sd2xmltv/internal/version"
	"github.com/spf13/cobra"
)

// refreshFunc is swapped in tests.
var refreshFunc = jobs.Refresh

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "sd2xmltv",
		Short:         "Build an XMLTV guide from Schedules Direct",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRefresh(cmd.Context(), cmd.OutOrStdout(), configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"path to YAML config file (default $"+config.EnvConfigPath+")")

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Fetch listings and write the guide (default)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runRefresh(cmd.Context(), cmd.OutOrStdout(), configPath)
			},
		},
		&cobra.Command{
			Use:   "check <file>",
			Short: "Parse an XMLTV file and verify its consistency",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runCheck(cmd.OutOrStdout(), args[0])
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print build information",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintln(cmd.OutOrStdout(), version.String())
			},
		},
	)
	return root
}

func runRefresh(ctx context.Context, out io.Writer, configPath string) error {
	// Configure logger with safe defaults until config is loaded
	xglog.Configure(xglog.Config{Level: "info", Version: version.Version})
	logger := xglog.WithComponent("cli")

	path := strings.TrimSpace(configPath)
	if path == "" {
		path = strings.TrimSpace(config.ParseString(config.EnvConfigPath, ""))
	}

	cfg, err := config.NewLoader(path, version.Version).Load()
	if err != nil {
		return err
	}

	xglog.Configure(xglog.Config{Level: cfg.LogLevel, Version: cfg.Version})
	logger = xglog.WithComponent("cli")
	logger.Info().
		Str(xglog.FieldEvent, "config.loaded").
		Str(xglog.FieldPath, path).
		Str(xglog.FieldBaseURL, netutil.SanitizeURL(cfg.BaseURL)).
		Msg("configuration loaded")

	st, err := refreshFunc(ctx, cfg)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "wrote %s: %d channels, %d programmes\n", st.OutputPath, st.Channels, st.Programmes)
	return err
}

func runCheck(out io.Writer, path string) error {
	tv, err := epg.ReadXMLTV(path)
	if err != nil {
		return err
	}
	if err := epg.Check(tv); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	_, err = fmt.Fprintf(out, "%s: %d channels, %d programmes, OK\n", path, len(tv.Channels), len(tv.Programmes))
	return err
}
