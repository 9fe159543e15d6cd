package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"go.aimuz.me/foto/bridge"
	"go.aimuz.me/foto/config"
	"go.aimuz.me/foto/internal/logging"
)

var version = "dev"

type rootOptions struct {
	configPath string
	logLevel   string

	cfg     *config.Config
	logFile io.WriteCloser
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "foto-bridge",
		Short:         "Native bridge for the foto image viewer",
		Version:       version,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.close()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Configuration file path (default: user config dir)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newIconCmd(opts),
		newInfoCmd(opts),
		newTransformCmd(opts),
	)
	return rootCmd
}

// load reads the configuration and installs the logger. Logs go to
// stderr; stdout belongs to command output and the bridge protocol.
func (o *rootOptions) load(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFrom(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := cfg.LogLevel
	if o.logLevel != "" {
		level = o.logLevel
	}
	out := cmd.ErrOrStderr()
	if cfg.LogFile != "" {
		o.logFile = logging.File(cfg.LogFile)
		out = o.logFile
	}
	logging.Setup(out, level)

	o.cfg = cfg
	return nil
}

// close flushes and closes the log file, if one was opened.
func (o *rootOptions) close() error {
	if o.logFile == nil {
		return nil
	}
	err := o.logFile.Close()
	o.logFile = nil
	if err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	return nil
}

func (o *rootOptions) dispatcher() (*bridge.Dispatcher, error) {
	d, err := bridge.Open(o.cfg)
	if err != nil {
		return nil, fmt.Errorf("open bridge: %w", err)
	}
	return d, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
