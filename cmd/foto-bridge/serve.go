package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/text/unicode/norm"

	"go.aimuz.me/foto/bridge"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "serve [files...]",
		Short: "Serve bridge requests on stdin/stdout",
		Long: `Serve length-prefixed JSON requests on stdin and write responses and
file-open events to stdout. Files given as arguments are recorded as
opened at launch, the first one becoming the initial file.

Examples:
  # Start the bridge with a launch file
  foto-bridge serve ~/Pictures/IMG_0001.jpg

  # Allow more concurrent requests
  foto-bridge serve --workers 16`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			d, err := opts.dispatcher()
			if err != nil {
				return err
			}
			defer d.Close()

			files := make([]string, 0, len(args))
			for _, a := range args {
				files = append(files, norm.NFC.String(a))
			}
			d.Opens().RecordOpenFiles(files)

			n := opts.cfg.Workers()
			if cmd.Flags().Changed("workers") {
				n = max(workers, 1)
			}
			slog.Info("serve bridge", "workers", n, "icon_store", opts.cfg.IconStore)

			err = bridge.NewServer(d, n).Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
			if errors.Is(err, context.Canceled) {
				slog.Info("serve stopped")
				return nil
			}
			return err
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Maximum concurrent requests (overrides config)")
	return cmd
}
