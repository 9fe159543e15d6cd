package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.aimuz.me/foto/imageutil"
	"go.aimuz.me/foto/internal/types"
)

func newTransformCmd(opts *rootOptions) *cobra.Command {
	var (
		op      string
		quality float64
		auto    bool
	)

	cmd := &cobra.Command{
		Use:   "transform <path>...",
		Short: "Rotate or flip images in place",
		Long: `Rotate or flip images in place. JPEG files are transformed losslessly
with jpegtran when possible; other files are re-encoded with sips.

Operations: rotate90cw, rotate90ccw, rotate180, fliphorizontal, flipvertical.

Examples:
  foto-bridge transform --op rotate90cw IMG_0001.jpg
  foto-bridge transform --auto *.jpg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !auto && op == "" {
				return fmt.Errorf("one of --op or --auto is required")
			}
			if !cmd.Flags().Changed("quality") {
				quality = opts.cfg.JPEGCompression
			}

			var t imageutil.Transform
			if !auto {
				var err error
				if t, err = imageutil.ParseTransform(op); err != nil {
					return err
				}
			}

			d, err := opts.dispatcher()
			if err != nil {
				return err
			}
			defer d.Close()

			for _, path := range args {
				var changed bool
				if auto {
					changed, err = d.LosslessRotate(cmd.Context(), path)
				} else {
					changed, err = d.TransformImage(cmd.Context(), types.TransformRequest{
						Filepath:        path,
						Transformation:  int(t),
						JPEGCompression: quality,
					})
				}
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%t\n", path, changed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&op, "op", "", "Transformation to apply")
	cmd.Flags().Float64VarP(&quality, "quality", "q", 0, "JPEG quality 0..1 when re-encoding (default from config)")
	cmd.Flags().BoolVar(&auto, "auto", false, "Rotate upright from the EXIF orientation, losslessly")
	cmd.MarkFlagsMutuallyExclusive("op", "auto")
	return cmd
}
