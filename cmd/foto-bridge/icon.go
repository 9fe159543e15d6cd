package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

type iconLine struct {
	Path   string `json:"path"`
	Key    string `json:"key,omitempty"`
	Bytes  int    `json:"bytes"`
	Cached bool   `json:"cached"`
	File   string `json:"file,omitempty"`
	Error  string `json:"error,omitempty"`
}

func newIconCmd(opts *rootOptions) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "icon <path>...",
		Short: "Resolve platform icons and report their cache keys",
		Long: `Resolve the platform icon of each path through the icon cache and print
one JSON line per path. Paths sharing an icon report the same key; only
the first carries bytes.

Examples:
  foto-bridge icon ~/Pictures/*.jpg
  foto-bridge icon --out /tmp/icons /Applications/Safari.app`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := opts.dispatcher()
			if err != nil {
				return err
			}
			defer d.Close()

			if outDir != "" {
				if err := os.MkdirAll(outDir, 0755); err != nil {
					return fmt.Errorf("create output dir: %w", err)
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			failed := 0
			for i, path := range args {
				line := iconLine{Path: path}
				icon, err := d.PlatformIcon(path)
				if err != nil {
					failed++
					line.Error = err.Error()
				} else {
					line.Key = icon.Key
					line.Bytes = len(icon.PNG)
					line.Cached = icon.PNG == nil
				}

				if outDir != "" && len(icon.PNG) > 0 {
					line.File = filepath.Join(outDir, fmt.Sprintf("icon-%03d.png", i))
					if err := os.WriteFile(line.File, icon.PNG, 0644); err != nil {
						return fmt.Errorf("write icon: %w", err)
					}
				}
				if err := enc.Encode(line); err != nil {
					return err
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d icons failed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Write first-sighting PNGs to this directory")
	return cmd
}
