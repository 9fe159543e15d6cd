package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

type infoLine struct {
	Path              string  `json:"path"`
	CreationDate      float64 `json:"creationDate"`
	ModificationDate  float64 `json:"modificationDate"`
	ImageCreationDate float64 `json:"imageCreationDate"`
}

func newInfoCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info <path>...",
		Short: "Print file and capture dates as epoch seconds",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := opts.dispatcher()
			if err != nil {
				return err
			}
			defer d.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, path := range args {
				line := infoLine{Path: path}
				if line.CreationDate, err = d.CreationDate(path); err != nil {
					return err
				}
				if line.ModificationDate, err = d.ModificationDate(path); err != nil {
					return err
				}
				if line.ImageCreationDate, err = d.ImageCreationDate(path); err != nil {
					return err
				}
				if err := enc.Encode(line); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
