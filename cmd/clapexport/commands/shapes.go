package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neurlang/clapmel/internal/dataset"
	"github.com/neurlang/clapmel/internal/export"
	"github.com/neurlang/clapmel/mel"
)

func newShapesCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "shapes FILE...",
		Short: "Print the extracted feature shapes of audio files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fe, err := newExtractor(configPath, false)
			if err != nil {
				return err
			}
			rate := fe.Config().SamplingRate
			out := cmd.OutOrStdout()
			for _, name := range args {
				samples, sr, err := mel.Load(name)
				if err != nil {
					return fmt.Errorf("load %s: %w", name, err)
				}
				if samples, err = dataset.Resample(samples, sr, rate); err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				batch, err := fe.ExtractContext(cmd.Context(), [][]float64{samples}, rate)
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				fmt.Fprintf(out, "%s (%d Hz, %d samples):\n\t%s\n", name, sr, len(samples), export.Describe(batch))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "optional JSON/YAML feature extractor config")
	return cmd
}
