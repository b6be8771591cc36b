package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"voximg/pkg/config"
	"voximg/pkg/volume"
)

func (c *CLI) applyCommand() *cobra.Command {
	var (
		configPath string
		inputPath  string
		outputPath string
		series     bool
	)
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Run a preprocessing pipeline over a volume",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			dtype, err := volume.ParseDType(cfg.Input.DType)
			if err != nil {
				return err
			}
			pipeline, err := config.Build(cfg)
			if err != nil {
				return fmt.Errorf("building pipeline: %w", err)
			}

			p := newProgress(c.logger)
			vol, meta, err := loadInput(inputPath, series || cfg.Input.Series, cfg.Input.CanonicalAxes, dtype)
			if err != nil {
				return err
			}
			c.logger.Debug("loaded volume", "shape", vol.Shape(), "dtype", vol.DType())
			if meta != nil {
				c.logger.Debug("metadata", "path", meta.Path, "canonical", meta.CanonicalApplied)
			}

			out, err := pipeline.Apply(vol)
			if err != nil {
				return err
			}
			if err := writeVolume(outputPath, out); err != nil {
				return err
			}
			p.done(fmt.Sprintf("Applied %d stages, wrote %v volume to %s", pipeline.Len(), out.Shape(), outputPath))
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "pipeline.yaml", "pipeline configuration file")
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "input volume (DICOM file, series directory or raw)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "output.raw", "output raw volume path")
	cmd.Flags().BoolVar(&series, "series", false, "treat input as a DICOM series directory")
	cmd.MarkFlagRequired("input")
	return cmd
}
