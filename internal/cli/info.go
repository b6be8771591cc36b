package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"voximg/pkg/volume"
)

func (c *CLI) infoCommand() *cobra.Command {
	var (
		inputPath string
		series    bool
	)
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Print shape, statistics and metadata of a volume",
		RunE: func(cmd *cobra.Command, args []string) error {
			vol, meta, err := loadInput(inputPath, series, false, volume.Float64)
			if err != nil {
				return err
			}
			lo, hi := vol.MinMax()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "shape:  %v\n", vol.Shape())
			fmt.Fprintf(out, "dtype:  %s\n", vol.DType())
			fmt.Fprintf(out, "range:  [%g, %g]\n", lo, hi)
			fmt.Fprintf(out, "mean:   %g\n", stat.Mean(vol.Data(), nil))
			fmt.Fprintf(out, "stddev: %g\n", stat.PopStdDev(vol.Data(), nil))
			if meta != nil {
				fmt.Fprintf(out, "source: %s\n", meta.Path)
				fmt.Fprintf(out, "affine:\n")
				for i := 0; i < 4; i++ {
					fmt.Fprintf(out, "  [% .3f % .3f % .3f % .3f]\n",
						meta.Affine.At(i, 0), meta.Affine.At(i, 1), meta.Affine.At(i, 2), meta.Affine.At(i, 3))
				}
				keys := make([]string, 0, len(meta.Elements))
				for k := range meta.Elements {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					fmt.Fprintf(out, "%s: %v\n", k, meta.Elements[k])
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "input volume (DICOM file, series directory or raw)")
	cmd.Flags().BoolVar(&series, "series", false, "treat input as a DICOM series directory")
	cmd.MarkFlagRequired("input")
	return cmd
}
