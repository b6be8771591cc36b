package cli

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/image/draw"

	"voximg/pkg/volume"
)

func (c *CLI) previewCommand() *cobra.Command {
	var (
		inputPath string
		outputDir string
		series    bool
		scale     float64
		every     int
	)
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Export PNG slices of a volume for inspection",
		RunE: func(cmd *cobra.Command, args []string) error {
			vol, _, err := loadInput(inputPath, series, false, volume.Float64)
			if err != nil {
				return err
			}
			if vol.NDim() != 4 {
				return fmt.Errorf("preview needs a channel plus 3 spatial axes, image has %d axes", vol.NDim())
			}
			if every < 1 {
				return fmt.Errorf("slice step %d must be at least 1", every)
			}
			if scale <= 0 {
				return fmt.Errorf("scale factor %g must be positive", scale)
			}
			if err := os.MkdirAll(outputDir, 0755); err != nil {
				return fmt.Errorf("creating preview directory: %w", err)
			}
			shape := vol.Shape()
			count := 0
			for z := 0; z < shape[1]; z += every {
				img := sliceToImage(vol, z)
				if scale != 1 {
					img = scaleImage(img, scale)
				}
				name := filepath.Join(outputDir, fmt.Sprintf("slice_%03d.png", z))
				if err := writePNG(name, img); err != nil {
					return err
				}
				count++
			}
			c.logger.Infof("Wrote %d preview slices to %s", count, outputDir)
			return nil
		},
	}
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "input volume (DICOM file, series directory or raw)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "preview", "directory for PNG slices")
	cmd.Flags().BoolVar(&series, "series", false, "treat input as a DICOM series directory")
	cmd.Flags().Float64Var(&scale, "scale", 1, "scale factor for the exported slices")
	cmd.Flags().IntVar(&every, "every", 1, "export every n-th slice")
	cmd.MarkFlagRequired("input")
	return cmd
}

// sliceToImage renders one axial slice of channel 0 as 16-bit
// grayscale, stretching the volume's value range to full scale.
func sliceToImage(v *volume.Volume, z int) image.Image {
	shape := v.Shape()
	h, w := shape[2], shape[3]
	lo, hi := v.MinMax()
	span := hi - lo
	if span == 0 {
		span = 1
	}
	img := image.NewGray16(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			val := (v.At(0, z, y, x) - lo) / span
			img.SetGray16(x, y, color.Gray16{Y: uint16(val * 65535)})
		}
	}
	return img
}

func scaleImage(img image.Image, scale float64) image.Image {
	b := img.Bounds()
	out := image.NewGray16(image.Rect(0, 0,
		int(float64(b.Dx())*scale), int(float64(b.Dy())*scale)))
	draw.ApproxBiLinear.Scale(out, out.Bounds(), img, b, draw.Src, nil)
	return out
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}
