package config

import (
	"fmt"

	"voximg/pkg/random"
	"voximg/pkg/transform"
	"voximg/pkg/volume"
)

// Build turns the configured stages into a runnable pipeline. All
// randomized stages share one source seeded from cfg.Seed, so a fixed
// seed replays the exact same sequence of random outcomes.
func Build(cfg *Config) (*transform.Pipeline, error) {
	src := random.NewSource(cfg.Seed)
	p := transform.NewPipeline()
	for i, stage := range cfg.Pipeline {
		t, err := buildStage(stage, src)
		if err != nil {
			return nil, fmt.Errorf("stage %d (%s): %w", i, stage.Name, err)
		}
		p.Add(stage.Name, t)
	}
	return p, nil
}

func buildStage(s StageConfig, src *random.Source) (transform.Transform, error) {
	dtype, err := volume.ParseDType(s.DType)
	if err != nil {
		return nil, err
	}
	switch s.Name {
	case "aschannelfirst":
		return transform.NewAsChannelFirst(intOr(s.ChannelDim, -1)), nil

	case "addchannel":
		return transform.NewAddChannel(), nil

	case "transpose":
		return transform.NewTranspose(s.Indices), nil

	case "rescale":
		return transform.NewRescale(floatOr(s.MinV, 0), floatOr(s.MaxV, 1), dtype), nil

	case "flip":
		return transform.NewFlip(s.Axes), nil

	case "endpad":
		mode, err := volume.ParsePadMode(s.Mode)
		if err != nil {
			return nil, err
		}
		return transform.NewImageEndPadder(s.OutSize, mode, s.CVal, dtype)

	case "resize":
		mode, err := volume.ParsePadMode(modeOr(s.Mode, "reflect"))
		if err != nil {
			return nil, err
		}
		return transform.NewResize(s.OutputShape, intOr(s.Order, 1), mode, s.CVal,
			boolOr(s.Clip, true), boolOr(s.PreserveRange, true),
			boolOr(s.AntiAliasing, true), s.AntiAliasingSigma)

	case "rotate":
		mode, err := volume.ParsePadMode(s.Mode)
		if err != nil {
			return nil, err
		}
		axes, err := planeAxes(s.PlaneAxes)
		if err != nil {
			return nil, err
		}
		return transform.NewRotate(s.Angle, axes, boolOr(s.Reshape, true),
			intOr(s.Order, transform.RotateDefaultOrder), mode, s.CVal,
			boolOr(s.Prefilter, true))

	case "zoom":
		mode, err := volume.ParsePadMode(s.Mode)
		if err != nil {
			return nil, err
		}
		return transform.NewZoom(s.Factors, intOr(s.Order, 3), mode, s.CVal,
			boolOr(s.Prefilter, true), s.UseFast, s.KeepSize)

	case "rotate90":
		axes, err := planeAxes(s.PlaneAxes)
		if err != nil {
			return nil, err
		}
		k := s.K
		if k == 0 {
			k = 1
		}
		return transform.NewRotate90(k, axes), nil

	case "randrotate90":
		axes, err := planeAxes(s.PlaneAxes)
		if err != nil {
			return nil, err
		}
		return transform.NewRandRotate90(floatOr(s.Prob, 0.1), intOr(s.MaxK, 3), axes, src)

	case "spatialcrop":
		if len(s.Center) > 0 || len(s.Size) > 0 {
			return transform.NewSpatialCropCenter(s.Center, s.Size)
		}
		return transform.NewSpatialCropRange(s.Start, s.End)

	case "randompatch":
		return transform.NewUniformRandomPatch(s.PatchSize, src)

	case "gaussiannoise":
		std := s.Std
		if std == 0 {
			std = 0.1
		}
		return transform.NewGaussianNoise(s.Mean, std, src)

	case "normalize":
		var sub, div *volume.Volume
		if len(s.Subtrahend) > 0 || len(s.Divisor) > 0 {
			if sub, err = operandVolume(s.Subtrahend); err != nil {
				return nil, fmt.Errorf("subtrahend: %w", err)
			}
			if div, err = operandVolume(s.Divisor); err != nil {
				return nil, fmt.Errorf("divisor: %w", err)
			}
		}
		return transform.NewIntensityNormalizer(sub, div, dtype)
	}
	return nil, fmt.Errorf("unknown transform %q", s.Name)
}

// operandVolume wraps a flat value list as a 1-D volume; nil stays nil
// so the pairing check in the normalizer can fire.
func operandVolume(vals []float64) (*volume.Volume, error) {
	if len(vals) == 0 {
		return nil, nil
	}
	return volume.FromValues(append([]float64(nil), vals...), []int{len(vals)})
}

func planeAxes(axes []int) ([2]int, error) {
	if len(axes) == 0 {
		return [2]int{1, 2}, nil
	}
	if len(axes) != 2 {
		return [2]int{}, fmt.Errorf("plane axes need exactly 2 entries, got %d", len(axes))
	}
	return [2]int{axes[0], axes[1]}, nil
}

func intOr(p *int, def int) int {
	if p != nil {
		return *p
	}
	return def
}

func floatOr(p *float64, def float64) float64 {
	if p != nil {
		return *p
	}
	return def
}

func boolOr(p *bool, def bool) bool {
	if p != nil {
		return *p
	}
	return def
}

func modeOr(mode, def string) string {
	if mode == "" {
		return def
	}
	return mode
}
