package cli

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"voximg/pkg/dicomio"
	"voximg/pkg/volume"
)

// sidecar describes a raw volume file: element layout and shape. It
// sits next to the .raw file with a .yaml extension.
type sidecar struct {
	Shape []int  `yaml:"shape"`
	DType string `yaml:"dtype"`
}

// writeVolume dumps the volume as little-endian float64 values with a
// YAML sidecar describing shape and dtype.
func writeVolume(path string, v *volume.Volume) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()
	if err := binary.Write(f, binary.LittleEndian, v.Data()); err != nil {
		return fmt.Errorf("writing volume data: %w", err)
	}
	sc := sidecar{Shape: v.Shape(), DType: v.DType().String()}
	data, err := yaml.Marshal(&sc)
	if err != nil {
		return fmt.Errorf("marshaling sidecar: %w", err)
	}
	if err := os.WriteFile(sidecarPath(path), data, 0644); err != nil {
		return fmt.Errorf("writing sidecar: %w", err)
	}
	return nil
}

// readVolume loads a raw volume written by writeVolume.
func readVolume(path string) (*volume.Volume, error) {
	data, err := os.ReadFile(sidecarPath(path))
	if err != nil {
		return nil, fmt.Errorf("reading sidecar: %w", err)
	}
	var sc sidecar
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parsing sidecar: %w", err)
	}
	dtype, err := volume.ParseDType(sc.DType)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening volume file: %w", err)
	}
	defer f.Close()
	n := 1
	for _, s := range sc.Shape {
		n *= s
	}
	values := make([]float64, n)
	if err := binary.Read(f, binary.LittleEndian, values); err != nil {
		return nil, fmt.Errorf("reading volume data: %w", err)
	}
	v, err := volume.FromValues(values, sc.Shape)
	if err != nil {
		return nil, err
	}
	v.SetDType(dtype)
	return v, nil
}

func sidecarPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".yaml"
}

// loadInput reads a volume from path: a DICOM file or series when the
// extension or series flag says so, otherwise a raw volume with
// sidecar. The metadata is nil for raw input.
func loadInput(path string, series, canonical bool, dtype volume.DType) (*volume.Volume, *dicomio.Metadata, error) {
	opts := dicomio.Options{CanonicalAxes: canonical, DType: dtype}
	if series {
		return dicomio.LoadSeries(path, opts)
	}
	if strings.EqualFold(filepath.Ext(path), ".dcm") {
		return dicomio.Load(path, opts)
	}
	v, err := readVolume(path)
	return v, nil, err
}
