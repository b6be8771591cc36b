// Package dicomio loads DICOM files and series into voximg volumes.
// It is a thin bridge over the suyashkumar/dicom parser: pixel data
// becomes a channel-first volume, and a filtered metadata record
// carries the source path, the spatial affine at load time and the
// scalar DICOM elements. Container parsing details stay inside the
// external library.
package dicomio

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"voximg/pkg/volume"
)

// Tags used for geometry and intensity scaling; declared locally so
// the bridge does not depend on the parser's generated name table.
var (
	tagImagePositionPatient    = tag.Tag{Group: 0x0020, Element: 0x0032}
	tagImageOrientationPatient = tag.Tag{Group: 0x0020, Element: 0x0037}
	tagPixelSpacing            = tag.Tag{Group: 0x0028, Element: 0x0030}
	tagSliceThickness          = tag.Tag{Group: 0x0018, Element: 0x0050}
	tagSpacingBetweenSlices    = tag.Tag{Group: 0x0018, Element: 0x0088}
	tagRescaleIntercept        = tag.Tag{Group: 0x0028, Element: 0x1052}
	tagRescaleSlope            = tag.Tag{Group: 0x0028, Element: 0x1053}
	tagInstanceNumber          = tag.Tag{Group: 0x0020, Element: 0x0013}
)

// Options configure loading.
type Options struct {
	// CanonicalAxes reorients the volume so the spatial axes align
	// with the positive anatomical directions, updating the current
	// affine while keeping the original one.
	CanonicalAxes bool

	// DType casts the loaded volume; the zero value keeps Float64.
	DType volume.DType
}

// Load reads a single DICOM file into a channel-first volume of shape
// (1, frames, rows, cols) together with its metadata.
func Load(path string, opts Options) (*volume.Volume, *Metadata, error) {
	ds, err := dicom.ParseFile(path, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	frames, rows, cols, err := pixelFrames(&ds)
	if err != nil {
		return nil, nil, fmt.Errorf("pixel data of %s: %w", path, err)
	}
	slope, intercept := rescaleSlopeIntercept(&ds)

	data := make([]float64, 0, len(frames)*rows*cols)
	for _, fr := range frames {
		for _, px := range fr {
			data = append(data, px*slope+intercept)
		}
	}
	vol, err := volume.FromValues(data, []int{1, len(frames), rows, cols})
	if err != nil {
		return nil, nil, err
	}

	meta := newMetadata(path, &ds)
	meta.OriginalAffine = affineFromDataset(&ds, sliceSpacing(&ds))
	meta.Affine = cloneAffine(meta.OriginalAffine)
	if opts.CanonicalAxes {
		vol, err = canonicalize(vol, meta)
		if err != nil {
			return nil, nil, err
		}
	}
	if opts.DType != volume.Float64 {
		vol = vol.AsType(opts.DType)
	}
	return vol, meta, nil
}

// LoadSeries reads every .dcm file under dir, orders the slices by
// instance number, and stacks them into a channel-first volume of
// shape (1, slices, rows, cols). Geometry metadata comes from the
// first slice.
func LoadSeries(dir string, opts Options) (*volume.Volume, *Metadata, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading series directory: %w", err)
	}
	type slice struct {
		path     string
		instance int
		pixels   []float64
		rows     int
		cols     int
		ds       dicom.Dataset
	}
	var slices []slice
	for _, e := range entries {
		if e.IsDir() || strings.ToLower(filepath.Ext(e.Name())) != ".dcm" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		ds, err := dicom.ParseFile(path, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		frames, rows, cols, err := pixelFrames(&ds)
		if err != nil {
			return nil, nil, fmt.Errorf("pixel data of %s: %w", path, err)
		}
		slope, intercept := rescaleSlopeIntercept(&ds)
		pixels := make([]float64, 0, len(frames)*rows*cols)
		for _, fr := range frames {
			for _, px := range fr {
				pixels = append(pixels, px*slope+intercept)
			}
		}
		slices = append(slices, slice{
			path:     path,
			instance: instanceNumber(&ds),
			pixels:   pixels,
			rows:     rows,
			cols:     cols,
			ds:       ds,
		})
	}
	if len(slices) == 0 {
		return nil, nil, fmt.Errorf("no DICOM files in %s", dir)
	}
	sort.Slice(slices, func(i, j int) bool { return slices[i].instance < slices[j].instance })

	rows, cols := slices[0].rows, slices[0].cols
	data := make([]float64, 0, len(slices)*rows*cols)
	for i, s := range slices {
		if s.rows != rows || s.cols != cols {
			return nil, nil, fmt.Errorf("slice %d is %dx%d, series started %dx%d", i, s.rows, s.cols, rows, cols)
		}
		data = append(data, s.pixels...)
	}
	vol, err := volume.FromValues(data, []int{1, len(slices), rows, cols})
	if err != nil {
		return nil, nil, err
	}

	first := &slices[0].ds
	meta := newMetadata(dir, first)
	meta.OriginalAffine = affineFromDataset(first, sliceSpacing(first))
	meta.Affine = cloneAffine(meta.OriginalAffine)
	if opts.CanonicalAxes {
		vol, err = canonicalize(vol, meta)
		if err != nil {
			return nil, nil, err
		}
	}
	if opts.DType != volume.Float64 {
		vol = vol.AsType(opts.DType)
	}
	return vol, meta, nil
}

// pixelFrames extracts the native pixel frames of a dataset as flat
// row-major float slices, first sample per pixel.
func pixelFrames(ds *dicom.Dataset) (frames [][]float64, rows, cols int, err error) {
	el, err := ds.FindElementByTag(tag.PixelData)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("no pixel data element: %w", err)
	}
	info, ok := el.Value.GetValue().(dicom.PixelDataInfo)
	if !ok {
		return nil, 0, 0, fmt.Errorf("unexpected pixel data value kind %v", el.Value.ValueType())
	}
	for i := range info.Frames {
		fr := info.Frames[i]
		if fr.Encapsulated {
			return nil, 0, 0, fmt.Errorf("frame %d is encapsulated; only native pixel data is supported", i)
		}
		nat := fr.NativeData
		rows, cols = nat.Rows, nat.Cols
		flat := make([]float64, len(nat.Data))
		for p, samples := range nat.Data {
			flat[p] = float64(samples[0])
		}
		frames = append(frames, flat)
	}
	if len(frames) == 0 {
		return nil, 0, 0, fmt.Errorf("pixel data holds no frames")
	}
	return frames, rows, cols, nil
}

// rescaleSlopeIntercept returns the modality LUT scaling, defaulting
// to identity when the elements are absent.
func rescaleSlopeIntercept(ds *dicom.Dataset) (slope, intercept float64) {
	slope = 1
	if v, ok := elementFloats(ds, tagRescaleSlope); ok && len(v) > 0 && v[0] != 0 {
		slope = v[0]
	}
	if v, ok := elementFloats(ds, tagRescaleIntercept); ok && len(v) > 0 {
		intercept = v[0]
	}
	return slope, intercept
}

func instanceNumber(ds *dicom.Dataset) int {
	if v, ok := elementFloats(ds, tagInstanceNumber); ok && len(v) > 0 {
		return int(v[0])
	}
	return 0
}

// sliceSpacing prefers the explicit inter-slice spacing and falls back
// to slice thickness, then 1.
func sliceSpacing(ds *dicom.Dataset) float64 {
	if v, ok := elementFloats(ds, tagSpacingBetweenSlices); ok && len(v) > 0 && v[0] != 0 {
		return v[0]
	}
	if v, ok := elementFloats(ds, tagSliceThickness); ok && len(v) > 0 && v[0] != 0 {
		return v[0]
	}
	return 1
}

// elementFloats reads an element's value as floats, accepting float,
// int and decimal-string encodings.
func elementFloats(ds *dicom.Dataset, t tag.Tag) ([]float64, bool) {
	el, err := ds.FindElementByTag(t)
	if err != nil {
		return nil, false
	}
	switch v := el.Value.GetValue().(type) {
	case []float64:
		return v, true
	case []int:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, true
	case []string:
		out := make([]float64, 0, len(v))
		for _, s := range v {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, false
			}
			out = append(out, f)
		}
		return out, true
	}
	return nil, false
}
