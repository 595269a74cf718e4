// Package cdfio loads NetCDF classic (V1/V2) files into seagrid datasets.
//
// The reader pulls every fixed-size numeric variable into memory, widening
// to float64, and carries all global and per-variable attributes across, so
// the result is directly usable with seagrid.Detect and seagrid.Bind:
//
//	ds, err := cdfio.Open("gbr4_simple.nc")
//	if err != nil {
//	    return err
//	}
//	grid, err := seagrid.Bind(ds, nil)
//
// The HDF5-based NetCDF-4 format is not supported, and neither are record
// (unlimited-dimension) variables: both are skipped or rejected by the
// underlying classic-format decoder.
package cdfio

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"

	"github.com/seagrid/seagrid/pkg/seagrid"
)

// Options configures reading behavior.
type Options struct {
	// Logger receives structured events for skipped variables. Default is
	// nil - no logging.
	Logger *slog.Logger
}

// logger resolves the configured logger, tolerating a nil receiver.
func (o *Options) logger() *slog.Logger {
	if o == nil || o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

// Open reads the NetCDF classic file at path.
func Open(path string) (*seagrid.Dataset, error) {
	return OpenWith(path, nil)
}

// OpenWith reads the NetCDF classic file at path with explicit options.
func OpenWith(path string, opts *Options) (*seagrid.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cdfio: %w", err)
	}
	defer f.Close()
	return ReadWith(f, opts)
}

// Read decodes a NetCDF classic stream into a dataset.
func Read(r io.ReaderAt) (*seagrid.Dataset, error) {
	return ReadWith(r, nil)
}

// ReadWith decodes a NetCDF classic stream with explicit options.
//
// Variables that cannot become dataset payloads are skipped, not failed:
// text variables, and variables on the record dimension. Skips are logged
// at debug level.
func ReadWith(r io.ReaderAt, opts *Options) (*seagrid.Dataset, error) {
	f, err := cdf.Open(readOnly{r})
	if err != nil {
		return nil, fmt.Errorf("cdfio: open header: %w", err)
	}
	log := opts.logger()

	ds := seagrid.NewDataset()
	for _, name := range f.Header.Attributes("") {
		ds.SetAttr(name, f.Header.GetAttribute("", name))
	}

	for _, name := range f.Header.Variables() {
		lengths := f.Header.Lengths(name)
		n := 1
		for _, l := range lengths {
			n *= l
		}
		if n == 0 {
			log.Debug("skipping record variable", "variable", name)
			continue
		}

		vr := f.Reader(name, nil, nil)
		buf := vr.Zero(n)
		if _, err := vr.Read(buf); err != nil {
			return nil, fmt.Errorf("cdfio: read variable %s: %w", name, err)
		}
		elements, ok := widen(buf)
		if !ok {
			log.Debug("skipping non-numeric variable",
				"variable", name, "type", fmt.Sprintf("%T", buf))
			continue
		}
		if len(elements) != n {
			return nil, fmt.Errorf("cdfio: variable %s: read %d of %d values",
				name, len(elements), n)
		}

		data := sparse.ZerosDense(lengths...)
		copy(data.Elements, elements)
		v := seagrid.NewVariable(name, f.Header.Dimensions(name), data)
		for _, attr := range f.Header.Attributes(name) {
			v.Attrs[attr] = f.Header.GetAttribute(name, attr)
		}
		if err := ds.AddVariable(v); err != nil {
			return nil, fmt.Errorf("cdfio: %w", err)
		}
		log.Debug("loaded variable", "variable", name, "values", n)
	}
	return ds, nil
}

// readOnly adapts an io.ReaderAt to cdf.ReaderWriterAt; decoding never
// writes, so WriteAt only satisfies the interface.
type readOnly struct {
	io.ReaderAt
}

func (readOnly) WriteAt([]byte, int64) (int, error) {
	return 0, fmt.Errorf("cdfio: stream is read-only")
}

// widen converts a typed read buffer to float64 elements. The classic
// numeric types are byte, short, int, float and double; char buffers fall
// through as non-numeric.
func widen(buf interface{}) ([]float64, bool) {
	switch v := buf.(type) {
	case []float64:
		return v, true
	case []float32:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, true
	case []int32:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, true
	case []int16:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, true
	case []int8:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, true
	default:
		return nil, false
	}
}
