package cdfio

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ctessum/cdf"

	"github.com/seagrid/seagrid/pkg/seagrid"
)

// writeTestFile writes a small classic NetCDF file: a 3x4 lat/lon grid with
// float, int and byte payloads, plus a record variable that carries no
// records.
func writeTestFile(t *testing.T) string {
	t.Helper()

	h := cdf.NewHeader([]string{"time", "lat", "lon"}, []int{0, 3, 4})
	h.AddAttribute("", "title", "test ocean grid")

	h.AddVariable("lat", []string{"lat"}, []float64{0})
	h.AddAttribute("lat", "units", "degrees_north")
	h.AddVariable("lon", []string{"lon"}, []float64{0})
	h.AddAttribute("lon", "units", "degrees_east")

	h.AddVariable("sst", []string{"lat", "lon"}, []float32{0})
	h.AddAttribute("sst", "units", "K")
	h.AddAttribute("sst", "_FillValue", []float32{-999})

	h.AddVariable("flags", []string{"lat", "lon"}, []int16{0})

	h.AddVariable("eta", []string{"time", "lat", "lon"}, []float32{0})
	h.Define()

	path := filepath.Join(t.TempDir(), "grid.nc")
	ff, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ff.Close()

	f, err := cdf.Create(ff, h)
	if err != nil {
		t.Fatalf("Failed to create NetCDF file: %v", err)
	}

	sst := make([]float32, 12)
	flags := make([]int16, 12)
	for j := 0; j < 3; j++ {
		for i := 0; i < 4; i++ {
			sst[j*4+i] = float32(j*10 + i)
			flags[j*4+i] = int16(j + i)
		}
	}
	writeVariable(t, f, "lat", []float64{-30, -29, -28})
	writeVariable(t, f, "lon", []float64{150, 151, 152, 153})
	writeVariable(t, f, "sst", sst)
	writeVariable(t, f, "flags", flags)

	if err := cdf.UpdateNumRecs(ff); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeVariable(t *testing.T, f *cdf.File, name string, data interface{}) {
	t.Helper()
	end := f.Header.Lengths(name)
	start := make([]int, len(end))
	w := f.Writer(name, start, end)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

func TestOpenRoundTrip(t *testing.T) {
	ds, err := Open(writeTestFile(t))
	if err != nil {
		t.Fatal(err)
	}

	if title, ok := ds.StringAttr("title"); !ok || title != "test ocean grid" {
		t.Errorf("title attribute = %q, %v", title, ok)
	}

	for _, name := range []string{"lat", "lon", "sst", "flags"} {
		if !ds.HasVariable(name) {
			t.Errorf("variable %s missing after round trip", name)
		}
	}

	lat := ds.Variable("lat")
	if len(lat.Data.Elements) != 3 || lat.Data.Elements[0] != -30 {
		t.Errorf("lat = %v, want [-30 -29 -28]", lat.Data.Elements)
	}
	if units, ok := lat.StringAttr("units"); !ok || units != "degrees_north" {
		t.Errorf("lat units = %q, %v", units, ok)
	}

	sst := ds.Variable("sst")
	if len(sst.Dims) != 2 || sst.Dims[0] != "lat" || sst.Dims[1] != "lon" {
		t.Errorf("sst dims = %v, want [lat lon]", sst.Dims)
	}
	if got := sst.Data.Get(1, 2); got != 12 {
		t.Errorf("sst[1,2] = %v, want 12", got)
	}
	if fill, ok := sst.FillValue(); !ok || fill != -999 {
		t.Errorf("sst fill value = %v, %v", fill, ok)
	}

	// int16 payloads widen to float64
	if got := ds.Variable("flags").Data.Get(2, 3); got != 5 {
		t.Errorf("flags[2,3] = %v, want 5", got)
	}
}

func TestRecordVariablesSkipped(t *testing.T) {
	path := writeTestFile(t)

	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	ds, err := OpenWith(path, &Options{Logger: logger})
	if err != nil {
		t.Fatal(err)
	}

	if ds.HasVariable("eta") {
		t.Error("record variable should be skipped")
	}
	if !strings.Contains(logBuf.String(), "skipping record variable") ||
		!strings.Contains(logBuf.String(), "eta") {
		t.Errorf("skip not logged, log output:\n%s", logBuf.String())
	}
}

func TestReadRejectsGarbage(t *testing.T) {
	if _, err := Read(bytes.NewReader([]byte("not a netcdf file"))); err == nil {
		t.Fatal("expected error for non-NetCDF input")
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.nc"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "cdfio") {
		t.Errorf("error should carry package context, got %v", err)
	}
}

func TestOpenedDatasetBinds(t *testing.T) {
	ds, err := Open(writeTestFile(t))
	if err != nil {
		t.Fatal(err)
	}

	conv, err := seagrid.Detect(ds)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := conv.(*seagrid.CFGrid1D); !ok {
		t.Fatalf("detected %T, want *seagrid.CFGrid1D", conv)
	}

	grid, err := seagrid.Bind(ds, nil)
	if err != nil {
		t.Fatal(err)
	}
	idx, found, err := grid.SelectPoint(151.2, -29.3)
	if err != nil {
		t.Fatal(err)
	}
	if !found || !idx.Equal(seagrid.FaceIndex(1, 1)) {
		t.Errorf("SelectPoint = %v (found=%v), want face(1, 1)", idx, found)
	}
}
