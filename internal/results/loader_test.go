package results

import (
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "filename,s1_f0,s2_f0,s3_f0,s4_f0,s1_M,s2_M,s3_M,s4_M\n"

func writeResults(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "results", "F0_Analysis.csv")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadWellFormedFile(t *testing.T) {
	path := writeResults(t, header+
		"f1.wav,10.2,11.0,9.8,10.5,0.8,0.7,0.9,0.85\n"+
		"f2.wav,10.4,11.1,9.9,10.6,0.82,0.71,0.88,0.84\n")

	ds, err := NewLoader(nil).Load(path)
	require.NoError(t, err)

	require.Equal(t, 2, ds.Len())
	assert.Equal(t, []string{"f1.wav", "f2.wav"}, ds.Filenames())
	assert.Equal(t, []float64{10.2, 10.4}, ds.Frequencies(1))
	assert.Equal(t, []float64{11.0, 11.1}, ds.Frequencies(2))
	assert.Equal(t, []float64{9.8, 9.9}, ds.Frequencies(3))
	assert.Equal(t, []float64{10.5, 10.6}, ds.Frequencies(4))
	assert.Equal(t, []float64{0.85, 0.84}, ds.Magnitudes(4))
	for sensor := 1; sensor <= 4; sensor++ {
		assert.Len(t, ds.Frequencies(sensor), 2)
		assert.Len(t, ds.Magnitudes(sensor), 2)
	}
}

func TestLoadPreservesFileOrder(t *testing.T) {
	content := header
	names := []string{"z.wav", "a.wav", "m.wav", "b.wav"}
	for i, name := range names {
		content += name + "," + string(rune('1'+i)) + ",0,0,0,0,0,0,0\n"
	}

	ds, err := NewLoader(nil).Load(writeResults(t, content))
	require.NoError(t, err)
	assert.Equal(t, names, ds.Filenames())
	assert.Equal(t, []float64{1, 2, 3, 4}, ds.Frequencies(1))
}

func TestLoadBlankAndNaNFieldsBecomeNaN(t *testing.T) {
	path := writeResults(t, header+"f1.wav,,NaN,9.8,nan,0.8,0.7,0.9,\n")

	ds, err := NewLoader(nil).Load(path)
	require.NoError(t, err)

	row := ds.Rows()[0]
	assert.True(t, math.IsNaN(row.Frequency[0]))
	assert.True(t, math.IsNaN(row.Frequency[1]))
	assert.Equal(t, 9.8, row.Frequency[2])
	assert.True(t, math.IsNaN(row.Frequency[3]))
	assert.True(t, math.IsNaN(row.Magnitude[3]))
}

func TestLoadFailures(t *testing.T) {
	cases := []struct {
		name    string
		content string
		kind    LoadErrorKind
		line    int
		column  string
	}{
		{name: "empty file", content: "", kind: LoadErrorEmpty},
		{name: "header only", content: header, kind: LoadErrorEmpty},
		{name: "missing column", content: header + "f1.wav,10.2,11.0,9.8,10.5,0.8,0.7,0.9\n", kind: LoadErrorShape, line: 2},
		{name: "extra column", content: header + "f1.wav,1,2,3,4,5,6,7,8,9\n", kind: LoadErrorShape, line: 2},
		{name: "non numeric frequency", content: header + "f1.wav,10.2,abc,9.8,10.5,0.8,0.7,0.9,0.85\n", kind: LoadErrorValue, line: 2, column: "s2_f0"},
		{name: "non numeric magnitude", content: header + "f1.wav,1,2,3,4,5,6,7,8\nf2.wav,1,2,3,4,5,6,7,high\n", kind: LoadErrorValue, line: 3, column: "s4_M"},
		{name: "broken quoting", content: header + "f1.wav,\"10.2,11,9.8,10.5,0.8,0.7,0.9,0.85\n", kind: LoadErrorRead},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeResults(t, tc.content)
			ds, err := NewLoader(nil).Load(path)
			require.Error(t, err)
			assert.Equal(t, 0, ds.Len())
			assert.True(t, errors.Is(err, ErrDataLoad))

			var loadErr *DataLoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, tc.kind, loadErr.Kind)
			assert.Equal(t, path, loadErr.Path)
			if tc.line > 0 {
				assert.Equal(t, tc.line, loadErr.Line)
			}
			assert.Equal(t, tc.column, loadErr.Column)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results", "F0_Analysis.csv")
	_, err := NewLoader(nil).Load(path)

	var loadErr *DataLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, LoadErrorMissing, loadErr.Kind)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, err.Error(), "missing")
}

func TestLoadDoesNotModifyFile(t *testing.T) {
	content := header + "f1.wav,1,2,3,4,5,6,7,8\n"
	path := writeResults(t, content)

	_, err := NewLoader(nil).Load(path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

// failingReader returns some data, then an I/O error.
type failingReader struct {
	data   io.Reader
	closed bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	n, err := r.data.Read(p)
	if errors.Is(err, io.EOF) {
		return n, errors.New("device unplugged")
	}
	return n, err
}

func (r *failingReader) Close() error {
	r.closed = true
	return nil
}

func TestLoadReadErrors(t *testing.T) {
	reader := &failingReader{data: strings.NewReader(header + "f1.wav,10.2,11.0,9.8,10.5,0.8,0.7,0.9,0.85\n")}
	loader := NewLoader(nil)
	loader.open = func(string) (io.ReadCloser, error) { return reader, nil }

	_, err := loader.Load("results/F0_Analysis.csv")
	require.Error(t, err)
	var loadErr *DataLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, LoadErrorRead, loadErr.Kind)
	assert.True(t, reader.closed, "reader must be closed")

	loader.open = func(string) (io.ReadCloser, error) { return nil, os.ErrPermission }
	_, err = loader.Load("results/F0_Analysis.csv")
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, LoadErrorRead, loadErr.Kind)
	assert.ErrorIs(t, err, os.ErrPermission)
}
