package results

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"vibration-viewer/internal/domain"
	"vibration-viewer/internal/logging"
)

// Columns is the fixed field order of an analysis results row.
var Columns = []string{"filename", "s1_f0", "s2_f0", "s3_f0", "s4_f0", "s1_M", "s2_M", "s3_M", "s4_M"}

// Loader parses analyzer output files into datasets.
type Loader struct {
	open   func(name string) (io.ReadCloser, error)
	logger *zap.Logger
}

// NewLoader creates a loader reading from the local filesystem.
func NewLoader(logger *zap.Logger) *Loader {
	return &Loader{
		open:   openFile,
		logger: logging.OrNop(logger),
	}
}

func openFile(name string) (io.ReadCloser, error) {
	return os.Open(name)
}

// Load reads path, skips the header row and returns one row per data line.
// Any problem yields a *DataLoadError and an empty dataset.
func (l *Loader) Load(path string) (domain.ResultDataset, error) {
	f, err := l.open(path)
	if err != nil {
		kind := LoadErrorRead
		if errors.Is(err, os.ErrNotExist) {
			kind = LoadErrorMissing
		}
		return domain.ResultDataset{}, &DataLoadError{Kind: kind, Path: path, Err: err}
	}
	defer f.Close()

	rows, err := parse(f, path)
	if err != nil {
		l.logger.Warn("results file rejected", zap.String("path", path), zap.Error(err))
		return domain.ResultDataset{}, err
	}

	l.logger.Info("results loaded", zap.String("path", path), zap.Int("rows", len(rows)))
	return domain.NewResultDataset(rows), nil
}

// parse decodes the CSV stream into rows.
func parse(r io.Reader, path string) ([]domain.ResultRow, error) {
	reader := csv.NewReader(r)
	// Field counts are checked per row so the error can name the line.
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &DataLoadError{Kind: LoadErrorEmpty, Path: path, Err: errors.New("file has no header")}
		}
		return nil, &DataLoadError{Kind: LoadErrorRead, Path: path, Line: 1, Err: err}
	}

	var rows []domain.ResultRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			line := 0
			if errors.As(err, &parseErr) {
				line = parseErr.Line
			}
			return nil, &DataLoadError{Kind: LoadErrorRead, Path: path, Line: line, Err: err}
		}
		line, _ := reader.FieldPos(0)

		row, err := parseRecord(record, path, line)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, &DataLoadError{Kind: LoadErrorEmpty, Path: path, Err: errors.New("file has no data rows")}
	}
	return rows, nil
}

// parseRecord maps one nine-field record onto a row.
func parseRecord(record []string, path string, line int) (domain.ResultRow, error) {
	if len(record) != len(Columns) {
		return domain.ResultRow{}, &DataLoadError{
			Kind: LoadErrorShape,
			Path: path,
			Line: line,
			Err:  fmt.Errorf("got %d fields, want %d", len(record), len(Columns)),
		}
	}

	row := domain.ResultRow{Filename: strings.TrimSpace(record[0])}
	for i := 0; i < domain.SensorCount; i++ {
		freqCol := 1 + i
		magCol := 1 + domain.SensorCount + i

		freq, err := parseValue(record[freqCol])
		if err != nil {
			return domain.ResultRow{}, &DataLoadError{Kind: LoadErrorValue, Path: path, Line: line, Column: Columns[freqCol], Err: err}
		}
		mag, err := parseValue(record[magCol])
		if err != nil {
			return domain.ResultRow{}, &DataLoadError{Kind: LoadErrorValue, Path: path, Line: line, Column: Columns[magCol], Err: err}
		}
		row.Frequency[i] = freq
		row.Magnitude[i] = mag
	}
	return row, nil
}

// parseValue parses a numeric field; blank fields are NaN.
func parseValue(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	return v, nil
}
