package domain

import "fmt"

// SensorCount is the number of sensors reported per recording.
const SensorCount = 4

// sensorColors matches the overlay colors of the combined plot.
var sensorColors = [SensorCount]string{"#0000ff", "#008000", "#ff0000", "#800080"}

// ResultRow is one recording's analysis output.
type ResultRow struct {
	Filename  string               `json:"filename"`
	Frequency [SensorCount]float64 `json:"frequency"`
	Magnitude [SensorCount]float64 `json:"magnitude"`
}

// ResultDataset is the parsed analyzer output in file order.
type ResultDataset struct {
	rows []ResultRow
}

// NewResultDataset copies rows into an immutable dataset.
func NewResultDataset(rows []ResultRow) ResultDataset {
	return ResultDataset{rows: append([]ResultRow(nil), rows...)}
}

// Len returns the number of rows.
func (d ResultDataset) Len() int {
	return len(d.rows)
}

// Rows returns a copy of the rows.
func (d ResultDataset) Rows() []ResultRow {
	return append([]ResultRow(nil), d.rows...)
}

// Filenames returns the filename label of each row.
func (d ResultDataset) Filenames() []string {
	out := make([]string, len(d.rows))
	for i, row := range d.rows {
		out[i] = row.Filename
	}
	return out
}

// Frequencies returns the fundamental frequency sequence of a 1-based sensor.
func (d ResultDataset) Frequencies(sensor int) []float64 {
	return d.column(sensor, func(r ResultRow) [SensorCount]float64 { return r.Frequency })
}

// Magnitudes returns the magnitude sequence of a 1-based sensor.
func (d ResultDataset) Magnitudes(sensor int) []float64 {
	return d.column(sensor, func(r ResultRow) [SensorCount]float64 { return r.Magnitude })
}

func (d ResultDataset) column(sensor int, pick func(ResultRow) [SensorCount]float64) []float64 {
	if sensor < 1 || sensor > SensorCount {
		return nil
	}
	out := make([]float64, len(d.rows))
	for i, row := range d.rows {
		out[i] = pick(row)[sensor-1]
	}
	return out
}

// FrequencySeries returns one series per sensor labelled Sensor1..Sensor4.
func (d ResultDataset) FrequencySeries() []NamedSeries {
	out := make([]NamedSeries, 0, SensorCount)
	for sensor := 1; sensor <= SensorCount; sensor++ {
		out = append(out, NamedSeries{
			Label:  SensorLabel(sensor),
			Values: d.Frequencies(sensor),
			Color:  sensorColors[sensor-1],
		})
	}
	return out
}

// SensorLabel returns the display label for a 1-based sensor index.
func SensorLabel(sensor int) string {
	return fmt.Sprintf("Sensor%d", sensor)
}

// NamedSeries is the renderer input: a label and ordered values.
type NamedSeries struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
	Color  string    `json:"color,omitempty"`
}

// Len returns the number of values, including NaN.
func (s *NamedSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Values)
}
