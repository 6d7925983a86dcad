package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"vibration-viewer/internal/domain"
	"vibration-viewer/internal/logging"
)

const (
	DefaultWidth  = 800
	DefaultHeight = 400

	ThumbWidth  = 160
	ThumbHeight = 80
)

// palette is used for series without an explicit color.
var palette = []string{"#0000ff", "#008000", "#ff0000", "#800080", "#ff8c00", "#008b8b", "#8b4513", "#696969"}

// Renderer draws named series onto surfaces as PNG plots.
type Renderer struct {
	width  int
	height int
	logger *zap.Logger
}

// NewRenderer creates a renderer producing width x height images.
func NewRenderer(width, height int, logger *zap.Logger) *Renderer {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Renderer{width: width, height: height, logger: logging.OrNop(logger)}
}

// RenderPanel draws a single series. A nil or empty series draws a titled placeholder.
func (r *Renderer) RenderPanel(surface *Surface, series *domain.NamedSeries, title string) error {
	if series.Len() == 0 {
		return r.renderPlaceholder(surface, title, nil)
	}
	return r.renderChart(surface, []domain.NamedSeries{*series}, title, false)
}

// RenderCombined overlays all series with a distinct color and legend entry each.
func (r *Renderer) RenderCombined(surface *Surface, series []domain.NamedSeries, title string) error {
	total := 0
	for i := range series {
		total += series[i].Len()
	}
	if total == 0 {
		return r.renderPlaceholder(surface, title, series)
	}
	return r.renderChart(surface, series, title, true)
}

// renderChart draws series with go-chart, falling back to a placeholder on failure.
func (r *Renderer) renderChart(surface *Surface, series []domain.NamedSeries, title string, legend bool) error {
	values := make([][]float64, len(series))
	n := 0
	for i := range series {
		values[i] = series[i].Values
		if series[i].Len() > n {
			n = series[i].Len()
		}
	}
	minY, maxY, ok := valueRange(values...)
	if !ok {
		return r.renderPlaceholder(surface, title, series)
	}
	yMin, yMax := niceAxisBounds(minY, maxY)

	// go-chart rejects a zero-width x range, so a single row gets a unit range.
	xMax := float64(n - 1)
	if xMax < 1 {
		xMax = 1
	}

	colors := assignColors(series)
	chartSeries := make([]chart.Series, 0, len(series))
	legendSeries := make([]chart.Series, 0, len(series))
	for i := range series {
		cs := toChartSeries(series[i], colors[i])
		legendSeries = append(legendSeries, chart.ContinuousSeries{Name: cs.Name, Style: cs.Style})
		// go-chart rejects empty series; such a series only gets a legend entry.
		if len(cs.XValues) == 0 {
			continue
		}
		chartSeries = append(chartSeries, cs)
	}

	ch := chart.Chart{
		Title:      title,
		Width:      r.width,
		Height:     r.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           "Recording",
			Range:          &chart.ContinuousRange{Min: 0, Max: xMax},
			ValueFormatter: indexFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "f0 (Hz)",
			Range:          &chart.ContinuousRange{Min: yMin, Max: yMax},
			ValueFormatter: valueFormatter,
		},
		Series: chartSeries,
	}
	if legend {
		// The legend reads its entries from a chart holding every series.
		legendChart := &chart.Chart{Series: legendSeries}
		ch.Elements = []chart.Renderable{chart.Legend(legendChart)}
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		r.logger.Warn("chart render failed, showing placeholder", zap.String("title", title), zap.Error(err))
		return r.renderPlaceholder(surface, title, series)
	}

	surface.replace(Frame{
		Title:     title,
		PNG:       buf.Bytes(),
		Thumbnail: r.thumbnail(title, buf.Bytes()),
		Width:     r.width,
		Height:    r.height,
		Legend:    labels(series),
		Colors:    colors,
		Points:    pointCounts(series),
	})
	r.logger.Debug("plot rendered", zap.String("title", title), zap.Int("series", len(series)), zap.Int("rows", n))
	return nil
}

// toChartSeries keeps x = row index and skips NaN values.
func toChartSeries(s domain.NamedSeries, hex string) chart.ContinuousSeries {
	xs := make([]float64, 0, len(s.Values))
	ys := make([]float64, 0, len(s.Values))
	for i, v := range s.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		xs = append(xs, float64(i))
		ys = append(ys, v)
	}

	col := parseColor(hex)
	style := chart.Style{
		StrokeColor: col,
		StrokeWidth: 2,
	}
	if len(xs) == 1 {
		// A lone point draws no line segment; emphasize it as a dot.
		style.DotColor = col
		style.DotWidth = 6
	}
	return chart.ContinuousSeries{
		Name:    s.Label,
		XValues: xs,
		YValues: ys,
		Style:   style,
	}
}

// renderPlaceholder draws a blank titled plot with no data points.
func (r *Renderer) renderPlaceholder(surface *Surface, title string, series []domain.NamedSeries) error {
	img := blank(r.width, r.height)
	drawFrame(img)
	drawTitle(img, title)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return fmt.Errorf("encode placeholder %q: %w", title, err)
	}

	surface.replace(Frame{
		Title:       title,
		PNG:         buf.Bytes(),
		Thumbnail:   r.thumbnail(title, buf.Bytes()),
		Width:       r.width,
		Height:      r.height,
		Legend:      labels(series),
		Colors:      assignColors(series),
		Points:      pointCounts(series),
		Placeholder: true,
	})
	return nil
}

// thumbnail scales a finished plot for tab previews. A failure only costs the preview.
func (r *Renderer) thumbnail(title string, pngData []byte) []byte {
	thumb, err := Thumbnail(pngData, ThumbWidth, ThumbHeight)
	if err != nil {
		r.logger.Warn("thumbnail failed", zap.String("title", title), zap.Error(err))
		return nil
	}
	return thumb
}

// assignColors returns the series color or the next unused palette color.
func assignColors(series []domain.NamedSeries) []string {
	used := make(map[string]bool, len(series))
	for _, s := range series {
		if s.Color != "" {
			used[strings.ToLower(s.Color)] = true
		}
	}

	out := make([]string, len(series))
	next := 0
	for i, s := range series {
		if s.Color != "" {
			out[i] = strings.ToLower(s.Color)
			continue
		}
		for next < len(palette) && used[palette[next]] {
			next++
		}
		if next < len(palette) {
			out[i] = palette[next]
			used[palette[next]] = true
			next++
			continue
		}
		out[i] = fallbackColor(i)
	}
	return out
}

// fallbackColor derives a color once the palette is exhausted.
func fallbackColor(i int) string {
	return fmt.Sprintf("#%02x%02x%02x", (i*67)%256, (i*139)%256, (i*211)%256)
}

func parseColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

func labels(series []domain.NamedSeries) []string {
	out := make([]string, len(series))
	for i, s := range series {
		out[i] = s.Label
	}
	return out
}

func pointCounts(series []domain.NamedSeries) []int {
	out := make([]int, len(series))
	for i := range series {
		out[i] = series[i].Len()
	}
	return out
}

func indexFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f", f)
	}
	return ""
}

func valueFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return formatTick(f)
	}
	return ""
}

// blank returns a white canvas.
func blank(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}

// drawFrame outlines the empty plot area.
func drawFrame(img *image.RGBA) {
	b := img.Bounds()
	frame := color.RGBA{R: 180, G: 180, B: 180, A: 255}
	left, right := b.Min.X+40, b.Max.X-20
	top, bottom := b.Min.Y+40, b.Max.Y-30
	if right <= left || bottom <= top {
		return
	}
	for x := left; x <= right; x++ {
		img.SetRGBA(x, top, frame)
		img.SetRGBA(x, bottom, frame)
	}
	for y := top; y <= bottom; y++ {
		img.SetRGBA(left, y, frame)
		img.SetRGBA(right, y, frame)
	}
}

// drawTitle writes text centered near the top edge.
func drawTitle(img *image.RGBA, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	face := basicfont.Face7x13
	dr := &font.Drawer{Dst: img, Src: image.NewUniform(color.Black), Face: face}
	tw := dr.MeasureString(text).Ceil()
	b := img.Bounds()
	x := b.Min.X + (b.Dx()-tw)/2
	if x < b.Min.X+4 {
		x = b.Min.X + 4
	}
	dr.Dot = fixed.P(x, b.Min.Y+24)
	dr.DrawString(text)
}
