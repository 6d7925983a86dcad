package render

import (
	"encoding/base64"
	"fmt"
	"sync"

	"vibration-viewer/internal/domain"
)

const (
	// CombinedTitle is the title of the overlay plot.
	CombinedTitle = "Combined Sensor Plot"
	// CombinedTab is the tab label of the overlay plot.
	CombinedTab = "Combined Plot"
)

// PanelTitle returns the plot title of a 1-based sensor panel.
func PanelTitle(sensor int) string {
	return fmt.Sprintf("Sensor%d Fundamental Frequency", sensor)
}

// PlotView is a frame prepared for the frontend.
type PlotView struct {
	Tab         string   `json:"tab"`
	Title       string   `json:"title"`
	Image       string   `json:"image"`
	Thumbnail   string   `json:"thumbnail,omitempty"`
	Legend      []string `json:"legend"`
	Colors      []string `json:"colors"`
	Points      []int    `json:"points"`
	Placeholder bool     `json:"placeholder"`
	Revision    int      `json:"revision"`
}

// Plotter draws series onto a surface. *Renderer is the production implementation.
type Plotter interface {
	RenderPanel(surface *Surface, series *domain.NamedSeries, title string) error
	RenderCombined(surface *Surface, series []domain.NamedSeries, title string) error
}

// Board is the set of sensor panels plus the combined overlay.
type Board struct {
	plotter  Plotter
	mu       sync.RWMutex
	panels   [domain.SensorCount]*Surface
	combined *Surface
}

// NewBoard creates a board with empty surfaces.
func NewBoard(plotter Plotter) *Board {
	b := &Board{plotter: plotter, combined: NewSurface()}
	for i := range b.panels {
		b.panels[i] = NewSurface()
	}
	return b
}

// Reset draws placeholder panels and an empty combined plot.
func (b *Board) Reset() error {
	var empty [domain.SensorCount]domain.NamedSeries
	return b.redraw(empty[:], nil)
}

// Draw replaces every view with plots of dataset's fundamental frequencies.
// Either all five views change or none do.
func (b *Board) Draw(ds domain.ResultDataset) error {
	series := ds.FrequencySeries()
	return b.redraw(series, series)
}

// redraw renders into scratch surfaces and commits them only when every view succeeded.
func (b *Board) redraw(panels, combined []domain.NamedSeries) error {
	var scratch [domain.SensorCount]*Surface
	for i := range scratch {
		scratch[i] = NewSurface()
		if err := b.plotter.RenderPanel(scratch[i], &panels[i], PanelTitle(i+1)); err != nil {
			return fmt.Errorf("render %s: %w", PanelTitle(i+1), err)
		}
	}
	scratchCombined := NewSurface()
	if err := b.plotter.RenderCombined(scratchCombined, combined, CombinedTitle); err != nil {
		return fmt.Errorf("render %s: %w", CombinedTitle, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, surface := range b.panels {
		surface.replace(scratch[i].Frame())
	}
	b.combined.replace(scratchCombined.Frame())
	return nil
}

// Panel returns the surface of a 1-based sensor.
func (b *Board) Panel(sensor int) *Surface {
	if sensor < 1 || sensor > domain.SensorCount {
		return nil
	}
	return b.panels[sensor-1]
}

// Combined returns the overlay surface.
func (b *Board) Combined() *Surface {
	return b.combined
}

// Views returns the four panels then the combined plot, in tab order.
func (b *Board) Views() []PlotView {
	b.mu.RLock()
	defer b.mu.RUnlock()

	views := make([]PlotView, 0, domain.SensorCount+1)
	for i, surface := range b.panels {
		views = append(views, toView(PanelTitle(i+1), surface.Frame()))
	}
	return append(views, toView(CombinedTab, b.combined.Frame()))
}

func toView(tab string, f Frame) PlotView {
	view := PlotView{
		Tab:         tab,
		Title:       f.Title,
		Legend:      f.Legend,
		Colors:      f.Colors,
		Points:      f.Points,
		Placeholder: f.Placeholder,
		Revision:    f.Revision,
	}
	if len(f.PNG) > 0 {
		view.Image = dataURI(f.PNG)
	}
	if len(f.Thumbnail) > 0 {
		view.Thumbnail = dataURI(f.Thumbnail)
	}
	return view
}

func dataURI(pngData []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngData)
}
