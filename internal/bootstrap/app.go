package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"sync"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"go.uber.org/zap"

	"vibration-viewer/internal/analysis"
	"vibration-viewer/internal/config"
	"vibration-viewer/internal/diagnostics"
	"vibration-viewer/internal/domain"
	"vibration-viewer/internal/jobs"
	"vibration-viewer/internal/logging"
	"vibration-viewer/internal/render"
	"vibration-viewer/internal/results"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// Status line texts shown in the main window.
const (
	StatusWaiting            = "Status: Waiting for folder upload..."
	StatusNoInput            = "Status: No CSV files found."
	StatusProcessing         = "Status: Processing..."
	StatusProcessingComplete = "Status: Processing completed."
	statusFolderSelected     = "Status: Folder '%s' selected."
	statusLoadError          = "Status: Error loading results: %v"
	statusRenderError        = "Status: Error rendering plots: %v"
)

// ErrNoFolder is returned when submitting without a selected folder.
var ErrNoFolder = errors.New("no folder selected")

const inboxSize = 64

// FolderSelection is the folder picked by the user, passed back explicitly on submit.
type FolderSelection struct {
	FolderPath string `json:"folderPath"`
	Status     string `json:"status"`
	CanSubmit  bool   `json:"canSubmit"`
}

// DatasetSummary is the JSON-safe view of the loaded dataset. NaN values become null.
type DatasetSummary struct {
	ResultsPath string       `json:"resultsPath"`
	Rows        int          `json:"rows"`
	Filenames   []string     `json:"filenames"`
	Frequencies [][]*float64 `json:"frequencies"`
	Magnitudes  [][]*float64 `json:"magnitudes"`
}

// executorFactory builds the analyzer executor for one job from the settings
// captured when that job is submitted.
type executorFactory func(settings domain.Settings) jobs.Executor

// App wires configuration, jobs, result loading, plots, and UI runtime callbacks.
type App struct {
	Store   config.Store
	Jobs    *jobs.Manager
	Runner  *jobs.Runner
	Loader  *results.Loader
	Board   *render.Board
	assets  fs.FS
	checker *diagnostics.Checker
	logger  *zap.Logger

	newExecutor executorFactory
	events      *jobs.EventBus
	inbox       chan jobs.Event
	done        chan struct{}
	stopOnce    sync.Once

	mu          sync.RWMutex
	settings    domain.Settings
	diagnostics domain.DiagnosticReport
	status      string
	dataset     domain.ResultDataset
	resultsPath string
	runtimeCtx  context.Context
}

// New builds the application with persisted settings and startup diagnostics.
func New() (*App, error) {
	return NewWithAssets(nil)
}

// NewWithAssets builds the application and optionally configures embedded frontend assets.
func NewWithAssets(assets fs.FS) (*App, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	path, err := config.DefaultPath()
	if err != nil {
		return nil, err
	}
	store := config.NewJSONStore(path)
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	settings = config.ApplyEnv(settings)

	logger, err := logging.New(logging.Config{
		Level:    settings.LogLevel,
		Encoding: settings.LogEncoding,
	})
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	app, err := newApp(store, settings, diagnostics.NewChecker(), defaultExecutor, logger)
	if err != nil {
		return nil, err
	}
	app.assets = assets
	return app, nil
}

// defaultExecutor runs the configured analyzer as a child process.
func defaultExecutor(settings domain.Settings) jobs.Executor {
	return analysis.NewExecutor(settings)
}

// newApp assembles the app around injectable collaborators and starts the event loop.
func newApp(
	store config.Store,
	settings domain.Settings,
	checker *diagnostics.Checker,
	newExecutor executorFactory,
	logger *zap.Logger,
) (*App, error) {
	logger = logging.OrNop(logger)
	a := &App{
		Store:       store,
		Jobs:        jobs.NewManager(),
		Loader:      results.NewLoader(logger),
		Board:       render.NewBoard(render.NewRenderer(render.DefaultWidth, render.DefaultHeight, logger)),
		checker:     checker,
		logger:      logger,
		newExecutor: newExecutor,
		events:      jobs.NewEventBus(1000),
		inbox:       make(chan jobs.Event, inboxSize),
		done:        make(chan struct{}),
		settings:    settings,
		status:      StatusWaiting,
	}
	// Every job brings its own executor through SubmitWith.
	a.Runner = jobs.NewRunner(nil, a.enqueue, logger)

	if err := a.Board.Reset(); err != nil {
		return nil, fmt.Errorf("draw initial plots: %w", err)
	}
	if checker != nil {
		a.diagnostics = checker.Run(settings)
	}

	go a.loop()
	return a, nil
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	defer func() { _ = a.logger.Sync() }()
	return wails.Run(&options.App{
		Title:       "Vibration Sensor Data Viewer",
		Width:       1100,
		Height:      760,
		AssetServer: assetOptions,
		OnStartup:   a.Startup,
		OnShutdown: func(ctx context.Context) {
			a.mu.Lock()
			a.runtimeCtx = nil
			a.mu.Unlock()
			a.Stop()
		},
		Bind: []interface{}{a},
	})
}

// Startup stores Wails runtime context for dialogs and push events.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runtimeCtx = ctx
}

// Stop ends the event loop. Events emitted afterwards are dropped.
func (a *App) Stop() {
	a.stopOnce.Do(func() { close(a.done) })
}

// PickFolder opens a native directory picker. A cancelled dialog returns an
// empty selection and leaves the status line unchanged.
func (a *App) PickFolder() (FolderSelection, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return FolderSelection{}, err
	}

	path, err := wailsruntime.OpenDirectoryDialog(ctx, wailsruntime.OpenDialogOptions{
		Title: "Select folder with recordings",
	})
	if err != nil {
		return FolderSelection{}, err
	}
	return a.selectFolder(path)
}

// selectFolder turns a picked path into a selection and updates the status line.
func (a *App) selectFolder(path string) (FolderSelection, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return FolderSelection{Status: a.StatusMessage()}, nil
	}
	if err := analysis.ValidateFolder(path); err != nil {
		return FolderSelection{}, err
	}

	status := fmt.Sprintf(statusFolderSelected, path)
	a.setStatus(status)
	return FolderSelection{
		FolderPath: path,
		Status:     status,
		CanSubmit:  !a.Jobs.IsRunning(),
	}, nil
}

// SubmitAnalysis starts the analyzer for the selected folder.
func (a *App) SubmitAnalysis(selection FolderSelection) (domain.AnalysisJob, error) {
	folder := strings.TrimSpace(selection.FolderPath)
	if folder == "" {
		return domain.AnalysisJob{}, ErrNoFolder
	}
	if err := analysis.ValidateFolder(folder); err != nil {
		return domain.AnalysisJob{}, err
	}

	settings := a.currentSettings()
	if _, err := analysis.FindInputs(folder, settings.InputExtensions); err != nil {
		if errors.Is(err, analysis.ErrNoInput) {
			a.setStatus(StatusNoInput)
		}
		return domain.AnalysisJob{}, err
	}

	if err := a.Jobs.Acquire(); err != nil {
		return domain.AnalysisJob{}, err
	}
	job := a.Runner.SubmitWith(a.newExecutor(settings), folder)
	a.Jobs.Track(job)
	return job, nil
}

// CurrentJob returns current job metadata and status.
func (a *App) CurrentJob() domain.AnalysisJob {
	return a.Jobs.Current()
}

// JobEvents returns all events with sequence greater than sinceSeq.
func (a *App) JobEvents(sinceSeq int64) []jobs.Event {
	return a.events.Since(sinceSeq)
}

// StatusMessage returns the status line text.
func (a *App) StatusMessage() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

// Plots returns the four sensor panels followed by the combined plot.
func (a *App) Plots() []render.PlotView {
	return a.Board.Views()
}

// CurrentDataset summarizes the last successfully loaded results.
func (a *App) CurrentDataset() DatasetSummary {
	a.mu.RLock()
	ds := a.dataset
	path := a.resultsPath
	a.mu.RUnlock()

	rows := ds.Rows()
	summary := DatasetSummary{
		ResultsPath: path,
		Rows:        len(rows),
		Filenames:   make([]string, len(rows)),
		Frequencies: make([][]*float64, domain.SensorCount),
		Magnitudes:  make([][]*float64, domain.SensorCount),
	}
	for sensor := 0; sensor < domain.SensorCount; sensor++ {
		summary.Frequencies[sensor] = make([]*float64, len(rows))
		summary.Magnitudes[sensor] = make([]*float64, len(rows))
	}
	for i, row := range rows {
		summary.Filenames[i] = row.Filename
		for sensor := 0; sensor < domain.SensorCount; sensor++ {
			summary.Frequencies[sensor][i] = nullable(row.Frequency[sensor])
			summary.Magnitudes[sensor][i] = nullable(row.Magnitude[sensor])
		}
	}
	return summary
}

// OpenResultsFolder opens the results directory of folder (or of the
// current job when empty) in the platform file manager.
func (a *App) OpenResultsFolder(folder string) error {
	target := strings.TrimSpace(folder)
	if target == "" {
		target = a.Jobs.Current().FolderPath
	}
	if target == "" {
		return ErrNoFolder
	}

	resultsDir := filepath.Dir(analysis.ResultsPath(target))
	info, err := os.Stat(resultsDir)
	if err != nil {
		return fmt.Errorf("resolve results folder: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("resolve results folder: %s: %w", resultsDir, analysis.ErrNotFolder)
	}
	return openInFileManager(resultsDir)
}

// GetSettings loads and returns the latest persisted settings with environment overrides.
func (a *App) GetSettings() (domain.Settings, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	settings = config.ApplyEnv(settings)

	a.mu.Lock()
	a.settings = settings
	a.mu.Unlock()
	return settings, nil
}

// SaveSettings normalizes and persists settings, then refreshes diagnostics.
func (a *App) SaveSettings(settings domain.Settings) (domain.Settings, error) {
	normalized := config.Normalize(settings)
	if err := a.Store.Save(normalized); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	// Checks touch PATH and the filesystem, so they run outside the lock.
	report := a.GetDiagnostics()
	if a.checker != nil {
		report = a.checker.Run(normalized)
	}

	a.mu.Lock()
	a.settings = normalized
	a.diagnostics = report
	a.mu.Unlock()

	a.logger.Info("settings saved", zap.String("analyzer", normalized.AnalyzerCommand))
	return normalized, nil
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.diagnostics
}

// RefreshDiagnostics reloads settings and reruns dependency checks.
func (a *App) RefreshDiagnostics() (domain.DiagnosticReport, error) {
	settings, err := a.GetSettings()
	if err != nil {
		return domain.DiagnosticReport{}, err
	}
	if a.checker == nil {
		return a.GetDiagnostics(), nil
	}

	report := a.checker.Run(settings)
	a.mu.Lock()
	a.diagnostics = report
	a.mu.Unlock()
	return report, nil
}

// enqueue hands a runner event to the interactive loop.
func (a *App) enqueue(event jobs.Event) {
	select {
	case a.inbox <- event:
	case <-a.done:
	}
}

// loop is the only goroutine that replaces the dataset or redraws the board.
func (a *App) loop() {
	for {
		select {
		case event := <-a.inbox:
			a.handle(event)
		case <-a.done:
			return
		}
	}
}

// handle applies state changes before publishing, so a subscriber that sees
// an event also sees its effects.
func (a *App) handle(event jobs.Event) {
	a.Jobs.Observe(event)
	if event.Type == jobs.EventTypeStatus {
		a.setStatus(event.Message)
	}
	a.publishEvent(event)

	if event.Type == jobs.EventTypeFinished && event.Status == domain.JobStatusCompleted {
		a.loadResults(event.JobID, event.FolderPath)
	}
}

// loadResults reads the analyzer output and redraws every plot. On any
// failure the previous dataset and plots stay in place.
func (a *App) loadResults(jobID, folderPath string) {
	a.setStatus(StatusProcessing)
	path := analysis.ResultsPath(folderPath)

	ds, err := a.Loader.Load(path)
	if err != nil {
		a.reportError(jobID, path, fmt.Sprintf(statusLoadError, err), err)
		return
	}
	if err := a.Board.Draw(ds); err != nil {
		a.reportError(jobID, path, fmt.Sprintf(statusRenderError, err), err)
		return
	}

	a.mu.Lock()
	a.dataset = ds
	a.resultsPath = path
	a.status = StatusProcessingComplete
	a.mu.Unlock()

	a.publishEvent(jobs.Event{
		JobID:       jobID,
		Type:        jobs.EventTypeResult,
		Status:      domain.JobStatusCompleted,
		Message:     StatusProcessingComplete,
		FolderPath:  folderPath,
		ResultsPath: path,
		Rows:        ds.Len(),
	})
	a.logger.Info("results loaded", zap.String("path", path), zap.Int("rows", ds.Len()))
}

func (a *App) reportError(jobID, path, status string, err error) {
	a.logger.Error("results unavailable", zap.String("path", path), zap.Error(err))
	a.setStatus(status)
	a.publishEvent(jobs.Event{
		JobID:       jobID,
		Type:        jobs.EventTypeError,
		Message:     status,
		ResultsPath: path,
		Diagnostic:  err.Error(),
	})
}

// publishEvent stores event history and emits runtime push notifications.
func (a *App) publishEvent(event jobs.Event) {
	published := a.events.Publish(event)

	a.mu.RLock()
	ctx := a.runtimeCtx
	a.mu.RUnlock()
	if ctx != nil {
		wailsruntime.EventsEmit(ctx, "job:event", published)
	}
}

func (a *App) setStatus(status string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status = status
}

func (a *App) currentSettings() domain.Settings {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.settings
}

// runtimeContext returns current Wails runtime context for dialog APIs.
func (a *App) runtimeContext() (context.Context, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.runtimeCtx == nil {
		return nil, fmt.Errorf("runtime context is not initialized")
	}
	return a.runtimeCtx, nil
}

// nullable maps NaN and infinities to nil so values survive JSON encoding.
func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// openInFileManager launches the platform file explorer for the provided path.
func openInFileManager(path string) error {
	var cmd *exec.Cmd
	switch goruntime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("explorer", filepath.Clean(path))
	default:
		cmd = exec.Command("xdg-open", path)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch file manager: %w", err)
	}
	return nil
}
