// Package app holds the application state shared by the UI: the editor
// session, the vehicle selection and the event bus that ties them to widgets.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"tint-care/internal/bridge"
	"tint-care/internal/catalog"
	"tint-care/internal/config"
	"tint-care/internal/image"
	"tint-care/internal/outline"
	"tint-care/internal/render"
	"tint-care/internal/scene"
	"tint-care/pkg/colorutil"

	"github.com/sirupsen/logrus"
)

var (
	// ErrNoModel is returned by Search before a model is chosen.
	ErrNoModel = errors.New("no model selected")
	// ErrNoImage is returned by TraceOutline when the selection is not an image.
	ErrNoImage = errors.New("select an image to trace")
)

// Catalog is the subset of the catalog client the state needs.
type Catalog interface {
	ListBrands(ctx context.Context) ([]catalog.Item, error)
	ListModels(ctx context.Context, brand string) ([]catalog.Item, error)
	GetVehicle(ctx context.Context, model string) (*catalog.Vehicle, error)
}

// State holds the application state.
type State struct {
	mu sync.RWMutex

	Config *config.Config
	Editor *scene.Editor
	Loader *image.Loader

	catalog Catalog
	printer bridge.Capability

	// Vehicle selection
	Brands []catalog.Item
	Years  []catalog.Item
	Models []catalog.Item
	Brand  string
	Year   string
	Model  string

	// Printers is the last list reported by the shell.
	Printers []bridge.Printer

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventSceneChanged EventType = iota
	EventBrandsLoaded
	EventModelsLoaded
	EventVehicleLoaded
	EventSelectionChanged
	EventImageFailed
	EventPrintersLoaded
	EventStatus
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates the application state. fetcher downloads reference
// images; printer is the shell capability used for printing.
func NewState(cfg *config.Config, cat Catalog, fetcher image.Fetcher, printer bridge.Capability) *State {
	s := &State{
		Config:    cfg,
		Editor:    scene.NewEditor(EditorOptions(cfg)),
		catalog:   cat,
		printer:   printer,
		Years:     catalog.Years(cfg.Catalog.FirstYear, cfg.Catalog.LastYear),
		listeners: make(map[EventType][]EventListener),
	}
	s.Loader = image.NewLoader(fetcher, s.Editor)
	s.Loader.OnError = func(source string, err error) {
		s.Emit(EventImageFailed, source)
	}
	s.Editor.OnChange(func() {
		s.Emit(EventSceneChanged, nil)
	})
	return s
}

// EditorOptions converts the editor settings. Unparseable colours fall back
// to the defaults.
func EditorOptions(cfg *config.Config) scene.Options {
	opts := scene.DefaultOptions()
	e := cfg.Editor
	opts.Width, opts.Height = e.Width, e.Height
	opts.ZoomMin, opts.ZoomMax = e.ZoomMin, e.ZoomMax
	opts.BrushWidth = e.BrushWidth
	opts.ImageLeft, opts.ImageTop, opts.ImageScale = e.ImageLeft, e.ImageTop, e.ImageScale

	if c, err := colorutil.ParseHex(e.StrokeColor); err == nil {
		opts.Stroke = c
	} else {
		logrus.WithError(err).WithField("using", colorutil.Hex(opts.Stroke)).Warn("invalid stroke colour")
	}
	if c, err := colorutil.ParseHex(e.FillColor); err == nil {
		opts.Fill = c
	} else {
		logrus.WithError(err).WithField("using", colorutil.Hex(opts.Fill)).Warn("invalid fill colour")
	}
	return opts
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Status publishes a message for the status bar.
func (s *State) Status(format string, args ...interface{}) {
	s.Emit(EventStatus, fmt.Sprintf(format, args...))
}

// LoadBrands fetches the brand list.
func (s *State) LoadBrands(ctx context.Context) error {
	brands, err := s.catalog.ListBrands(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.Brands = brands
	s.mu.Unlock()
	s.Emit(EventBrandsLoaded, brands)
	return nil
}

// SelectBrand records the brand and fetches its models. The previous model
// choice is cleared.
func (s *State) SelectBrand(ctx context.Context, brand string) error {
	s.mu.Lock()
	s.Brand = brand
	s.Model = ""
	s.Models = nil
	s.mu.Unlock()
	s.Emit(EventSelectionChanged, nil)

	if brand == "" {
		s.Emit(EventModelsLoaded, []catalog.Item(nil))
		return nil
	}
	models, err := s.catalog.ListModels(ctx, brand)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.Brand != brand {
		// superseded by a later selection
		s.mu.Unlock()
		return nil
	}
	s.Models = models
	s.mu.Unlock()
	s.Emit(EventModelsLoaded, models)
	return nil
}

// SelectYear records the year. It only narrows the choice on screen.
func (s *State) SelectYear(year string) {
	s.mu.Lock()
	s.Year = year
	s.mu.Unlock()
	s.Emit(EventSelectionChanged, nil)
}

// SelectModel records the model.
func (s *State) SelectModel(model string) {
	s.mu.Lock()
	s.Model = model
	s.mu.Unlock()
	s.Emit(EventSelectionChanged, nil)
}

// Selection returns the current brand, year and model ids.
func (s *State) Selection() (brand, year, model string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Brand, s.Year, s.Model
}

// Search fetches the selected vehicle and starts loading its reference
// images onto the canvas. It returns the number of images requested.
func (s *State) Search(ctx context.Context) (int, error) {
	_, _, model := s.Selection()
	if model == "" {
		return 0, ErrNoModel
	}

	vehicle, err := s.catalog.GetVehicle(ctx, model)
	if err != nil {
		return 0, err
	}
	sources, err := vehicle.ImageSources()
	if err != nil {
		return 0, err
	}

	// loads outlive the request; they are never cancelled
	s.Loader.LoadAll(context.WithoutCancel(ctx), sources)
	s.Emit(EventVehicleLoaded, vehicle)
	return len(sources), nil
}

// ExportPNG writes the rasterized scene.
func (s *State) ExportPNG(w io.Writer) error {
	img := render.Export(s.Editor.Snapshot(), s.Config.Export.Multiplier)
	return render.PNG(w, img)
}

// ListPrinters asks the shell for the OS printers.
func (s *State) ListPrinters(ctx context.Context) ([]bridge.Printer, error) {
	return s.printer.ListPrinters(ctx)
}

// LoadPrinters refreshes Printers and emits EventPrintersLoaded.
func (s *State) LoadPrinters(ctx context.Context) error {
	printers, err := s.ListPrinters(ctx)
	if err != nil {
		return fmt.Errorf("failed to list printers: %w", err)
	}
	s.mu.Lock()
	s.Printers = printers
	s.mu.Unlock()

	logrus.WithField("count", len(printers)).Debug("printers loaded")
	s.Emit(EventPrintersLoaded, printers)
	return nil
}

// PreferredPrinter picks the printer to offer first: the configured default
// if the shell lists it, otherwise the OS default.
func (s *State) PreferredPrinter(printers []bridge.Printer) string {
	return bridge.Preferred(printers, s.Config.Print.DefaultPrinter)
}

// PrintCanvas rasterizes the scene and hands it to the shell. An empty
// printer uses the configured default.
func (s *State) PrintCanvas(ctx context.Context, printer string) error {
	if printer == "" {
		printer = s.Config.Print.DefaultPrinter
	}
	img := render.Export(s.Editor.Snapshot(), s.Config.Export.Multiplier)
	url, err := render.EncodeDataURL(img)
	if err != nil {
		return err
	}
	return s.printer.PrintRendered(ctx, url, printer)
}

// outlineOptions overlays the configured tracing settings on the defaults.
// Unset values keep the default.
func (s *State) outlineOptions() outline.Options {
	opts := outline.DefaultOptions()
	o := s.Config.Outline
	if o.BlurSize > 0 {
		opts.BlurSize = o.BlurSize
	}
	if o.MinArea > 0 {
		opts.MinArea = o.MinArea
	}
	if o.Epsilon > 0 {
		opts.Epsilon = o.Epsilon
	}
	return opts
}

// TraceOutline traces the selected image and adds the outline as a path.
func (s *State) TraceOutline() (*scene.Shape, error) {
	active := s.Editor.Active()
	if active == nil || active.Kind != scene.KindImage {
		return nil, ErrNoImage
	}

	poly, err := outline.Trace(active.Image, s.outlineOptions())
	if err != nil {
		return nil, err
	}
	return s.Editor.AddOutline(active, poly), nil
}
