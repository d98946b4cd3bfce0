package panels

import (
	"context"
	"sync"

	"tint-care/internal/app"
	"tint-care/internal/bridge"
	"tint-care/internal/catalog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"
)

// VehicleBar holds the brand, year and model pickers, the search and export
// actions and the printer picker with its print action.
type VehicleBar struct {
	ctx       context.Context
	state     *app.State
	window    fyne.Window
	container fyne.CanvasObject

	mu     sync.Mutex
	brands []catalog.Item
	models []catalog.Item

	brandSelect   *widget.Select
	yearSelect    *widget.Select
	modelSelect   *widget.Select
	printerSelect *widget.Select
	searchBtn     *widget.Button
	exportBtn     *widget.Button
	printBtn      *widget.Button

	// Callbacks
	onExport func()
	onPrint  func(printer string)
}

// NewVehicleBar creates the vehicle bar. Catalog requests run on their own
// goroutines and are bound to ctx.
func NewVehicleBar(ctx context.Context, state *app.State) *VehicleBar {
	vb := &VehicleBar{ctx: ctx, state: state}

	vb.brandSelect = widget.NewSelect(nil, vb.onBrandSelected)
	vb.brandSelect.PlaceHolder = "Brand"

	vb.yearSelect = widget.NewSelect(itemNames(state.Years), func(year string) {
		vb.state.SelectYear(itemID(vb.state.Years, year))
	})
	vb.yearSelect.PlaceHolder = "Year"

	vb.modelSelect = widget.NewSelect(nil, vb.onModelSelected)
	vb.modelSelect.PlaceHolder = "Model"
	vb.modelSelect.Disable()

	vb.searchBtn = widget.NewButtonWithIcon("Search", theme.SearchIcon(), vb.onSearch)
	vb.searchBtn.Importance = widget.HighImportance
	vb.searchBtn.Disable()

	vb.exportBtn = widget.NewButtonWithIcon("Cut Sketch", theme.DocumentSaveIcon(), func() {
		if vb.onExport != nil {
			vb.onExport()
		}
	})
	vb.printerSelect = widget.NewSelect(nil, nil)
	vb.printerSelect.PlaceHolder = "Printer"
	vb.printBtn = widget.NewButtonWithIcon("Print", theme.DocumentPrintIcon(), func() {
		if vb.onPrint != nil {
			vb.onPrint(vb.SelectedPrinter())
		}
	})

	selects := container.NewGridWithColumns(3, vb.brandSelect, vb.yearSelect, vb.modelSelect)
	vb.container = container.NewBorder(nil, nil, nil,
		container.NewHBox(vb.searchBtn, widget.NewSeparator(), vb.exportBtn,
			widget.NewSeparator(), vb.printerSelect, vb.printBtn),
		selects,
	)

	state.On(app.EventBrandsLoaded, func(data interface{}) {
		if brands, ok := data.([]catalog.Item); ok {
			vb.setBrands(brands)
		}
	})
	state.On(app.EventModelsLoaded, func(data interface{}) {
		models, _ := data.([]catalog.Item)
		vb.setModels(models)
	})
	state.On(app.EventPrintersLoaded, func(data interface{}) {
		printers, _ := data.([]bridge.Printer)
		vb.setPrinters(printers)
	})

	return vb
}

// Container returns the panel container.
func (vb *VehicleBar) Container() fyne.CanvasObject {
	return vb.container
}

// SetWindow sets the parent window for dialogs.
func (vb *VehicleBar) SetWindow(w fyne.Window) {
	vb.window = w
}

// SetOnExport sets the "Cut Sketch" action.
func (vb *VehicleBar) SetOnExport(fn func()) {
	vb.onExport = fn
}

// SetOnPrint sets the print action. It receives the chosen printer, empty
// when none is chosen.
func (vb *VehicleBar) SetOnPrint(fn func(printer string)) {
	vb.onPrint = fn
}

// SelectedPrinter returns the chosen printer name.
func (vb *VehicleBar) SelectedPrinter() string {
	return vb.printerSelect.Selected
}

// LoadPrinters fetches the printer list in the background.
func (vb *VehicleBar) LoadPrinters() {
	go func() {
		if err := vb.state.LoadPrinters(vb.ctx); err != nil {
			logrus.WithError(err).Warn("Failed to list printers")
			vb.state.Status("Failed to list printers: %v", err)
		}
	}()
}

// LoadBrands fetches the brand list in the background.
func (vb *VehicleBar) LoadBrands() {
	go func() {
		if err := vb.state.LoadBrands(vb.ctx); err != nil {
			vb.fail("Failed to load brands", err)
		}
	}()
}

func (vb *VehicleBar) setBrands(brands []catalog.Item) {
	vb.mu.Lock()
	vb.brands = brands
	vb.mu.Unlock()
	vb.brandSelect.SetOptions(itemNames(brands))
}

func (vb *VehicleBar) setModels(models []catalog.Item) {
	vb.mu.Lock()
	vb.models = models
	vb.mu.Unlock()

	vb.modelSelect.ClearSelected()
	vb.modelSelect.SetOptions(itemNames(models))
	if len(models) > 0 {
		vb.modelSelect.Enable()
	} else {
		vb.modelSelect.Disable()
	}
	vb.searchBtn.Disable()
}

func (vb *VehicleBar) setPrinters(printers []bridge.Printer) {
	names := make([]string, len(printers))
	for i, p := range printers {
		names[i] = p.Name
	}
	vb.printerSelect.SetOptions(names)
	if sel := vb.state.PreferredPrinter(printers); sel != "" {
		vb.printerSelect.SetSelected(sel)
	} else {
		vb.printerSelect.ClearSelected()
	}
}

func (vb *VehicleBar) onBrandSelected(name string) {
	vb.mu.Lock()
	id := itemID(vb.brands, name)
	vb.mu.Unlock()

	go func() {
		if err := vb.state.SelectBrand(vb.ctx, id); err != nil {
			vb.fail("Failed to load models", err)
		}
	}()
}

func (vb *VehicleBar) onModelSelected(name string) {
	vb.mu.Lock()
	id := itemID(vb.models, name)
	vb.mu.Unlock()

	vb.state.SelectModel(id)
	if id != "" {
		vb.searchBtn.Enable()
	} else {
		vb.searchBtn.Disable()
	}
}

func (vb *VehicleBar) onSearch() {
	vb.searchBtn.Disable()
	go func() {
		defer vb.searchBtn.Enable()

		n, err := vb.state.Search(vb.ctx)
		if err != nil {
			vb.fail("Search failed", err)
			return
		}
		vb.state.Status("Loading %d reference images", n)
	}()
}

func (vb *VehicleBar) fail(msg string, err error) {
	logrus.WithError(err).Warn(msg)
	vb.state.Status("%s: %v", msg, err)
	if vb.window != nil {
		dialog.ShowError(err, vb.window)
	}
}
