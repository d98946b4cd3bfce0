// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"path/filepath"

	"tint-care/internal/app"
	"tint-care/internal/catalog"
	"tint-care/internal/image"
	"tint-care/internal/scene"
	"tint-care/internal/shell"
	"tint-care/internal/version"
	"tint-care/pkg/geometry"
	"tint-care/ui/canvas"
	"tint-care/ui/dialogs"
	"tint-care/ui/panels"
	"tint-care/ui/rulers"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"
)

const (
	prefKeyLastDir      = "lastDirectory"
	prefKeyLastImageDir = "lastImageDirectory"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	ctx        context.Context
	app        fyne.App
	state      *app.State
	canvas     *canvas.SceneCanvas
	hRuler     *rulers.Ruler
	vRuler     *rulers.Ruler
	vehicleBar *panels.VehicleBar
	toolPanel  *panels.ToolPanel
	statusBar  *widget.Label
	printer    *dialogs.PrintDialog
}

// New creates a new main window. ctx bounds the catalog and print requests
// started from the window.
func New(ctx context.Context, fyneApp fyne.App, state *app.State) *MainWindow {
	win := fyneApp.NewWindow(version.Name)

	mw := &MainWindow{
		Window:  win,
		ctx:     ctx,
		app:     fyneApp,
		state:   state,
		printer: dialogs.NewPrintDialog(win),
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupKeys()
	mw.setupEventHandlers()

	win.Resize(fyne.NewSize(1280, 900))
	return mw
}

// PrintDialog returns the dialog the shell shows for canvas prints.
func (mw *MainWindow) PrintDialog() shell.PrintDialog {
	return mw.printer.Prompt
}

// Start loads the brand and printer lists.
func (mw *MainWindow) Start() {
	mw.vehicleBar.LoadBrands()
	mw.vehicleBar.LoadPrinters()
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewSceneCanvas(mw.state.Editor)
	mw.canvas.SetZoomStep(mw.state.Config.Editor.ZoomStep)

	mw.hRuler = rulers.NewHorizontal()
	mw.vRuler = rulers.NewVertical()
	mw.canvas.SetOnViewChange(func(origin geometry.Point2D, zoom float64) {
		mw.hRuler.SetView(origin, zoom)
		mw.vRuler.SetView(origin, zoom)
	})

	mw.vehicleBar = panels.NewVehicleBar(mw.ctx, mw.state)
	mw.vehicleBar.SetWindow(mw.Window)
	mw.vehicleBar.SetOnExport(mw.onExportSketch)
	mw.vehicleBar.SetOnPrint(mw.onPrint)

	mw.toolPanel = panels.NewToolPanel(mw.state, mw.canvas)
	mw.toolPanel.SetWindow(mw.Window)
	mw.toolPanel.SetOnOpenImage(mw.onOpenImage)

	mw.statusBar = widget.NewLabel("Ready")

	corner := fynecanvas.NewRectangle(nil)
	corner.SetMinSize(fyne.NewSize(rulers.Thickness, rulers.Thickness))

	// Rulers above and left of the canvas
	canvasArea := container.NewBorder(
		container.NewBorder(nil, nil, corner, nil, mw.hRuler), // top
		nil,       // bottom
		mw.vRuler, // left
		nil,       // right
		mw.canvas, // center
	)

	content := container.NewBorder(
		container.NewPadded(mw.vehicleBar.Container()), // top
		container.NewPadded(mw.statusBar),              // bottom
		container.NewVScroll(mw.toolPanel.Container()), // left
		nil,        // right
		canvasArea, // center
	)

	mw.SetContent(content)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	editor := mw.state.Editor

	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Image...", mw.onOpenImage),
		fyne.NewMenuItem("Export Sketch...", mw.onExportSketch),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Print...", func() { mw.onPrint(mw.vehicleBar.SelectedPrinter()) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", func() { editor.Undo() }),
		fyne.NewMenuItem("Redo", func() { editor.Redo() }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Delete", func() { editor.DeleteActive() }),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.canvas.ZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.canvas.ZoomOut),
		fyne.NewMenuItem("Actual Size", mw.canvas.ActualSize),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", func() { dialogs.ShowAbout(mw.Window) }),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, viewMenu, helpMenu))
}

// setupKeys installs the editor shortcuts. They only fire when no widget has
// keyboard focus.
func (mw *MainWindow) setupKeys() {
	c := mw.Canvas()
	c.SetOnTypedKey(func(ev *fyne.KeyEvent) {
		mw.handleKey(ev.Name)
	})
	c.SetOnTypedRune(func(r rune) {
		mw.handleRune(r)
	})
	mw.SetOnDropped(func(_ fyne.Position, uris []fyne.URI) {
		for _, uri := range uris {
			if image.IsSupportedFormat(uri.Path()) {
				mw.state.Loader.LoadFile(mw.ctx, uri.Path())
			}
		}
	})
}

func (mw *MainWindow) handleKey(key fyne.KeyName) {
	if key == fyne.KeyDelete {
		mw.state.Editor.DeleteActive()
	}
}

func (mw *MainWindow) handleRune(r rune) {
	editor := mw.state.Editor
	switch r {
	case 'o':
		editor.AddShape(scene.KindCircle)
	case 'r':
		editor.AddShape(scene.KindRectangle)
	case 'p':
		editor.AddShape(scene.KindLine)
	}
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventStatus, func(data interface{}) {
		if text, ok := data.(string); ok {
			mw.updateStatus(text)
		}
	})

	mw.state.On(app.EventImageFailed, func(data interface{}) {
		mw.updateStatus("An image could not be loaded")
	})

	mw.state.On(app.EventVehicleLoaded, func(data interface{}) {
		if v, ok := data.(*catalog.Vehicle); ok && v.Model != "" {
			mw.SetTitle(version.Name + " - " + v.Model)
		}
	})
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// getLastDir returns the directory stored under key as a ListableURI, or nil.
func (mw *MainWindow) getLastDir(key string) fyne.ListableURI {
	path := mw.app.Preferences().String(key)
	if path == "" {
		return nil
	}
	uri := storage.NewFileURI(path)
	listable, err := storage.ListerForURI(uri)
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(key, filePath string) {
	mw.app.Preferences().SetString(key, filepath.Dir(filePath))
}

func (mw *MainWindow) onOpenImage() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(prefKeyLastImageDir, path)
		mw.state.Loader.LoadFile(mw.ctx, path)
		mw.updateStatus("Loading " + filepath.Base(path))
	}, mw.Window)

	fd.SetFilter(storage.NewExtensionFileFilter(image.SupportedFormats()))
	if loc := mw.getLastDir(prefKeyLastImageDir); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onExportSketch() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()

		path := writer.URI().Path()
		mw.saveLastDir(prefKeyLastDir, path)
		if err := mw.state.ExportPNG(writer); err != nil {
			logrus.WithError(err).Error("export failed")
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.updateStatus("Sketch saved to " + path)
	}, mw.Window)

	fd.SetFileName(mw.state.Config.Export.FileName)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".png"}))
	if loc := mw.getLastDir(prefKeyLastDir); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// onPrint renders the sketch and hands it to the shell for printer, which
// the shell's dialog offers for confirmation. The request is one-way:
// outcomes are only logged by the shell.
func (mw *MainWindow) onPrint(printer string) {
	mw.updateStatus("Preparing print...")
	go func() {
		if err := mw.state.PrintCanvas(mw.ctx, printer); err != nil {
			logrus.WithError(err).Error("print request failed")
			mw.updateStatus("Print failed")
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.updateStatus("Print requested")
	}()
}
