package panels

import (
	"errors"
	"math"
	"strconv"

	"tint-care/internal/app"
	"tint-care/internal/scene"
	"tint-care/ui/canvas"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"
)

// ToolPanel is the vertical strip of drawing and editing tools.
type ToolPanel struct {
	state     *app.State
	canvas    *canvas.SceneCanvas
	window    fyne.Window
	container fyne.CanvasObject

	pencilBtn *widget.Button
	undoBtn   *widget.Button
	redoBtn   *widget.Button
	deleteBtn *widget.Button
	zoomLabel *widget.Label

	onOpenImage func()
}

// NewToolPanel creates the tool panel.
func NewToolPanel(state *app.State, cvs *canvas.SceneCanvas) *ToolPanel {
	tp := &ToolPanel{state: state, canvas: cvs}
	editor := state.Editor

	circleBtn := widget.NewButton("Circle", func() { editor.AddShape(scene.KindCircle) })
	rectBtn := widget.NewButton("Rectangle", func() { editor.AddShape(scene.KindRectangle) })
	lineBtn := widget.NewButton("Line", func() { editor.AddShape(scene.KindLine) })
	tp.pencilBtn = widget.NewButton("Pencil", tp.onTogglePencil)

	zoomInBtn := widget.NewButtonWithIcon("", theme.ZoomInIcon(), cvs.ZoomIn)
	zoomOutBtn := widget.NewButtonWithIcon("", theme.ZoomOutIcon(), cvs.ZoomOut)
	tp.zoomLabel = widget.NewLabel("")
	tp.zoomLabel.Alignment = fyne.TextAlignCenter

	tp.undoBtn = widget.NewButtonWithIcon("", theme.ContentUndoIcon(), func() { editor.Undo() })
	tp.redoBtn = widget.NewButtonWithIcon("", theme.ContentRedoIcon(), func() { editor.Redo() })
	tp.deleteBtn = widget.NewButtonWithIcon("", theme.DeleteIcon(), func() { editor.DeleteActive() })

	openBtn := widget.NewButtonWithIcon("Image", theme.FolderOpenIcon(), func() {
		if tp.onOpenImage != nil {
			tp.onOpenImage()
		}
	})
	flipHBtn := widget.NewButton("Flip H", func() { editor.MirrorActiveHorizontal() })
	flipVBtn := widget.NewButton("Flip V", func() { editor.MirrorActiveVertical() })
	rotateBtn := widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), func() { editor.RotateActive() })
	traceBtn := widget.NewButton("Trace", tp.onTrace)

	tp.container = container.NewVBox(
		widget.NewLabelWithStyle("Draw", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		circleBtn, rectBtn, lineBtn, tp.pencilBtn,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Zoom", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		container.NewGridWithColumns(2, zoomOutBtn, zoomInBtn),
		tp.zoomLabel,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Edit", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		container.NewGridWithColumns(2, tp.undoBtn, tp.redoBtn),
		tp.deleteBtn,
		container.NewGridWithColumns(2, flipHBtn, flipVBtn),
		rotateBtn,
		widget.NewSeparator(),
		openBtn,
		traceBtn,
	)

	state.On(app.EventSceneChanged, func(interface{}) { tp.Sync() })
	tp.Sync()
	return tp
}

// Container returns the panel container.
func (tp *ToolPanel) Container() fyne.CanvasObject {
	return tp.container
}

// SetWindow sets the parent window for dialogs.
func (tp *ToolPanel) SetWindow(w fyne.Window) {
	tp.window = w
}

// SetOnOpenImage sets the action of the open image button.
func (tp *ToolPanel) SetOnOpenImage(fn func()) {
	tp.onOpenImage = fn
}

// Sync updates button states from the editor.
func (tp *ToolPanel) Sync() {
	editor := tp.state.Editor

	if editor.DrawingMode() {
		tp.pencilBtn.Importance = widget.HighImportance
	} else {
		tp.pencilBtn.Importance = widget.MediumImportance
	}
	tp.pencilBtn.Refresh()

	setEnabled(tp.undoBtn, editor.Len() > 0)
	setEnabled(tp.redoBtn, editor.HistoryLen() > 0)
	setEnabled(tp.deleteBtn, editor.Active() != nil)
	tp.zoomLabel.SetText(zoomText(editor.Zoom()))
}

func (tp *ToolPanel) onTogglePencil() {
	if tp.state.Editor.ToggleFreehand() {
		tp.state.Status("Freehand drawing on")
	} else {
		tp.state.Status("Freehand drawing off")
	}
}

func (tp *ToolPanel) onTrace() {
	go func() {
		shape, err := tp.state.TraceOutline()
		if err != nil {
			logrus.WithError(err).Info("outline trace failed")
			tp.state.Status("Trace failed: %v", err)
			if tp.window != nil && !errors.Is(err, app.ErrNoImage) {
				dialog.ShowError(err, tp.window)
			}
			return
		}
		tp.state.Status("Outline traced with %d points", len(shape.Points))
	}()
}

func setEnabled(w fyne.Disableable, enabled bool) {
	if enabled {
		w.Enable()
	} else {
		w.Disable()
	}
}

func zoomText(zoom float64) string {
	return strconv.Itoa(int(math.Round(zoom*100))) + "%"
}
