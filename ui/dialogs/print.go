// Package dialogs provides application dialogs.
package dialogs

import (
	"context"
	"sync"

	"tint-care/internal/bridge"
	"tint-care/internal/shell"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// PrintDialog lets the user confirm or change the printer for a rendered
// sketch. Each print request gets its own dialog.
type PrintDialog struct {
	window fyne.Window

	mu      sync.Mutex
	pending []*prompt
}

// NewPrintDialog creates a print dialog shown over window.
func NewPrintDialog(window fyne.Window) *PrintDialog {
	return &PrintDialog{window: window}
}

type printAnswer struct {
	printer string
	ok      bool
}

// prompt is one open dialog and the widgets of its request.
type prompt struct {
	dlg       *dialog.CustomDialog
	selector  *widget.Select
	printBtn  *widget.Button
	cancelBtn *widget.Button
	answers   chan printAnswer
}

// answer records the first answer; later ones are dropped.
func (p *prompt) answer(a printAnswer) {
	select {
	case p.answers <- a:
	default:
	}
}

// Prompt shows a dialog for req and blocks until the user answers it or ctx
// ends. It has the shell.PrintDialog signature and is called off the UI
// goroutine; concurrent calls show independent dialogs.
func (d *PrintDialog) Prompt(ctx context.Context, req shell.DialogRequest) (string, error) {
	p := d.build(req)
	p.dlg.Show()

	d.mu.Lock()
	d.pending = append(d.pending, p)
	d.mu.Unlock()
	defer d.remove(p)

	select {
	case a := <-p.answers:
		if !a.ok {
			return "", shell.ErrCancelled
		}
		return a.printer, nil
	case <-ctx.Done():
		p.dlg.Hide()
		return "", ctx.Err()
	}
}

func (d *PrintDialog) build(req shell.DialogRequest) *prompt {
	p := &prompt{answers: make(chan printAnswer, 1)}

	names := make([]string, len(req.Printers))
	for i, pr := range req.Printers {
		names[i] = pr.Name
	}

	p.selector = widget.NewSelect(names, nil)
	if sel := bridge.Preferred(req.Printers, req.Printer); sel != "" {
		p.selector.SetSelected(sel)
	}

	var preview fyne.CanvasObject = widget.NewLabel("No preview")
	if req.Preview != nil {
		img := fynecanvas.NewImageFromImage(req.Preview)
		img.FillMode = fynecanvas.ImageFillContain
		img.SetMinSize(fyne.NewSize(240, 320))
		preview = img
	}

	p.printBtn = widget.NewButtonWithIcon("Print", theme.DocumentPrintIcon(), func() {
		p.answer(printAnswer{printer: p.selector.Selected, ok: true})
		p.dlg.Hide()
	})
	p.printBtn.Importance = widget.HighImportance
	p.cancelBtn = widget.NewButtonWithIcon("Cancel", theme.CancelIcon(), func() {
		p.answer(printAnswer{})
		p.dlg.Hide()
	})

	content := container.NewBorder(
		container.NewBorder(nil, nil, widget.NewLabel("Printer:"), nil, p.selector),
		container.NewHBox(layout.NewSpacer(), p.cancelBtn, p.printBtn),
		nil, nil,
		preview,
	)

	p.dlg = dialog.NewCustomWithoutButtons("Print Sketch", content, d.window)
	p.dlg.SetOnClosed(func() { p.answer(printAnswer{}) })
	return p
}

func (d *PrintDialog) remove(p *prompt) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, q := range d.pending {
		if q == p {
			d.pending = append(d.pending[:i], d.pending[i+1:]...)
			return
		}
	}
}
