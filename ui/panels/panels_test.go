package panels

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"tint-care/internal/app"
	"tint-care/internal/bridge"
	"tint-care/internal/catalog"
	"tint-care/internal/config"
	"tint-care/internal/scene"
	"tint-care/ui/canvas"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalog struct {
	mu       sync.Mutex
	vehicles []string
}

func (s *stubCatalog) ListBrands(ctx context.Context) ([]catalog.Item, error) {
	return []catalog.Item{{Name: "Toyota", ID: "b1"}, {Name: "Honda", ID: "b2"}}, nil
}

func (s *stubCatalog) ListModels(ctx context.Context, brand string) ([]catalog.Item, error) {
	if brand == "b1" {
		return []catalog.Item{{Name: "Corolla", ID: "m1"}}, nil
	}
	return nil, nil
}

func (s *stubCatalog) GetVehicle(ctx context.Context, model string) (*catalog.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vehicles = append(s.vehicles, model)
	return &catalog.Vehicle{ID: model, Files: json.RawMessage(`[]`)}, nil
}

func (s *stubCatalog) requested() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.vehicles...)
}

type stubPrinter struct {
	mu      sync.Mutex
	printed []string
}

func (s *stubPrinter) ListPrinters(ctx context.Context) ([]bridge.Printer, error) {
	return []bridge.Printer{{Name: "office", IsDefault: true}, {Name: "cutter"}}, nil
}

func (s *stubPrinter) PrintRendered(ctx context.Context, imageDataURL, printerName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.printed = append(s.printed, printerName)
	return nil
}

func (s *stubPrinter) requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.printed...)
}

func newTestState(t *testing.T) (*app.State, *stubCatalog) {
	t.Helper()
	test.NewApp()
	cat := &stubCatalog{}
	return app.NewState(config.Default(), cat, nil, &stubPrinter{}), cat
}

func TestVehicleBarFlow(t *testing.T) {
	state, cat := newTestState(t)
	vb := NewVehicleBar(context.Background(), state)

	vb.LoadBrands()
	require.Eventually(t, func() bool { return len(vb.brandSelect.Options) == 2 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"Toyota", "Honda"}, vb.brandSelect.Options)
	assert.Len(t, vb.yearSelect.Options, 46)
	assert.True(t, vb.modelSelect.Disabled())

	vb.brandSelect.SetSelected("Toyota")
	require.Eventually(t, func() bool { return len(vb.modelSelect.Options) == 1 }, time.Second, 10*time.Millisecond)
	assert.False(t, vb.modelSelect.Disabled())
	assert.True(t, vb.searchBtn.Disabled())

	vb.yearSelect.SetSelected("2001")
	vb.modelSelect.SetSelected("Corolla")
	brand, year, model := state.Selection()
	assert.Equal(t, "b1", brand)
	assert.Equal(t, "2001", year)
	assert.Equal(t, "m1", model)
	assert.False(t, vb.searchBtn.Disabled())

	test.Tap(vb.searchBtn)
	require.Eventually(t, func() bool { return len(cat.requested()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"m1"}, cat.requested())
}

func TestVehicleBarBrandWithoutModels(t *testing.T) {
	state, _ := newTestState(t)
	vb := NewVehicleBar(context.Background(), state)
	vb.setBrands([]catalog.Item{{Name: "Honda", ID: "b2"}})

	vb.brandSelect.SetSelected("Honda")
	require.Eventually(t, func() bool {
		brand, _, model := state.Selection()
		return brand == "b2" && model == ""
	}, time.Second, 10*time.Millisecond)
	assert.True(t, vb.modelSelect.Disabled())
}

func TestVehicleBarActions(t *testing.T) {
	state, _ := newTestState(t)
	vb := NewVehicleBar(context.Background(), state)

	var exported bool
	printed := "unset"
	vb.SetOnExport(func() { exported = true })
	vb.SetOnPrint(func(printer string) { printed = printer })
	test.Tap(vb.exportBtn)
	test.Tap(vb.printBtn)
	assert.True(t, exported)
	assert.Equal(t, "", printed, "no printer chosen before the list loads")
}

func TestVehicleBarPrinters(t *testing.T) {
	test.NewApp()
	printer := &stubPrinter{}
	state := app.NewState(config.Default(), &stubCatalog{}, nil, printer)
	vb := NewVehicleBar(context.Background(), state)
	vb.SetOnPrint(func(name string) {
		require.NoError(t, state.PrintCanvas(context.Background(), name))
	})

	vb.LoadPrinters()
	require.Eventually(t, func() bool { return len(vb.printerSelect.Options) == 2 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, "office", vb.SelectedPrinter())

	vb.printerSelect.SetSelected("cutter")
	test.Tap(vb.printBtn)
	assert.Equal(t, []string{"cutter"}, printer.requests())
}

func TestToolPanelSync(t *testing.T) {
	state, _ := newTestState(t)
	cvs := canvas.NewSceneCanvas(state.Editor)
	tp := NewToolPanel(state, cvs)

	assert.True(t, tp.undoBtn.Disabled())
	assert.True(t, tp.redoBtn.Disabled())
	assert.True(t, tp.deleteBtn.Disabled())
	assert.Equal(t, "100%", tp.zoomLabel.Text)

	shape := state.Editor.AddShape(scene.KindCircle)
	assert.False(t, tp.undoBtn.Disabled())
	assert.True(t, tp.deleteBtn.Disabled())

	state.Editor.SetActive(shape)
	assert.False(t, tp.deleteBtn.Disabled())

	test.Tap(tp.undoBtn)
	assert.Equal(t, 0, state.Editor.Len())
	assert.False(t, tp.redoBtn.Disabled())

	test.Tap(tp.redoBtn)
	assert.Equal(t, 1, state.Editor.Len())
}

func TestToolPanelPencil(t *testing.T) {
	state, _ := newTestState(t)
	tp := NewToolPanel(state, canvas.NewSceneCanvas(state.Editor))

	test.Tap(tp.pencilBtn)
	assert.True(t, state.Editor.DrawingMode())
	assert.NotNil(t, state.Editor.Brush())

	test.Tap(tp.pencilBtn)
	assert.False(t, state.Editor.DrawingMode())
}

func TestItemLookup(t *testing.T) {
	items := []catalog.Item{{Name: "A", ID: "1"}, {Name: "B", ID: "2"}}
	assert.Equal(t, []string{"A", "B"}, itemNames(items))
	assert.Equal(t, "2", itemID(items, "B"))
	assert.Equal(t, "", itemID(items, "C"))
}
