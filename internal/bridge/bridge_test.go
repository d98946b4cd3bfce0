package bridge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, b *Bus) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		b.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestInvoke(t *testing.T) {
	b := New()
	b.Handle(ChannelGetPrinters, func(ctx context.Context, payload any) (any, error) {
		return []Printer{{Name: "office"}, {Name: "plotter", IsDefault: true}}, nil
	})
	serve(t, b)

	printers, err := NewClient(b).ListPrinters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Printer{{Name: "office"}, {Name: "plotter", IsDefault: true}}, printers)
}

func TestInvokeNoHandler(t *testing.T) {
	b := New()
	serve(t, b)

	_, err := b.Invoke(context.Background(), "nope", nil)
	assert.ErrorIs(t, err, ErrNoHandler)
}

func TestInvokeUnexpectedResponse(t *testing.T) {
	b := New()
	b.Handle(ChannelGetPrinters, func(ctx context.Context, payload any) (any, error) {
		return "office", nil
	})
	serve(t, b)

	_, err := NewClient(b).ListPrinters(context.Background())
	assert.ErrorContains(t, err, "unexpected response")
}

func TestSendDelivers(t *testing.T) {
	b := New()
	got := make(chan PrintCanvasRequest, 1)
	b.Handle(ChannelPrintCanvas, func(ctx context.Context, payload any) (any, error) {
		got <- payload.(PrintCanvasRequest)
		return nil, errors.New("printer on fire")
	})
	serve(t, b)

	require.NoError(t, NewClient(b).PrintRendered(context.Background(), "data:image/png;base64,AA==", "office"))
	select {
	case req := <-got:
		assert.Equal(t, "office", req.PrinterName)
		assert.Equal(t, "data:image/png;base64,AA==", req.ImageDataURL)
	case <-time.After(2 * time.Second):
		t.Fatal("request not delivered")
	}
}

func TestSendOutlivesCallerContext(t *testing.T) {
	b := New()
	release := make(chan struct{})
	seen := make(chan error, 1)
	b.Handle(ChannelPrintFile, func(ctx context.Context, payload any) (any, error) {
		<-release
		seen <- ctx.Err()
		return nil, nil
	})
	serve(t, b)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, NewClient(b).PrintFile(ctx, "/tmp/a.png"))
	cancel()
	close(release)
	assert.NoError(t, <-seen)
}

func TestConcurrentRequests(t *testing.T) {
	b := New()
	var mu sync.Mutex
	inFlight, peak := 0, 0
	gate := make(chan struct{})
	b.Handle(ChannelGetPrinters, func(ctx context.Context, payload any) (any, error) {
		mu.Lock()
		inFlight++
		peak = max(peak, inFlight)
		mu.Unlock()
		<-gate
		mu.Lock()
		inFlight--
		mu.Unlock()
		return []Printer{}, nil
	})
	serve(t, b)

	const n = 5
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := b.Invoke(context.Background(), ChannelGetPrinters, nil)
			assert.NoError(t, err)
		}()
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return inFlight == n
	}, 2*time.Second, 10*time.Millisecond)
	close(gate)
	wg.Wait()
	assert.Equal(t, n, peak)
}

func TestClosed(t *testing.T) {
	b := New()
	serve(t, b)
	b.Close()
	b.Close()

	_, err := b.Invoke(context.Background(), ChannelGetPrinters, nil)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, NewClient(b).PrintFile(context.Background(), "x"), ErrClosed)
}

func TestInvokeContextCancelled(t *testing.T) {
	b := New() // nobody serves
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := b.Invoke(ctx, ChannelGetPrinters, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPreferred(t *testing.T) {
	printers := []Printer{
		{Name: "office"},
		{Name: "plotter", IsDefault: true},
		{Name: "cutter"},
	}
	assert.Equal(t, "office", Preferred(printers, "office"))
	assert.Equal(t, "plotter", Preferred(printers, "missing"))
	assert.Equal(t, "plotter", Preferred(printers, ""))
	assert.Equal(t, "a", Preferred([]Printer{{Name: "a"}, {Name: "b"}}, ""))
	assert.Equal(t, "", Preferred(nil, "office"))
	assert.Equal(t, NoPrinters, Preferred([]Printer{{Name: NoPrinters}}, ""))
}
