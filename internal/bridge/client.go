package bridge

import (
	"context"
	"fmt"
)

// NoPrinters is the single entry reported when printers cannot be listed.
const NoPrinters = "no printers"

// Printer is one OS print destination.
type Printer struct {
	Name      string `json:"name"`
	IsDefault bool   `json:"isDefault,omitempty"`
}

// Preferred returns requested if it is listed, otherwise the default
// destination, otherwise the first printer.
func Preferred(printers []Printer, requested string) string {
	if len(printers) == 0 {
		return ""
	}
	for _, p := range printers {
		if requested != "" && p.Name == requested {
			return p.Name
		}
	}
	for _, p := range printers {
		if p.IsDefault {
			return p.Name
		}
	}
	return printers[0].Name
}

// PrintCanvasRequest is the payload of the print-canvas channel.
type PrintCanvasRequest struct {
	ImageDataURL string `json:"imageDataUrl"`
	PrinterName  string `json:"printerName"`
}

// Capability is everything the UI may ask of the shell.
type Capability interface {
	// ListPrinters returns the OS printers. It never fails on the OS side:
	// enumeration errors yield a single NoPrinters entry.
	ListPrinters(ctx context.Context) ([]Printer, error)
	// PrintRendered hands a rendered PNG data URL to the shell for printing
	// on printerName (empty for the default destination). It returns once
	// the request is delivered; print failures are only logged by the shell.
	PrintRendered(ctx context.Context, imageDataURL, printerName string) error
}

// FilePrinter prints a file silently and closes the window afterwards.
type FilePrinter interface {
	PrintFile(ctx context.Context, path string) error
}

// Client implements Capability and FilePrinter over a Bus.
type Client struct {
	bus *Bus
}

var (
	_ Capability  = (*Client)(nil)
	_ FilePrinter = (*Client)(nil)
)

// NewClient creates a client calling through bus.
func NewClient(bus *Bus) *Client {
	return &Client{bus: bus}
}

func (c *Client) ListPrinters(ctx context.Context) ([]Printer, error) {
	v, err := c.bus.Invoke(ctx, ChannelGetPrinters, nil)
	if err != nil {
		return nil, err
	}
	printers, ok := v.([]Printer)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected response %T", ChannelGetPrinters, v)
	}
	return printers, nil
}

func (c *Client) PrintRendered(ctx context.Context, imageDataURL, printerName string) error {
	return c.bus.Send(ctx, ChannelPrintCanvas, PrintCanvasRequest{
		ImageDataURL: imageDataURL,
		PrinterName:  printerName,
	})
}

func (c *Client) PrintFile(ctx context.Context, path string) error {
	return c.bus.Send(ctx, ChannelPrintFile, path)
}
