package shell

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"tint-care/internal/bridge"

	"github.com/sirupsen/logrus"
)

// Job is one print request handed to the OS.
type Job struct {
	Path    string
	Printer string // empty for the default destination
	Title   string
}

// Spooler is the OS print pipeline.
type Spooler interface {
	Printers(ctx context.Context) ([]bridge.Printer, error)
	Print(ctx context.Context, job Job) error
}

// CUPS drives the CUPS command line tools.
type CUPS struct {
	LPStat string
	LP     string
}

// NewCUPS creates a spooler using the given lpstat and lp binaries.
func NewCUPS(lpstat, lp string) *CUPS {
	if lpstat == "" {
		lpstat = "lpstat"
	}
	if lp == "" {
		lp = "lp"
	}
	return &CUPS{LPStat: lpstat, LP: lp}
}

// Printers lists destinations with `lpstat -e` and marks the `lpstat -d` default.
func (c *CUPS) Printers(ctx context.Context) ([]bridge.Printer, error) {
	out, err := c.run(ctx, c.LPStat, "-e")
	if err != nil {
		return nil, err
	}

	def := ""
	if d, err := c.run(ctx, c.LPStat, "-d"); err == nil {
		def = parseDefault(d)
	}

	var printers []bridge.Printer
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		name := strings.TrimSpace(sc.Text())
		if name == "" {
			continue
		}
		printers = append(printers, bridge.Printer{Name: name, IsDefault: name == def})
	}
	return printers, sc.Err()
}

// Print submits a job with `lp`.
func (c *CUPS) Print(ctx context.Context, job Job) error {
	args := []string{}
	if job.Printer != "" {
		args = append(args, "-d", job.Printer)
	}
	if job.Title != "" {
		args = append(args, "-t", job.Title)
	}
	args = append(args, "--", job.Path)

	out, err := c.run(ctx, c.LP, args...)
	if err != nil {
		return err
	}
	logrus.WithField("printer", job.Printer).Infof("spooled: %s", strings.TrimSpace(string(out)))
	return nil
}

func (c *CUPS) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// parseDefault extracts NAME from "system default destination: NAME".
func parseDefault(out []byte) string {
	_, name, ok := strings.Cut(string(out), "destination:")
	if !ok {
		return ""
	}
	return strings.TrimSpace(name)
}
