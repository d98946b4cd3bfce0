// Package colorutil provides shared color utilities for the tint pattern editor.
package colorutil

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Common colors used throughout the application.
var (
	Black       = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	White       = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	Transparent = color.NRGBA{}
	Gold        = color.NRGBA{R: 0xC1, G: 0xB0, B: 0x76, A: 255} // brand accent
	Selection   = color.NRGBA{R: 0x33, G: 0x99, B: 0xFF, A: 255}
	LightGray   = color.NRGBA{R: 0xE5, G: 0xE7, B: 0xEB, A: 255}
)

// ParseHex parses "#rgb", "#rrggbb" or "#rrggbbaa" into a color.
// The empty string and "transparent" yield a fully transparent color.
func ParseHex(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "transparent" {
		return Transparent, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return Transparent, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Transparent, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

// Hex formats a color as "#rrggbb", or "#rrggbbaa" when not opaque.
func Hex(c color.NRGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// IsTransparent reports whether the color contributes nothing when drawn.
func IsTransparent(c color.Color) bool {
	if c == nil {
		return true
	}
	_, _, _, a := c.RGBA()
	return a == 0
}
