package app

import (
	"image/color"

	"tint-care/pkg/colorutil"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// TintCareTheme is the light theme with the brand gold accent.
type TintCareTheme struct{}

var _ fyne.Theme = (*TintCareTheme)(nil)

func (t *TintCareTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		return colorutil.Gold
	case theme.ColorNameSelection:
		return color.NRGBA{R: 0xC1, G: 0xB0, B: 0x76, A: 0x80}
	case theme.ColorNameHeaderBackground:
		return colorutil.LightGray
	case theme.ColorNameScrollBar:
		return color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	default:
		return theme.DefaultTheme().Color(name, theme.VariantLight)
	}
}

func (t *TintCareTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *TintCareTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *TintCareTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameScrollBar:
		return 16
	case theme.SizeNameScrollBarSmall:
		return 12
	default:
		return theme.DefaultTheme().Size(name)
	}
}
