// Package panels provides the vehicle bar and tool panel around the canvas.
package panels

import (
	"tint-care/internal/catalog"
)

// itemNames returns the display names of items in order.
func itemNames(items []catalog.Item) []string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	return names
}

// itemID returns the id of the first item named name, or "".
func itemID(items []catalog.Item, name string) string {
	for _, item := range items {
		if item.Name == name {
			return item.ID
		}
	}
	return ""
}
