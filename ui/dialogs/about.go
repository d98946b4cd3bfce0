package dialogs

import (
	"fmt"

	"tint-care/internal/version"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
)

// ShowAbout displays version information.
func ShowAbout(window fyne.Window) {
	dialog.ShowInformation("About "+version.Name,
		fmt.Sprintf("%s v%s\n\n"+
			"Window tint pattern editor.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			version.Name, version.Version, version.BuildTime, version.GitCommit),
		window)
}
