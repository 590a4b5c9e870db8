// Package forms provides huh-based form components for the TUI.
package forms

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

// NewConfirmOverwriteForm creates a huh confirm form asking the user whether
// to overwrite the clips already in the output folder.
// The result pointer is bound to the confirm field value.
func NewConfirmOverwriteForm(outDir string, existing int, overwrite *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Overwrite existing clips?").
				Description(fmt.Sprintf("%s already holds %d clips. Clips with the same number will be replaced.", outDir, existing)).
				Affirmative("Yes, overwrite").
				Negative("No, go back").
				Value(overwrite),
		),
	).WithTheme(Theme())
}
