package launcher

import "strings"

// Game modes accepted by the launch parameter template.
const (
	GameModeSingleplayer = "singleplayer"
	GameModeMultiplayer  = "multiplayer"
)

// Template placeholders.
const (
	placeholderGameMode = "{{gameMode}}"
	placeholderModIDs   = "{{subModIds}}"
)

// Default template fragments, matching the official launcher's parameter
// convention. Both fragments are configurable; the placeholders are fixed.
const (
	DefaultGameModeFragment = "/" + placeholderGameMode
	DefaultModulesFragment  = "_MODULES_" + placeholderModIDs + "_MODULES_"
	DefaultMarker           = "*"
)

// Template renders final launch parameters from an ordered module id
// sequence. The zero value is not usable; use DefaultTemplate.
type Template struct {
	// GameModeFragment contains the {{gameMode}} placeholder.
	GameModeFragment string
	// ModulesFragment contains the {{subModIds}} placeholder.
	ModulesFragment string
	// Marker prefixes each module id in the substituted list.
	Marker string
}

// DefaultTemplate returns the template matching the official launcher
// convention.
func DefaultTemplate() Template {
	return Template{
		GameModeFragment: DefaultGameModeFragment,
		ModulesFragment:  DefaultModulesFragment,
		Marker:           DefaultMarker,
	}
}

// Render substitutes the game mode and ordered module ids into the template
// fragments and returns the final parameter string, passed verbatim to the
// process launcher.
//
// Ids are each prefixed with the marker and concatenated with no separator:
// Render("singleplayer", ["Native", "SandBox"]) with the default template
// yields "/singleplayer _MODULES_*Native*SandBox_MODULES_".
func (t Template) Render(gameMode string, ids []string) string {
	var list strings.Builder
	for _, id := range ids {
		list.WriteString(t.Marker)
		list.WriteString(id)
	}

	mode := strings.ReplaceAll(t.GameModeFragment, placeholderGameMode, gameMode)
	mods := strings.ReplaceAll(t.ModulesFragment, placeholderModIDs, list.String())
	return mode + " " + mods
}
