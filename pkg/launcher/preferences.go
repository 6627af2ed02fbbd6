// Package launcher reads the official launcher's preferences document and
// formats launch parameters.
//
// The preferences document records which modules the user selected through
// the game's own launcher. It is used as the fallback default when no
// per-profile load order has been persisted yet.
package launcher

import (
	"encoding/xml"
	stderrors "errors"
	"io/fs"
	"os"
	"strings"

	"github.com/modstack/modstack/pkg/errors"
)

// PreferencesFileName is the launcher's data file, found under the game's
// user documents directory.
const PreferencesFileName = "LauncherData.xml"

// ModEntry is one per-module selection recorded by the official launcher.
type ModEntry struct {
	ID      string // module id (SubModId in the document)
	Enabled bool   // the launcher's IsSelected flag
}

// Preferences holds the launcher's recorded module selections.
type Preferences struct {
	Singleplayer []ModEntry
	Multiplayer  []ModEntry
}

// EnabledSingleplayer returns the singleplayer module ids flagged as
// selected, in declared order.
func (p *Preferences) EnabledSingleplayer() []string {
	if p == nil {
		return nil
	}
	var ids []string
	for _, e := range p.Singleplayer {
		if e.Enabled {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// ReadPreferences parses the launcher preferences document at path.
//
// An absent file surfaces NOT_FOUND_PREFERENCES: the user has to run the
// official launcher once before a fallback order exists. A file that cannot
// be parsed surfaces PARSE_INVALID.
func ReadPreferences(path string) (*Preferences, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeNotFoundPreferences, err,
				"launcher preferences not found at %s, run the official launcher once", path)
		}
		return nil, errors.Wrap(errors.ErrCodeScanFailure, err, "read %s", path)
	}

	var doc userData
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParseInvalid, err, "malformed launcher preferences %s", path)
	}

	return &Preferences{
		Singleplayer: convertEntries(doc.Singleplayer.ModDatas.Entries),
		Multiplayer:  convertEntries(doc.Multiplayer.ModDatas.Entries),
	}, nil
}

func convertEntries(entries []userModData) []ModEntry {
	out := make([]ModEntry, 0, len(entries))
	for _, e := range entries {
		id := strings.TrimSpace(e.ID)
		if id == "" {
			continue
		}
		out = append(out, ModEntry{
			ID:      id,
			Enabled: strings.EqualFold(strings.TrimSpace(e.IsSelected), "true"),
		})
	}
	return out
}

// userData mirrors the launcher document: singleplayer and multiplayer
// sections, each with per-module entries carrying Id and IsSelected
// elements.
type userData struct {
	XMLName      xml.Name    `xml:"UserData"`
	Singleplayer gameModData `xml:"SingleplayerData"`
	Multiplayer  gameModData `xml:"MultiplayerData"`
}

type gameModData struct {
	ModDatas modDatas `xml:"ModDatas"`
}

type modDatas struct {
	Entries []userModData `xml:"UserModData"`
}

type userModData struct {
	ID         string `xml:"Id"`
	IsSelected string `xml:"IsSelected"`
}
