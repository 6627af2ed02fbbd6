// Package manifest parses submodule manifest files into module records.
//
// Extraction is structural: the manifest is decoded into a node tree via
// encoding/xml, so whitespace and serialization shape never affect the
// result. Manifests that parse but lack required fields yield no record
// (callers skip them silently); manifests that cannot be parsed at all
// surface a PARSE_INVALID error.
package manifest

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"

	"github.com/modstack/modstack/pkg/errors"
	"github.com/modstack/modstack/pkg/module"
)

// FileName is the fixed manifest file name, matched case-insensitively
// during scanning.
const FileName = "SubModule.xml"

// Matches reports whether name is the manifest file name, ignoring case.
func Matches(name string) bool {
	return strings.EqualFold(name, FileName)
}

// Parse reads the manifest at path and returns the extracted module record.
//
// Returns (nil, nil) when the document parses but declares no module id:
// such files do not describe a loadable module and are skipped. Returns a
// PARSE_INVALID error when the document cannot be parsed at all; this is
// fatal for the current refresh pass.
//
// The record's ExternalID is the module's directory name, which is how the
// host's persisted load order keys entries.
func Parse(path string) (*module.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeScanFailure, err, "read manifest %s", path)
	}
	return parseBytes(data, path)
}

func parseBytes(data []byte, path string) (*module.Record, error) {
	var doc subModule
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParseInvalid, err, "malformed manifest %s", path)
	}

	id := strings.TrimSpace(doc.ID.Value)
	if id == "" {
		return nil, nil
	}

	rec := &module.Record{
		ID:       id,
		Name:     strings.TrimSpace(doc.Name.Value),
		Version:  strings.TrimSpace(doc.Version.Value),
		Official: parseBool(doc.Official.Value) || module.IsOfficial(id),
		Selected: parseBool(doc.DefaultModule.Value) || parseBool(doc.Selected.Value),
		Path:     path,
	}

	if dir := filepath.Base(filepath.Dir(path)); dir != "." && dir != string(filepath.Separator) {
		rec.ExternalID = dir
	}

	seen := make(map[string]bool)
	for _, dep := range doc.DependedModules.Modules {
		depID := strings.TrimSpace(dep.ID)
		if depID == "" {
			depID = strings.TrimSpace(dep.Value)
		}
		if depID == "" || depID == id || seen[depID] {
			continue
		}
		seen[depID] = true
		rec.Dependencies = append(rec.Dependencies, depID)
	}

	return rec, nil
}

// parseBool accepts the boolean spellings found in the wild.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

// subModule mirrors the manifest document structure. Fields carry their
// payload in a value attribute; dependency entries use either an Id or a
// value attribute depending on the manifest's vintage.
type subModule struct {
	XMLName         xml.Name
	ID              attrValue       `xml:"Id"`
	Name            attrValue       `xml:"Name"`
	Version         attrValue       `xml:"Version"`
	Official        attrValue       `xml:"Official"`
	DefaultModule   attrValue       `xml:"DefaultModule"`
	Selected        attrValue       `xml:"Selected"`
	DependedModules dependedModules `xml:"DependedModules"`
}

type attrValue struct {
	Value string `xml:"value,attr"`
}

type dependedModules struct {
	Modules []dependedModule `xml:"DependedModule"`
}

type dependedModule struct {
	ID    string `xml:"Id,attr"`
	Value string `xml:"value,attr"`
}
