// Package manifest models the CurseForge modpack manifest and derives the
// release manifest.json from the pack definition.
package manifest

import (
	"encoding/json"
	"os"
	"sort"
	"strings"

	"github.com/ChaoticTrials/Caelum/pkg/errors"
	"github.com/ChaoticTrials/Caelum/pkg/logging"
	"github.com/ChaoticTrials/Caelum/pkg/types"
)

// ModLoader identifies one mod loader entry, e.g. "forge-43.2.0".
type ModLoader struct {
	ID      string `json:"id"`
	Primary bool   `json:"primary"`
}

// Minecraft holds the game and loader versions.
type Minecraft struct {
	Version    string      `json:"version"`
	ModLoaders []ModLoader `json:"modLoaders"`
}

// ModFile references one CurseForge project file.
type ModFile struct {
	ProjectID int  `json:"projectID"`
	FileID    int  `json:"fileID"`
	Required  bool `json:"required"`
}

// Manifest is the CurseForge modpack manifest.
type Manifest struct {
	Minecraft       Minecraft `json:"minecraft"`
	ManifestType    string    `json:"manifestType"`
	ManifestVersion int       `json:"manifestVersion"`
	Name            string    `json:"name"`
	Version         string    `json:"version"`
	Author          string    `json:"author"`
	Files           []ModFile `json:"files"`
	Overrides       string    `json:"overrides"`
}

// Parse decodes a manifest from JSON bytes
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, errors.ErrManifestParse, "invalid manifest")
	}
	return &m, nil
}

// Load reads and decodes a manifest file
func Load(fsys types.FS, path string) (*Manifest, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrNotFound, "manifest %s does not exist", path)
		}
		return nil, errors.Wrapf(err, errors.ErrIOFailure, "cannot read manifest %s", path)
	}
	return Parse(data)
}

// Save writes the manifest as indented JSON with a trailing newline
func (m *Manifest) Save(fsys types.FS, path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot encode manifest")
	}
	if err := fsys.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "cannot write manifest %s", path)
	}
	return nil
}

// Generate derives the release manifest from the pack definition: it fills
// the CurseForge envelope fields when absent and sorts the file list by
// project ID so the output is stable across runs. The result is written to
// outPath and returned.
func Generate(fsys types.FS, packPath, outPath string) (*Manifest, error) {
	logger := logging.GetLogger("manifest")

	m, err := Load(fsys, packPath)
	if err != nil {
		return nil, err
	}

	if m.ManifestType == "" {
		m.ManifestType = "minecraftModpack"
	}
	if m.ManifestVersion == 0 {
		m.ManifestVersion = 1
	}
	if m.Overrides == "" {
		m.Overrides = "overrides"
	}

	sort.Slice(m.Files, func(i, j int) bool {
		if m.Files[i].ProjectID != m.Files[j].ProjectID {
			return m.Files[i].ProjectID < m.Files[j].ProjectID
		}
		return m.Files[i].FileID < m.Files[j].FileID
	})

	if err := m.Save(fsys, outPath); err != nil {
		return nil, err
	}

	logger.Info().
		Str("version", m.Version).
		Int("mods", len(m.Files)).
		Msg("Manifest generated")

	return m, nil
}

// LoaderVersion returns the primary loader version with any "forge-" prefix
// stripped, the form the server mod list expects.
func (m *Manifest) LoaderVersion() string {
	if len(m.Minecraft.ModLoaders) == 0 {
		return ""
	}
	id := m.Minecraft.ModLoaders[0].ID
	return strings.TrimPrefix(id, "forge-")
}
