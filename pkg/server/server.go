// Package server produces the server-archive specific files: the mod list
// consumed by the server installer and the templated server.properties.
package server

import (
	"fmt"
	"strings"

	"github.com/ChaoticTrials/Caelum/pkg/errors"
	"github.com/ChaoticTrials/Caelum/pkg/logging"
	"github.com/ChaoticTrials/Caelum/pkg/manifest"
	"github.com/ChaoticTrials/Caelum/pkg/types"
)

// Properties holds the tunable server.properties values.
type Properties struct {
	AllowFlight        bool `koanf:"allow_flight"`
	EnableCommandBlock bool `koanf:"enable_command_block"`
	MaxPlayers         int  `koanf:"max_players"`
	OnlineMode         bool `koanf:"online_mode"`
	SpawnProtection    int  `koanf:"spawn_protection"`
	ViewDistance       int  `koanf:"view_distance"`
}

// WriteModList writes server.txt: the first line is
// "<minecraftVersion>/<loaderVersion>", followed by one
// "<projectID>/<fileID>" line per mod that is not client-only.
func WriteModList(fsys types.FS, path string, m *manifest.Manifest, clientMods []int) error {
	logger := logging.GetLogger("server")

	clientOnly := make(map[int]bool, len(clientMods))
	for _, id := range clientMods {
		clientOnly[id] = true
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s/%s\n", m.Minecraft.Version, m.LoaderVersion())

	skipped := 0
	for _, mod := range m.Files {
		if clientOnly[mod.ProjectID] {
			skipped++
			continue
		}
		fmt.Fprintf(&b, "%d/%d\n", mod.ProjectID, mod.FileID)
	}

	if err := fsys.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "cannot write server mod list %s", path)
	}

	logger.Debug().
		Int("mods", len(m.Files)-skipped).
		Int("clientOnly", skipped).
		Msg("Server mod list written")

	return nil
}

// WriteProperties writes server.properties with the motd carrying the pack
// name and version.
func WriteProperties(fsys types.FS, path string, props Properties, packName, version string) error {
	lines := []string{
		fmt.Sprintf("allow-flight=%t", props.AllowFlight),
		fmt.Sprintf("enable-command-block=%t", props.EnableCommandBlock),
		fmt.Sprintf("max-players=%d", props.MaxPlayers),
		fmt.Sprintf("motd=§%s\\nv%s§r", packName, version),
		fmt.Sprintf("online-mode=%t", props.OnlineMode),
		fmt.Sprintf("spawn-protection=%d", props.SpawnProtection),
		fmt.Sprintf("view-distance=%d", props.ViewDistance),
	}

	content := strings.Join(lines, "\n") + "\n"
	if err := fsys.WriteFile(path, []byte(content), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "cannot write %s", path)
	}
	return nil
}
