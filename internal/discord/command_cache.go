package discord

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// guildCachePath returns where a guild's pushed command hashes live.
func guildCachePath(guildID string) string {
	return filepath.Join("data", "commands", guildID+".json")
}

func loadGuildCommandHashes(guildID string) map[string]string {
	data := make(map[string]string)
	file, err := os.ReadFile(guildCachePath(guildID))
	if err == nil {
		_ = json.Unmarshal(file, &data)
	}
	return data
}

func saveGuildCommandHashes(guildID string, hashes map[string]string) {
	path := guildCachePath(guildID)
	os.MkdirAll(filepath.Dir(path), 0755)
	data, _ := json.MarshalIndent(hashes, "", "  ")
	_ = os.WriteFile(path, data, 0644)
}
