package version

import (
	"encoding/json"
	"log"
	"os"
)

const fallback = "0.0.0"

type Info struct {
	Version string `json:"version"`
}

// Load reads build metadata from the given JSON file. A missing or malformed
// file is logged and degrades to the fallback version rather than failing
// startup.
func Load(path string) Info {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("warning: could not read %s: %v", path, err)
		return Info{Version: fallback}
	}
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		log.Printf("warning: could not parse %s: %v", path, err)
		return Info{Version: fallback}
	}
	if info.Version == "" {
		info.Version = fallback
	}
	return info
}
