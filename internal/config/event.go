package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"wedding-site/internal/models"
)

//go:embed event.toml
var defaultEvent string

// LoadEvent decodes the event description at path, or the embedded default when path is empty.
// Unknown keys are rejected so typos in the file do not silently drop content.
func LoadEvent(path string) (*models.Event, error) {
	src := defaultEvent
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read event file %s: %w", path, err)
		}
		src = string(data)
	}
	return DecodeEvent(src)
}

// DecodeEvent parses a TOML event description.
func DecodeEvent(src string) (*models.Event, error) {
	var ev models.Event
	md, err := toml.Decode(src, &ev)
	if err != nil {
		return nil, fmt.Errorf("failed to parse event: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("unknown event keys: %s", strings.Join(keys, ", "))
	}
	if ev.Title == "" {
		return nil, fmt.Errorf("event title is required")
	}
	if ev.StartsAt.IsZero() {
		return nil, fmt.Errorf("event starts_at is required")
	}
	return &ev, nil
}
