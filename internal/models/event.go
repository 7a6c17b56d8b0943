package models

import "time"

// Event describes the celebration shown on the landing page
type Event struct {
	Title    string    `toml:"title"`
	Subtitle string    `toml:"subtitle"`
	Tagline  string    `toml:"tagline"`
	Date     string    `toml:"date"`
	StartsAt time.Time `toml:"starts_at"`
	Venue    string    `toml:"venue"`
	MapURL   string    `toml:"map_url"`
	Phases   []Phase   `toml:"phase"`
}

// Phase is one entry of the celebration timeline
type Phase struct {
	Icon        string `toml:"icon"`
	Title       string `toml:"title"`
	Time        string `toml:"time"`
	Location    string `toml:"location"`
	Description string `toml:"description"`
}
