// Package radio holds the static station catalog and the playback
// controller that binds at most one station to the audio transport.
package radio

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mmcdole/huddle/internal/domain"
	"github.com/mmcdole/huddle/internal/search"
)

//go:embed stations.yaml
var builtinStations []byte

type catalogFile struct {
	Stations []domain.Station `yaml:"stations"`
}

// Catalog is the immutable list of stations, loaded once
type Catalog struct {
	stations []domain.Station
	byID     map[int64]domain.Station
}

// LoadCatalog reads the catalog from path, or the built-in catalog when path is empty
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return ParseCatalog(builtinStations)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stations file: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML station list. Ids must be positive and
// unique and every station needs a stream URL.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse stations: %w", err)
	}

	c := &Catalog{byID: make(map[int64]domain.Station, len(file.Stations))}
	for _, st := range file.Stations {
		st.Name = strings.TrimSpace(st.Name)
		st.StreamURL = strings.TrimSpace(st.StreamURL)
		switch {
		case st.ID <= 0:
			return nil, fmt.Errorf("station %q: id must be positive", st.Name)
		case st.StreamURL == "":
			return nil, fmt.Errorf("station %d: missing stream_url", st.ID)
		}
		if _, dup := c.byID[st.ID]; dup {
			return nil, fmt.Errorf("station %d: duplicate id", st.ID)
		}
		c.byID[st.ID] = st
		c.stations = append(c.stations, st)
	}
	return c, nil
}

// Stations returns every station in catalog order
func (c *Catalog) Stations() []domain.Station {
	return append([]domain.Station(nil), c.stations...)
}

// Station looks a station up by id
func (c *Catalog) Station(id int64) (domain.Station, bool) {
	st, ok := c.byID[id]
	return st, ok
}

// Len returns the number of stations
func (c *Catalog) Len() int {
	return len(c.stations)
}

// Filter fuzzy-matches stations by name and genre
func (c *Catalog) Filter(query string) []domain.Station {
	return search.FilterBy(query, c.stations, func(st domain.Station) string {
		return st.Name + " " + st.Genre
	})
}
