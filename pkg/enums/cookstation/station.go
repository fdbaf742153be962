package cookstation

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Station struct {
	Name string
}

func (s Station) Code() string {
	return s.Name
}

// Label renders the code for display, e.g. COLD_STATION as "Cold Station".
func (s Station) Label() string {
	return cases.Title(language.English).String(strings.ReplaceAll(s.Name, "_", " "))
}

// KitchenRelevant reports whether items routed to this station belong on
// the kitchen display.
func (s Station) KitchenRelevant() bool {
	switch s {
	case Stations.Kitchen, Stations.Grill, Stations.Fry, Stations.ColdStation:
		return true
	}
	return false
}

type Enum struct {
	Kitchen     Station
	Grill       Station
	Fry         Station
	Drink       Station
	ColdStation Station
}

var Stations = Enum{
	Kitchen:     Station{Name: "KITCHEN"},
	Grill:       Station{Name: "GRILL"},
	Fry:         Station{Name: "FRY"},
	Drink:       Station{Name: "DRINK"},
	ColdStation: Station{Name: "COLD_STATION"},
}

var All = []Station{
	Stations.Kitchen,
	Stations.Grill,
	Stations.Fry,
	Stations.Drink,
	Stations.ColdStation,
}

// ByName returns the station for a given name, or nil if not found.
// Matching ignores case.
func ByName(name string) *Station {
	for _, s := range All {
		if strings.EqualFold(s.Name, name) {
			return &s
		}
	}
	return nil
}

// Resolve maps a raw station tag to a station. An empty tag routes to the
// kitchen; an unknown tag is returned as-is so it never matches a kitchen
// station.
func Resolve(tag string) Station {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return Stations.Kitchen
	}
	if s := ByName(tag); s != nil {
		return *s
	}
	return Station{Name: strings.ToUpper(tag)}
}
