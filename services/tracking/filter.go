package tracking

import (
	"shiptrack/lib/scrapers/myshiptracking"
	"shiptrack/lib/textutil"
	"strings"

	"github.com/antzucaro/matchr"
)

// SizeRank orders the port sizes used by the port database, unknown sizes
// rank 0.
func SizeRank(size string) int {
	switch size {
	case "XLarge":
		return 4
	case "Large":
		return 3
	case "Medium":
		return 2
	case "Small":
		return 1
	}
	return 0
}

// Filter selects ports by exact country and type and a minimum size, empty
// fields match every port.
type Filter struct {
	Country string `json:"country"`
	Type    string `json:"type"`
	MinSize string `json:"min_size"`
}

func (f Filter) Match(port myshiptracking.Port) bool {
	if f.Country != "" && myshiptracking.Value(port.Country) != f.Country {
		return false
	}
	if f.Type != "" && myshiptracking.Value(port.Type) != f.Type {
		return false
	}
	return SizeRank(myshiptracking.Value(port.Size)) >= SizeRank(f.MinSize)
}

func (f Filter) Apply(ports []myshiptracking.Port) []myshiptracking.Port {
	var out []myshiptracking.Port
	for _, p := range ports {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

func FindPort(ports []myshiptracking.Port, id string) (myshiptracking.Port, bool) {
	id = strings.TrimSpace(id)
	for _, p := range ports {
		if myshiptracking.Value(p.Id) == id {
			return p, true
		}
	}
	return myshiptracking.Port{}, false
}

// BestMatch returns the port whose name is closest to name by Jaro-Winkler
// similarity, ignoring case and whitespace. The first one wins ties.
func BestMatch(ports []myshiptracking.Port, name string) (myshiptracking.Port, bool) {
	name = textutil.NormalizeName(name)
	if len(ports) == 0 || name == "" {
		return myshiptracking.Port{}, false
	}

	best := 0
	bestScore := -1.0
	for i, p := range ports {
		score := matchr.JaroWinkler(name, textutil.NormalizeName(myshiptracking.Value(p.Name)), false)
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	return ports[best], true
}
