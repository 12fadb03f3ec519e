package schedule

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Venue is a venue facet entry. Official is true when at least one
// not-finished event at the venue came from the organiser's database.
type Venue struct {
	Name     string `json:"name"`
	Official bool   `json:"official"`
}

// EventType is an event type facet entry. The display name is taken from
// the first event seen with that type id.
type EventType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// facetSet accumulates distinct facet values during the engine pass.
type facetSet struct {
	venues   map[string]bool
	types    map[string]string
	ageRange map[string]struct{}
}

func newFacetSet() *facetSet {
	return &facetSet{
		venues:   make(map[string]bool),
		types:    make(map[string]string),
		ageRange: make(map[string]struct{}),
	}
}

func (f *facetSet) addVenue(name string, official bool) {
	// Accumulate official-ness: once any event marks the venue official it
	// stays official, but an unofficial event never clears the flag.
	if official {
		f.venues[name] = true
		return
	}
	if _, ok := f.venues[name]; !ok {
		f.venues[name] = false
	}
}

func (f *facetSet) addEventType(id, displayName string) {
	if _, ok := f.types[id]; !ok {
		f.types[id] = displayName
	}
}

func (f *facetSet) addAgeRange(label string) {
	f.ageRange[label] = struct{}{}
}

// sortedVenues returns venues with official ones first, then by a fixed
// name priority (main stages before workshops before the rest), then by
// name.
func (f *facetSet) sortedVenues() []Venue {
	venues := make([]Venue, 0, len(f.venues))
	for name, official := range f.venues {
		venues = append(venues, Venue{Name: name, Official: official})
	}
	sort.Slice(venues, func(i, j int) bool {
		a, b := venues[i], venues[j]
		if a.Official != b.Official {
			return a.Official
		}
		pa, pb := venuePriority(a.Name), venuePriority(b.Name)
		if pa != pb {
			return pa > pb
		}
		return a.Name < b.Name
	})
	return venues
}

func venuePriority(name string) int {
	switch {
	case strings.HasPrefix(name, "Stage"):
		return 999
	case strings.HasPrefix(name, "Workshop"):
		return 900
	default:
		return 1
	}
}

// sortedEventTypes returns event types sorted by display name.
func (f *facetSet) sortedEventTypes() []EventType {
	types := make([]EventType, 0, len(f.types))
	for id, name := range f.types {
		types = append(types, EventType{ID: id, Name: name})
	}
	sort.Slice(types, func(i, j int) bool {
		return types[i].Name < types[j].Name
	})
	return types
}

// sortedAgeRanges returns age range labels ordered by their leading
// number where one exists ("5-10" before "12+"), with labels that have no
// leading number after all numeric ones, alphabetically.
func (f *facetSet) sortedAgeRanges() []string {
	ranges := make([]string, 0, len(f.ageRange))
	for label := range f.ageRange {
		ranges = append(ranges, label)
	}
	sort.SliceStable(ranges, func(i, j int) bool {
		na, aok := leadingNumber(ranges[i])
		nb, bok := leadingNumber(ranges[j])
		switch {
		case aok && bok:
			if na != nb {
				return na < nb
			}
			return ranges[i] < ranges[j]
		case aok:
			return true
		case bok:
			return false
		default:
			return ranges[i] < ranges[j]
		}
	})
	return ranges
}

// leadingNumber extracts the integer prefix of a label, ignoring leading
// whitespace.
func leadingNumber(label string) (int, bool) {
	s := strings.TrimLeftFunc(label, unicode.IsSpace)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
