package shiftboard

import (
	"sort"
	"sync"
)

// Signup operations reported by the shift toggle endpoint.
const (
	OperationAdd    = "add"
	OperationDelete = "delete"
)

// Board holds the {day -> hour -> []Shift} map for the shift schedule.
// The map is replaced wholesale on rebuild and mutated in place for
// exactly one shift after a signup round-trip. A single logical writer is
// assumed; the mutex exists for concurrent API readers.
type Board struct {
	mu    sync.RWMutex
	days  []string
	byDay map[string]map[string][]Shift
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{byDay: make(map[string]map[string][]Shift)}
}

// Replace swaps in a new shift collection, grouping by day and hour keys
// and deriving the display time strings. Days are ordered by their
// earliest shift; shifts within an hour are ordered by start time, venue
// and role for a stable render.
func (b *Board) Replace(shifts []Shift) {
	byDay := make(map[string]map[string][]Shift)
	earliest := make(map[string]Shift)

	for _, s := range shifts {
		s.StartTime = HourKey(s.Start)
		s.EndTime = HourKey(s.End)

		day := DayKey(s.Start)
		hour := s.StartTime
		if byDay[day] == nil {
			byDay[day] = make(map[string][]Shift)
		}
		byDay[day][hour] = append(byDay[day][hour], s)

		if first, ok := earliest[day]; !ok || s.Start.Before(first.Start) {
			earliest[day] = s
		}
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool {
		return earliest[days[i]].Start.Before(earliest[days[j]].Start)
	})

	for _, hours := range byDay {
		for hour := range hours {
			bucket := hours[hour]
			sort.SliceStable(bucket, func(i, j int) bool {
				a, b := bucket[i], bucket[j]
				if !a.Start.Equal(b.Start) {
					return a.Start.Before(b.Start)
				}
				if a.Venue != b.Venue {
					return a.Venue < b.Venue
				}
				return a.RoleName < b.RoleName
			})
		}
	}

	b.mu.Lock()
	b.days = days
	b.byDay = byDay
	b.mu.Unlock()
}

// Days returns the board's day keys in chronological order.
func (b *Board) Days() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, len(b.days))
	copy(out, b.days)
	return out
}

// Snapshot returns a deep copy of the full {day -> hour -> []Shift} map.
func (b *Board) Snapshot() map[string]map[string][]Shift {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[string]map[string][]Shift, len(b.byDay))
	for day, hours := range b.byDay {
		out[day] = make(map[string][]Shift, len(hours))
		for hour, shifts := range hours {
			bucket := make([]Shift, len(shifts))
			copy(bucket, shifts)
			out[day][hour] = bucket
		}
	}
	return out
}

// ApplySignupResult mutates exactly one shift in place after a successful
// signup round-trip: OperationAdd increments the count and marks the shift
// as the user's, OperationDelete decrements and clears the mark. When the
// action was performed as an admin override on someone else's behalf the
// viewer's own signed-up flag is left alone. The nested map is scanned;
// shifts are not indexed by id. Returns false when no shift matched.
//
// Failed round-trips must not reach this method.
func (b *Board) ApplySignupResult(shiftID int64, operation string, override bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, hours := range b.byDay {
		for _, shifts := range hours {
			for i := range shifts {
				if shifts[i].ID != shiftID {
					continue
				}
				switch operation {
				case OperationAdd:
					shifts[i].CurrentCount++
					if !override {
						shifts[i].IsUserShift = true
					}
				case OperationDelete:
					shifts[i].CurrentCount--
					if !override {
						shifts[i].IsUserShift = false
					}
				default:
					return false
				}
				return true
			}
		}
	}
	return false
}

// Lookup returns a copy of the shift with the given id.
func (b *Board) Lookup(shiftID int64) (Shift, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, hours := range b.byDay {
		for _, shifts := range hours {
			for _, s := range shifts {
				if s.ID == shiftID {
					return s, true
				}
			}
		}
	}
	return Shift{}, false
}
