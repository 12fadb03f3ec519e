package shiftboard

import (
	"sort"
	"time"
)

// Filters is the board's exclusion filter set. An empty RoleIDs list
// means no role filtering, unlike the schedule engine's selections.
type Filters struct {
	RoleIDs          []int64 `json:"role_ids"`
	ShowPast         bool    `json:"show_finished_shifts"`
	SignedUpOnly     bool    `json:"signed_up"`
	HideFull         bool    `json:"hide_full"`
	UnderstaffedOnly bool    `json:"hide_staffed"`
	ColourfulMode    bool    `json:"colourful_mode"`
}

// Row classification labels, advisory display only.
const (
	RowDanger  = "danger"
	RowInfo    = "info"
	RowWarning = "warning"
)

// RowClass classifies a shift by staffing level: danger below minimum,
// info at maximum, warning in between.
func RowClass(s Shift) string {
	if s.Understaffed() {
		return RowDanger
	}
	if s.CurrentCount == s.MaxNeeded {
		return RowInfo
	}
	return RowWarning
}

// Row is one rendered shift. RowClass is set only in colourful mode.
type Row struct {
	Shift
	RowClass string `json:"row_class,omitempty"`
}

// HourGroup is one hour's visible shifts. Span is the row count of the
// group, used by the table renderer for the leading hour cell.
type HourGroup struct {
	Hour string `json:"hour"`
	Span int    `json:"span"`
	Rows []Row  `json:"shifts"`
}

// Visible reports whether a shift passes the filter set at the reference
// time. A shift is excluded as soon as any filter matches.
func (f Filters) Visible(s Shift, now time.Time) bool {
	if len(f.RoleIDs) > 0 && !containsID(f.RoleIDs, s.RoleID) {
		return false
	}
	if !f.ShowPast && s.End.Before(now) {
		return false
	}
	if f.SignedUpOnly && !s.IsUserShift {
		return false
	}
	if f.HideFull && s.Full() {
		return false
	}
	if f.UnderstaffedOnly && s.Staffed() {
		return false
	}
	return true
}

// Render produces the filtered board for one day: hour groups in
// chronological order, each carrying its visible shifts and span. Hours
// with no visible shifts are omitted.
func (b *Board) Render(day string, f Filters, now time.Time) []HourGroup {
	b.mu.RLock()
	defer b.mu.RUnlock()

	hours := b.byDay[day]
	if len(hours) == 0 {
		return nil
	}

	keys := make([]string, 0, len(hours))
	for hour := range hours {
		keys = append(keys, hour)
	}
	// Hour keys are zero-padded, so this is chronological order.
	sort.Strings(keys)

	var groups []HourGroup
	for _, hour := range keys {
		var rows []Row
		for _, s := range hours[hour] {
			if !f.Visible(s, now) {
				continue
			}
			row := Row{Shift: s}
			if f.ColourfulMode {
				row.RowClass = RowClass(s)
			}
			rows = append(rows, row)
		}
		if len(rows) == 0 {
			continue
		}
		groups = append(groups, HourGroup{Hour: hour, Span: len(rows), Rows: rows})
	}
	return groups
}

func containsID(list []int64, id int64) bool {
	for _, item := range list {
		if item == id {
			return true
		}
	}
	return false
}
