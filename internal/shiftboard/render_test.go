package shiftboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boardWith(shifts ...Shift) *Board {
	b := NewBoard()
	b.Replace(shifts)
	return b
}

func TestRenderGroupsAndSpans(t *testing.T) {
	b := boardWith(
		shift(1, 1, "Bar", "Bar", fri(9, 0)),
		shift(2, 2, "Kitchen", "Kitchen", fri(9, 0)),
		shift(3, 1, "Bar", "Bar", fri(11, 0)),
	)

	groups := b.Render("fri", Filters{}, fri(8, 0))

	require.Len(t, groups, 2)
	assert.Equal(t, "09:00", groups[0].Hour)
	assert.Equal(t, 2, groups[0].Span)
	require.Len(t, groups[0].Rows, 2)
	assert.Equal(t, "11:00", groups[1].Hour)
	assert.Equal(t, 1, groups[1].Span)
}

func TestRenderUnknownDay(t *testing.T) {
	b := boardWith(shift(1, 1, "Bar", "Bar", fri(9, 0)))
	assert.Nil(t, b.Render("sun", Filters{}, fri(8, 0)))
}

func TestRenderOmitsEmptyHours(t *testing.T) {
	b := boardWith(
		shift(1, 1, "Bar", "Bar", fri(9, 0)),
		shift(2, 2, "Kitchen", "Kitchen", fri(11, 0)),
	)

	groups := b.Render("fri", Filters{RoleIDs: []int64{2}}, fri(8, 0))

	require.Len(t, groups, 1)
	assert.Equal(t, "11:00", groups[0].Hour)
}

func TestRenderRoleFilter(t *testing.T) {
	b := boardWith(
		shift(1, 1, "Bar", "Bar", fri(9, 0)),
		shift(2, 2, "Kitchen", "Kitchen", fri(9, 0)),
	)

	// An empty role list means no role filtering.
	groups := b.Render("fri", Filters{}, fri(8, 0))
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Rows, 2)

	groups = b.Render("fri", Filters{RoleIDs: []int64{1}}, fri(8, 0))
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Rows, 1)
	assert.Equal(t, int64(1), groups[0].Rows[0].ID)
}

func TestRenderPastShiftFilter(t *testing.T) {
	b := boardWith(
		shift(1, 1, "Bar", "Bar", fri(9, 0)),
		shift(2, 1, "Bar", "Bar", fri(14, 0)),
	)

	now := fri(12, 0)
	groups := b.Render("fri", Filters{}, now)
	require.Len(t, groups, 1)
	assert.Equal(t, "14:00", groups[0].Hour)

	groups = b.Render("fri", Filters{ShowPast: true}, now)
	assert.Len(t, groups, 2)
}

func TestRenderSignedUpOnly(t *testing.T) {
	mine := shift(1, 1, "Bar", "Bar", fri(9, 0))
	mine.IsUserShift = true
	b := boardWith(mine, shift(2, 1, "Bar", "Bar", fri(9, 0)))

	groups := b.Render("fri", Filters{SignedUpOnly: true}, fri(8, 0))

	require.Len(t, groups, 1)
	require.Len(t, groups[0].Rows, 1)
	assert.Equal(t, int64(1), groups[0].Rows[0].ID)
}

func TestRenderHideFull(t *testing.T) {
	full := shift(1, 1, "Bar", "Bar", fri(9, 0))
	full.CurrentCount = full.MaxNeeded
	b := boardWith(full, shift(2, 1, "Bar", "Bar", fri(9, 0)))

	groups := b.Render("fri", Filters{HideFull: true}, fri(8, 0))

	require.Len(t, groups, 1)
	require.Len(t, groups[0].Rows, 1)
	assert.Equal(t, int64(2), groups[0].Rows[0].ID)
}

func TestRenderUnderstaffedOnly(t *testing.T) {
	needy := shift(1, 1, "Bar", "Bar", fri(9, 0))
	needy.MinNeeded = 2
	b := boardWith(needy, shift(2, 1, "Bar", "Bar", fri(9, 0)))

	groups := b.Render("fri", Filters{UnderstaffedOnly: true}, fri(8, 0))

	require.Len(t, groups, 1)
	require.Len(t, groups[0].Rows, 1)
	assert.Equal(t, int64(1), groups[0].Rows[0].ID)
}

func TestRenderColourfulMode(t *testing.T) {
	b := boardWith(shift(1, 1, "Bar", "Bar", fri(9, 0)))

	groups := b.Render("fri", Filters{}, fri(8, 0))
	assert.Empty(t, groups[0].Rows[0].RowClass)

	groups = b.Render("fri", Filters{ColourfulMode: true}, fri(8, 0))
	assert.Equal(t, RowWarning, groups[0].Rows[0].RowClass)
}

func TestRowClass(t *testing.T) {
	tests := []struct {
		name              string
		current, min, max int
		want              string
	}{
		{"below minimum", 0, 1, 3, RowDanger},
		{"at maximum", 3, 1, 3, RowInfo},
		{"staffed with space", 2, 1, 3, RowWarning},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Shift{CurrentCount: tt.current, MinNeeded: tt.min, MaxNeeded: tt.max}
			assert.Equal(t, tt.want, RowClass(s))
		})
	}
}

func TestRenderDeterministic(t *testing.T) {
	b := boardWith(
		shift(1, 1, "Bar", "Bar", fri(9, 0)),
		shift(2, 2, "Kitchen", "Kitchen", fri(9, 0)),
		shift(3, 1, "Bar", "Stage", fri(9, 30)),
		shift(4, 1, "Bar", "Bar", fri(14, 0)),
	)
	f := Filters{ColourfulMode: true}
	now := fri(8, 0)

	first := b.Render("fri", f, now)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, b.Render("fri", f, now))
	}
}

func TestVisibleEndBoundary(t *testing.T) {
	s := shift(1, 1, "Bar", "Bar", fri(9, 0))

	var f Filters
	// A shift ending exactly now is not yet past.
	assert.True(t, f.Visible(s, s.End))
	assert.False(t, f.Visible(s, s.End.Add(time.Second)))
}
