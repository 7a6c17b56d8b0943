package rsvp

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqIDs(f *Form) {
	n := 0
	f.newID = func() string {
		n++
		return fmt.Sprintf("d%d", n)
	}
}

func TestNewFormStartsWithOneDraft(t *testing.T) {
	f := NewForm(3, "+234")
	drafts := f.Drafts()
	require.Len(t, drafts, 1)
	assert.NotEmpty(t, drafts[0].ID)
	assert.Equal(t, "+234", drafts[0].DialCode)
	assert.Equal(t, 3, f.Max())
	assert.False(t, f.CanRemove())
}

func TestMaxGuestsFloorIsOne(t *testing.T) {
	f := NewForm(0, "+1")
	assert.Equal(t, 1, f.Max())
	assert.False(t, f.AddGuest())
}

func TestDraftCountStaysWithinBounds(t *testing.T) {
	for max := 1; max <= 5; max++ {
		f := NewForm(max, "+234")
		for range max + 3 {
			f.AddGuest()
			assert.LessOrEqual(t, f.Len(), max)
		}
		assert.Equal(t, max, f.Len())
		assert.False(t, f.CanAdd())

		for _, d := range f.Drafts() {
			f.RemoveGuest(d.ID)
			assert.GreaterOrEqual(t, f.Len(), 1)
		}
		assert.Equal(t, 1, f.Len())
		assert.False(t, f.RemoveGuest(f.Drafts()[0].ID))
	}
}

func TestRemoveGuestUnknownID(t *testing.T) {
	f := NewForm(2, "+234")
	require.True(t, f.AddGuest())
	assert.False(t, f.RemoveGuest("nope"))
	assert.Equal(t, 2, f.Len())
}

func TestRemoveGuestKeepsOrder(t *testing.T) {
	f := newForm(3, "+234")
	seqIDs(f)
	f.drafts = []Draft{f.blank()}
	f.AddGuest()
	f.AddGuest()

	require.True(t, f.RemoveGuest("d2"))
	drafts := f.Drafts()
	require.Len(t, drafts, 2)
	assert.Equal(t, "d1", drafts[0].ID)
	assert.Equal(t, "d3", drafts[1].ID)
}

func TestUpdateGuestTouchesOneDraft(t *testing.T) {
	f := NewForm(2, "+234")
	f.AddGuest()
	drafts := f.Drafts()

	require.NoError(t, f.UpdateGuest(drafts[1].ID, FieldFirstName, "ada"))
	require.NoError(t, f.UpdateGuest(drafts[1].ID, FieldDialCode, "+44"))

	after := f.Drafts()
	assert.Equal(t, drafts[0], after[0])
	assert.Equal(t, "ada", after[1].FirstName)
	assert.Equal(t, "+44", after[1].DialCode)

	assert.Error(t, f.UpdateGuest("missing", FieldEmail, "x"))
	assert.Error(t, f.UpdateGuest(drafts[0].ID, Field("age"), "30"))
}

func TestDraftsReturnsCopy(t *testing.T) {
	f := NewForm(1, "+234")
	d := f.Drafts()
	d[0].FirstName = "mutated"
	assert.Empty(t, f.Drafts()[0].FirstName)
}

func TestRestore(t *testing.T) {
	f := Restore([]Draft{
		{ID: "a", FirstName: "Ada"},
		{ID: "a", FirstName: "Dup"},
		{ID: "", FirstName: "NoID", DialCode: "+1"},
		{ID: "z", FirstName: "Overflow"},
	}, 3, "+234")

	drafts := f.Drafts()
	require.Len(t, drafts, 3)
	assert.Equal(t, "a", drafts[0].ID)
	assert.Equal(t, "+234", drafts[0].DialCode)
	assert.NotEqual(t, "a", drafts[1].ID)
	assert.NotEmpty(t, drafts[2].ID)
	assert.Equal(t, "+1", drafts[2].DialCode)

	empty := Restore(nil, 2, "+234")
	assert.Equal(t, 1, empty.Len())
}

func TestValidate(t *testing.T) {
	f := newForm(2, "+234")
	seqIDs(f)
	f.drafts = []Draft{
		{ID: "ok", Title: "Mr", FirstName: "A", LastName: "B", DialCode: "+234", Phone: "801", Email: "a@b.c"},
		{ID: "bad", Title: "  ", FirstName: "C", DialCode: "+234", Phone: "802"},
	}

	err := f.Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotContains(t, verr.Fields, "ok")
	assert.ElementsMatch(t, []Field{FieldTitle, FieldLastName, FieldEmail}, verr.Fields["bad"])
	assert.True(t, verr.Missing("bad", FieldTitle))
	assert.False(t, verr.Missing("bad", FieldPhone))
	assert.Contains(t, err.Error(), "required")

	f.drafts = f.drafts[:1]
	assert.NoError(t, f.Validate())
}
