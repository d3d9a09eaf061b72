package quality

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalDistinguishesAbsentNullAndValue(t *testing.T) {
	var p ProcessSheetPayload
	require.NoError(t, json.Unmarshal([]byte(`{"name":"lot","checklist_id":null}`), &p))

	assert.True(t, p.Name.Present())
	assert.Equal(t, "lot", p.Name.Value)
	assert.True(t, p.ChecklistID.Set)
	assert.True(t, p.ChecklistID.Null)
	assert.False(t, p.Notes.Set)

	f := processSheetFields{Notes: "keep", ChecklistID: ptrTo(uint64(7))}
	p.applyTo(&f)
	assert.Equal(t, "lot", f.Name)
	assert.Equal(t, "keep", f.Notes)
	assert.Nil(t, f.ChecklistID)
}

func TestPhotoURL(t *testing.T) {
	cases := []struct {
		base  string
		image string
		want  string
	}{
		{base: "", image: "execution_photos/a.jpg", want: "execution_photos/a.jpg"},
		{base: "https://media.example.com/", image: "execution_photos/a.jpg", want: "https://media.example.com/execution_photos/a.jpg"},
		{base: "https://media.example.com", image: "/static/a.jpg", want: "/static/a.jpg"},
		{base: "https://media.example.com", image: "http://other.example.com/a.jpg", want: "http://other.example.com/a.jpg"},
		{base: "https://media.example.com", image: "", want: ""},
	}

	for _, tc := range cases {
		s := &Service{opts: Options{MediaBaseURL: tc.base}}
		assert.Equal(t, tc.want, s.photoURL(tc.image), "base=%q image=%q", tc.base, tc.image)
	}
}

func ptrTo[T any](v T) *T {
	return &v
}
