package profile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadEmptyStore(t *testing.T) {
	s := openTestStore(t)

	prof, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, prof.Personal.FirstName)
	assert.Empty(t, prof.QnA)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)

	in := &Context{
		Personal: Personal{FirstName: "Akash", LastName: "Ranjan", Email: "a@b.com"},
		Address:  Address{City: "Bengaluru", Country: "India"},
		Summary:  "Backend engineer.",
		Experience: []Experience{
			{Company: "Acme Corp", Title: "Software Engineer", Current: true},
		},
		Skills: Skills{Technical: []string{"Go"}},
	}
	require.NoError(t, s.Save(in))

	out, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "Akash", out.Personal.FirstName)
	assert.Equal(t, "Bengaluru", out.Address.City)
	require.Len(t, out.Experience, 1)
	assert.Equal(t, "Acme Corp", out.Experience[0].Company)
}

func TestSaveDoesNotTouchQnA(t *testing.T) {
	s := openTestStore(t)

	_, err := s.LearnQnA("Notice period", "30 days", "learned")
	require.NoError(t, err)

	require.NoError(t, s.Save(&Context{Personal: Personal{FirstName: "Akash"}}))

	out, err := s.Load()
	require.NoError(t, err)
	require.Len(t, out.QnA, 1)
	assert.Equal(t, "30 days", out.QnA[0].Answer)
}

func TestLearnQnACreatesThenOverwrites(t *testing.T) {
	s := openTestStore(t)

	created, err := s.LearnQnA("Notice period", "30 days")
	require.NoError(t, err)
	assert.True(t, created)

	// Same question after normalization overwrites, not duplicates
	created, err = s.LearnQnA("  NOTICE   Period ", "60 days")
	require.NoError(t, err)
	assert.False(t, created)

	entries, err := s.ListQnA()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "60 days", entries[0].Answer)
}

func TestLearnQnAIgnoresEmpty(t *testing.T) {
	s := openTestStore(t)

	created, err := s.LearnQnA("", "value")
	require.NoError(t, err)
	assert.False(t, created)

	created, err = s.LearnQnA("Question", "")
	require.NoError(t, err)
	assert.False(t, created)

	entries, err := s.ListQnA()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLearnQnATags(t *testing.T) {
	s := openTestStore(t)

	_, err := s.LearnQnA("Visa status", "Citizen", "learned")
	require.NoError(t, err)

	entries, err := s.ListQnA()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, []string{"learned"}, entries[0].Tags)
}

func TestSessionState(t *testing.T) {
	s := openTestStore(t)

	v, err := s.LoadSessionState("autoapply")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.SaveSessionState("autoapply", `{"active":true}`))
	v, err = s.LoadSessionState("autoapply")
	require.NoError(t, err)
	assert.Equal(t, `{"active":true}`, v)

	require.NoError(t, s.SaveSessionState("autoapply", `{"active":false}`))
	v, err = s.LoadSessionState("autoapply")
	require.NoError(t, err)
	assert.Equal(t, `{"active":false}`, v)

	require.NoError(t, s.ClearSessionState("autoapply"))
	v, err = s.LoadSessionState("autoapply")
	require.NoError(t, err)
	assert.Empty(t, v)
}
