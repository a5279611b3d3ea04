package activeid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		wantID   int
		wantOK   bool
	}{
		{"hash prefixed", "#123", 123, true},
		{"bare number", "42", 42, true},
		{"full url", "https://jobs.example.com/#77", 77, true},
		{"padded", "  #9 ", 9, true},
		{"empty", "", 0, false},
		{"hash only", "#", 0, false},
		{"not a number", "#abc", 0, false},
		{"zero", "#0", 0, false},
		{"negative", "#-4", 0, false},
		{"url without fragment", "https://jobs.example.com/", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := Parse(tt.fragment)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestTracker_NavigateUpdatesCurrent(t *testing.T) {
	tr := New()
	_, ok := tr.Current()
	assert.False(t, ok)

	tr.Init("#15")
	id, ok := tr.Current()
	require.True(t, ok)
	assert.Equal(t, 15, id)

	tr.Navigate("#oops")
	_, ok = tr.Current()
	assert.False(t, ok)
	assert.Equal(t, "#oops", tr.Fragment())
}

func TestTracker_SubscribersReceiveLatestChange(t *testing.T) {
	tr := New()
	ch := tr.Subscribe()

	tr.Navigate("#1")
	tr.Navigate("#2")
	tr.Navigate("#3")

	select {
	case c := <-ch:
		assert.Equal(t, Change{ID: 3, Valid: true}, c)
	default:
		t.Fatal("no change delivered")
	}

	select {
	case c := <-ch:
		t.Fatalf("unexpected extra change %+v", c)
	default:
	}
}

func TestFragmentFor(t *testing.T) {
	assert.Equal(t, "#12", FragmentFor(12))
	id, ok := Parse(FragmentFor(12))
	assert.True(t, ok)
	assert.Equal(t, 12, id)
}
