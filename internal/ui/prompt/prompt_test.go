package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"exact match", "reviews\n", true},
		{"surrounding whitespace", "  reviews \n", true},
		{"no trailing newline", "reviews", true},
		{"unterminated mismatch", "revi", false},
		{"mismatch", "review\n", false},
		{"empty input", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewStandardPrompter(strings.NewReader(tt.input), &out)

			ok, err := p.Confirm("Delete bucket reviews?", "reviews")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.Contains(t, out.String(), "Delete bucket reviews?")
			assert.Contains(t, out.String(), "type 'reviews'")
		})
	}
}

func TestConfirmSequentialAnswers(t *testing.T) {
	p := NewStandardPrompter(strings.NewReader("a.csv\nwrong\n"), &bytes.Buffer{})

	ok, err := p.Confirm("first", "a.csv")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Confirm("second", "b.csv")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConfirmRequiresExpectedValue(t *testing.T) {
	p := NewStandardPrompter(strings.NewReader("x\n"), &bytes.Buffer{})
	_, err := p.Confirm("message", "")
	assert.Error(t, err)
}
