package team

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeMembers(t *testing.T) {
	tests := []struct {
		name    string
		creator string
		ids     []string
		want    []string
	}{
		{name: "creator added first", creator: "a", ids: []string{"b", "c"}, want: []string{"a", "b", "c"}},
		{name: "duplicates and blanks", creator: "a", ids: []string{" b", "b ", "", "a"}, want: []string{"a", "b"}},
		{name: "no creator", creator: "", ids: []string{"b"}, want: []string{"b"}},
		{name: "nothing", creator: " ", ids: nil, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, normalizeMembers(tt.creator, tt.ids))
		})
	}
}

func TestOptional(t *testing.T) {
	blank := "   "
	value := " x "

	require.Nil(t, optional(nil))
	require.Nil(t, optional(&blank))
	require.Equal(t, "x", *optional(&value))
}
