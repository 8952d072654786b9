package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBumpVersion(t *testing.T) {
	tests := []struct {
		version  string
		kind     BumpKind
		expected string
	}{
		{"v1.2.3", BumpMajor, "v2.0.0"},
		{"v1.2.3", BumpMinor, "v1.3.0"},
		{"v1.2.3", BumpPatch, "v1.2.4"},
		{"1.2.3", BumpMajor, "2.0.0"},
		{"1.2.3", BumpMinor, "1.3.0"},
		{"1.2.3", BumpPatch, "1.2.4"},
		{"0.0.9", BumpPatch, "0.0.10"},
		{"v9.9.9", BumpMajor, "v10.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.version+"_"+string(tt.kind), func(t *testing.T) {
			got, err := BumpVersion(tt.version, tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestBumpVersion_Invalid(t *testing.T) {
	for _, invalid := range []string{"", "1.2", "v1", "1.2.3.4", "one.two.three"} {
		t.Run("version_"+invalid, func(t *testing.T) {
			_, err := BumpVersion(invalid, BumpPatch)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	_, err := BumpVersion("1.2.3", BumpKind("huge"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}
