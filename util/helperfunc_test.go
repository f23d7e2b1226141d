package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContains(t *testing.T) {
	list := []string{"ADMIN", "LAB_MANAGER"}
	assert.True(t, Contains("ADMIN", list))
	assert.False(t, Contains("DOCTOR", list))
	assert.False(t, Contains("ADMIN", nil))
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"maya santos", "Maya Santos"},
		{"  MAYA   SANTOS  ", "Maya Santos"},
		{"zirconia disc 98mm", "Zirconia Disc 98mm"},
		{"", ""},
		{"   ", ""},
		{"o", "O"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeName(tt.in), "input %q", tt.in)
	}
}
