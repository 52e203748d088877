package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripANSIExceptInverse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "People", "People"},
		{"styled title drops its reset", "\x1b[1;38;5;7mPeople\x1b[m", "People"},
		{"long reset dropped", "\x1b[31mred\x1b[0m text", "red text"},
		{"inverse kept with its reset", "a\x1b[7mli\x1b[0mce", "a\x1b[7mli\x1b[mce"},
		{"combined inverse", "\x1b[1;7mcur\x1b[m", "\x1b[7mcur\x1b[m"},
		{"inverse off", "\x1b[7mx\x1b[27my\x1b[m", "\x1b[7mx\x1b[27my"},
		{"truecolor arguments are not inverse", "\x1b[38;2;7;7;7mx\x1b[m", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripANSIExceptInverse(tt.in))
		})
	}
}
