package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "already clean", in: "Budi Santoso", want: "Budi Santoso"},
		{name: "outer spaces", in: "  Budi ", want: "Budi"},
		{name: "inner runs", in: " Budi  \t Santoso ", want: "Budi Santoso"},
		{name: "blank", in: " \n ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanName(tt.in))
		})
	}
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "budi", want: "budi"},
		{in: "_", want: `\_`},
		{in: "50%", want: `50\%`},
		{in: `a\b`, want: `a\\b`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeLike(tt.in))
		})
	}
}
