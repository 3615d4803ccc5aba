package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{name: "nil stays nil", input: nil, want: nil},
		{name: "empty stays empty", input: []string{}, want: []string{}},
		{name: "blank entries dropped", input: []string{" ", "", "k1:9092"}, want: []string{"k1:9092"}},
		{name: "whitespace trimmed", input: []string{" k1:9092 ", "\tk2:9092\n"}, want: []string{"k1:9092", "k2:9092"}},
		{name: "first occurrence wins", input: []string{"k2:9092", "k1:9092", " k2:9092"}, want: []string{"k2:9092", "k1:9092"}},
		{name: "case sensitive", input: []string{"Broker", "broker"}, want: []string{"Broker", "broker"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeAndTrim(tt.input))
		})
	}
}
