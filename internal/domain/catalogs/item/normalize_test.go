package item

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Bolt", "bolt"},
		{"surrounding spaces", " Bolt M6 ", "bolt m6"},
		{"tabs and newlines", "\tBOLT M6\n", "bolt m6"},
		{"inner spacing kept", "Bolt  M6", "bolt  m6"},
		{"unicode whitespace", " Écrou ", "écrou"},
		{"blank", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.in))
		})
	}
}

func TestNormalizeName_Idempotent(t *testing.T) {
	for _, s := range []string{" Bolt M6 ", "ÄBC", "x"} {
		once := NormalizeName(s)
		assert.Equal(t, once, NormalizeName(once))
	}
}

func TestSortedKeys(t *testing.T) {
	got := SortedKeys([]string{"Washer", " bolt ", "BOLT", "", "anchor"})
	assert.Equal(t, []string{"anchor", "bolt", "washer"}, got)
}
