package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixed(t *testing.T) {
	tests := []struct {
		name   string
		value  float64
		places int32
		want   string
	}{
		{"pads zeros", 2, 3, "2.000"},
		{"rounds up", 3.98765, 3, "3.988"},
		{"negative", -2, 3, "-2.000"},
		{"negative zero", -0.0, 1, "0.0"},
		{"one place", 97.25, 1, "97.3"},
		{"integer part only", 88.04, 1, "88.0"},
		{"binary value below tie", 1.0005, 3, "1.000"},
		{"binary value below tie one place", 0.15, 1, "0.1"},
		{"binary value below tie two places", 2.675, 2, "2.67"},
		{"exact tie", 1.25, 1, "1.3"},
		{"exact negative tie", -1.25, 1, "-1.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fixed(tt.value, tt.places))
		})
	}
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "50.0", Soc(50))
	assert.Equal(t, "4.100", Voltage(4.1))
	assert.Equal(t, "-1.234", Rate(-1.2341))
}
