package style

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/getcharzp/go-drunkguard/intox"
)

func TestBar(t *testing.T) {
	tests := []struct {
		p      float32
		filled int
	}{
		{0, 0},
		{0.5, 10},
		{1, 20},
		{1.7, 20},
		{-0.2, 0},
	}
	for _, tt := range tests {
		bar := Bar(tt.p, 20)
		assert.Equal(t, tt.filled, strings.Count(bar, "█"), "p=%v", tt.p)
		assert.Equal(t, 20-tt.filled, strings.Count(bar, "░"), "p=%v", tt.p)
	}
}

func TestProbabilities(t *testing.T) {
	out := Probabilities(map[intox.Label]float32{
		intox.Sober:    0.75,
		intox.Slightly: 0.25,
	}, 10)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Sober")
	assert.Contains(t, lines[0], "75.00%")
	assert.Contains(t, lines[1], "Slightly")

	assert.Empty(t, Probabilities(map[intox.Label]float32{}, 10))
}

func TestSetColorMode(t *testing.T) {
	assert.Error(t, SetColorMode("rainbow"))
	assert.NoError(t, SetColorMode("auto"))

	t.Setenv("NO_COLOR", "")
	assert.NoError(t, SetColorMode("never"))
	assert.Equal(t, "Heavily", Level(intox.Heavily))
	assert.Equal(t, "Label(8)", Level(intox.Label(8)))
}
