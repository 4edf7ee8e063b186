package ingredient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantQty  *float64
		wantName string
	}{
		{
			name:     "quantity with unit",
			input:    "2 cups rice",
			wantQty:  f(2),
			wantName: "rice",
		},
		{
			name:     "quantity without unit",
			input:    "3 eggs",
			wantQty:  f(3),
			wantName: "eggs",
		},
		{
			name:     "decimal quantity",
			input:    "1.5 lbs ground beef",
			wantQty:  f(1.5),
			wantName: "ground beef",
		},
		{
			name:     "simple fraction",
			input:    "1/2 cup sugar",
			wantQty:  f(0.5),
			wantName: "sugar",
		},
		{
			name:     "mixed number",
			input:    "1 1/2 cups flour",
			wantQty:  f(1.5),
			wantName: "flour",
		},
		{
			name:     "no quantity",
			input:    "salt",
			wantQty:  nil,
			wantName: "salt",
		},
		{
			name:     "no quantity with unit word",
			input:    "pinch of salt",
			wantQty:  nil,
			wantName: "pinch salt",
		},
		{
			name:     "uppercase and whitespace",
			input:    "  2 Cans Diced TOMATOES  ",
			wantQty:  f(2),
			wantName: "diced tomatoes",
		},
		{
			name:     "only a number",
			input:    "2",
			wantQty:  f(2),
			wantName: "2",
		},
		{
			name:     "empty string",
			input:    "",
			wantQty:  nil,
			wantName: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if tt.wantQty == nil {
				assert.Nil(t, got.Quantity)
			} else {
				require.NotNil(t, got.Quantity)
				assert.InDelta(t, *tt.wantQty, *got.Quantity, 1e-9)
			}
			assert.Equal(t, tt.wantName, got.ItemName)
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "flour", Normalize("  Flour "))
	assert.Equal(t, "", Normalize("   "))
}

func f(v float64) *float64 { return &v }
