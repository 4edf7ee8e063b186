package ingredient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	pool := []Candidate{
		{ID: "1", Name: "Flour"},
		{ID: "2", Name: "whole wheat flour"},
		{ID: "3", Name: "brown rice"},
		{ID: "4", Name: "chicken breast"},
	}

	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{
			name:    "exact tier wins over substring",
			query:   "flour",
			wantIDs: []string{"1"},
		},
		{
			name:    "substring containment either direction",
			query:   "rice",
			wantIDs: []string{"3"},
		},
		{
			name:    "query containing candidate name",
			query:   "organic brown rice",
			wantIDs: []string{"3"},
		},
		{
			name:    "word overlap",
			query:   "boneless chicken thigh breast",
			wantIDs: []string{"4"},
		},
		{
			name:    "no match is an empty result",
			query:   "octopus",
			wantIDs: nil,
		},
		{
			name:    "empty query",
			query:   "  ",
			wantIDs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Match(tt.query, pool)
			ids := make([]string, 0, len(got))
			for _, c := range got {
				ids = append(ids, c.ID)
			}
			if tt.wantIDs == nil {
				assert.Empty(t, ids)
			} else {
				assert.Equal(t, tt.wantIDs, ids)
			}
		})
	}
}

func TestMatchStableOrder(t *testing.T) {
	pool := []Candidate{
		{ID: "a", Name: "tomato sauce"},
		{ID: "b", Name: "tomato paste"},
		{ID: "c", Name: "tomato"},
	}

	got := Match("tomato", pool)
	// "c" is the exact match; a and b are substring-tier and must not appear.
	assert.Len(t, got, 1)
	assert.Equal(t, "c", got[0].ID)

	got = Match("tomat", pool)
	// All three are substring matches; input order is preserved.
	assert.Equal(t, []Candidate{pool[0], pool[1], pool[2]}, got)
}

func TestFilterAvailable(t *testing.T) {
	pantry := []Candidate{
		{ID: "p1", Name: "milk"},
		{ID: "p2", Name: "eggs"},
		{ID: "p3", Name: "butter"},
	}
	activeList := []Candidate{
		{ID: "s1", Name: "milk"},
	}

	got := FilterAvailable(pantry, activeList)
	assert.Len(t, got, 2)
	assert.Equal(t, "p2", got[0].ID)
	assert.Equal(t, "p3", got[1].ID)

	// No active entries leaves the pool untouched.
	assert.Equal(t, pantry, FilterAvailable(pantry, nil))
}
