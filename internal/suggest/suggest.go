// Package suggest implements the external suggestion provider contract on
// top of a text-generating language model. The model is treated as opaque,
// possibly slow, and possibly failing; nothing here assumes determinism
// between calls with identical input.
package suggest

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	"mealminder/internal/llm"
	"mealminder/internal/plan"
	"mealminder/internal/shared"
)

//go:embed suggest_prompt.md
var suggestPrompt string

const agentName = "Replanner"

// Provider generates meal suggestions from a planning context.
type Provider struct {
	textGen llm.TextGenerator
}

// NewProvider creates a new suggestion Provider.
func NewProvider(textGen llm.TextGenerator) *Provider {
	return &Provider{textGen: textGen}
}

type promptSkippedMeal struct {
	Date     string
	MealType string
	Name     string
}

type promptRiskItem struct {
	Name     string
	Quantity float64
	Expiry   string
}

type promptLeftover struct {
	MealName string
	Date     string
}

type promptData struct {
	Event              *plan.UnplannedEvent
	EventDate          string
	EventMealTypes     string
	SkippedMeals       []promptSkippedMeal
	WasteRiskItems     []promptRiskItem
	AvailableInventory []plan.InventorySummary
	Leftovers          []promptLeftover
	Profile            *promptProfile
	DislikedFoods      string
	FoodPreferences    string
	FavoriteMeals      string
}

type promptProfile struct {
	ServingSize  int
	DietApproach string
	DietStrict   bool
}

type rawSuggestions struct {
	Meals []plan.MealSuggestion `json:"meals"`
}

// SuggestMeals renders the planning context into the replanner prompt, calls
// the model, and parses the strict-JSON response. A model failure or an
// unparseable response is a provider error surfaced to the caller; there is
// no local fallback for "no suggestions".
func (p *Provider) SuggestMeals(ctx context.Context, pctx plan.PlanningContext) ([]plan.MealSuggestion, shared.AgentMeta, error) {
	start := time.Now()

	prompt, err := buildPrompt(pctx)
	if err != nil {
		return nil, shared.AgentMeta{AgentName: agentName}, err
	}

	resp, err := p.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, shared.AgentMeta{AgentName: agentName}, fmt.Errorf("suggestion generation failed: %w", err)
	}

	meta := shared.AgentMeta{
		AgentName: agentName,
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	}

	var raw rawSuggestions
	if err := json.Unmarshal([]byte(resp.Content), &raw); err != nil {
		return nil, meta, fmt.Errorf("failed to parse suggestions %w. Response: %s", err, resp.Content)
	}

	return raw.Meals, meta, nil
}

func buildPrompt(pctx plan.PlanningContext) (string, error) {
	data := promptData{
		Event:              pctx.Event,
		AvailableInventory: pctx.AvailableInventory,
	}

	if pctx.Event != nil {
		data.EventDate = pctx.Event.Date.Format("2006-01-02")
		types := make([]string, len(pctx.Event.MealTypes))
		for i, mt := range pctx.Event.MealTypes {
			types[i] = string(mt)
		}
		data.EventMealTypes = strings.Join(types, ", ")
	}

	for _, m := range pctx.SkippedMeals {
		name := ""
		if len(m.Dishes) > 0 {
			name = m.Dishes[0].DishName
		}
		data.SkippedMeals = append(data.SkippedMeals, promptSkippedMeal{
			Date:     m.Date.Format("2006-01-02"),
			MealType: string(m.MealType),
			Name:     name,
		})
	}

	for _, item := range pctx.WasteRiskItems {
		risk := promptRiskItem{Name: item.Name, Quantity: item.Quantity}
		if expiry, ok := item.ExpiryDate(); ok {
			risk.Expiry = expiry.Format("2006-01-02")
		}
		data.WasteRiskItems = append(data.WasteRiskItems, risk)
	}

	for _, l := range pctx.Leftovers {
		data.Leftovers = append(data.Leftovers, promptLeftover{
			MealName: l.MealName,
			Date:     l.Date.Format("2006-01-02"),
		})
	}

	if pctx.Profile != nil {
		data.Profile = &promptProfile{
			ServingSize:  pctx.Profile.ServingSize,
			DietApproach: pctx.Profile.DietApproach,
			DietStrict:   pctx.Profile.DietStrict,
		}
		data.DislikedFoods = strings.Join(pctx.Profile.DislikedFoods, ", ")
		data.FoodPreferences = strings.Join(pctx.Profile.FoodPreferences, ", ")
		data.FavoriteMeals = strings.Join(pctx.Profile.FavoriteMeals, ", ")
	}

	tmpl, err := template.New("replanner").Parse(suggestPrompt)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
