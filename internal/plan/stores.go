package plan

import (
	"context"
	"time"

	"mealminder/internal/pantry"
	"mealminder/internal/profile"
	"mealminder/internal/shared"
	"mealminder/internal/shopping"
)

// PlanStore persists weekly meal plans. Updates are read-modify-write with
// no optimistic-concurrency check: two concurrent writers against the same
// plan can race and the later write wins. Acceptable for the intended
// single-user, one-session usage; callers must always operate on a
// freshly-read plan, never a cached one.
type PlanStore interface {
	// GetMealPlan returns the plan for the week containing weekStart, or
	// nil when none exists.
	GetMealPlan(ctx context.Context, userID string, weekStart time.Time) (*MealPlan, error)
	CreateMealPlan(ctx context.Context, p *MealPlan) error
	UpdateMealPlan(ctx context.Context, p *MealPlan) error

	// FindMealByID locates the plan containing a meal by scanning a bounded
	// historical window (three months back and forward, week by week).
	// Returns nil when no plan in the window contains the meal.
	FindMealByID(ctx context.Context, userID, mealID string) (*MealPlan, error)
}

// InventoryStore reads and writes pantry items.
type InventoryStore interface {
	GetFoodItems(ctx context.Context, userID string) ([]pantry.Item, error)
	SaveItem(ctx context.Context, item pantry.Item) error
}

// ShoppingListStore reads and writes shopping-list entries.
type ShoppingListStore interface {
	ListActive(ctx context.Context, userID string) ([]shopping.Entry, error)
	AddItem(ctx context.Context, entry shopping.Entry) error
	UpdateItem(ctx context.Context, entry shopping.Entry) error
	DeleteItemsByMealID(ctx context.Context, mealID string) error
}

// ProfileProvider supplies user preferences and the effective meal schedule.
type ProfileProvider interface {
	GetMealProfile(ctx context.Context, userID string) (*profile.MealProfile, error)
	GetEffectiveSchedule(ctx context.Context, userID string, date time.Time) (*profile.DaySchedule, error)
}

// LeftoverProvider looks up leftover meals in a date range. Implementations
// signal a missing lookup index with ErrIndexUnavailable; callers that treat
// leftovers as optional context degrade to an empty list.
type LeftoverProvider interface {
	GetLeftoverMeals(ctx context.Context, userID string, start, end time.Time) ([]LeftoverMeal, error)
}

// InventorySummary is one line of available inventory in a planning context.
type InventorySummary struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
}

// PlanningContext is everything the suggestion provider sees when asked for
// new meals.
type PlanningContext struct {
	Profile            *profile.MealProfile
	WasteRiskItems     []pantry.Item
	AvailableInventory []InventorySummary
	Leftovers          []LeftoverMeal
	SkippedMeals       []PlannedMeal
	Event              *UnplannedEvent
}

// MealSuggestion is one candidate meal returned by the suggestion provider.
type MealSuggestion struct {
	MealName             string   `json:"meal_name"`
	MealType             MealType `json:"meal_type"`
	Date                 string   `json:"date"`
	SuggestedIngredients []string `json:"suggested_ingredients"`
	UsesBestBySoonItems  bool     `json:"uses_best_by_soon_items"`
	Reasoning            string   `json:"reasoning,omitempty"`
	Priority             int      `json:"priority,omitempty"`
}

// SuggestionProvider is the external language-model collaborator. It is
// opaque, possibly slow, possibly failing, and not deterministic between
// calls with identical input.
type SuggestionProvider interface {
	SuggestMeals(ctx context.Context, pctx PlanningContext) ([]MealSuggestion, shared.AgentMeta, error)
}
