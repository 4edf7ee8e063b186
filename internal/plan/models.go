package plan

import (
	"time"
)

// MealType identifies the slot a planned meal occupies.
type MealType string

const (
	MealTypeBreakfast MealType = "breakfast"
	MealTypeLunch     MealType = "lunch"
	MealTypeDinner    MealType = "dinner"
)

// PlanStatus is the lifecycle state of a weekly meal plan.
type PlanStatus string

const (
	StatusDraft     PlanStatus = "draft"
	StatusConfirmed PlanStatus = "confirmed"
	StatusActive    PlanStatus = "active"
)

// Dish is one recipe/preparation within a planned meal slot. A meal may
// contain multiple dishes; each dish is owned exclusively by one meal.
type Dish struct {
	ID                         string             `json:"id"`
	DishName                   string             `json:"dishName"`
	RecipeIngredients          []string           `json:"recipeIngredients,omitempty"`
	ReservedQuantities         map[string]float64 `json:"reservedQuantities,omitempty"`
	ClaimedItemIDs             []string           `json:"claimedItemIds,omitempty"`
	ClaimedShoppingListItemIDs []string           `json:"claimedShoppingListItemIds,omitempty"`
	Completed                  bool               `json:"completed"`
}

// PlannedMeal is one meal slot on a plan. Skipped and Confirmed are
// independent flags: a confirmed meal can later be marked skipped by an
// unplanned event.
//
// Records written before multi-dish support carry the single-dish fields
// (MealName, RecipeIngredients, ...) directly on the meal instead of a
// dishes array. MigrateLegacyMeal repairs that shape at the persistence
// boundary; business logic only ever sees the dishes array.
type PlannedMeal struct {
	ID             string    `json:"id"`
	Date           time.Time `json:"date"`
	MealType       MealType  `json:"mealType"`
	FinishBy       string    `json:"finishBy,omitempty"`
	StartCookingAt string    `json:"startCookingAt,omitempty"`
	Confirmed      bool      `json:"confirmed"`
	Skipped        bool      `json:"skipped"`
	IsLeftover     bool      `json:"isLeftover"`
	Dishes         []Dish    `json:"dishes"`

	// Legacy single-dish fields, populated only on pre-migration records.
	MealName                   string             `json:"mealName,omitempty"`
	RecipeIngredients          []string           `json:"recipeIngredients,omitempty"`
	ReservedQuantities         map[string]float64 `json:"reservedQuantities,omitempty"`
	ClaimedItemIDs             []string           `json:"claimedItemIds,omitempty"`
	ClaimedShoppingListItemIDs []string           `json:"claimedShoppingListItemIds,omitempty"`
}

// MealPlan is one user's plan for a calendar week starting on Monday.
type MealPlan struct {
	ID            string        `json:"id"`
	UserID        string        `json:"userId"`
	WeekStartDate time.Time     `json:"weekStartDate"`
	Meals         []PlannedMeal `json:"meals"`
	Status        PlanStatus    `json:"status"`
}

// UnplannedEvent is an out-of-band disruption (e.g. "eating out") affecting
// one or more meal slots on a date.
type UnplannedEvent struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Date      time.Time  `json:"date"`
	MealTypes []MealType `json:"mealTypes"`
	Reason    string     `json:"reason,omitempty"`
}

// LeftoverMeal is a prior meal whose leftovers are still available as
// planning context.
type LeftoverMeal struct {
	MealName string    `json:"mealName"`
	Date     time.Time `json:"date"`
	MealType MealType  `json:"mealType"`
}

// legacyDishSuffix is appended to the meal id to form the id of the dish
// synthesized from legacy single-dish fields.
const legacyDishSuffix = "-dish-0"

// MigrateLegacyMeal converts a legacy single-dish meal into the dish-array
// shape. It is total and idempotent: a meal that already has dishes is
// returned unchanged, and a meal with neither dishes nor legacy fields comes
// back with an empty, non-nil dishes slice (an empty placeholder slot).
func MigrateLegacyMeal(m PlannedMeal) PlannedMeal {
	if len(m.Dishes) > 0 {
		return m
	}

	// A record carrying only legacy claim fields still gets the synthesized
	// dish, so its claims stay visible to dish-level reversal.
	if m.MealName == "" && len(m.RecipeIngredients) == 0 &&
		len(m.ReservedQuantities) == 0 && len(m.ClaimedItemIDs) == 0 &&
		len(m.ClaimedShoppingListItemIDs) == 0 {
		if m.Dishes == nil {
			m.Dishes = []Dish{}
		}
		return m
	}

	m.Dishes = []Dish{{
		ID:                         m.ID + legacyDishSuffix,
		DishName:                   m.MealName,
		RecipeIngredients:          m.RecipeIngredients,
		ReservedQuantities:         m.ReservedQuantities,
		ClaimedItemIDs:             m.ClaimedItemIDs,
		ClaimedShoppingListItemIDs: m.ClaimedShoppingListItemIDs,
	}}

	m.MealName = ""
	m.RecipeIngredients = nil
	m.ReservedQuantities = nil
	m.ClaimedItemIDs = nil
	m.ClaimedShoppingListItemIDs = nil

	return m
}

// IsLegacyDish reports whether the dish was synthesized from legacy
// single-dish meal fields.
func IsLegacyDish(mealID, dishID string) bool {
	return dishID == mealID+legacyDishSuffix
}

// WeekStart normalizes a date to the Monday of its calendar week, at
// midnight in the date's location.
func WeekStart(date time.Time) time.Time {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	offset := (int(d.Weekday()) + 6) % 7 // Monday = 0
	return d.AddDate(0, 0, -offset)
}

// SameDay reports whether two timestamps fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
