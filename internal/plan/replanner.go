package plan

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"mealminder/internal/profile"
	"mealminder/internal/shared"

	"github.com/google/uuid"
)

const (
	defaultFinishBy        = "18:00"
	defaultCookingDuration = 45 * time.Minute
)

// ReplanningEngine rebuilds part of a week's plan after an unplanned event.
// Affected meals are flagged skipped, never deleted; new suggestions are
// appended to the plan's meal list in a single update.
type ReplanningEngine struct {
	plans       PlanStore
	inventory   InventoryStore
	profiles    ProfileProvider
	leftovers   LeftoverProvider
	suggestions SuggestionProvider
}

// NewReplanningEngine creates a new ReplanningEngine.
func NewReplanningEngine(
	plans PlanStore,
	inventory InventoryStore,
	profiles ProfileProvider,
	leftovers LeftoverProvider,
	suggestions SuggestionProvider,
) *ReplanningEngine {
	return &ReplanningEngine{
		plans:       plans,
		inventory:   inventory,
		profiles:    profiles,
		leftovers:   leftovers,
		suggestions: suggestions,
	}
}

// ReplanMeals responds to an unplanned event: meals on the event date whose
// type is affected are marked skipped, available inventory and waste risk
// are recomputed, the suggestion provider is asked for replacements, and the
// resolved new meals are appended to the plan. Existing meals are never
// removed.
//
// The plan is always freshly read at the start; the final write is a plain
// read-modify-write with no conditional check (see PlanStore).
func (e *ReplanningEngine) ReplanMeals(ctx context.Context, userID string, event UnplannedEvent) (*MealPlan, []shared.AgentMeta, error) {
	weekStart := WeekStart(event.Date)
	p, err := e.plans.GetMealPlan(ctx, userID, weekStart)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load plan for week of %s: %w", weekStart.Format("2006-01-02"), err)
	}
	if p == nil {
		return nil, nil, notFound(ErrPlanNotFound, userID+"/"+weekStart.Format("2006-01-02"))
	}

	affected := make(map[MealType]struct{}, len(event.MealTypes))
	for _, mt := range event.MealTypes {
		affected[mt] = struct{}{}
	}

	var skipped []PlannedMeal
	for i := range p.Meals {
		if !SameDay(p.Meals[i].Date, event.Date) {
			continue
		}
		if _, hit := affected[p.Meals[i].MealType]; !hit {
			continue
		}
		p.Meals[i].Skipped = true
		skipped = append(skipped, p.Meals[i])
	}

	items, err := e.inventory.GetFoodItems(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load pantry: %w", err)
	}

	reserved := BuildPlanReservations(p, items)
	pctx := PlanningContext{
		WasteRiskItems:     WasteRiskItems(p, items, time.Now()),
		AvailableInventory: AvailableInventory(items, reserved),
		SkippedMeals:       skipped,
		Event:              &event,
	}

	pctx.Profile, err = e.profiles.GetMealProfile(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load meal profile: %w", err)
	}

	pctx.Leftovers, err = e.leftovers.GetLeftoverMeals(ctx, userID, weekStart.AddDate(0, 0, -7), weekStart.AddDate(0, 0, 7))
	if err != nil {
		if !errors.Is(err, ErrIndexUnavailable) {
			return nil, nil, fmt.Errorf("failed to load leftover meals: %w", err)
		}
		// Common on first deploy before the index finishes building;
		// leftovers are optional context here.
		log.Printf("Note: leftover index unavailable, replanning without leftovers: %v", err)
		pctx.Leftovers = nil
	}

	suggestions, meta, err := e.suggestions.SuggestMeals(ctx, pctx)
	if err != nil {
		return nil, []shared.AgentMeta{meta}, fmt.Errorf("suggestion provider failed: %w", err)
	}

	for _, s := range suggestions {
		meal, err := e.resolveSuggestion(ctx, userID, pctx.Profile, event.Date, s)
		if err != nil {
			return nil, []shared.AgentMeta{meta}, err
		}
		p.Meals = append(p.Meals, meal)
	}

	if err := e.plans.UpdateMealPlan(ctx, p); err != nil {
		return nil, []shared.AgentMeta{meta}, fmt.Errorf("failed to persist replanned meals: %w", err)
	}

	return p, []shared.AgentMeta{meta}, nil
}

// resolveSuggestion turns a provider suggestion into a planned meal with its
// times resolved from the user's effective schedule for that date and type.
// Without a schedule entry the meal finishes at 18:00, with the start time
// derived from the profile's duration preference.
func (e *ReplanningEngine) resolveSuggestion(ctx context.Context, userID string, prof *profile.MealProfile, fallbackDate time.Time, s MealSuggestion) (PlannedMeal, error) {
	date := fallbackDate
	if s.Date != "" {
		if d, err := time.ParseInLocation("2006-01-02", s.Date, fallbackDate.Location()); err == nil {
			date = d
		} else {
			log.Printf("Warning: unparseable suggestion date %q, using event date", s.Date)
		}
	}

	finishBy := defaultFinishBy
	schedule, err := e.profiles.GetEffectiveSchedule(ctx, userID, date)
	if err != nil {
		return PlannedMeal{}, fmt.Errorf("failed to load schedule for %s: %w", date.Format("2006-01-02"), err)
	}
	if entry := schedule.Entry(string(s.MealType)); entry != nil && entry.FinishBy != "" {
		finishBy = entry.FinishBy
	}

	duration := defaultCookingDuration
	if prof != nil {
		if mins, ok := prof.MealDurationPreferences[string(s.MealType)]; ok && mins > 0 {
			duration = time.Duration(mins) * time.Minute
		}
	}

	return PlannedMeal{
		ID:             uuid.NewString(),
		Date:           date,
		MealType:       s.MealType,
		FinishBy:       finishBy,
		StartCookingAt: startTimeFor(finishBy, duration),
		Dishes: []Dish{{
			ID:                uuid.NewString(),
			DishName:          s.MealName,
			RecipeIngredients: s.SuggestedIngredients,
		}},
	}, nil
}

// startTimeFor subtracts the cooking duration from a "15:04" finish time.
func startTimeFor(finishBy string, duration time.Duration) string {
	t, err := time.Parse("15:04", finishBy)
	if err != nil {
		t, _ = time.Parse("15:04", defaultFinishBy)
	}
	return t.Add(-duration).Format("15:04")
}
