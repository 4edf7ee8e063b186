package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"mealminder/internal/clipper"
	"mealminder/internal/config"
	"mealminder/internal/database"
	"mealminder/internal/ingredient"
	"mealminder/internal/metrics"
	"mealminder/internal/pantry"
	"mealminder/internal/plan"
	"mealminder/internal/profile"
	"mealminder/internal/shopping"

	"github.com/google/uuid"
)

// App holds the application's dependencies.
type App struct {
	cfg          *config.Config
	db           *database.DB
	pantryRepo   *pantry.Repository
	shoppingRepo *shopping.Repository
	profileRepo  *profile.Repository
	planRepo     *plan.PlanRepository
	metricsStore *metrics.Store

	claims    *plan.ClaimCoordinator
	lifecycle *plan.DishLifecycleManager
	replanner *plan.ReplanningEngine
	clip      *clipper.Clipper
}

// NewApp creates and initializes a new App instance.
func NewApp(
	cfg *config.Config,
	db *database.DB,
	pantryRepo *pantry.Repository,
	shoppingRepo *shopping.Repository,
	profileRepo *profile.Repository,
	planRepo *plan.PlanRepository,
	metricsStore *metrics.Store,
	claims *plan.ClaimCoordinator,
	lifecycle *plan.DishLifecycleManager,
	replanner *plan.ReplanningEngine,
	clip *clipper.Clipper,
) *App {
	return &App{
		cfg:          cfg,
		db:           db,
		pantryRepo:   pantryRepo,
		shoppingRepo: shoppingRepo,
		profileRepo:  profileRepo,
		planRepo:     planRepo,
		metricsStore: metricsStore,
		claims:       claims,
		lifecycle:    lifecycle,
		replanner:    replanner,
		clip:         clip,
	}
}

// Replan responds to an unplanned event and prints the updated week.
func (a *App) Replan(ctx context.Context, date time.Time, mealTypes []plan.MealType, reason string) error {
	event := plan.UnplannedEvent{
		ID:        uuid.NewString(),
		UserID:    a.cfg.DefaultUserID,
		Date:      date,
		MealTypes: mealTypes,
		Reason:    reason,
	}

	p, metas, err := a.replanner.ReplanMeals(ctx, a.cfg.DefaultUserID, event)
	for _, meta := range metas {
		if recErr := a.metricsStore.RecordMeta(meta); recErr != nil {
			log.Printf("Warning: failed to record metrics for %s: %v", meta.AgentName, recErr)
		}
	}
	if err != nil {
		return fmt.Errorf("replanning failed: %w", err)
	}

	fmt.Printf("\n=== WEEK OF %s ===\n", p.WeekStartDate.Format("2006-01-02"))
	for _, meal := range p.Meals {
		status := ""
		if meal.Skipped {
			status = " [skipped]"
		} else if meal.Confirmed {
			status = " [confirmed]"
		}
		name := "(empty slot)"
		if len(meal.Dishes) > 0 {
			name = meal.Dishes[0].DishName
		}
		fmt.Printf("%s %-9s %s%s\n", meal.Date.Format("Mon 01-02"), meal.MealType, name, status)
	}
	return nil
}

// Availability checks ingredient lines against the pantry and prints each
// ingredient's status. Pantry items whose name matches an active
// shopping-list entry are excluded from the candidate pool: an item already
// queued for purchase is not double-counted as on hand.
func (a *App) Availability(ctx context.Context, ingredients []string) error {
	userID := a.cfg.DefaultUserID
	items, err := a.pantryRepo.GetFoodItems(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load pantry: %w", err)
	}
	active, err := a.shoppingRepo.ListActive(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load shopping list: %w", err)
	}

	listCandidates := make([]ingredient.Candidate, len(active))
	for i, e := range active {
		listCandidates[i] = ingredient.Candidate{ID: e.ID, Name: e.Name}
	}
	pool := make([]ingredient.Candidate, len(items))
	byID := make(map[string]pantry.Item, len(items))
	for i, it := range items {
		pool[i] = ingredient.Candidate{ID: it.ID, Name: it.Name}
		byID[it.ID] = it
	}

	available := make([]pantry.Item, 0, len(items))
	for _, c := range ingredient.FilterAvailable(pool, listCandidates) {
		available = append(available, byID[c.ID])
	}

	results, _ := plan.CheckIngredientAvailability(ingredients, available, nil)
	for _, res := range results {
		fmt.Printf("%-30s %-9s (allocated %.2g of %.2g)\n", res.Ingredient, res.Status, res.Allocated, res.Needed)
	}
	return nil
}

// WasteRisk prints the pantry items at risk of spoiling before use.
func (a *App) WasteRisk(ctx context.Context) error {
	userID := a.cfg.DefaultUserID
	items, err := a.pantryRepo.GetFoodItems(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load pantry: %w", err)
	}

	p, err := a.planRepo.GetMealPlan(ctx, userID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to load current plan: %w", err)
	}

	atRisk := plan.WasteRiskItems(p, items, time.Now())
	if len(atRisk) == 0 {
		fmt.Println("No items at risk.")
		return nil
	}
	fmt.Println("=== ITEMS AT RISK ===")
	for _, item := range atRisk {
		if expiry, ok := item.ExpiryDate(); ok {
			fmt.Printf("- %s (quantity %.2g, use by %s)\n", item.Name, item.Quantity, expiry.Format("2006-01-02"))
		}
	}
	return nil
}

// ClipDish extracts a recipe from a URL and adds it to the meal as a new
// dish, claiming pantry items and shopping-list entries for it.
func (a *App) ClipDish(ctx context.Context, url, mealID string) error {
	extracted, err := a.clip.ClipURL(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to clip recipe: %w", err)
	}

	dish := plan.Dish{
		ID:                uuid.NewString(),
		DishName:          extracted.Title,
		RecipeIngredients: extracted.Ingredients,
	}
	if err := a.lifecycle.AddDishToMeal(ctx, a.cfg.DefaultUserID, mealID, dish); err != nil {
		return err
	}
	if err := a.ClaimDish(ctx, mealID, dish.ID); err != nil {
		return err
	}

	fmt.Printf("Added dish %q (%d ingredients) to meal %s.\n", extracted.Title, len(extracted.Ingredients), mealID)
	return nil
}

// ClaimDish runs the reservation walk for a dish and persists its claims:
// pantry items are linked via usedByMeals, matching shopping-list entries
// via mealId, and the resulting reservation map is recorded on the dish.
func (a *App) ClaimDish(ctx context.Context, mealID, dishID string) error {
	userID := a.cfg.DefaultUserID

	p, err := a.planRepo.FindMealByID(ctx, userID, mealID)
	if err != nil {
		return fmt.Errorf("failed to look up meal %s: %w", mealID, err)
	}
	if p == nil {
		return fmt.Errorf("meal plan not found: %s", mealID)
	}

	var meal *plan.PlannedMeal
	for i := range p.Meals {
		if p.Meals[i].ID == mealID {
			meal = &p.Meals[i]
			break
		}
	}
	if meal == nil {
		return fmt.Errorf("meal not found in meal plan: %s", mealID)
	}

	var dish *plan.Dish
	for i := range meal.Dishes {
		if meal.Dishes[i].ID == dishID {
			dish = &meal.Dishes[i]
			break
		}
	}
	if dish == nil {
		return fmt.Errorf("dish not found: %s", dishID)
	}

	items, err := a.pantryRepo.GetFoodItems(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load pantry: %w", err)
	}

	// Seed with what the rest of the plan already reserves so this dish
	// cannot over-allocate shared items. The dish itself is left out; its
	// own lines must not block its claim.
	seed := plan.PlanReservationsExcludingDish(p, items, dishID)
	claimed, reserved, err := a.claims.ClaimItemsForMeal(ctx, userID, mealID, dish.RecipeIngredients, items, seed)
	if err != nil {
		return err
	}
	dish.ClaimedItemIDs = claimed
	dish.ReservedQuantities = diffReservations(seed, reserved)

	entries, err := a.shoppingRepo.ListActive(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load shopping list: %w", err)
	}
	listClaimed, err := a.claims.ClaimShoppingListItemsForMeal(ctx, userID, mealID, dish.RecipeIngredients, entries)
	if err != nil {
		return err
	}
	dish.ClaimedShoppingListItemIDs = listClaimed

	return a.planRepo.UpdateMealPlan(ctx, p)
}

// RenameDish changes a dish's display name, keeping its ingredients and
// claims intact.
func (a *App) RenameDish(ctx context.Context, mealID, dishID, name string) error {
	userID := a.cfg.DefaultUserID

	p, err := a.planRepo.FindMealByID(ctx, userID, mealID)
	if err != nil {
		return fmt.Errorf("failed to look up meal %s: %w", mealID, err)
	}
	if p == nil {
		return fmt.Errorf("meal plan not found: %s", mealID)
	}

	for _, meal := range p.Meals {
		if meal.ID != mealID {
			continue
		}
		for _, dish := range meal.Dishes {
			if dish.ID != dishID {
				continue
			}
			dish.DishName = name
			if err := a.lifecycle.UpdateDishInMeal(ctx, userID, mealID, dish); err != nil {
				return err
			}
			fmt.Printf("Renamed dish %s to %q.\n", dishID, name)
			return nil
		}
		return fmt.Errorf("dish not found: %s", dishID)
	}
	return fmt.Errorf("meal not found in meal plan: %s", mealID)
}

// RemoveDish removes a dish from its meal, reversing its claims.
func (a *App) RemoveDish(ctx context.Context, mealID, dishID string) error {
	if err := a.lifecycle.RemoveDishFromMeal(ctx, a.cfg.DefaultUserID, mealID, dishID); err != nil {
		return err
	}
	fmt.Printf("Removed dish %s from meal %s.\n", dishID, mealID)
	return nil
}

// DeleteMeal removes a whole meal from its plan, reversing every dish's
// claims and deleting shopping entries created for it.
func (a *App) DeleteMeal(ctx context.Context, mealID string) error {
	if err := a.lifecycle.DeleteMeal(ctx, a.cfg.DefaultUserID, mealID); err != nil {
		return err
	}
	fmt.Printf("Deleted meal %s.\n", mealID)
	return nil
}

// CompleteDish marks a dish cooked: claimed pantry items are consumed by
// their reserved amounts and the dish is flagged completed.
func (a *App) CompleteDish(ctx context.Context, mealID, dishID string) error {
	userID := a.cfg.DefaultUserID

	p, err := a.planRepo.FindMealByID(ctx, userID, mealID)
	if err != nil {
		return fmt.Errorf("failed to look up meal %s: %w", mealID, err)
	}
	if p == nil {
		return fmt.Errorf("meal plan not found: %s", mealID)
	}

	for i := range p.Meals {
		if p.Meals[i].ID != mealID {
			continue
		}
		for j := range p.Meals[i].Dishes {
			dish := &p.Meals[i].Dishes[j]
			if dish.ID != dishID {
				continue
			}

			items, err := a.pantryRepo.GetFoodItems(ctx, userID)
			if err != nil {
				return fmt.Errorf("failed to load pantry: %w", err)
			}
			reserved := plan.ReservationMap(dish.ReservedQuantities)
			if err := a.claims.MarkItemsAsUsedForMeal(ctx, userID, mealID, dish.ClaimedItemIDs, items, reserved); err != nil {
				return err
			}
			dish.Completed = true
			return a.planRepo.UpdateMealPlan(ctx, p)
		}
		return fmt.Errorf("dish not found: %s", dishID)
	}
	return fmt.Errorf("meal not found in meal plan: %s", mealID)
}

// Usage prints daily token usage for the last N days.
func (a *App) Usage(days int) error {
	rows, err := a.metricsStore.GetDailyUsage(days)
	if err != nil {
		return fmt.Errorf("failed to load usage: %w", err)
	}
	fmt.Println("=== DAILY USAGE ===")
	for _, r := range rows {
		fmt.Printf("%s: %d calls, %d prompt tokens, %d completion tokens\n", r.Date, r.TotalExecution, r.TotalPrompt, r.TotalCompletion)
	}
	return nil
}

// diffReservations returns the allocations added on top of the seed.
func diffReservations(seed, total plan.ReservationMap) map[string]float64 {
	out := make(map[string]float64)
	for name, qty := range total {
		if added := qty - seed[name]; added > 0 {
			out[name] = added
		}
	}
	return out
}
