package plan

import (
	"context"
	"fmt"
	"log"
)

// DishLifecycleManager adds, removes, and updates dishes within planned
// meals. Every operation locates the meal by scanning plans within the
// store's bounded historical window, migrates legacy single-dish records
// first, and persists the whole plan as one update.
type DishLifecycleManager struct {
	plans  PlanStore
	claims *ClaimCoordinator
}

// NewDishLifecycleManager creates a new DishLifecycleManager. claims may be
// nil when claim reversal is handled elsewhere.
func NewDishLifecycleManager(plans PlanStore, claims *ClaimCoordinator) *DishLifecycleManager {
	return &DishLifecycleManager{plans: plans, claims: claims}
}

// AddDishToMeal appends a dish to the located meal.
func (m *DishLifecycleManager) AddDishToMeal(ctx context.Context, userID, mealID string, dish Dish) error {
	p, idx, err := m.locateMeal(ctx, userID, mealID)
	if err != nil {
		return err
	}

	p.Meals[idx] = MigrateLegacyMeal(p.Meals[idx])
	p.Meals[idx].Dishes = append(p.Meals[idx].Dishes, dish)

	return m.plans.UpdateMealPlan(ctx, p)
}

// UpdateDishInMeal replaces the dish with the same id.
func (m *DishLifecycleManager) UpdateDishInMeal(ctx context.Context, userID, mealID string, dish Dish) error {
	p, idx, err := m.locateMeal(ctx, userID, mealID)
	if err != nil {
		return err
	}

	p.Meals[idx] = MigrateLegacyMeal(p.Meals[idx])
	meal := &p.Meals[idx]

	found := false
	for i := range meal.Dishes {
		if meal.Dishes[i].ID == dish.ID {
			meal.Dishes[i] = dish
			found = true
			break
		}
	}
	if !found {
		return notFound(ErrDishNotFound, dish.ID)
	}

	return m.plans.UpdateMealPlan(ctx, p)
}

// RemoveDishFromMeal removes the dish and reverses its claims. When the only
// dish is the one synthesized from legacy single-dish fields and it is the
// one being removed, the entire meal is deleted instead of leaving an
// empty-dish husk behind.
func (m *DishLifecycleManager) RemoveDishFromMeal(ctx context.Context, userID, mealID, dishID string) error {
	p, idx, err := m.locateMeal(ctx, userID, mealID)
	if err != nil {
		return err
	}

	p.Meals[idx] = MigrateLegacyMeal(p.Meals[idx])
	meal := p.Meals[idx]

	dishIdx := -1
	for i := range meal.Dishes {
		if meal.Dishes[i].ID == dishID {
			dishIdx = i
			break
		}
	}
	if dishIdx < 0 {
		return notFound(ErrDishNotFound, dishID)
	}
	removed := meal.Dishes[dishIdx]

	if err := m.unlinkClaims(ctx, userID, meal, removed); err != nil {
		return err
	}

	if len(meal.Dishes) == 1 && IsLegacyDish(mealID, dishID) {
		// Old single-dish record; removing its only dish removes the meal.
		p.Meals = append(p.Meals[:idx], p.Meals[idx+1:]...)
		return m.plans.UpdateMealPlan(ctx, p)
	}

	meal.Dishes = append(meal.Dishes[:dishIdx], meal.Dishes[dishIdx+1:]...)
	p.Meals[idx] = meal
	return m.plans.UpdateMealPlan(ctx, p)
}

// DeleteMeal removes the meal from its plan, reversing every dish's claims
// and deleting shopping-list entries created for it.
func (m *DishLifecycleManager) DeleteMeal(ctx context.Context, userID, mealID string) error {
	p, idx, err := m.locateMeal(ctx, userID, mealID)
	if err != nil {
		return err
	}

	p.Meals[idx] = MigrateLegacyMeal(p.Meals[idx])
	meal := p.Meals[idx]

	// Release every claim the meal holds in one pass. Unlinking dish by dish
	// would see a sibling dish still claiming a shared item and keep the link.
	merged := mergeDishClaims(meal.Dishes)
	bare := meal
	bare.Dishes = nil
	if err := m.unlinkClaims(ctx, userID, bare, merged); err != nil {
		return err
	}
	if m.claims != nil {
		if err := m.claims.shopping.DeleteItemsByMealID(ctx, mealID); err != nil {
			return fmt.Errorf("failed to delete shopping entries for meal %s: %w", mealID, err)
		}
	}

	p.Meals = append(p.Meals[:idx], p.Meals[idx+1:]...)
	return m.plans.UpdateMealPlan(ctx, p)
}

// mergeDishClaims collects the deduplicated claim ids of every dish into one
// synthetic dish, for reversing a whole meal's claims at once.
func mergeDishClaims(dishes []Dish) Dish {
	var merged Dish
	seenItems := make(map[string]struct{})
	seenEntries := make(map[string]struct{})
	for _, d := range dishes {
		for _, id := range d.ClaimedItemIDs {
			if _, dup := seenItems[id]; dup {
				continue
			}
			seenItems[id] = struct{}{}
			merged.ClaimedItemIDs = append(merged.ClaimedItemIDs, id)
		}
		for _, id := range d.ClaimedShoppingListItemIDs {
			if _, dup := seenEntries[id]; dup {
				continue
			}
			seenEntries[id] = struct{}{}
			merged.ClaimedShoppingListItemIDs = append(merged.ClaimedShoppingListItemIDs, id)
		}
	}
	return merged
}

func (m *DishLifecycleManager) unlinkClaims(ctx context.Context, userID string, meal PlannedMeal, dish Dish) error {
	if m.claims == nil {
		return nil
	}
	if len(dish.ClaimedItemIDs) == 0 && len(dish.ClaimedShoppingListItemIDs) == 0 {
		return nil
	}

	items, err := m.claims.inventory.GetFoodItems(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load pantry for claim reversal: %w", err)
	}
	entries, err := m.claims.shopping.ListActive(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load shopping list for claim reversal: %w", err)
	}
	if err := m.claims.UnlinkDishClaims(ctx, userID, meal, dish, items, entries); err != nil {
		return err
	}
	return nil
}

// locateMeal finds the plan containing the meal and the meal's index in it.
func (m *DishLifecycleManager) locateMeal(ctx context.Context, userID, mealID string) (*MealPlan, int, error) {
	p, err := m.plans.FindMealByID(ctx, userID, mealID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to look up meal %s: %w", mealID, err)
	}
	if p == nil {
		return nil, 0, notFound(ErrPlanNotFound, mealID)
	}

	for i := range p.Meals {
		if p.Meals[i].ID == mealID {
			return p, i, nil
		}
	}

	// The store said this plan contains the meal; not finding it here means
	// the document changed underneath us.
	log.Printf("Warning: meal %s missing from plan %s after lookup", mealID, p.ID)
	return nil, 0, notFound(ErrMealNotFound, mealID)
}
