package plan

import (
	"context"
	"fmt"

	"mealminder/internal/ingredient"
	"mealminder/internal/pantry"
	"mealminder/internal/shopping"
)

// ClaimCoordinator persists the linkage between dishes and the pantry items
// and shopping-list entries backing their reservations. It is the only
// component that mutates pantry quantities.
type ClaimCoordinator struct {
	inventory InventoryStore
	shopping  ShoppingListStore
}

// NewClaimCoordinator creates a new ClaimCoordinator.
func NewClaimCoordinator(inventory InventoryStore, shoppingList ShoppingListStore) *ClaimCoordinator {
	return &ClaimCoordinator{inventory: inventory, shopping: shoppingList}
}

// ClaimItemsForMeal allocates the ingredients against the pantry snapshot
// and links each pantry item with a nonzero allocation to the meal via its
// usedByMeals set. Idempotent: items already linked to the meal are left
// alone but still reported as claimed. Items owned by a different user are
// treated as not found and silently skipped; ownership is enforced at the
// persistence layer, this is only a stale-id guard.
//
// Returns the claimed item ids and the reservation map (seed plus new
// allocations) for the caller to record on the dish.
func (c *ClaimCoordinator) ClaimItemsForMeal(ctx context.Context, userID, mealID string, ingredients []string, items []pantry.Item, seed ReservationMap) ([]string, ReservationMap, error) {
	results, reserved := CheckIngredientAvailability(ingredients, items, seed)

	byID := make(map[string]pantry.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	var claimed []string
	seen := make(map[string]struct{})
	for _, res := range results {
		for _, id := range res.MatchedItemIDs {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}

			item := byID[id]
			if item.UserID != userID {
				continue
			}
			if !item.UsedBy(mealID) {
				item.UsedByMeals = append(item.UsedByMeals, mealID)
				if err := c.inventory.SaveItem(ctx, item); err != nil {
					return nil, nil, fmt.Errorf("failed to link pantry item %s to meal %s: %w", id, mealID, err)
				}
				byID[id] = item
			}
			claimed = append(claimed, id)
		}
	}

	return claimed, reserved, nil
}

// ClaimShoppingListItemsForMeal links matching, non-crossed-off shopping
// list entries to the meal. An entry already linked to a different meal is
// excluded: an entry belongs to at most one dish.
func (c *ClaimCoordinator) ClaimShoppingListItemsForMeal(ctx context.Context, userID, mealID string, ingredients []string, entries []shopping.Entry) ([]string, error) {
	candidates := make([]ingredient.Candidate, 0, len(entries))
	byID := make(map[string]shopping.Entry, len(entries))
	for _, e := range entries {
		if e.CrossedOff {
			continue
		}
		if e.MealID != "" && e.MealID != mealID {
			continue
		}
		candidates = append(candidates, ingredient.Candidate{ID: e.ID, Name: e.Name})
		byID[e.ID] = e
	}

	var claimed []string
	seen := make(map[string]struct{})
	for _, line := range ingredients {
		parsed := ingredient.Parse(line)
		if parsed.ItemName == "" {
			continue
		}
		for _, match := range ingredient.Match(parsed.ItemName, candidates) {
			if _, dup := seen[match.ID]; dup {
				continue
			}
			seen[match.ID] = struct{}{}

			entry := byID[match.ID]
			if entry.UserID != userID {
				continue
			}
			if entry.MealID != mealID {
				entry.MealID = mealID
				if err := c.shopping.UpdateItem(ctx, entry); err != nil {
					return nil, fmt.Errorf("failed to link shopping entry %s to meal %s: %w", entry.ID, mealID, err)
				}
				byID[match.ID] = entry
			}
			claimed = append(claimed, entry.ID)
		}
	}

	return claimed, nil
}

// MarkItemsAsUsedForMeal adds the meal to each item's usedByMeals set and
// decrements its quantity by the reserved amount recorded for its normalized
// name, clamped at zero.
func (c *ClaimCoordinator) MarkItemsAsUsedForMeal(ctx context.Context, userID, mealID string, itemIDs []string, items []pantry.Item, reserved ReservationMap) error {
	return c.adjustItems(ctx, userID, mealID, itemIDs, items, reserved, true)
}

// UnmarkItemsAsUsedForMeal removes the meal from each item's usedByMeals set
// and restores its quantity by the previously-reserved amount. No clamping
// is needed on restore: quantity can only return to at most its original
// value.
func (c *ClaimCoordinator) UnmarkItemsAsUsedForMeal(ctx context.Context, userID, mealID string, itemIDs []string, items []pantry.Item, reserved ReservationMap) error {
	return c.adjustItems(ctx, userID, mealID, itemIDs, items, reserved, false)
}

func (c *ClaimCoordinator) adjustItems(ctx context.Context, userID, mealID string, itemIDs []string, items []pantry.Item, reserved ReservationMap, consume bool) error {
	byID := make(map[string]pantry.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	for _, id := range itemIDs {
		item, ok := byID[id]
		if !ok || item.UserID != userID {
			// Stale or foreign id; skipped, not a hard failure.
			continue
		}

		amount := reserved[ingredient.Normalize(item.Name)]
		if consume {
			item.Quantity -= amount
			if item.Quantity < 0 {
				item.Quantity = 0
			}
			if !item.UsedBy(mealID) {
				item.UsedByMeals = append(item.UsedByMeals, mealID)
			}
		} else {
			item.Quantity += amount
			item.UsedByMeals = removeString(item.UsedByMeals, mealID)
		}

		if err := c.inventory.SaveItem(ctx, item); err != nil {
			return fmt.Errorf("failed to update pantry item %s: %w", id, err)
		}
		byID[id] = item
	}
	return nil
}

// UnlinkDishClaims reverses a removed dish's links: meals ids are dropped
// from pantry items no other dish in the meal still claims, and shopping
// entries are released unless another dish claims them.
func (c *ClaimCoordinator) UnlinkDishClaims(ctx context.Context, userID string, meal PlannedMeal, removed Dish, items []pantry.Item, entries []shopping.Entry) error {
	stillClaimed := make(map[string]struct{})
	stillOnList := make(map[string]struct{})
	for _, d := range meal.Dishes {
		if d.ID == removed.ID {
			continue
		}
		for _, id := range d.ClaimedItemIDs {
			stillClaimed[id] = struct{}{}
		}
		for _, id := range d.ClaimedShoppingListItemIDs {
			stillOnList[id] = struct{}{}
		}
	}

	byID := make(map[string]pantry.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	for _, id := range removed.ClaimedItemIDs {
		if _, keep := stillClaimed[id]; keep {
			continue
		}
		item, ok := byID[id]
		if !ok || item.UserID != userID {
			continue
		}
		if item.UsedBy(meal.ID) {
			item.UsedByMeals = removeString(item.UsedByMeals, meal.ID)
			if err := c.inventory.SaveItem(ctx, item); err != nil {
				return fmt.Errorf("failed to unlink pantry item %s: %w", id, err)
			}
		}
	}

	entryByID := make(map[string]shopping.Entry, len(entries))
	for _, e := range entries {
		entryByID[e.ID] = e
	}
	for _, id := range removed.ClaimedShoppingListItemIDs {
		if _, keep := stillOnList[id]; keep {
			continue
		}
		entry, ok := entryByID[id]
		if !ok || entry.UserID != userID || entry.MealID != meal.ID {
			continue
		}
		entry.MealID = ""
		if err := c.shopping.UpdateItem(ctx, entry); err != nil {
			return fmt.Errorf("failed to release shopping entry %s: %w", id, err)
		}
	}

	return nil
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
