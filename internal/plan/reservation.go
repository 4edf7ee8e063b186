package plan

import (
	"mealminder/internal/ingredient"
	"mealminder/internal/pantry"
)

// IngredientStatus classifies how well a single ingredient requirement is
// covered by the pantry.
type IngredientStatus string

const (
	StatusAvailable IngredientStatus = "available"
	StatusPartial   IngredientStatus = "partial"
	StatusMissing   IngredientStatus = "missing"
)

// ReservationMap records reserved quantity per normalized pantry item name.
// It is a derived view recomputed from a plan's dishes, never persisted on
// its own.
type ReservationMap map[string]float64

// Clone returns a copy of the map, never nil.
func (r ReservationMap) Clone() ReservationMap {
	out := make(ReservationMap, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// IngredientAvailability is the per-ingredient outcome of a ledger walk.
type IngredientAvailability struct {
	Ingredient     string
	ItemName       string
	Needed         float64
	Allocated      float64
	Status         IngredientStatus
	MatchedItemIDs []string
}

// CheckIngredientAvailability runs the greedy reservation walk for an
// ordered list of ingredient lines against a pantry snapshot. seed carries
// quantities already reserved by other dishes; it is not mutated. The
// returned map includes the seed plus the new allocations.
//
// An ingredient with no parsable quantity is treated as needing one unit —
// the same rule on the read-only query path and the claim path.
//
// Allocation is greedy and order-dependent by design: pantry items are
// consumed in match-rank order and ingredients compete for items in the
// order given. Callers wanting reproducible results across a multi-dish plan
// must process dishes and ingredients in a fixed order.
func CheckIngredientAvailability(ingredients []string, items []pantry.Item, seed ReservationMap) ([]IngredientAvailability, ReservationMap) {
	reserved := seed.Clone()

	candidates := make([]ingredient.Candidate, len(items))
	byID := make(map[string]pantry.Item, len(items))
	for i, it := range items {
		candidates[i] = ingredient.Candidate{ID: it.ID, Name: it.Name}
		byID[it.ID] = it
	}

	results := make([]IngredientAvailability, 0, len(ingredients))
	for _, line := range ingredients {
		parsed := ingredient.Parse(line)
		needed := 1.0
		if parsed.Quantity != nil {
			needed = *parsed.Quantity
		}

		res := IngredientAvailability{
			Ingredient: line,
			ItemName:   parsed.ItemName,
			Needed:     needed,
		}

		if parsed.ItemName == "" {
			// Unparsable line degrades to "no match", never an error.
			res.Status = StatusMissing
			results = append(results, res)
			continue
		}

		remaining := needed
		for _, match := range ingredient.Match(parsed.ItemName, candidates) {
			if remaining <= 0 {
				break
			}
			item := byID[match.ID]
			key := ingredient.Normalize(item.Name)
			available := item.Quantity - reserved[key]
			if available <= 0 {
				continue
			}
			alloc := remaining
			if available < alloc {
				alloc = available
			}
			reserved[key] += alloc
			remaining -= alloc
			res.Allocated += alloc
			res.MatchedItemIDs = append(res.MatchedItemIDs, item.ID)
		}

		switch {
		case res.Allocated == 0:
			res.Status = StatusMissing
		case res.Allocated >= needed:
			res.Status = StatusAvailable
		default:
			res.Status = StatusPartial
		}
		results = append(results, res)
	}

	return results, reserved
}

// BuildPlanReservations recomputes the reservation map for every non-skipped
// meal in the plan, walking meals, dishes, and ingredients in slice order so
// the result is deterministic.
func BuildPlanReservations(p *MealPlan, items []pantry.Item) ReservationMap {
	return planReservations(p, items, "")
}

// PlanReservationsExcludingDish recomputes the plan's reservations leaving
// one dish out. Used when claiming that dish: its own ingredient lines must
// not count against the inventory it is claiming from.
func PlanReservationsExcludingDish(p *MealPlan, items []pantry.Item, dishID string) ReservationMap {
	return planReservations(p, items, dishID)
}

func planReservations(p *MealPlan, items []pantry.Item, excludeDishID string) ReservationMap {
	reserved := make(ReservationMap)
	for _, meal := range p.Meals {
		if meal.Skipped {
			continue
		}
		for _, dish := range meal.Dishes {
			if dish.Completed {
				continue
			}
			if excludeDishID != "" && dish.ID == excludeDishID {
				continue
			}
			_, reserved = CheckIngredientAvailability(dish.RecipeIngredients, items, reserved)
		}
	}
	return reserved
}

// AvailableInventory returns the pantry quantities left after subtracting a
// reservation map, dropping items fully consumed.
func AvailableInventory(items []pantry.Item, reserved ReservationMap) []InventorySummary {
	out := make([]InventorySummary, 0, len(items))
	for _, it := range items {
		left := it.Quantity - reserved[ingredient.Normalize(it.Name)]
		if left <= 0 {
			continue
		}
		out = append(out, InventorySummary{Name: it.Name, Quantity: left})
	}
	return out
}
