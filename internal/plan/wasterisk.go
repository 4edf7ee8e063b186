package plan

import (
	"time"

	"mealminder/internal/pantry"
)

// unclaimedRiskWindowDays is how close to spoilage an unclaimed item may get
// before it is flagged.
const unclaimedRiskWindowDays = 3

// WasteRiskItems returns the pantry items at risk of spoiling before use.
//
// An item with a best-by or thaw date is flagged when either no non-skipped
// meal claims it and the date is within three days, or the earliest
// non-skipped claiming meal is scheduled after the item's date (it will
// spoil before it is used). The list is conservative: it accounts only for
// presence or absence of a claim, not partial quantity use.
func WasteRiskItems(p *MealPlan, items []pantry.Item, now time.Time) []pantry.Item {
	var atRisk []pantry.Item
	for _, item := range items {
		expiry, ok := item.ExpiryDate()
		if !ok {
			continue
		}

		use, claimed := earliestPlannedUse(p, item)
		if !claimed {
			if daysUntil(now, expiry) <= unclaimedRiskWindowDays {
				atRisk = append(atRisk, item)
			}
			continue
		}

		if expiryDay(expiry).Before(expiryDay(use)) {
			atRisk = append(atRisk, item)
		}
	}
	return atRisk
}

// earliestPlannedUse finds the earliest non-skipped meal claiming the item,
// checking dish-level claims and, for legacy records, the meal-level field.
func earliestPlannedUse(p *MealPlan, item pantry.Item) (time.Time, bool) {
	var earliest time.Time
	found := false
	if p == nil {
		return earliest, false
	}

	for _, meal := range p.Meals {
		if meal.Skipped {
			continue
		}
		if !mealClaims(meal, item) {
			continue
		}
		if !found || meal.Date.Before(earliest) {
			earliest = meal.Date
			found = true
		}
	}
	return earliest, found
}

func mealClaims(meal PlannedMeal, item pantry.Item) bool {
	for _, dish := range meal.Dishes {
		for _, id := range dish.ClaimedItemIDs {
			if id == item.ID {
				return true
			}
		}
	}
	// Legacy records claim at the meal level.
	for _, id := range meal.ClaimedItemIDs {
		if id == item.ID {
			return true
		}
	}
	// The item side of the link covers claims recorded before dish ids
	// existed at all.
	return item.UsedBy(meal.ID)
}

func daysUntil(now, date time.Time) int {
	return int(expiryDay(date).Sub(expiryDay(now)).Hours() / 24)
}

func expiryDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
