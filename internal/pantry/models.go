package pantry

import "time"

// Item is a perishable (or frozen) pantry item owned by a user.
//
// Exactly one of BestByDate/ThawDate is set on items used for waste-risk
// comparisons: refrigerated items carry a best-by date, frozen items a thaw
// date. Quantity is only mutated through the claim coordinator.
type Item struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Name        string     `json:"name"`
	Quantity    float64    `json:"quantity"`
	BestByDate  *time.Time `json:"bestByDate,omitempty"`
	ThawDate    *time.Time `json:"thawDate,omitempty"`
	UsedByMeals []string   `json:"usedByMeals"`
}

// ExpiryDate returns the item's spoilage-relevant date, preferring the
// best-by date. The second return is false when neither date is set.
func (i Item) ExpiryDate() (time.Time, bool) {
	if i.BestByDate != nil {
		return *i.BestByDate, true
	}
	if i.ThawDate != nil {
		return *i.ThawDate, true
	}
	return time.Time{}, false
}

// UsedBy reports whether the item is already linked to the given meal.
func (i Item) UsedBy(mealID string) bool {
	for _, id := range i.UsedByMeals {
		if id == mealID {
			return true
		}
	}
	return false
}
