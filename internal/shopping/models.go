package shopping

// Entry is a single shopping-list line. MealID links the entry to at most
// one dish at a time; it is empty when the entry is unclaimed.
type Entry struct {
	ID         string   `json:"id"`
	UserID     string   `json:"userId"`
	Name       string   `json:"name"`
	Quantity   *float64 `json:"quantity,omitempty"`
	CrossedOff bool     `json:"crossedOff"`
	MealID     string   `json:"mealId,omitempty"`
}
