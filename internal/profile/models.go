package profile

// MealProfile captures a user's food preferences and household context used
// to steer suggestions.
type MealProfile struct {
	DislikedFoods           []string       `json:"dislikedFoods,omitempty"`
	FoodPreferences         []string       `json:"foodPreferences,omitempty"`
	DietApproach            string         `json:"dietApproach,omitempty"`
	DietStrict              bool           `json:"dietStrict,omitempty"`
	FavoriteMeals           []string       `json:"favoriteMeals,omitempty"`
	ServingSize             int            `json:"servingSize,omitempty"`
	MealDurationPreferences map[string]int `json:"mealDurationPreferences,omitempty"` // meal type -> minutes
}

// ScheduleEntry is one meal slot in a day's schedule with its target finish
// time in "15:04" form.
type ScheduleEntry struct {
	Type     string `json:"type"`
	FinishBy string `json:"finishBy"`
}

// DaySchedule is the effective schedule for a user on a specific date.
type DaySchedule struct {
	Meals []ScheduleEntry `json:"meals"`
}

// Entry returns the schedule entry for the given meal type, or nil.
func (d *DaySchedule) Entry(mealType string) *ScheduleEntry {
	if d == nil {
		return nil
	}
	for i := range d.Meals {
		if d.Meals[i].Type == mealType {
			return &d.Meals[i]
		}
	}
	return nil
}
