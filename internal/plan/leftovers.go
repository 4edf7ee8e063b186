package plan

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// LeftoverRepository looks up leftover meals from stored plans. The range
// query is pinned to the leftovers index; until that index exists (it ships
// in a later migration than the base schema) the lookup reports
// ErrIndexUnavailable instead of wrong results, and optional-context callers
// degrade to an empty list.
type LeftoverRepository struct {
	db *sql.DB
}

// NewLeftoverRepository creates a new LeftoverRepository.
func NewLeftoverRepository(d *sql.DB) *LeftoverRepository {
	return &LeftoverRepository{db: d}
}

// GetLeftoverMeals returns the leftover meals planned between start and end.
func (r *LeftoverRepository) GetLeftoverMeals(ctx context.Context, userID string, start, end time.Time) ([]LeftoverMeal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT plan_data FROM meal_plans INDEXED BY idx_meal_plans_leftovers WHERE user_id = ? AND week_start_date >= ? AND week_start_date <= ?`,
		userID,
		WeekStart(start).UTC().Format("2006-01-02"),
		WeekStart(end).UTC().Format("2006-01-02"),
	)
	if err != nil {
		if strings.Contains(err.Error(), "no such index") {
			return nil, fmt.Errorf("%w: idx_meal_plans_leftovers: %v", ErrIndexUnavailable, err)
		}
		return nil, fmt.Errorf("failed to query leftover meals: %w", err)
	}
	defer rows.Close()

	var leftovers []LeftoverMeal
	for rows.Next() {
		var planData string
		if err := rows.Scan(&planData); err != nil {
			return nil, fmt.Errorf("failed to scan plan row: %w", err)
		}

		var meals []PlannedMeal
		if err := json.Unmarshal([]byte(planData), &meals); err != nil {
			return nil, fmt.Errorf("failed to unmarshal plan data: %w", err)
		}

		for _, m := range meals {
			m = MigrateLegacyMeal(m)
			if !m.IsLeftover || m.Skipped {
				continue
			}
			if m.Date.Before(start) || m.Date.After(end) {
				continue
			}
			name := ""
			if len(m.Dishes) > 0 {
				name = m.Dishes[0].DishName
			}
			leftovers = append(leftovers, LeftoverMeal{
				MealName: name,
				Date:     m.Date,
				MealType: m.MealType,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read leftover meals: %w", err)
	}

	return leftovers, nil
}
