package plan

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// mealLookupWindowWeeks bounds the historical scan in FindMealByID: three
// months back and forward, week by week. Deliberate, explicit bound — never
// an unbounded scan.
const mealLookupWindowWeeks = 13

// PlanRepository is a database-backed PlanStore. Plan documents are stored
// as a JSON blob per user-week; legacy single-dish meals are migrated into
// the dish-array shape on every read so business logic never sees them.
type PlanRepository struct {
	db *sql.DB
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(d *sql.DB) *PlanRepository {
	return &PlanRepository{db: d}
}

// GetMealPlan retrieves the plan for the week containing weekStart, or nil
// when none exists.
func (r *PlanRepository) GetMealPlan(ctx context.Context, userID string, weekStart time.Time) (*MealPlan, error) {
	week := WeekStart(weekStart)

	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, week_start_date, status, plan_data FROM meal_plans WHERE user_id = ? AND week_start_date = ?`,
		userID, week.UTC().Format("2006-01-02"),
	)

	var (
		p        MealPlan
		weekStr  string
		status   string
		planData string
	)
	if err := row.Scan(&p.ID, &p.UserID, &weekStr, &status, &planData); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get meal plan: %w", err)
	}

	parsedWeek, err := time.Parse("2006-01-02", weekStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse week start %q: %w", weekStr, err)
	}
	p.WeekStartDate = parsedWeek
	p.Status = PlanStatus(status)

	if err := json.Unmarshal([]byte(planData), &p.Meals); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan data: %w", err)
	}

	// Shape repair happens here, at the persistence boundary, never inline
	// in business logic.
	for i := range p.Meals {
		p.Meals[i] = MigrateLegacyMeal(p.Meals[i])
	}

	return &p, nil
}

// CreateMealPlan inserts a new weekly plan. The id is assigned when empty.
func (r *PlanRepository) CreateMealPlan(ctx context.Context, p *MealPlan) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}
	if p.Meals == nil {
		p.Meals = []PlannedMeal{}
	}

	planData, err := json.Marshal(p.Meals)
	if err != nil {
		return fmt.Errorf("failed to marshal plan data: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO meal_plans (id, user_id, week_start_date, status, plan_data, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, WeekStart(p.WeekStartDate).UTC().Format("2006-01-02"), string(p.Status), string(planData), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert meal plan: %w", err)
	}
	return nil
}

// CreateEmptyMealPlan creates a draft plan with no meals for the week
// containing the given date.
func (r *PlanRepository) CreateEmptyMealPlan(ctx context.Context, userID string, date time.Time) (*MealPlan, error) {
	p := &MealPlan{
		UserID:        userID,
		WeekStartDate: WeekStart(date),
		Status:        StatusDraft,
		Meals:         []PlannedMeal{},
	}
	if err := r.CreateMealPlan(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateMealPlan overwrites the stored meals and status for the plan. Plain
// last-write-wins: there is no conditional check against the previously-read
// state.
func (r *PlanRepository) UpdateMealPlan(ctx context.Context, p *MealPlan) error {
	planData, err := json.Marshal(p.Meals)
	if err != nil {
		return fmt.Errorf("failed to marshal plan data: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE meal_plans SET status = ?, plan_data = ?, updated_at = ? WHERE id = ?`,
		string(p.Status), string(planData), time.Now().UTC(), p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update meal plan: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound(ErrPlanNotFound, p.ID)
	}
	return nil
}

// FindMealByID scans the user's plans week by week, moving outward from the
// current week one offset at a time (current, -1, +1, -2, +2, ...) up to
// three months each way, and returns the first plan containing the meal.
// Returns nil when no plan in the window has it.
func (r *PlanRepository) FindMealByID(ctx context.Context, userID, mealID string) (*MealPlan, error) {
	current := WeekStart(time.Now())

	for offset := 0; offset <= mealLookupWindowWeeks; offset++ {
		weeks := []time.Time{current.AddDate(0, 0, -7*offset)}
		if offset > 0 {
			weeks = append(weeks, current.AddDate(0, 0, 7*offset))
		}
		for _, week := range weeks {
			p, err := r.GetMealPlan(ctx, userID, week)
			if err != nil {
				return nil, err
			}
			if p == nil {
				continue
			}
			for i := range p.Meals {
				if p.Meals[i].ID == mealID {
					return p, nil
				}
			}
		}
	}
	return nil, nil
}
