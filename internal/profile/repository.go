package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Repository is a database-backed store for meal profiles and weekly
// schedules. The profile document is stored as JSON; schedule entries are
// one row per (weekday, meal type).
type Repository struct {
	db       *sql.DB
	defaults MealProfile
}

// NewRepository creates a new profile Repository. defaults is returned when
// a user has no stored profile yet.
func NewRepository(d *sql.DB, defaults MealProfile) *Repository {
	return &Repository{db: d, defaults: defaults}
}

// GetMealProfile retrieves the user's profile, falling back to defaults.
func (r *Repository) GetMealProfile(ctx context.Context, userID string) (*MealProfile, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM meal_profiles WHERE user_id = ?`, userID).Scan(&data)
	if err == sql.ErrNoRows {
		defaults := r.defaults
		return &defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meal profile: %w", err)
	}

	var p MealProfile
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal meal profile: %w", err)
	}
	return &p, nil
}

// SaveMealProfile inserts or overwrites the user's profile.
func (r *Repository) SaveMealProfile(ctx context.Context, userID string, p MealProfile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal meal profile: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO meal_profiles (user_id, data) VALUES (?, ?) ON CONFLICT (user_id) DO UPDATE SET data = excluded.data`,
		userID, string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to save meal profile: %w", err)
	}
	return nil
}

// GetEffectiveSchedule returns the user's schedule for the date's weekday.
// A user with no schedule rows gets an empty schedule, not an error.
func (r *Repository) GetEffectiveSchedule(ctx context.Context, userID string, date time.Time) (*DaySchedule, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT meal_type, finish_by FROM meal_schedules WHERE user_id = ? AND weekday = ? ORDER BY meal_type`,
		userID, int(date.Weekday()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule: %w", err)
	}
	defer rows.Close()

	schedule := &DaySchedule{}
	for rows.Next() {
		var entry ScheduleEntry
		if err := rows.Scan(&entry.Type, &entry.FinishBy); err != nil {
			return nil, fmt.Errorf("failed to scan schedule entry: %w", err)
		}
		schedule.Meals = append(schedule.Meals, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read schedule: %w", err)
	}
	return schedule, nil
}

// SaveScheduleEntry inserts or overwrites one schedule slot.
func (r *Repository) SaveScheduleEntry(ctx context.Context, userID string, weekday time.Weekday, entry ScheduleEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO meal_schedules (user_id, weekday, meal_type, finish_by) VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id, weekday, meal_type) DO UPDATE SET finish_by = excluded.finish_by`,
		userID, int(weekday), entry.Type, entry.FinishBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save schedule entry: %w", err)
	}
	return nil
}
