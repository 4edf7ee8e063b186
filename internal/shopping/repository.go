package shopping

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Repository is a database-backed store for shopping-list entries.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new shopping list Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// ListActive retrieves the user's non-crossed-off entries in insertion order.
func (r *Repository) ListActive(ctx context.Context, userID string) ([]Entry, error) {
	return r.list(ctx,
		`SELECT id, user_id, name, quantity, crossed_off, meal_id FROM shopping_list_items WHERE user_id = ? AND crossed_off = 0 ORDER BY rowid`,
		userID,
	)
}

// ListAll retrieves every entry for the user, crossed-off included.
func (r *Repository) ListAll(ctx context.Context, userID string) ([]Entry, error) {
	return r.list(ctx,
		`SELECT id, user_id, name, quantity, crossed_off, meal_id FROM shopping_list_items WHERE user_id = ? ORDER BY rowid`,
		userID,
	)
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query shopping list: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e      Entry
			mealID sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Name, &e.Quantity, &e.CrossedOff, &mealID); err != nil {
			return nil, fmt.Errorf("failed to scan shopping entry: %w", err)
		}
		e.MealID = mealID.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read shopping list: %w", err)
	}
	return entries, nil
}

// AddItem inserts a new entry, assigning an id when empty.
func (r *Repository) AddItem(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO shopping_list_items (id, user_id, name, quantity, crossed_off, meal_id) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.Name, entry.Quantity, entry.CrossedOff, nullable(entry.MealID),
	)
	if err != nil {
		return fmt.Errorf("failed to insert shopping entry: %w", err)
	}
	return nil
}

// UpdateItem overwrites an entry.
func (r *Repository) UpdateItem(ctx context.Context, entry Entry) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE shopping_list_items SET name = ?, quantity = ?, crossed_off = ?, meal_id = ? WHERE id = ?`,
		entry.Name, entry.Quantity, entry.CrossedOff, nullable(entry.MealID), entry.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update shopping entry %s: %w", entry.ID, err)
	}
	return nil
}

// DeleteItemsByMealID removes every entry linked to the meal.
func (r *Repository) DeleteItemsByMealID(ctx context.Context, mealID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM shopping_list_items WHERE meal_id = ?`, mealID); err != nil {
		return fmt.Errorf("failed to delete shopping entries for meal %s: %w", mealID, err)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
