package pantry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Repository is a database-backed store for pantry items.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new pantry Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// GetFoodItems retrieves all pantry items for a user, in insertion order.
func (r *Repository) GetFoodItems(ctx context.Context, userID string) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, quantity, best_by_date, thaw_date, used_by_meals FROM pantry_items WHERE user_id = ? ORDER BY rowid`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query pantry items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pantry items: %w", err)
	}
	return items, nil
}

// GetItem retrieves a single pantry item, or nil when absent.
func (r *Repository) GetItem(ctx context.Context, id string) (*Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, quantity, best_by_date, thaw_date, used_by_meals FROM pantry_items WHERE id = ?`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query pantry item: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	item, err := scanItem(rows)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// SaveItem inserts or overwrites a pantry item.
func (r *Repository) SaveItem(ctx context.Context, item Item) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.UsedByMeals == nil {
		item.UsedByMeals = []string{}
	}

	usedBy, err := json.Marshal(item.UsedByMeals)
	if err != nil {
		return fmt.Errorf("failed to marshal usedByMeals: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO pantry_items (id, user_id, name, quantity, best_by_date, thaw_date, used_by_meals)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET name = excluded.name, quantity = excluded.quantity,
		 best_by_date = excluded.best_by_date, thaw_date = excluded.thaw_date, used_by_meals = excluded.used_by_meals`,
		item.ID, item.UserID, item.Name, item.Quantity, item.BestByDate, item.ThawDate, string(usedBy),
	)
	if err != nil {
		return fmt.Errorf("failed to save pantry item %s: %w", item.ID, err)
	}
	return nil
}

// DeleteItem removes a pantry item.
func (r *Repository) DeleteItem(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pantry_items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete pantry item %s: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (Item, error) {
	var (
		item   Item
		usedBy string
	)
	if err := row.Scan(&item.ID, &item.UserID, &item.Name, &item.Quantity, &item.BestByDate, &item.ThawDate, &usedBy); err != nil {
		return Item{}, fmt.Errorf("failed to scan pantry item: %w", err)
	}
	if err := json.Unmarshal([]byte(usedBy), &item.UsedByMeals); err != nil {
		return Item{}, fmt.Errorf("failed to unmarshal usedByMeals: %w", err)
	}
	return item, nil
}
