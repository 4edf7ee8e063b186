package shopping

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"mealminder/internal/database"
)

func testDB(t *testing.T) *database.DB {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "shopping_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	db, err := database.NewDB(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func qty(v float64) *float64 { return &v }

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(testDB(t).SQL)

	t.Run("AddAndList", func(t *testing.T) {
		entries := []Entry{
			{ID: "s1", UserID: "u1", Name: "flour", Quantity: qty(2)},
			{ID: "s2", UserID: "u1", Name: "coffee", CrossedOff: true},
			{ID: "s3", UserID: "u1", Name: "butter", MealID: "meal-1"},
			{ID: "s4", UserID: "other", Name: "tea"},
		}
		for _, e := range entries {
			if err := repo.AddItem(ctx, e); err != nil {
				t.Fatalf("Failed to add entry: %v", err)
			}
		}

		active, err := repo.ListActive(ctx, "u1")
		if err != nil {
			t.Fatalf("Failed to list active: %v", err)
		}
		if len(active) != 2 || active[0].ID != "s1" || active[1].ID != "s3" {
			t.Errorf("Expected active [s1 s3], got %+v", active)
		}
		if active[0].Quantity == nil || *active[0].Quantity != 2 {
			t.Errorf("Expected quantity 2 on s1, got %v", active[0].Quantity)
		}
		if active[1].MealID != "meal-1" {
			t.Errorf("Expected meal link on s3, got %q", active[1].MealID)
		}

		all, err := repo.ListAll(ctx, "u1")
		if err != nil {
			t.Fatalf("Failed to list all: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("Expected 3 entries for u1, got %d", len(all))
		}
	})

	t.Run("UpdateClearsMealLink", func(t *testing.T) {
		if err := repo.UpdateItem(ctx, Entry{ID: "s3", UserID: "u1", Name: "butter"}); err != nil {
			t.Fatalf("Failed to update entry: %v", err)
		}

		active, err := repo.ListActive(ctx, "u1")
		if err != nil {
			t.Fatalf("Failed to list active: %v", err)
		}
		for _, e := range active {
			if e.ID == "s3" && e.MealID != "" {
				t.Errorf("Expected cleared meal link, got %q", e.MealID)
			}
		}
	})

	t.Run("DeleteByMealID", func(t *testing.T) {
		if err := repo.AddItem(ctx, Entry{ID: "s5", UserID: "u1", Name: "saffron", MealID: "meal-2"}); err != nil {
			t.Fatalf("Failed to add entry: %v", err)
		}
		if err := repo.DeleteItemsByMealID(ctx, "meal-2"); err != nil {
			t.Fatalf("Failed to delete by meal: %v", err)
		}

		all, err := repo.ListAll(ctx, "u1")
		if err != nil {
			t.Fatalf("Failed to list all: %v", err)
		}
		for _, e := range all {
			if e.ID == "s5" {
				t.Error("Expected s5 deleted with its meal")
			}
		}
	})
}
