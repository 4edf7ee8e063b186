package pantry

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mealminder/internal/database"
)

func testDB(t *testing.T) *database.DB {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "pantry_test")
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

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(testDB(t).SQL)

	bestBy := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	item := Item{
		ID:         "item-1",
		UserID:     "u1",
		Name:       "chicken thighs",
		Quantity:   4,
		BestByDate: &bestBy,
	}

	t.Run("SaveAndGet", func(t *testing.T) {
		if err := repo.SaveItem(ctx, item); err != nil {
			t.Fatalf("Failed to save item: %v", err)
		}

		got, err := repo.GetItem(ctx, "item-1")
		if err != nil {
			t.Fatalf("Failed to get item: %v", err)
		}
		if got == nil {
			t.Fatal("Expected item, got nil")
		}
		if got.Name != "chicken thighs" || got.Quantity != 4 {
			t.Errorf("Unexpected item: %+v", got)
		}
		if got.BestByDate == nil || !got.BestByDate.Equal(bestBy) {
			t.Errorf("Expected best-by %v, got %v", bestBy, got.BestByDate)
		}
		if got.ThawDate != nil {
			t.Errorf("Expected no thaw date, got %v", got.ThawDate)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		got, err := repo.GetItem(ctx, "nope")
		if err != nil {
			t.Fatalf("Expected no error for missing item, got %v", err)
		}
		if got != nil {
			t.Errorf("Expected nil for missing item, got %+v", got)
		}
	})

	t.Run("UpsertRoundTripsUsedByMeals", func(t *testing.T) {
		item.Quantity = 3
		item.UsedByMeals = []string{"meal-1", "meal-2"}
		if err := repo.SaveItem(ctx, item); err != nil {
			t.Fatalf("Failed to upsert item: %v", err)
		}

		got, err := repo.GetItem(ctx, "item-1")
		if err != nil {
			t.Fatalf("Failed to get item: %v", err)
		}
		if got.Quantity != 3 {
			t.Errorf("Expected quantity 3 after upsert, got %v", got.Quantity)
		}
		if len(got.UsedByMeals) != 2 || !got.UsedBy("meal-2") {
			t.Errorf("Expected usedByMeals round trip, got %v", got.UsedByMeals)
		}
	})

	t.Run("ListByUserInInsertionOrder", func(t *testing.T) {
		if err := repo.SaveItem(ctx, Item{ID: "item-2", UserID: "u1", Name: "rice", Quantity: 2}); err != nil {
			t.Fatalf("Failed to save item: %v", err)
		}
		if err := repo.SaveItem(ctx, Item{ID: "item-3", UserID: "other", Name: "beans", Quantity: 1}); err != nil {
			t.Fatalf("Failed to save item: %v", err)
		}

		items, err := repo.GetFoodItems(ctx, "u1")
		if err != nil {
			t.Fatalf("Failed to list items: %v", err)
		}
		if len(items) != 2 || items[0].ID != "item-1" || items[1].ID != "item-2" {
			t.Errorf("Expected [item-1 item-2] for u1, got %+v", items)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := repo.DeleteItem(ctx, "item-2"); err != nil {
			t.Fatalf("Failed to delete item: %v", err)
		}
		got, err := repo.GetItem(ctx, "item-2")
		if err != nil {
			t.Fatalf("Failed to get item: %v", err)
		}
		if got != nil {
			t.Error("Expected item deleted")
		}
	})

	t.Run("SaveAssignsID", func(t *testing.T) {
		if err := repo.SaveItem(ctx, Item{UserID: "u1", Name: "flour", Quantity: 1}); err != nil {
			t.Fatalf("Failed to save item without id: %v", err)
		}
		items, err := repo.GetFoodItems(ctx, "u1")
		if err != nil {
			t.Fatalf("Failed to list items: %v", err)
		}
		last := items[len(items)-1]
		if last.Name != "flour" || last.ID == "" {
			t.Errorf("Expected generated id for flour, got %+v", last)
		}
	})
}
