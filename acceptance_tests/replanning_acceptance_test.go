package acceptance_tests

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mealminder/internal/app"
	"mealminder/internal/clipper"
	"mealminder/internal/config"
	"mealminder/internal/database"
	"mealminder/internal/llm"
	"mealminder/internal/metrics"
	"mealminder/internal/pantry"
	"mealminder/internal/plan"
	"mealminder/internal/profile"
	"mealminder/internal/shopping"
	"mealminder/internal/suggest"
)

// --- Mock LLM Client ---
type mockLLMClient struct {
	generateContentCalls int
	suggestedDate        string
}

func (m *mockLLMClient) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	m.generateContentCalls++

	// Distinguish extraction from replanning by the prompt content.
	if strings.Contains(prompt, "recipe extraction expert") {
		return llm.ContentResponse{
			Content: `{
				"title": "Fried Rice",
				"ingredients": ["1 cup rice", "2 eggs"],
				"steps": ["Cook rice.", "Fry everything."],
				"prep_time": "20 mins",
				"servings": "2"
			}`,
		}, nil
	}

	content := fmt.Sprintf(`{
		"meals": [
			{
				"meal_name": "Chicken Stir Fry",
				"meal_type": "dinner",
				"date": %q,
				"suggested_ingredients": ["4 chicken thighs"],
				"uses_best_by_soon_items": true,
				"priority": 1
			}
		]
	}`, m.suggestedDate)
	resp := llm.ContentResponse{Content: content}
	resp.Usage.PromptTokens = 200
	resp.Usage.CompletionTokens = 60
	resp.Usage.TotalTokens = 260
	resp.Usage.Model = "test-model"
	return resp, nil
}

// --- Acceptance Test ---
func TestReplanClipCompleteWorkflow(t *testing.T) {
	ctx := context.Background()
	userID := "default_user"
	today := time.Now()

	// 1. Set up a temporary database
	tempDir, err := os.MkdirTemp("", "acceptance_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	db, err := database.NewDB(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// 2. Initialize mock LLM and real repositories
	llmClient := &mockLLMClient{suggestedDate: today.Format("2006-01-02")}

	cfg := &config.Config{DefaultUserID: userID, DefaultServingSize: 2, DefaultMealDurationMins: 45}
	pantryRepo := pantry.NewRepository(db.SQL)
	shoppingRepo := shopping.NewRepository(db.SQL)
	profileRepo := profile.NewRepository(db.SQL, profile.MealProfile{ServingSize: 2})
	planRepo := plan.NewPlanRepository(db.SQL)
	leftoverRepo := plan.NewLeftoverRepository(db.SQL)
	metricsStore := metrics.NewStore(db.SQL)

	claims := plan.NewClaimCoordinator(pantryRepo, shoppingRepo)
	lifecycle := plan.NewDishLifecycleManager(planRepo, claims)
	replanner := plan.NewReplanningEngine(planRepo, pantryRepo, profileRepo, leftoverRepo, suggest.NewProvider(llmClient))

	application := app.NewApp(cfg, db, pantryRepo, shoppingRepo, profileRepo, planRepo, metricsStore,
		claims, lifecycle, replanner, clipper.NewClipper(llmClient))

	// 3. Seed pantry and this week's plan
	bestBy := today.AddDate(0, 0, 1)
	for _, item := range []pantry.Item{
		{ID: "item-chicken", UserID: userID, Name: "chicken thighs", Quantity: 4, BestByDate: &bestBy},
		{ID: "item-rice", UserID: userID, Name: "rice", Quantity: 2},
	} {
		if err := pantryRepo.SaveItem(ctx, item); err != nil {
			t.Fatalf("Failed to seed pantry: %v", err)
		}
	}

	original := plan.MealPlan{
		UserID:        userID,
		WeekStartDate: plan.WeekStart(today),
		Meals: []plan.PlannedMeal{{
			ID:       "meal-original",
			Date:     today,
			MealType: plan.MealTypeDinner,
			Dishes:   []plan.Dish{{ID: "dish-original", DishName: "Roast Chicken"}},
		}},
	}
	if err := planRepo.CreateMealPlan(ctx, &original); err != nil {
		t.Fatalf("Failed to create plan: %v", err)
	}

	// --- 4. Step 1: Replan tonight's dinner ---
	t.Log("--- Step 1: Replanning after an unplanned event ---")
	if err := application.Replan(ctx, today, []plan.MealType{plan.MealTypeDinner}, "unexpected guests"); err != nil {
		t.Fatalf("Replan failed: %v", err)
	}
	if llmClient.generateContentCalls != 1 {
		t.Errorf("Expected 1 LLM call for replanning, got %d", llmClient.generateContentCalls)
	}

	p, err := planRepo.GetMealPlan(ctx, userID, today)
	if err != nil {
		t.Fatalf("Failed to reload plan: %v", err)
	}
	if len(p.Meals) != 2 {
		t.Fatalf("Expected 2 meals after replan (skipped + suggested), got %d", len(p.Meals))
	}
	if !p.Meals[0].Skipped {
		t.Error("Expected the original dinner to be marked skipped")
	}
	newMeal := p.Meals[1]
	if newMeal.Skipped {
		t.Error("Expected the suggested meal to not be skipped")
	}
	if len(newMeal.Dishes) != 1 || newMeal.Dishes[0].DishName != "Chicken Stir Fry" {
		t.Fatalf("Unexpected suggested meal dishes: %+v", newMeal.Dishes)
	}

	usage, err := metricsStore.GetDailyUsage(1)
	if err != nil {
		t.Fatalf("Failed to load usage: %v", err)
	}
	if len(usage) != 1 || usage[0].TotalPrompt != 200 {
		t.Errorf("Expected recorded token usage for the replanner run, got %+v", usage)
	}

	// --- 5. Step 2: Clip a recipe into the new meal ---
	t.Log("--- Step 2: Clipping a recipe as a second dish ---")
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><h1>Fried Rice</h1><p>Cook rice, fry everything.</p></body></html>"))
	}))
	defer ts.Close()

	if err := application.ClipDish(ctx, ts.URL, newMeal.ID); err != nil {
		t.Fatalf("ClipDish failed: %v", err)
	}

	p, err = planRepo.GetMealPlan(ctx, userID, today)
	if err != nil {
		t.Fatalf("Failed to reload plan: %v", err)
	}
	if len(p.Meals[1].Dishes) != 2 {
		t.Fatalf("Expected 2 dishes on the meal after clipping, got %d", len(p.Meals[1].Dishes))
	}
	clipped := p.Meals[1].Dishes[1]
	if clipped.DishName != "Fried Rice" {
		t.Errorf("Expected clipped dish 'Fried Rice', got %q", clipped.DishName)
	}
	if len(clipped.ClaimedItemIDs) != 1 || clipped.ClaimedItemIDs[0] != "item-rice" {
		t.Errorf("Expected the rice item claimed for the clipped dish, got %v", clipped.ClaimedItemIDs)
	}
	if clipped.ReservedQuantities["rice"] != 1 {
		t.Errorf("Expected 1 rice reserved, got %v", clipped.ReservedQuantities)
	}

	riceItem, err := pantryRepo.GetItem(ctx, "item-rice")
	if err != nil {
		t.Fatalf("Failed to load rice item: %v", err)
	}
	if !riceItem.UsedBy(newMeal.ID) {
		t.Error("Expected the rice item linked to the meal")
	}

	// --- 6. Step 3: Cook the clipped dish ---
	t.Log("--- Step 3: Completing the clipped dish ---")
	if err := application.CompleteDish(ctx, newMeal.ID, clipped.ID); err != nil {
		t.Fatalf("CompleteDish failed: %v", err)
	}

	riceItem, err = pantryRepo.GetItem(ctx, "item-rice")
	if err != nil {
		t.Fatalf("Failed to load rice item: %v", err)
	}
	if riceItem.Quantity != 1 {
		t.Errorf("Expected rice quantity 1 after cooking, got %v", riceItem.Quantity)
	}

	p, err = planRepo.GetMealPlan(ctx, userID, today)
	if err != nil {
		t.Fatalf("Failed to reload plan: %v", err)
	}
	if !p.Meals[1].Dishes[1].Completed {
		t.Error("Expected the clipped dish marked completed")
	}
}
