package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
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

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	var textGen llm.TextGenerator
	switch cfg.SuggestionBackend {
	case "gemini":
		geminiClient, err := llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to initialize Gemini client: %v", err)
		}
		if closer, ok := geminiClient.(llm.Closer); ok {
			defer closer.Close()
		}
		textGen = geminiClient
	default:
		textGen = llm.NewGroqClient(cfg)
	}

	pantryRepo := pantry.NewRepository(db.SQL)
	shoppingRepo := shopping.NewRepository(db.SQL)
	profileRepo := profile.NewRepository(db.SQL, profile.MealProfile{
		ServingSize: cfg.DefaultServingSize,
		MealDurationPreferences: map[string]int{
			string(plan.MealTypeBreakfast): cfg.DefaultMealDurationMins,
			string(plan.MealTypeLunch):     cfg.DefaultMealDurationMins,
			string(plan.MealTypeDinner):    cfg.DefaultMealDurationMins,
		},
	})
	planRepo := plan.NewPlanRepository(db.SQL)
	leftoverRepo := plan.NewLeftoverRepository(db.SQL)
	metricsStore := metrics.NewStore(db.SQL)

	suggestions := suggest.NewProvider(textGen)
	claims := plan.NewClaimCoordinator(pantryRepo, shoppingRepo)
	lifecycle := plan.NewDishLifecycleManager(planRepo, claims)
	replanner := plan.NewReplanningEngine(planRepo, pantryRepo, profileRepo, leftoverRepo, suggestions)
	recipeClipper := clipper.NewClipper(textGen)

	application := app.NewApp(cfg, db, pantryRepo, shoppingRepo, profileRepo, planRepo, metricsStore, claims, lifecycle, replanner, recipeClipper)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "replan":
		replanCmd := flag.NewFlagSet("replan", flag.ExitOnError)
		dateStr := replanCmd.String("date", time.Now().Format("2006-01-02"), "Event date (YYYY-MM-DD)")
		typesStr := replanCmd.String("meals", "dinner", "Affected meal types, comma separated")
		reason := replanCmd.String("reason", "", "Why the meals were disrupted")
		replanCmd.Parse(os.Args[2:])

		date, err := time.ParseInLocation("2006-01-02", *dateStr, time.Local)
		if err != nil {
			log.Fatalf("Invalid date %q: %v", *dateStr, err)
		}
		var mealTypes []plan.MealType
		for _, t := range strings.Split(*typesStr, ",") {
			mealTypes = append(mealTypes, plan.MealType(strings.TrimSpace(t)))
		}

		if err := application.Replan(ctx, date, mealTypes, *reason); err != nil {
			log.Fatalf("Replanning failed: %v", err)
		}
	case "availability":
		if len(os.Args) < 3 {
			log.Fatal("Usage: mealminder availability \"2 cups rice\" [\"3 eggs\" ...]")
		}
		if err := application.Availability(ctx, os.Args[2:]); err != nil {
			log.Fatalf("Availability check failed: %v", err)
		}
	case "waste-risk":
		if err := application.WasteRisk(ctx); err != nil {
			log.Fatalf("Waste-risk check failed: %v", err)
		}
	case "clip":
		clipCmd := flag.NewFlagSet("clip", flag.ExitOnError)
		url := clipCmd.String("url", "", "Recipe URL to clip")
		mealID := clipCmd.String("meal", "", "Meal id to attach the dish to")
		clipCmd.Parse(os.Args[2:])
		if *url == "" || *mealID == "" {
			log.Fatal("Usage: mealminder clip -url <recipe-url> -meal <meal-id>")
		}
		if err := application.ClipDish(ctx, *url, *mealID); err != nil {
			log.Fatalf("Clip failed: %v", err)
		}
	case "claim":
		claimCmd := flag.NewFlagSet("claim", flag.ExitOnError)
		mealID := claimCmd.String("meal", "", "Meal id")
		dishID := claimCmd.String("dish", "", "Dish id")
		claimCmd.Parse(os.Args[2:])
		if *mealID == "" || *dishID == "" {
			log.Fatal("Usage: mealminder claim -meal <meal-id> -dish <dish-id>")
		}
		if err := application.ClaimDish(ctx, *mealID, *dishID); err != nil {
			log.Fatalf("Claim failed: %v", err)
		}
		fmt.Println("Dish claims updated.")
	case "complete":
		completeCmd := flag.NewFlagSet("complete", flag.ExitOnError)
		mealID := completeCmd.String("meal", "", "Meal id")
		dishID := completeCmd.String("dish", "", "Dish id")
		completeCmd.Parse(os.Args[2:])
		if *mealID == "" || *dishID == "" {
			log.Fatal("Usage: mealminder complete -meal <meal-id> -dish <dish-id>")
		}
		if err := application.CompleteDish(ctx, *mealID, *dishID); err != nil {
			log.Fatalf("Complete failed: %v", err)
		}
		fmt.Println("Dish marked completed.")
	case "rename-dish":
		renameCmd := flag.NewFlagSet("rename-dish", flag.ExitOnError)
		mealID := renameCmd.String("meal", "", "Meal id")
		dishID := renameCmd.String("dish", "", "Dish id")
		name := renameCmd.String("name", "", "New dish name")
		renameCmd.Parse(os.Args[2:])
		if *mealID == "" || *dishID == "" || *name == "" {
			log.Fatal("Usage: mealminder rename-dish -meal <meal-id> -dish <dish-id> -name <name>")
		}
		if err := application.RenameDish(ctx, *mealID, *dishID, *name); err != nil {
			log.Fatalf("Rename failed: %v", err)
		}
	case "remove-dish":
		removeCmd := flag.NewFlagSet("remove-dish", flag.ExitOnError)
		mealID := removeCmd.String("meal", "", "Meal id")
		dishID := removeCmd.String("dish", "", "Dish id")
		removeCmd.Parse(os.Args[2:])
		if *mealID == "" || *dishID == "" {
			log.Fatal("Usage: mealminder remove-dish -meal <meal-id> -dish <dish-id>")
		}
		if err := application.RemoveDish(ctx, *mealID, *dishID); err != nil {
			log.Fatalf("Remove failed: %v", err)
		}
	case "delete-meal":
		deleteCmd := flag.NewFlagSet("delete-meal", flag.ExitOnError)
		mealID := deleteCmd.String("meal", "", "Meal id")
		deleteCmd.Parse(os.Args[2:])
		if *mealID == "" {
			log.Fatal("Usage: mealminder delete-meal -meal <meal-id>")
		}
		if err := application.DeleteMeal(ctx, *mealID); err != nil {
			log.Fatalf("Delete failed: %v", err)
		}
	case "usage":
		usageCmd := flag.NewFlagSet("usage", flag.ExitOnError)
		days := usageCmd.Int("days", 7, "Days of usage to show")
		usageCmd.Parse(os.Args[2:])
		if err := application.Usage(*days); err != nil {
			log.Fatalf("Usage report failed: %v", err)
		}
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		affected, err := metricsStore.Cleanup(*days)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)
	case "health":
		h := metrics.GetSysHealth(filepath.Dir(cfg.DatabasePath))
		fmt.Printf("Alloc: %d MB, Sys: %d MB, GC runs: %d, Goroutines: %d, Data: %s\n",
			h.AllocMB, h.SysMB, h.NumGC, h.Goroutines, h.DataDiskSize)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: mealminder <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  replan           Replan meals after an unplanned event")
	fmt.Println("  availability     Check ingredient lines against the pantry")
	fmt.Println("  waste-risk       List pantry items at risk of spoiling")
	fmt.Println("  clip             Import a recipe URL as a dish on a meal")
	fmt.Println("  claim            Re-run a dish's pantry and shopping-list claims")
	fmt.Println("  complete         Mark a dish cooked and consume its reservations")
	fmt.Println("  rename-dish      Change a dish's name, keeping its claims")
	fmt.Println("  remove-dish      Remove a dish from a meal, reversing its claims")
	fmt.Println("  delete-meal      Delete a meal and release everything it claimed")
	fmt.Println("  usage            Show daily token usage")
	fmt.Println("  metrics-cleanup  Remove old metric records")
	fmt.Println("  health           Show process health")
}
