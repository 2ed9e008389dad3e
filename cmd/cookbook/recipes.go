package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/pbaille/cookbook/internal/catalog"
	"github.com/pbaille/cookbook/internal/domain"
)

// saveRecipe stores r. A snapshot reload failing after the write is only
// reported, since the recipe is already in the database.
func saveRecipe(ctx context.Context, svc *catalog.Service, r domain.Recipe, log *zap.Logger) (*domain.Recipe, error) {
	saved, err := svc.SaveRecipe(ctx, r)
	if saved == nil {
		return nil, err
	}
	if err != nil {
		log.Warn("recipe saved but catalog reload failed", zap.String("id", saved.ID), zap.Error(err))
	}
	return saved, nil
}

// recipeFlags are the editable fields shared by add and edit
type recipeFlags struct {
	file        string
	name        string
	description string
	ingredients []string
	steps       []string
	prepTime    int
	cookTime    int
	difficulty  string
	cuisine     []string
	typ         []string
	ingTags     []string
	custom      []string
	image       string
	video       string
}

func (f *recipeFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.file, "file", "f", "", "read the recipe from a JSON file")
	fs.StringVar(&f.name, "name", "", "recipe name")
	fs.StringVar(&f.description, "desc", "", "short description")
	fs.StringArrayVarP(&f.ingredients, "ingredient", "i", nil, `ingredient as "name amount" (repeatable)`)
	fs.StringArrayVarP(&f.steps, "step", "s", nil, "preparation step (repeatable)")
	fs.IntVar(&f.prepTime, "prep", 0, "preparation time in minutes")
	fs.IntVar(&f.cookTime, "cook", 0, "cooking time in minutes")
	fs.StringVar(&f.difficulty, "difficulty", "", "新手友好级, 家庭厨师级 or 专业挑战级")
	fs.StringSliceVar(&f.cuisine, "cuisine", nil, "cuisine tags")
	fs.StringSliceVar(&f.typ, "type", nil, "dish type tags")
	fs.StringSliceVar(&f.ingTags, "ingredient-tag", nil, "main ingredient tags")
	fs.StringSliceVar(&f.custom, "custom", nil, "custom tags")
	fs.StringVar(&f.image, "image", "", "cover image URL")
	fs.StringVar(&f.video, "video", "", "video URL")
}

// apply copies every flag the user set onto r
func (f *recipeFlags) apply(fs *pflag.FlagSet, r *domain.Recipe) error {
	if f.file != "" {
		data, err := os.ReadFile(f.file)
		if err != nil {
			return fmt.Errorf("read recipe file: %w", err)
		}
		id, created := r.ID, r.CreatedAt
		if err := json.Unmarshal(data, r); err != nil {
			return fmt.Errorf("parse recipe file: %w", err)
		}
		r.ID, r.CreatedAt = id, created
	}

	if fs.Changed("name") {
		r.Name = f.name
	}
	if fs.Changed("desc") {
		r.Description = f.description
	}
	if fs.Changed("ingredient") {
		r.Ingredients = nil
		for _, line := range f.ingredients {
			r.Ingredients = append(r.Ingredients, domain.ParseIngredientLine(line))
		}
	}
	if fs.Changed("step") {
		r.Steps = nil
		for _, text := range f.steps {
			r.Steps = append(r.Steps, domain.Step{Text: text})
		}
	}
	if fs.Changed("prep") {
		r.PrepTime = f.prepTime
	}
	if fs.Changed("cook") {
		r.CookTime = f.cookTime
	}
	if fs.Changed("difficulty") {
		r.Difficulty = domain.Difficulty(f.difficulty)
	}
	if fs.Changed("cuisine") {
		r.Tags.Cuisine = f.cuisine
	}
	if fs.Changed("type") {
		r.Tags.Type = f.typ
	}
	if fs.Changed("ingredient-tag") {
		r.Tags.Ingredient = f.ingTags
	}
	if fs.Changed("custom") {
		r.Tags.Custom = f.custom
	}
	if fs.Changed("image") {
		r.CoverImage = f.image
	}
	if fs.Changed("video") {
		r.VideoURL = f.video
	}
	return nil
}

func addCmd() *cobra.Command {
	var f recipeFlags

	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Add a new recipe",
		Example: `  cookbook add --name 番茄炒蛋 -i "番茄 2个" -i "鸡蛋 3个" -s 番茄切块 -s 炒蛋 --cook 5
  cookbook add -f recipe.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, s, err := getService(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			var r domain.Recipe
			if err := f.apply(cmd.Flags(), &r); err != nil {
				return err
			}
			r.ID = ""

			saved, err := saveRecipe(cmd.Context(), svc, r, logger)
			if err != nil {
				return err
			}

			fmt.Printf("Added recipe: %s  %s\n", shortID(saved.ID), saved.Name)
			if len(saved.IngredientTags) > 0 {
				fmt.Printf("Ingredients: %s\n", strings.Join(saved.IngredientTags, ", "))
			}
			return nil
		},
	}

	f.register(cmd.Flags())
	return cmd
}

func editCmd() *cobra.Command {
	var f recipeFlags

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Change fields of an existing recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, s, err := getService(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			r, err := resolveRecipe(svc.Snapshot(), args[0])
			if err != nil {
				return err
			}
			if err := f.apply(cmd.Flags(), &r); err != nil {
				return err
			}

			saved, err := saveRecipe(cmd.Context(), svc, r, logger)
			if err != nil {
				return err
			}
			fmt.Printf("Updated recipe: %s  %s\n", shortID(saved.ID), saved.Name)
			return nil
		},
	}

	f.register(cmd.Flags())
	return cmd
}

func listCmd() *cobra.Command {
	var (
		filters    catalog.Filters
		difficulty []string
		favorites  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recipes, optionally filtered",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, s, err := getService(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			for _, d := range difficulty {
				filters.Difficulty = append(filters.Difficulty, domain.Difficulty(d))
			}

			snap := svc.Snapshot()
			recipes := snap.Filter(filters)
			if favorites {
				recipes = catalog.FilterRecipes(snap.FavoriteRecipes(), filters)
			}

			if len(recipes) == 0 {
				if filters.IsZero() && !favorites {
					fmt.Println("No recipes yet. Use 'cookbook add' to create one.")
				} else {
					fmt.Println("No recipe matches.")
				}
				return nil
			}

			for _, r := range recipes {
				printRow(snap, r)
			}
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&filters.Search, "query", "q", "", "search name, description and tags")
	fs.StringSliceVar(&filters.Cuisine, "cuisine", nil, "cuisine tags (any of)")
	fs.StringSliceVar(&filters.Type, "type", nil, "dish type tags (any of)")
	fs.StringSliceVar(&filters.Ingredient, "ingredient", nil, "main ingredient tags (any of)")
	fs.StringSliceVar(&filters.CustomTags, "custom", nil, "custom tags (any of)")
	fs.StringSliceVar(&difficulty, "difficulty", nil, "difficulty levels (any of)")
	fs.BoolVar(&favorites, "favorites", false, "only favorites")
	return cmd
}

func printRow(snap *catalog.Snapshot, r domain.Recipe) {
	star := " "
	if snap.IsFavorite(r.ID) {
		star = "★"
	}
	fmt.Printf("%s %s  %-16s %4d min  %s\n", star, shortID(r.ID), truncate(r.Name, 16), r.TotalTime(), r.Difficulty)
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show recipe details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, s, err := getService(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			r, err := resolveRecipe(svc.Snapshot(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("ID:         %s\n", r.ID)
			fmt.Printf("Name:       %s\n", r.Name)
			if svc.Snapshot().IsFavorite(r.ID) {
				fmt.Printf("Favorite:   yes\n")
			}
			if r.Description != "" {
				fmt.Printf("About:      %s\n", r.Description)
			}
			fmt.Printf("Time:       %d min prep + %d min cook\n", r.PrepTime, r.CookTime)
			fmt.Printf("Difficulty: %s\n", r.Difficulty)
			fmt.Printf("Created:    %s\n", r.CreatedAt.Local().Format("2006-01-02 15:04"))

			printTags("Cuisine", r.Tags.Cuisine)
			printTags("Type", r.Tags.Type)
			printTags("Main", r.Tags.Ingredient)
			printTags("Custom", r.Tags.Custom)

			if len(r.Ingredients) > 0 {
				fmt.Printf("\nIngredients:\n")
				for _, ing := range r.Ingredients {
					fmt.Printf("  - %s %s\n", ing.Name, ing.Amount)
				}
			}
			fmt.Printf("\nSteps:\n")
			for i, st := range r.Steps {
				fmt.Printf("  %d. %s\n", i+1, st.Text)
			}
			if r.VideoURL != "" {
				fmt.Printf("\nVideo: %s\n", r.VideoURL)
			}
			return nil
		},
	}
}

func printTags(label string, tags []string) {
	if len(tags) == 0 {
		return
	}
	fmt.Printf("%-11s %s\n", label+":", strings.Join(tags, ", "))
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, s, err := getService(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			r, err := resolveRecipe(svc.Snapshot(), args[0])
			if err != nil {
				return err
			}
			if err := svc.DeleteRecipe(cmd.Context(), r.ID); err != nil {
				return err
			}
			fmt.Printf("Deleted recipe: %s  %s\n", shortID(r.ID), r.Name)
			return nil
		},
	}
}

func favCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fav [id]",
		Short: "Toggle a recipe's favorite mark",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, s, err := getService(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			r, err := resolveRecipe(svc.Snapshot(), args[0])
			if err != nil {
				return err
			}
			on, err := svc.ToggleFavorite(cmd.Context(), r.ID)
			if err != nil {
				return err
			}
			if on {
				fmt.Printf("★ %s added to favorites\n", r.Name)
			} else {
				fmt.Printf("%s removed from favorites\n", r.Name)
			}
			return nil
		},
	}
}

func favsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "favs",
		Short: "List favorite recipes",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, s, err := getService(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			snap := svc.Snapshot()
			favs := snap.FavoriteRecipes()
			if len(favs) == 0 {
				fmt.Println("No favorites yet. Use 'cookbook fav <id>' to mark one.")
				return nil
			}
			for _, r := range favs {
				printRow(snap, r)
			}
			return nil
		},
	}
}

func tagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List tags in use on saved recipes",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, s, err := getService(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			used := svc.Snapshot().UsedTags()
			printTags("Cuisine", used.Cuisine)
			printTags("Type", used.Type)
			printTags("Main", used.Ingredient)
			var levels []string
			for _, d := range used.Difficulty {
				levels = append(levels, string(d))
			}
			printTags("Difficulty", levels)
			return nil
		},
	}
}

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Show the category vocabulary and editor presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, s, err := getService(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			cats := svc.Snapshot().Categories
			fmt.Println("Categories")
			printTags("  Cuisine", cats.Cuisine)
			printTags("  Type", cats.Type)
			printTags("  Main", cats.Ingredient)

			presets := domain.Presets()
			fmt.Println("\nPresets")
			printTags("  Cuisine", presets.Cuisine)
			printTags("  Type", presets.Type)
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show catalog totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, s, err := getService(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			st := svc.Stats()
			fmt.Printf("Recipes:          %d\n", st.Total)
			fmt.Printf("Favorites:        %d\n", st.Favorites)
			fmt.Printf("Added in 7 days:  %d\n", st.RecentWeek)
			return nil
		},
	}
}
