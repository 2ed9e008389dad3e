package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pbaille/cookbook/internal/catalog"
	"github.com/pbaille/cookbook/internal/domain"
)

func drawCmd() *cobra.Command {
	var (
		ingredients string
		maxTime     int
		difficulty  string
		dishType    string
	)

	cmd := &cobra.Command{
		Use:     "draw",
		Short:   "Let the wheel pick a recipe for you",
		Example: `  cookbook draw --ingredients 番茄,鸡蛋 --max-time 30`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dc := catalog.DrawConstraints{
				Ingredients: catalog.SplitList(ingredients),
				MaxTime:     maxTime,
				Difficulty:  domain.Difficulty(difficulty),
				Type:        dishType,
			}
			if err := dc.Validate(); err != nil {
				return err
			}

			svc, s, err := getService(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			res, ok := svc.Draw(dc)
			if !ok {
				fmt.Println("No recipe fits. Try loosening the constraints.")
				return nil
			}

			names := make([]string, len(res.Candidates))
			for i, r := range res.Candidates {
				names[i] = r.Name
			}
			fmt.Printf("On the wheel: %s\n", strings.Join(names, " · "))
			fmt.Printf("🎯 %s  (%s, %d min)\n", res.Recipe.Name, shortID(res.Recipe.ID), res.Recipe.TotalTime())
			return nil
		},
	}

	cmd.Flags().StringVar(&ingredients, "ingredients", "", "ingredients at hand, comma separated")
	cmd.Flags().IntVar(&maxTime, "max-time", 0, "maximum total time in minutes")
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "required difficulty")
	cmd.Flags().StringVar(&dishType, "type", "", "required dish type tag")
	return cmd
}

func menuCmd() *cobra.Command {
	var weekKey string

	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Plan the weekly menu",
	}
	cmd.PersistentFlags().StringVarP(&weekKey, "week", "w", "", `ISO week such as 2024-W1 (default: this week)`)

	week := func(svc *catalog.Service) (catalog.Week, error) {
		if weekKey == "" {
			return svc.CurrentWeek(), nil
		}
		return catalog.ParseWeekKey(weekKey)
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the menu of a week",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, s, err := getService(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			w, err := week(svc)
			if err != nil {
				return err
			}
			menu, err := svc.WeeklyMenu(cmd.Context(), w)
			if err != nil {
				return err
			}
			printMenu(svc.Snapshot(), w, menu)
			return nil
		},
	}

	assign := &cobra.Command{
		Use:     "assign [day] [recipe-id]",
		Short:   "Put a recipe on a day",
		Example: `  cookbook menu assign 周三 3fa2c1d0`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, s, err := getService(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			w, err := week(svc)
			if err != nil {
				return err
			}
			slot, err := parseSlot(args[0])
			if err != nil {
				return err
			}
			r, err := resolveRecipe(svc.Snapshot(), args[1])
			if err != nil {
				return err
			}

			menu, err := svc.AssignMenuDay(cmd.Context(), w, slot, r.ID)
			if err != nil {
				return err
			}
			printMenu(svc.Snapshot(), w, menu)
			return nil
		},
	}

	clearDay := &cobra.Command{
		Use:   "clear [day]",
		Short: "Remove the recipe of a day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, s, err := getService(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			w, err := week(svc)
			if err != nil {
				return err
			}
			slot, err := parseSlot(args[0])
			if err != nil {
				return err
			}

			menu, err := svc.ClearMenuDay(cmd.Context(), w, slot)
			if err != nil {
				return err
			}
			printMenu(svc.Snapshot(), w, menu)
			return nil
		},
	}

	cmd.AddCommand(show, assign, clearDay)
	return cmd
}

// parseSlot accepts day0..day6, a label such as 周三, or 1..7 for Monday..Sunday
func parseSlot(s string) (string, error) {
	s = strings.TrimSpace(s)
	if domain.ValidDaySlot(s) {
		return s, nil
	}
	for i, label := range catalog.DayLabels {
		if s == label {
			return domain.DaySlot(i), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= domain.DaysPerWeek {
		return domain.DaySlot(n - 1), nil
	}
	for i := 0; i < domain.DaysPerWeek; i++ {
		wd := time.Weekday((i + 1) % 7)
		if strings.EqualFold(s, wd.String()) || strings.EqualFold(s, wd.String()[:3]) {
			return domain.DaySlot(i), nil
		}
	}
	return "", fmt.Errorf("unknown day %q (use day0-day6, 周一-周日, 1-7 or a weekday name)", s)
}

func printMenu(snap *catalog.Snapshot, w catalog.Week, menu *domain.WeeklyMenu) {
	fmt.Printf("Week %s (%s ~ %s)\n", w.Key(), w.Monday().Format("01-02"), w.Day(6).Format("01-02"))
	for _, d := range snap.MenuView(w, *menu) {
		dish := "-"
		switch {
		case d.Recipe != nil:
			dish = d.Recipe.Name
		case d.RecipeID != "":
			dish = "(deleted recipe " + shortID(d.RecipeID) + ")"
		}
		fmt.Printf("  %s %s  %s\n", d.Label, d.Date[5:], dish)
	}
}
