package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pbaille/cookbook/internal/domain"
	"github.com/pbaille/cookbook/internal/fetcher"
	"github.com/pbaille/cookbook/internal/tagger"
)

func importCmd() *cobra.Command {
	var suggest bool

	cmd := &cobra.Command{
		Use:   "import [url]",
		Short: "Import a recipe from a web page with schema.org markup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !fetcher.IsURL(args[0]) {
				return fmt.Errorf("not a URL: %s", args[0])
			}

			svc, s, err := getService(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			fmt.Print("Fetching... ")
			r, err := fetcher.FetchRecipe(cmd.Context(), args[0])
			if err != nil {
				fmt.Println("failed")
				return err
			}
			fmt.Println("done")

			if suggest {
				suggestInto(cmd, r)
			}

			saved, err := saveRecipe(cmd.Context(), svc, *r, logger)
			if err != nil {
				return err
			}
			fmt.Printf("Imported recipe: %s  %s\n", shortID(saved.ID), saved.Name)
			fmt.Printf("%d ingredients, %d steps\n", len(saved.Ingredients), len(saved.Steps))
			return nil
		},
	}

	cmd.Flags().BoolVar(&suggest, "suggest", false, "ask the LLM for tags before saving")
	return cmd
}

func suggestTagsCmd() *cobra.Command {
	var apply bool

	cmd := &cobra.Command{
		Use:   "suggest-tags [id]",
		Short: "Ask the LLM to propose cuisine, type and custom tags",
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

			tg, err := newTagger()
			if err != nil {
				return err
			}

			fmt.Print("Asking... ")
			sug, err := tg.Suggest(cmd.Context(), r, domain.Presets())
			if err != nil {
				fmt.Println("failed")
				return err
			}
			fmt.Println("done")
			printSuggestion(sug)

			if !apply {
				return nil
			}
			tagger.Apply(&r, sug)
			if _, err := saveRecipe(cmd.Context(), svc, r, logger); err != nil {
				return err
			}
			fmt.Printf("Tags saved on %s\n", r.Name)
			return nil
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "save the suggested tags on the recipe")
	return cmd
}

func newTagger() (*tagger.Tagger, error) {
	return tagger.New(cfg.Tagger.APIKey, tagger.WithModel(cfg.Tagger.Model))
}

// suggestInto merges LLM tags into r; failures are reported and skipped
func suggestInto(cmd *cobra.Command, r *domain.Recipe) {
	tg, err := newTagger()
	if err != nil {
		fmt.Printf("(tag suggestion skipped: %v)\n", err)
		return
	}

	fmt.Print("Suggesting tags... ")
	sug, err := tg.Suggest(cmd.Context(), *r, domain.Presets())
	if err != nil {
		fmt.Println("failed")
		logger.Warn("tag suggestion failed", zap.Error(err))
		return
	}
	fmt.Println("done")
	printSuggestion(sug)
	tagger.Apply(r, sug)
}

func printSuggestion(sug *tagger.Suggestion) {
	for _, group := range []struct {
		label string
		tags  []string
	}{
		{"cuisine", sug.Cuisine},
		{"type", sug.Type},
		{"custom", sug.Custom},
	} {
		if len(group.tags) > 0 {
			fmt.Printf("  + %s: %s\n", group.label, strings.Join(group.tags, ", "))
		}
	}
}
