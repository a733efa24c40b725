package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"studywai-backend/internal/models"
)

func newInitCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the flashcard, history and review collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s store ready\n", a.Config.StoreDriver)
			return nil
		},
	}
}

func newCardsCmd(opts *options) *cobra.Command {
	cards := &cobra.Command{
		Use:   "cards",
		Short: "List, add and delete flashcards",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List flashcards in creation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			list := a.FlashcardService.List(cmd.Context())
			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), list)
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No flashcards yet, run 'studyctl cards add <word>' first")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tWORD\tLANGUAGE\tTRANSLATIONS\tCREATED")
			for _, c := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Word, c.Language, truncateCell(c.Translations, 40), c.CreatedAt)
			}
			return tw.Flush()
		},
	}

	var language string
	add := &cobra.Command{
		Use:   "add <word>",
		Short: "Create a flashcard, filling translations and examples with AI when configured",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			card, degraded, err := a.FlashcardService.Create(cmd.Context(), models.CreateFlashcardRequest{
				Word:     args[0],
				Language: language,
			})
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{"flashcard": card, "degraded": degraded})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Flashcard %s created: %s (%s)\n", card.ID, card.Word, card.Language)
			if degraded {
				fmt.Fprintln(cmd.OutOrStdout(), "  some fields fell back to defaults")
			}
			return nil
		},
	}
	add.Flags().StringVarP(&language, "language", "l", "", "target language (default english)")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a flashcard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.FlashcardService.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Flashcard %s deleted\n", args[0])
			return nil
		},
	}

	cards.AddCommand(list, add, del)
	return cards
}

func newHistoryCmd(opts *options) *cobra.Command {
	var (
		feature string
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent AI tool calls, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be a positive integer")
			}
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			entries := a.History.Recent(cmd.Context(), feature, limit)
			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No history yet")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tFEATURE\tCREATED\tQUERY\tRESPONSE")
			for _, e := range entries {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", e.ID, e.Feature, e.CreatedAt,
					truncateCell(e.Query, 30), truncateCell(e.Response, 40))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&feature, "feature", "f", "", "only show one feature (grammar, translate, summarize, chat)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of entries")
	return cmd
}

func newStatsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show study progress across all flashcards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			stats := a.StudyService.Stats(cmd.Context())
			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), stats)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cards:    %d (%d studied)\n", stats.TotalCards, stats.StudiedCards)
			fmt.Fprintf(out, "Reviews:  %d (%d correct)\n", stats.TotalReviews, stats.CorrectReviews)
			fmt.Fprintf(out, "Accuracy: %.1f%%\n", stats.Accuracy)
			return nil
		},
	}
}
