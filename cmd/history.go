package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cinebox/internal/config"
	"cinebox/internal/history"
	"cinebox/internal/httputil"
	"cinebox/internal/media"
	"cinebox/internal/ui"
)

var flagRemove bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Resume from watch history",
	Args:  cobra.NoArgs,
	RunE:  historyRun,
}

func init() {
	historyCmd.Flags().BoolVar(&flagRemove, "remove", false, "Remove the selected entry instead of playing it")
}

func historyRun(cmd *cobra.Command, args []string) error {
	path, err := config.HistoryPath()
	if err != nil {
		return err
	}
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Load()
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No history entries found.")
		return nil
	}

	idx, err := ui.Select("History", history.FormatForDisplay(entries))
	if err != nil {
		return err
	}
	selected := entries[idx]

	if flagRemove {
		ok, err := ui.Confirm(fmt.Sprintf("Remove %q from history?", displayTitle(selected)))
		if err != nil || !ok {
			return err
		}
		return store.Remove(selected.MovieID)
	}

	logger.Debug("resuming from history", "movie", selected.MovieID, "percent", selected.Percent)
	movie := media.Movie{
		ID:       selected.MovieID,
		Title:    displayTitle(selected),
		EmbedURL: selected.SourceURL,
	}
	if movie.EmbedURL == "" {
		movie.EmbedURL = selected.MovieID
	}
	return playMovie(cmd.Context(), httputil.NewClient(), movie)
}

func displayTitle(e media.HistoryEntry) string {
	if e.Title != "" {
		return e.Title
	}
	return e.MovieID
}
