package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cinebox/internal/httputil"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse the My Movies sheet",
	Args:  cobra.NoArgs,
	RunE:  catalogRun,
}

func catalogRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client := httputil.NewClient()

	p, err := catalog(client)
	if err != nil {
		return err
	}
	movies, err := p.Movies(ctx)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	logger.Debug("catalog loaded", "movies", len(movies))

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(movies)
	}

	movie, err := selectMovie("Catalog", movies)
	if err != nil {
		return err
	}
	return playMovie(ctx, client, movie)
}
