package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"cinebox/internal/config"
	"cinebox/internal/extract"
	"cinebox/internal/history"
	"cinebox/internal/httputil"
	"cinebox/internal/media"
	"cinebox/internal/player"
	"cinebox/internal/provider"
	"cinebox/internal/stream"
	"cinebox/internal/subtitle"
	"cinebox/internal/ui"
)

var playCmd = &cobra.Command{
	Use:   "play [slug|url]",
	Short: "Play a catalog movie by slug, or a direct/embed URL",
	Args:  cobra.MaximumNArgs(1),
	RunE:  playRun,
}

// playRun is the default command: cinebox [slug|url]
func playRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client := httputil.NewClient()

	var (
		movie media.Movie
		err   error
	)
	if len(args) == 1 {
		movie, err = resolveMovie(ctx, client, args[0])
	} else {
		movie, err = pickMovie(ctx, client)
	}
	if err != nil {
		return err
	}

	return playMovie(ctx, client, movie)
}

// resolveMovie turns an argument into a movie: URLs are played as-is,
// anything else is a catalog slug.
func resolveMovie(ctx context.Context, client *http.Client, arg string) (media.Movie, error) {
	if httputil.IsURL(arg) {
		if err := httputil.ValidateMediaURL(arg); err != nil {
			return media.Movie{}, err
		}
		return media.Movie{ID: arg, Title: arg, EmbedURL: arg}, nil
	}

	if err := httputil.ValidateSlug(arg); err != nil {
		return media.Movie{}, err
	}
	p, err := catalog(client)
	if err != nil {
		return media.Movie{}, err
	}
	return provider.Lookup(ctx, p, arg)
}

// pickMovie shows the catalog in fzf. Without a catalog it asks for a URL.
func pickMovie(ctx context.Context, client *http.Client) (media.Movie, error) {
	p, err := catalog(client)
	if err != nil {
		logger.Debug("no catalog, prompting for URL", "error", err)
		url, err := ui.Input("URL")
		if err != nil {
			return media.Movie{}, err
		}
		return resolveMovie(ctx, client, url)
	}

	movies, err := p.Movies(ctx)
	if err != nil {
		return media.Movie{}, fmt.Errorf("loading catalog: %w", err)
	}
	return selectMovie("Catalog", movies)
}

func selectMovie(prompt string, movies []media.Movie) (media.Movie, error) {
	items := make([]string, len(movies))
	for i, m := range movies {
		items[i] = provider.FormatDisplayTitle(m)
	}
	idx, err := ui.Select(prompt, items)
	if err != nil {
		return media.Movie{}, err
	}
	return movies[idx], nil
}

func catalog(client *http.Client) (provider.Provider, error) {
	source, err := cfg.CatalogSource()
	if err != nil {
		return nil, err
	}
	return provider.NewSheet(client, source), nil
}

// playMovie resolves the movie's stream and runs the player until the user
// quits or mpv exits.
func playMovie(ctx context.Context, client *http.Client, movie media.Movie) error {
	return play(ctx, client, extract.New(client), movie)
}

func play(ctx context.Context, client *http.Client, ext extract.Extractor, movie media.Movie) error {
	logger.Debug("resolving stream", "movie", movie.ID, "embed", movie.EmbedURL)

	st, err := ext.Extract(ctx, movie.EmbedURL)
	if err != nil {
		return fmt.Errorf("resolving stream: %w", err)
	}
	logger.Debug("stream resolved", "url", st.URL, "subtitles", len(st.Subtitles))

	var subFile string
	if !flagNoSubs {
		if best := subtitle.BestMatch(st.Subtitles, cfg.SubsLanguage); best != nil {
			subFile = best.URL
		}
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"movie":     movie,
			"url":       st.URL,
			"kind":      media.DetectKind(st.URL).String(),
			"subtitle":  subFile,
			"subtitles": st.Subtitles,
		})
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("the player needs an interactive terminal (use --json to print the stream instead)")
	}

	store, initial, err := openHistory(movie)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	log, closeLog, err := fileLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	events := make(chan tea.Msg, 64)
	mpv, err := player.StartMPV(ctx, player.MPVOptions{
		Path:               cfg.MPVPath,
		Title:              movie.Title,
		SubFile:            subFile,
		TimeUpdateInterval: time.Duration(cfg.Controls.TimeUpdateMS) * time.Millisecond,
		Logger:             log,
	}, events)
	if err != nil {
		return err
	}
	defer mpv.Close()

	opts := player.Options{
		Source:         media.NewSource(st.URL),
		InitialPercent: initial,
		Title:          movie.Title,
		Element:        mpv,
		Engine:         stream.NewEngine(client, events, stream.Options{Quality: cfg.Quality, Logger: log}),
		Container:      mpv,
		Events:         events,
		Settings:       settingsFromConfig(cfg.Controls),
		Logger:         log.Named("player"),
	}
	if store != nil {
		opts.OnProgress = store.Recorder(movie, func(err error) {
			log.Warn("saving progress failed", "movie", movie.ID, "error", err)
		})
	}

	ctrl := player.New(opts)
	defer ctrl.Close()

	final, err := tea.NewProgram(ctrl, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx)).Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running player: %w", err)
	}

	if c, ok := final.(*player.Controller); ok {
		s := c.State()
		fmt.Fprintf(os.Stderr, "%s stopped at %s / %s (%.0f%%)\n",
			movie.Title, player.FormatTime(s.CurrentTime), player.FormatTime(s.Duration), s.Progress)
	}
	return nil
}

// openHistory opens the history store and returns the saved percent for
// movie. The store is nil when history is disabled.
func openHistory(movie media.Movie) (*history.Store, float64, error) {
	if !cfg.History {
		return nil, 0, nil
	}
	path, err := config.HistoryPath()
	if err != nil {
		return nil, 0, err
	}
	store, err := history.Open(path)
	if err != nil {
		return nil, 0, err
	}
	if flagRestart {
		return store, 0, nil
	}

	pct, err := store.Percent(movie.ID)
	if err != nil {
		logger.Warn("reading saved position failed", "movie", movie.ID, "error", err)
		return store, 0, nil
	}
	if pct > 0 {
		logger.Debug("resuming", "movie", movie.ID, "percent", pct)
	}
	return store, pct, nil
}

func settingsFromConfig(c config.Controls) player.Settings {
	return player.Settings{
		TapWindow:        time.Duration(c.TapWindowMS) * time.Millisecond,
		HideDelay:        time.Duration(c.HideDelayMS) * time.Millisecond,
		FeedbackDuration: time.Duration(c.FeedbackMS) * time.Millisecond,
		ZoneFraction:     c.ZoneFraction,
		ScrubDeadZone:    c.ScrubDeadZone,
		ScrubPxPerSecond: c.ScrubPxPerSecond,
		CellWidth:        float64(c.CellWidth),
		CellHeight:       float64(c.CellHeight),
		MouseScrub:       c.MouseScrub,
	}
}
