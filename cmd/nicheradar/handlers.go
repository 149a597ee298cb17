package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"github.com/juggajay/nicheradar/internal/config"
	"github.com/juggajay/nicheradar/internal/scheduler"
	"github.com/juggajay/nicheradar/internal/store"
	"github.com/juggajay/nicheradar/pkg/alert"
	"github.com/juggajay/nicheradar/pkg/extract"
	"github.com/juggajay/nicheradar/pkg/opportunity"
	"github.com/juggajay/nicheradar/pkg/scoring"
	"github.com/juggajay/nicheradar/pkg/server"
	"github.com/juggajay/nicheradar/pkg/source"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

// app bundles the wired components every command needs.
type app struct {
	cfg     *config.Config
	db      store.Store
	engine  *opportunity.Engine
	sources []source.Source
	log     zerolog.Logger
}

func buildApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	log := newLogger()

	var extractor extract.Extractor = extract.Heuristic{}
	if cfg.Extract.LLM.Enabled && cfg.Extract.LLM.APIKey != "" {
		extractor = extract.NewLLM(
			cfg.Extract.LLM.Provider,
			cfg.Extract.LLM.Model,
			cfg.Extract.LLM.APIKey,
			cfg.Extract.LLM.BaseURL,
		)
		log.Info().Str("provider", cfg.Extract.LLM.Provider).Str("model", cfg.Extract.LLM.Model).Msg("llm extractor enabled")
	}

	var youtube *source.YouTube
	if cfg.Sources.YouTube.Enabled && cfg.Sources.YouTube.APIKey != "" {
		youtube = source.NewYouTube(cfg.Sources.YouTube.APIKey)
	}

	scorer := scoring.New(cfg.Scoring)

	// A nil interface must stay nil; wrapping a nil *YouTube in the
	// interface would defeat the engine's disabled check.
	var checker opportunity.SupplyChecker
	if youtube != nil {
		checker = youtube
	}

	engine := opportunity.NewEngine(db, scorer, extractor, checker, log)

	return &app{
		cfg:     cfg,
		db:      db,
		engine:  engine,
		sources: buildSources(cfg),
		log:     log,
	}, nil
}

func (a *app) close() {
	a.db.Close()
}

func buildSources(cfg *config.Config) []source.Source {
	var sources []source.Source

	if cfg.Sources.Reddit.Enabled {
		sources = append(sources, source.NewReddit(
			cfg.Sources.Reddit.ClientID,
			cfg.Sources.Reddit.ClientSecret,
			cfg.Sources.Reddit.Subreddits,
		))
	}
	if cfg.Sources.HackerNews.Enabled {
		sources = append(sources, source.NewHackerNews(cfg.Sources.HackerNews.Limit, cfg.Sources.HackerNews.MinScore))
	}
	if cfg.Sources.RSS.Enabled {
		sources = append(sources, source.NewRSS(cfg.Sources.RSS.Feeds))
	}

	return sources
}

func buildAlertManager(cfg *config.Config) *alert.Manager {
	var notifiers []alert.Notifier

	if cfg.Alerts.Slack.Enabled && cfg.Alerts.Slack.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewSlack(cfg.Alerts.Slack.WebhookURL))
	}
	if cfg.Alerts.Discord.Enabled && cfg.Alerts.Discord.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewDiscord(cfg.Alerts.Discord.WebhookURL))
	}
	if cfg.Alerts.Webhook.Enabled && cfg.Alerts.Webhook.URL != "" {
		notifiers = append(notifiers, alert.NewWebhook(cfg.Alerts.Webhook.URL, cfg.Alerts.Webhook.Secret))
	}

	return alert.NewManager(notifiers)
}

func runScan(filterSources []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	sources := a.sources
	if len(filterSources) > 0 {
		wanted := make(map[string]bool)
		for _, s := range filterSources {
			wanted[strings.ToLower(strings.TrimSpace(s))] = true
		}
		sources = nil
		for _, s := range a.sources {
			name := string(s.Name())
			if wanted[name] || wanted[shortName(s.Name())] {
				sources = append(sources, s)
			}
		}
		if len(sources) == 0 {
			return fmt.Errorf("no matching sources for: %s", strings.Join(filterSources, ", "))
		}
	}

	ctx := context.Background()
	var posts []source.Post
	for _, src := range sources {
		collected, err := src.Collect(ctx)
		if err != nil {
			a.log.Warn().Err(err).Str("source", string(src.Name())).Msg("collection failed")
			continue
		}
		a.log.Info().Str("source", string(src.Name())).Int("posts", len(collected)).Msg("collected")
		posts = append(posts, collected...)
	}

	result, err := a.engine.Scan(ctx, posts)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	fmt.Printf("scan #%d: %d posts, %d topics updated, %d new opportunities, %d rejected\n",
		result.ScanID, result.PostsCollected, result.TopicsUpdated,
		result.OpportunitiesCreated, result.Rejected)
	return nil
}

func runOpportunities(jsonOutput bool, minGap float64, phase string, watched bool, limit int) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	opps, err := a.db.ListOpportunities(context.Background(), store.OpportunityListOpts{
		MinGap:      minGap,
		Phase:       phase,
		WatchedOnly: watched,
		Limit:       limit,
	})
	if err != nil {
		return fmt.Errorf("list opportunities: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(opps)
	}

	if len(opps) == 0 {
		fmt.Println("no opportunities found (try scanning first: nicheradar scan)")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GAP\tMOMENTUM\tSUPPLY\tPHASE\tCONF\tTREND\tKEYWORD")
	for _, o := range opps {
		trend := "-"
		if o.VelocityTrend != nil {
			trend = *o.VelocityTrend
		}
		keyword := o.Keyword
		if o.Watched {
			keyword = "* " + keyword
		}
		fmt.Fprintf(w, "%.1f\t%.0f\t%.0f\t%s\t%s\t%s\t%s\n",
			o.GapScore, o.Momentum, o.Supply, o.Phase, o.Confidence, trend, keyword)
	}
	return w.Flush()
}

func runCheck(keyword string, jsonOutput bool) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	result, err := a.engine.CheckSupply(context.Background(), keyword)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Printf("keyword: %s\n", result.Keyword)
	fmt.Printf("supply: %.1f (%d results, %d videos in 7d, %d in 30d)\n",
		result.Supply, result.TotalResults, result.Videos7d, result.Videos30d)
	if result.Tracked {
		fmt.Printf("gap: %.1f (%s)\n", result.GapScore, result.Phase)
	} else {
		fmt.Println("not tracked; scan first to score the gap")
	}
	return nil
}

func runDiscover(seed string, jsonOutput bool) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	discoveries, err := a.engine.Discover(context.Background(), seed)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(discoveries)
	}

	if len(discoveries) == 0 {
		fmt.Println("no expansions found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GAP\tPHASE\tCONF\tTRACKED\tKEYWORD")
	for _, d := range discoveries {
		fmt.Fprintf(w, "%.1f\t%s\t%s\t%v\t%s\n",
			d.GapScore, d.Phase, d.Confidence, d.Tracked, d.Keyword)
	}
	return w.Flush()
}

func runRecalculate() error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	updated, err := a.engine.Recalculate(context.Background())
	if err != nil {
		return fmt.Errorf("recalculate: %w", err)
	}

	fmt.Printf("recalculated %d opportunities\n", updated)
	return nil
}

func runServe(port int) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	if port == 0 {
		port = a.cfg.Server.Port
	}

	srv := server.New(a.db, a.engine, a.sources, port, a.log)
	return srv.ListenAndServe()
}

func runDaemon(port int) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	if port == 0 {
		port = a.cfg.Server.Port
	}

	alertMgr := buildAlertManager(a.cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(a.db, a.sources, a.engine, alertMgr,
		a.cfg.Schedule.ParseScanInterval(),
		a.cfg.Schedule.ParseRecalculateInterval(),
		a.cfg.Schedule.AlertMinGap,
		a.log,
	)

	// Scheduler in background, HTTP server in the foreground.
	go func() {
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			a.log.Error().Err(err).Msg("scheduler error")
		}
	}()

	go func() {
		<-ctx.Done()
		a.log.Info().Msg("shutting down")
	}()

	srv := server.New(a.db, a.engine, a.sources, port, a.log)
	return srv.ListenAndServe()
}

func shortName(p source.Platform) string {
	switch p {
	case source.PlatformHackerNews:
		return "hn"
	case source.PlatformReddit:
		return "reddit"
	case source.PlatformRSS:
		return "rss"
	}
	return string(p)
}
