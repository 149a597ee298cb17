package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/juggajay/nicheradar/internal/store"
	"github.com/juggajay/nicheradar/pkg/alert"
	"github.com/juggajay/nicheradar/pkg/opportunity"
	"github.com/juggajay/nicheradar/pkg/source"
)

// Scheduler runs periodic scans and opportunity recalculation.
type Scheduler struct {
	store       store.Store
	sources     []source.Source
	engine      *opportunity.Engine
	alertMgr    *alert.Manager
	scanInt     time.Duration
	recalcInt   time.Duration
	alertMinGap float64
	log         zerolog.Logger
}

// New creates a new scheduler.
func New(
	s store.Store,
	sources []source.Source,
	engine *opportunity.Engine,
	alertMgr *alert.Manager,
	scanInt, recalcInt time.Duration,
	alertMinGap float64,
	log zerolog.Logger,
) *Scheduler {
	if scanInt == 0 {
		scanInt = 30 * time.Minute
	}
	if recalcInt == 0 {
		recalcInt = 6 * time.Hour
	}
	if alertMinGap == 0 {
		alertMinGap = 60
	}
	return &Scheduler{
		store:       s,
		sources:     sources,
		engine:      engine,
		alertMgr:    alertMgr,
		scanInt:     scanInt,
		recalcInt:   recalcInt,
		alertMinGap: alertMinGap,
		log:         log,
	}
}

// Run starts the scheduler loop. Blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	scanTicker := time.NewTicker(s.scanInt)
	recalcTicker := time.NewTicker(s.recalcInt)
	defer scanTicker.Stop()
	defer recalcTicker.Stop()

	// Run immediately on start.
	s.log.Info().Msg("scheduler: initial scan")
	s.scanAndAlert(ctx)

	s.log.Info().
		Dur("scan_interval", s.scanInt).
		Dur("recalculate_interval", s.recalcInt).
		Msg("scheduler running")

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("scheduler stopped")
			return ctx.Err()
		case <-scanTicker.C:
			s.scanAndAlert(ctx)
		case <-recalcTicker.C:
			s.recalculate(ctx)
		}
	}
}

// scanAndAlert collects from every source, runs the scoring pipeline and
// dispatches alerts for newly high-gap opportunities.
func (s *Scheduler) scanAndAlert(ctx context.Context) {
	var posts []source.Post
	for _, src := range s.sources {
		collected, err := src.Collect(ctx)
		if err != nil {
			s.log.Warn().Err(err).Str("source", string(src.Name())).Msg("collection failed")
			continue
		}
		s.log.Debug().Str("source", string(src.Name())).Int("posts", len(collected)).Msg("collected")
		posts = append(posts, collected...)
	}

	if len(posts) == 0 {
		s.log.Warn().Msg("no posts collected, skipping scan")
		return
	}

	result, err := s.engine.Scan(ctx, posts)
	if err != nil {
		s.log.Error().Err(err).Msg("scan failed")
		return
	}
	s.log.Info().
		Int64("scan_id", result.ScanID).
		Int("topics", result.TopicsUpdated).
		Int("created", result.OpportunitiesCreated).
		Msg("scheduled scan finished")

	s.dispatchAlerts(ctx)
}

func (s *Scheduler) recalculate(ctx context.Context) {
	updated, err := s.engine.Recalculate(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("recalculation failed")
		return
	}
	s.log.Info().Int("updated", updated).Msg("recalculation finished")

	s.dispatchAlerts(ctx)
}

// dispatchAlerts notifies once per opportunity that crosses the gap
// threshold, then marks it so restarts and rescores stay quiet.
func (s *Scheduler) dispatchAlerts(ctx context.Context) {
	if s.alertMgr == nil || !s.alertMgr.HasNotifiers() {
		return
	}

	opps, err := s.store.ListOpportunities(ctx, store.OpportunityListOpts{
		MinGap:    s.alertMinGap,
		Unalerted: true,
		Limit:     50,
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("alert candidate listing failed")
		return
	}

	for _, o := range opps {
		n := &alert.Notification{
			Keyword:    o.Keyword,
			Category:   o.Category,
			GapScore:   o.GapScore,
			Momentum:   o.Momentum,
			Supply:     o.Supply,
			Phase:      o.Phase,
			Confidence: o.Confidence,
			Platforms:  o.CrossPlatformCount,
		}
		if o.VelocityTrend != nil {
			n.VelocityTrend = *o.VelocityTrend
		}

		if err := s.alertMgr.Broadcast(ctx, n); err != nil {
			s.log.Warn().Err(err).Str("keyword", o.Keyword).Msg("alert delivery failed")
			continue
		}

		if err := s.store.MarkAlerted(ctx, o.ID); err != nil {
			s.log.Warn().Err(err).Int64("id", o.ID).Msg("mark alerted failed")
			continue
		}
		s.log.Info().Str("keyword", o.Keyword).Float64("gap", o.GapScore).Msg("alerted")
	}
}
