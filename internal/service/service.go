package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"tcrb-alerts/internal/alerting"
	"tcrb-alerts/internal/config"
	"tcrb-alerts/internal/fetcher"
	"tcrb-alerts/internal/scheduler"
	"tcrb-alerts/internal/statecache"
)

// AlertStateStore persists the dedup record between ticks.
type AlertStateStore interface {
	Load() statecache.Record
	Save(rec statecache.Record) error
}

// Service orchestrates fetching, threshold comparison, dedup, and alerting.
type Service struct {
	scheduler  *scheduler.Scheduler
	photometry fetcher.PhotometryFetcher
	states     AlertStateStore
	notifier   alerting.Notifier
	logger     zerolog.Logger

	threshold decimal.Decimal
	cooldown  time.Duration
	alertsOn  bool
	now       func() time.Time
}

// New constructs the monitoring service.
func New(cfg *config.Config, sched *scheduler.Scheduler, photometry fetcher.PhotometryFetcher, states AlertStateStore, notifier alerting.Notifier, logger zerolog.Logger) *Service {
	return &Service{
		scheduler:  sched,
		photometry: photometry,
		states:     states,
		notifier:   notifier,
		logger:     logger.With().Str("component", "service").Logger(),
		threshold:  decimal.NewFromFloat(cfg.Alerting.ThresholdMagnitude),
		cooldown:   cfg.Alerting.Cooldown,
		alertsOn:   cfg.Alerting.Enabled,
		now:        time.Now,
	}
}

// Run begins the polling loop.
func (s *Service) Run(ctx context.Context) error {
	if s.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return s.scheduler.Run(ctx, s.ProcessTick)
}

// ProcessTick 执行单个轮询周期：取数 → 比较 → 去重 → 告警。
func (s *Service) ProcessTick(ctx context.Context, tick time.Time) error {
	obs, err := s.photometry.FetchLatest(ctx)
	if err != nil {
		if errors.Is(err, fetcher.ErrNoObservations) {
			// The source answered; the window is simply empty. Next tick retries.
			s.logger.Warn().Time("tick", tick).Msg("no photometry returned this cycle")
			return nil
		}
		return fmt.Errorf("fetch latest observation: %w", err)
	}

	s.logger.Info().Str("target", obs.TargetID).
		Str("magnitude", obs.Magnitude.String()).
		Str("jd", obs.JD.String()).
		Str("source", obs.Source).
		Msg("latest observation")

	// Lower magnitude means brighter; the alert fires on dimming past the
	// threshold, i.e. magnitude >= threshold.
	if obs.Magnitude.LessThan(s.threshold) {
		s.logger.Debug().Str("threshold", s.threshold.String()).Msg("target brighter than threshold; no alert")
		return nil
	}

	if !s.alertsOn || s.notifier == nil {
		s.logger.Debug().Msg("alerting disabled; dimming observed but not notified")
		return nil
	}

	rec := s.states.Load()
	state := rec.Target(obs.TargetID)
	if !s.shouldAlert(state, obs) {
		s.logger.Info().Str("jd", obs.JD.String()).Msg("already alerted for this observation; suppressed")
		return nil
	}

	note := alerting.Notification{
		TargetID:  obs.TargetID,
		Magnitude: obs.Magnitude,
		Threshold: s.threshold,
		JD:        obs.JD,
		Timestamp: obs.Timestamp,
		Band:      obs.Band,
		Source:    obs.Source,
	}
	if err := s.notifier.Notify(ctx, note); err != nil {
		// Cache deliberately untouched so the next tick retries the send.
		return fmt.Errorf("dispatch alert: %w", err)
	}

	sentAt := s.now().UTC()
	jd := obs.JD
	rec.SetTarget(obs.TargetID, statecache.TargetState{LastAlertJD: &jd, LastAlertAt: &sentAt})
	if err := s.states.Save(rec); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist alert state")
	}

	return nil
}

// shouldAlert applies the dedup policy: a novel JD always alerts; an already
// alerted JD re-alerts only after the cooldown elapses.
func (s *Service) shouldAlert(state statecache.TargetState, obs fetcher.Observation) bool {
	if state.LastAlertJD == nil || !state.LastAlertJD.Equal(obs.JD) {
		return true
	}
	if s.cooldown > 0 && state.LastAlertAt != nil {
		return s.now().UTC().Sub(state.LastAlertAt.UTC()) >= s.cooldown
	}
	return false
}
