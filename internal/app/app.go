package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"tcrb-alerts/internal/alerting"
	"tcrb-alerts/internal/config"
	"tcrb-alerts/internal/fetcher"
	"tcrb-alerts/internal/scheduler"
	"tcrb-alerts/internal/service"
	"tcrb-alerts/internal/statecache"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newFetcher() fetcher.PhotometryFetcher {
	aavso := a.Config.AAVSO

	lcg := fetcher.NewLCG(fetcher.LCGOptions{
		BaseURL:     aavso.LCGBaseURL,
		Target:      aavso.Target,
		Band:        aavso.Band,
		ObsType:     aavso.ObsType,
		RollingDays: aavso.RollingDays,
		Timeout:     aavso.RequestTimeout,
		UserAgent:   aavso.UserAgent,
	}, a.Logger)

	if !aavso.EnableVSX {
		return lcg
	}

	vsx := fetcher.NewVSX(fetcher.VSXOptions{
		BaseURL:     aavso.VSXBaseURL,
		Target:      aavso.Target,
		Band:        aavso.Band,
		RollingDays: aavso.RollingDays,
		Timeout:     aavso.RequestTimeout,
		UserAgent:   aavso.UserAgent,
	}, a.Logger)

	return fetcher.NewFallback(lcg, vsx, a.Logger)
}

func (a *App) newNotifier() (alerting.Notifier, error) {
	if !a.Config.Alerting.Enabled {
		return nil, nil
	}

	email := a.Config.Email
	return alerting.NewEmailNotifier(alerting.EmailOptions{
		Host:       email.Host,
		Port:       email.Port,
		Username:   email.Username,
		Password:   email.Password,
		From:       email.From,
		Recipients: email.Recipients,
		UseTLS:     email.UseTLS,
		Timeout:    email.Timeout,
	}, a.Logger)
}

func (a *App) newStateCache() *statecache.Cache {
	return statecache.New(a.Config.Cache.Path, a.Logger)
}

func (a *App) newService(sched *scheduler.Scheduler) (*service.Service, error) {
	notifier, err := a.newNotifier()
	if err != nil {
		return nil, err
	}
	if notifier == nil {
		a.Logger.Warn().Msg("alerting disabled; observations will be logged only")
	}

	return service.New(a.Config, sched, a.newFetcher(), a.newStateCache(), notifier, a.Logger), nil
}

// Run executes the long-running monitoring service.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Scheduler.Interval,
		AlignToStart: a.Config.Scheduler.AlignToBucket,
		StartupDelay: a.Config.Scheduler.StartupDelay,
	}, a.Logger)

	svc, err := a.newService(sched)
	if err != nil {
		return err
	}

	a.Logger.Info().
		Float64("threshold", a.Config.Alerting.ThresholdMagnitude).
		Dur("interval", a.Config.Scheduler.Interval).
		Str("target", a.Config.AAVSO.Target).
		Msg("starting dimming monitor")

	err = svc.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("monitor terminated with error")
		return err
	}

	a.Logger.Info().Msg("dimming monitor stopped")
	return nil
}
