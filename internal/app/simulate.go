package app

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"tcrb-alerts/internal/fetcher"
	"tcrb-alerts/internal/service"
	"tcrb-alerts/internal/statecache"
)

// SimulateAlert 以给定星等走完整的比较/去重/告警流程，用于端到端验证邮件链路。
// The simulated run uses a throwaway in-memory state so the real dedup cache
// is never touched.
func (a *App) SimulateAlert(ctx context.Context, magnitude decimal.Decimal) error {
	if !a.Config.Alerting.Enabled {
		return errors.New("alerting 未启用")
	}

	notifier, err := a.newNotifier()
	if err != nil {
		return err
	}
	if notifier == nil {
		return errors.New("未配置任何告警通道")
	}

	now := time.Now().UTC()
	static := &staticFetcher{obs: fetcher.Observation{
		TargetID:  a.Config.AAVSO.Target,
		JD:        decimal.NewFromFloat(fetcher.JDFromTime(now)).Round(5),
		Timestamp: now,
		Magnitude: magnitude,
		Band:      a.Config.AAVSO.Band,
		Source:    "simulated",
	}}

	svc := service.New(a.Config, nil, static, &memoryStateStore{}, notifier, a.Logger)
	return svc.ProcessTick(ctx, now)
}

type staticFetcher struct {
	obs fetcher.Observation
}

func (s *staticFetcher) FetchLatest(ctx context.Context) (fetcher.Observation, error) {
	return s.obs, nil
}

type memoryStateStore struct {
	rec *statecache.Record
}

func (m *memoryStateStore) Load() statecache.Record {
	if m.rec == nil {
		return statecache.Record{Targets: map[string]statecache.TargetState{}}
	}
	return *m.rec
}

func (m *memoryStateStore) Save(rec statecache.Record) error {
	m.rec = &rec
	return nil
}

var _ fetcher.PhotometryFetcher = (*staticFetcher)(nil)
var _ service.AlertStateStore = (*memoryStateStore)(nil)
