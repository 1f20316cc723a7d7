package app

import (
	"context"
	"time"
)

// CheckOnce runs a single fetch-compare-alert cycle and exits. Useful when the
// polling cadence is driven by an external scheduler instead of `run`.
func (a *App) CheckOnce(ctx context.Context) error {
	svc, err := a.newService(nil)
	if err != nil {
		return err
	}
	return svc.ProcessTick(ctx, time.Now().UTC())
}
