package handler

import (
	"go.uber.org/zap"

	"github.com/crimecore/server/internal/sched"
)

// StartSweepers launches the periodic maintenance tasks: TTL sweeps for PvP
// requests and clan invites, and the autosave. Returns the tickers so the
// caller can stop them on shutdown.
func (d *Deps) StartSweepers() []*sched.Ticker {
	tickers := []*sched.Ticker{
		d.Timers.Every(pvpSweepEvery, func() {
			if n := d.World.SweepPvpRequests(d.Now()); n > 0 {
				d.Log.Debug("pvp requests expired", zap.Int("count", n))
			}
		}),
		d.Timers.Every(inviteSweepEvery, func() {
			if n := d.World.SweepInvites(d.Now()); n > 0 {
				d.Log.Debug("clan invites expired", zap.Int("count", n))
			}
		}),
	}
	if !d.Cfg.Bot.TestMode {
		tickers = append(tickers, d.Timers.Every(autosaveEvery, func() {
			d.save()
		}))
	}
	return tickers
}
