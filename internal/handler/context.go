package handler

import (
	"time"

	"go.uber.org/zap"

	"github.com/crimecore/server/internal/config"
	"github.com/crimecore/server/internal/data"
	"github.com/crimecore/server/internal/imaging"
	"github.com/crimecore/server/internal/loot"
	"github.com/crimecore/server/internal/persist"
	"github.com/crimecore/server/internal/sched"
	"github.com/crimecore/server/internal/scripting"
	"github.com/crimecore/server/internal/transport"
	"github.com/crimecore/server/internal/world"
)

// Restarter runs process-control admin commands. Nil outside production.
type Restarter interface {
	Reboot() error
	Pull() error
}

// Deps holds shared dependencies injected into all handlers. Everything here
// is touched only from the game loop.
type Deps struct {
	Cfg      *config.Config
	Log      *zap.Logger
	World    *world.State
	Catalog  *data.Catalog
	Loot     *loot.Picker
	Rng      loot.Rand
	Saver    *persist.Saver
	Msg      transport.Messenger
	Loop     *sched.Loop
	Timers   *sched.Timers
	Scripts  *scripting.Engine
	Composer imaging.Composer
	Restart  Restarter

	// Now is the clock; tests pin it.
	Now func() time.Time

	// BotUsername builds referral links.
	BotUsername string

	Sessions *Sessions
}

// Sessions is the registry of every in-memory (ephemeral) session. A process
// restart intentionally discards all of it.
type Sessions struct {
	Duels        map[int64]*Duel // participant player id → duel
	Raids        map[string]*RaidSession
	Assaults     map[AssaultKey]*AssaultState
	BattleQueues map[string][]int64 // clan id → queued member ids
	PendingClash *PendingClash
	Broadcasts   map[int64]*BroadcastState
}

func NewSessions() *Sessions {
	return &Sessions{
		Duels:        make(map[int64]*Duel),
		Raids:        make(map[string]*RaidSession),
		Assaults:     make(map[AssaultKey]*AssaultState),
		BattleQueues: make(map[string][]int64),
		Broadcasts:   make(map[int64]*BroadcastState),
	}
}

// save snapshots the world into the single-writer chain. Fire and forget:
// durability failures are logged by the saver, never surfaced to players.
func (d *Deps) save() {
	d.Saver.Save(d.World.Clone())
}

// sendText sends and logs transport failures.
func (d *Deps) sendText(chatID int64, text string, opts *transport.SendOpts) int {
	id, err := d.Msg.SendText(chatID, text, opts)
	if err != nil {
		d.Log.Warn("send failed", zap.Int64("chat", chatID), zap.Error(err))
		return 0
	}
	return id
}

// editOrSend edits a prior message, falling back to a fresh send when the
// edit fails for any reason other than the idempotent "not modified" echo.
func (d *Deps) editOrSend(chatID int64, messageID int, text string, opts *transport.SendOpts) int {
	if messageID != 0 {
		err := d.Msg.EditText(chatID, messageID, text, opts)
		if err == nil || err == transport.ErrNotModified {
			return messageID
		}
		d.Log.Debug("edit failed, sending new message", zap.Error(err))
	}
	return d.sendText(chatID, text, opts)
}

// answer acks a callback; empty text is a silent ack.
func (d *Deps) answer(cb *transport.Callback, text string, alert bool) {
	if err := d.Msg.AnswerCallback(cb.ID, text, alert); err != nil {
		d.Log.Debug("answer callback failed", zap.Error(err))
	}
}

// ensureFrom upserts the player for an inbound event sender.
func (d *Deps) ensureFrom(u transport.User) *world.Player {
	return d.World.EnsurePlayer(u.ID, u.Username, u.Name)
}
