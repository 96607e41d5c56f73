package handler

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crimecore/server/internal/config"
	"github.com/crimecore/server/internal/data"
	"github.com/crimecore/server/internal/loot"
	"github.com/crimecore/server/internal/persist"
	"github.com/crimecore/server/internal/sched"
	"github.com/crimecore/server/internal/scripting"
	"github.com/crimecore/server/internal/transport"
	"github.com/crimecore/server/internal/world"
)

// scriptedRand replays queued rolls; an exhausted queue returns the highest
// value so unplanned chance rolls always miss.
type scriptedRand struct {
	floats []float64
	ints   []int
}

func (r *scriptedRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.999999
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *scriptedRand) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	if v >= n {
		v = n - 1
	}
	return v
}

const testItemsYAML = `
items:
  - {name: "Кухонный нож", kind: weapon, dmg: 8, chance: 30, case_eligible: true, case_types: [infection, basic]}
  - {name: "Обрез", kind: weapon, dmg: 25, chance: 10}
  - {name: "Куртка", kind: armor, hp: 20, chance: 25}
  - {name: "Каска", kind: helmet, block: 10, chance: 25}
  - {name: "Когти", kind: mutation, crit: 0.1, chance: 15}
  - {name: "Шокер", kind: extra, effect: stun2, chance: 10}
  - {name: "Знак радиации", kind: sign, chance: 3,
     sign: {prevent_lethal: radiation, extra_turn: true}}
  - {name: "Финальный знак", kind: sign, chance: 1,
     sign: {prevent_lethal: final, full_heal: true}}
`

func testCatalog(t *testing.T) *data.Catalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "items.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testItemsYAML), 0o644))
	c, err := data.LoadCatalog(path, "")
	require.NoError(t, err)
	return c
}

// testEnv wires a Deps over the in-memory store and the fake messenger.
// env.now is the pinned clock; tests move it directly.
type testEnv struct {
	d    *Deps
	fake *transport.Fake
	rng  *scriptedRand
	now  time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zap.NewNop()
	loop := sched.NewLoop(log)
	saver := persist.NewSaver(persist.NewMemoryStore(), log)
	t.Cleanup(saver.Close)

	env := &testEnv{
		fake: transport.NewFake(),
		rng:  &scriptedRand{},
		now:  time.Unix(1_700_000_000, 0),
	}
	env.d = &Deps{
		Cfg: &config.Config{
			Bot: config.BotConfig{TestMode: true, AdminIDs: []int64{900}},
		},
		Log:         log,
		World:       world.NewState(),
		Catalog:     testCatalog(t),
		Loot:        loot.NewPicker(env.rng),
		Rng:         env.rng,
		Saver:       saver,
		Msg:         env.fake,
		Loop:        loop,
		Timers:      sched.NewTimers(loop),
		Scripts:     scripting.Defaults(),
		Now:         func() time.Time { return env.now },
		BotUsername: "crimecore_bot",
		Sessions:    NewSessions(),
	}
	return env
}

func (e *testEnv) player(id int64, username string) *world.Player {
	return e.d.World.EnsurePlayer(id, username, "")
}

func (e *testEnv) callback(from *world.Player, data string) *transport.Callback {
	return &transport.Callback{
		ID:        "cb",
		Data:      data,
		From:      transport.User{ID: from.ID, Username: from.Username},
		Chat:      transport.Chat{ID: from.ID, Type: "private"},
		MessageID: 1,
	}
}

func (e *testEnv) command(from *world.Player, name string, args ...string) *transport.Command {
	return &transport.Command{
		Name: name,
		Args: args,
		From: transport.User{ID: from.ID, Username: from.Username},
		Chat: transport.Chat{ID: from.ID, Type: "private"},
	}
}

// lastCallbackAnswer returns the text of the most recent AnswerCallback call.
func (e *testEnv) lastCallbackAnswer() (string, bool) {
	for i := len(e.fake.Sent) - 1; i >= 0; i-- {
		if e.fake.Sent[i].Op == "callback" {
			return e.fake.Sent[i].Text, true
		}
	}
	return "", false
}
