package handler

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimecore/server/internal/transport"
	"github.com/crimecore/server/internal/world"
)

const assaultChatID int64 = -100300

func groupCommand(p *world.Player, name string, args ...string) *transport.Command {
	return &transport.Command{
		Name: name,
		Args: args,
		From: transport.User{ID: p.ID, Username: p.Username},
		Chat: transport.Chat{ID: assaultChatID, Type: "supergroup"},
	}
}

func TestAssaultRequiresGroupChat(t *testing.T) {
	env := newTestEnv(t)
	p := env.player(1, "alpha")

	env.d.cmdAssault(env.command(p, "assault"))
	assert.Contains(t, env.fake.LastText(), "групповом чате")
	assert.Empty(t, env.d.Sessions.Assaults)
}

func TestAssaultGates(t *testing.T) {
	env := newTestEnv(t)
	lone := env.player(1, "alpha")

	env.d.cmdAssault(groupCommand(lone, "assault"))
	assert.Contains(t, env.fake.LastText(), "вступи в клан")

	clan, members := makeClan(t, env, "Дозор", 10, 2)
	env.fake.MemberCount = 3
	env.d.cmdAssault(groupCommand(members[0], "assault"))
	assert.Contains(t, env.fake.LastText(), "хотя бы из 4")
	assert.Empty(t, env.d.Sessions.Assaults)

	env.fake.MemberCount = 10
	env.d.cmdAssault(groupCommand(members[0], "assault"))
	key := AssaultKey{ChatID: assaultChatID, ClanID: clan.ID}
	st := env.d.Sessions.Assaults[key]
	require.NotNil(t, st)
	assert.Equal(t, assaultIdle, st.Status)
	assert.Contains(t, env.fake.LastText(), "разворачивает базу")

	env.d.cmdAssault(groupCommand(members[1], "assault"))
	assert.Contains(t, env.fake.LastText(), "уже под вашей базой")
	assert.Len(t, env.d.Sessions.Assaults, 1)
}

func TestUnassault(t *testing.T) {
	env := newTestEnv(t)
	clan, members := makeClan(t, env, "Дозор", 10, 2)

	env.d.cmdUnassault(groupCommand(members[0], "unassault"))
	assert.Contains(t, env.fake.LastText(), "нет базы")

	env.d.cmdAssault(groupCommand(members[0], "assault"))
	key := AssaultKey{ChatID: assaultChatID, ClanID: clan.ID}
	require.NotNil(t, env.d.Sessions.Assaults[key])

	env.d.cmdUnassault(groupCommand(members[0], "unassault"))
	assert.Empty(t, env.d.Sessions.Assaults)
	assert.Contains(t, env.fake.LastText(), "сворачивает базу")
}

func TestExpeditionOutcomeSplit(t *testing.T) {
	env := newTestEnv(t)
	clan, members := makeClan(t, env, "Дозор", 10, 2)
	env.d.cmdAssault(groupCommand(members[0], "assault"))
	st := env.d.Sessions.Assaults[AssaultKey{ChatID: assaultChatID, ClanID: clan.ID}]
	require.NotNil(t, st)

	for _, tc := range []struct {
		roll   float64
		points int
	}{
		{0.1, 300},
		{0.5, 100},
		{0.9, 30},
	} {
		before := clan.Points
		env.rng.floats = []float64{tc.roll}
		env.d.expeditionUnchallenged(st, clan)
		assert.Equal(t, before+tc.points, clan.Points, "roll %v", tc.roll)
		assert.Equal(t, assaultIdle, st.Status)
	}
}

func TestAssaultAttackStartsInterceptorDuel(t *testing.T) {
	env := newTestEnv(t)
	clan, members := makeClan(t, env, "Дозор", 10, 2)
	_, raiders := makeClan(t, env, "Рейдеры", 20, 2)
	outsider := raiders[0]

	env.d.cmdAssault(groupCommand(members[0], "assault"))
	st := env.d.Sessions.Assaults[AssaultKey{ChatID: assaultChatID, ClanID: clan.ID}]
	require.NotNil(t, st)

	env.rng.ints = []int{0} // scout pick
	env.d.startExpedition(st)
	require.Equal(t, assaultExpedition, st.Status)
	require.NotEmpty(t, st.ExpeditionID)
	scout := env.d.World.Players[st.ScoutID]
	require.NotNil(t, scout)

	arg := fmt.Sprintf("%d:%s:%s", assaultChatID, clan.ID, st.ExpeditionID)

	// Stale expedition id.
	stale := fmt.Sprintf("%d:%s:ghost", assaultChatID, clan.ID)
	env.d.cbAssaultAttack(env.callback(outsider, "assault_attack:"+stale), stale)
	answer, _ := env.lastCallbackAnswer()
	assert.Contains(t, answer, "уже ушёл")

	// Clanmates cannot intercept their own scout.
	env.d.cbAssaultAttack(env.callback(members[1], "assault_attack:"+arg), arg)
	answer, _ = env.lastCallbackAnswer()
	assert.Contains(t, answer, "другого клана")

	env.d.cbAssaultAttack(env.callback(outsider, "assault_attack:"+arg), arg)
	assert.Equal(t, assaultDuel, st.Status)
	require.NotNil(t, env.d.Sessions.Duels[outsider.ID])
	assert.Same(t, env.d.Sessions.Duels[outsider.ID], env.d.Sessions.Duels[scout.ID])
}

func TestAssaultDuelAwardsWinnerClan(t *testing.T) {
	env := newTestEnv(t)
	clan, members := makeClan(t, env, "Дозор", 10, 1)
	enemy, raiders := makeClan(t, env, "Рейдеры", 20, 1)
	outsider := raiders[0]

	env.d.cmdAssault(groupCommand(members[0], "assault"))
	st := env.d.Sessions.Assaults[AssaultKey{ChatID: assaultChatID, ClanID: clan.ID}]
	require.NotNil(t, st)

	env.rng.ints = []int{0}
	env.d.startExpedition(st)
	scout := env.d.World.Players[st.ScoutID]
	scout.HP = 5

	arg := fmt.Sprintf("%d:%s:%s", assaultChatID, clan.ID, st.ExpeditionID)
	env.d.cbAssaultAttack(env.callback(outsider, "assault_attack:"+arg), arg)
	duel := env.d.Sessions.Duels[outsider.ID]
	require.NotNil(t, duel)

	// The interceptor moves first and one base hit finishes the scout.
	env.rng.ints = []int{0}
	env.d.duelRound(duel)

	assert.Equal(t, assaultWinPoints, enemy.Points)
	assert.Zero(t, clan.Points)
	assert.Equal(t, assaultIdle, st.Status)

	var announced bool
	for _, m := range env.fake.Sent {
		if strings.Contains(m.Text, "забирает добычу") {
			announced = true
		}
	}
	assert.True(t, announced)
}
