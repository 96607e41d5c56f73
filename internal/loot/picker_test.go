package loot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimecore/server/internal/data"
)

// scriptedRand replays queued values; exhausted queues fall back to the
// highest roll so unplanned draws never hit by accident.
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

func TestWeightedPick(t *testing.T) {
	pool := []data.Item{
		{Name: "A", Kind: data.KindWeapon, Chance: 20},
		{Name: "B", Kind: data.KindWeapon, Chance: 80},
	}

	tests := []struct {
		roll float64
		want string
	}{
		{0.1, "A"},
		{0.199, "A"},
		{0.2, "B"},
		{0.25, "B"},
		{0.99, "B"},
	}
	for _, tt := range tests {
		p := NewPicker(&scriptedRand{floats: []float64{tt.roll}})
		got := p.WeightedPick(pool)
		require.NotNil(t, got, "roll %v", tt.roll)
		assert.Equal(t, tt.want, got.Name, "roll %v", tt.roll)
	}
}

func TestWeightedPickReturnsCopy(t *testing.T) {
	pool := []data.Item{{Name: "A", Kind: data.KindWeapon, Chance: 50}}
	p := NewPicker(&scriptedRand{floats: []float64{0.1}})
	got := p.WeightedPick(pool)
	require.NotNil(t, got)
	assert.Zero(t, got.Chance, "inventory copies must not carry draw weights")
	got.Name = "mutated"
	assert.Equal(t, "A", pool[0].Name)
}

func TestWeightedPickZeroWeightPool(t *testing.T) {
	p := NewPicker(&scriptedRand{})
	assert.Nil(t, p.WeightedPick(nil))
	assert.Nil(t, p.WeightedPick([]data.Item{
		{Name: "A", Chance: 0},
		{Name: "B", Chance: -1},
	}))
}

func TestWeightedPickSkipsZeroWeightEntries(t *testing.T) {
	pool := []data.Item{
		{Name: "dead", Chance: 0},
		{Name: "live", Chance: 10},
	}
	p := NewPicker(&scriptedRand{floats: []float64{0.0}})
	got := p.WeightedPick(pool)
	require.NotNil(t, got)
	assert.Equal(t, "live", got.Name)
}

func TestUniformPick(t *testing.T) {
	pool := []data.Item{{Name: "A"}, {Name: "B"}, {Name: "C"}}
	p := NewPicker(&scriptedRand{ints: []int{2}})
	got := p.UniformPick(pool)
	require.NotNil(t, got)
	assert.Equal(t, "C", got.Name)
	assert.Nil(t, NewPicker(&scriptedRand{}).UniformPick(nil))
}

func TestPickRankedSign(t *testing.T) {
	pool := []data.Item{{Name: "s1"}, {Name: "s2"}, {Name: "s3"}, {Name: "s4"}}

	p := NewPicker(&scriptedRand{})
	assert.Nil(t, p.PickRankedSign(pool, 0))
	assert.Nil(t, p.PickRankedSign(pool, 1))
	assert.Nil(t, p.PickRankedSign(nil, 5))

	// Stage 2 centers on index 1: window s1..s3.
	p = NewPicker(&scriptedRand{ints: []int{0}})
	got := p.PickRankedSign(pool, 2)
	require.NotNil(t, got)
	assert.Equal(t, "s1", got.Name)

	// Far past the end the window clamps to the tail.
	p = NewPicker(&scriptedRand{ints: []int{1}})
	got = p.PickRankedSign(pool, 10)
	require.NotNil(t, got)
	assert.Equal(t, "s4", got.Name)
}

func TestPickRankedItemWindow(t *testing.T) {
	pool := []data.Item{{Name: "i0"}, {Name: "i1"}, {Name: "i2"}, {Name: "i3"}, {Name: "i4"}}

	// Stage 0 draws from i0..i1.
	p := NewPicker(&scriptedRand{ints: []int{1}})
	got := p.PickRankedItem(pool, 0)
	require.NotNil(t, got)
	assert.Equal(t, "i1", got.Name)

	// Stage 2 draws from i1..i3.
	p = NewPicker(&scriptedRand{ints: []int{0}})
	got = p.PickRankedItem(pool, 2)
	require.NotNil(t, got)
	assert.Equal(t, "i1", got.Name)

	// Beyond the pool the window slides onto the four rarest entries.
	p = NewPicker(&scriptedRand{ints: []int{0}})
	got = p.PickRankedItem(pool, 99)
	require.NotNil(t, got)
	assert.Equal(t, "i1", got.Name)
}

func TestChance(t *testing.T) {
	p := NewPicker(&scriptedRand{floats: []float64{0.049, 0.05}})
	assert.True(t, p.Chance(0.05))
	assert.False(t, p.Chance(0.05))
}

func TestIntBetween(t *testing.T) {
	p := NewPicker(&scriptedRand{ints: []int{0, 80}})
	assert.Equal(t, 50, p.IntBetween(50, 130))
	assert.Equal(t, 130, p.IntBetween(50, 130))
	assert.Equal(t, 7, p.IntBetween(7, 7))
	assert.Equal(t, 7, p.IntBetween(7, 3))
}
