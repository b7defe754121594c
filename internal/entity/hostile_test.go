package entity

import (
	"testing"

	"github.com/annel0/bullethell/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostileManager_SpawnDespawn(t *testing.T) {
	hm := NewHostileManager(true)

	a := hm.Spawn(vec.New(1, 1), 100, 10)
	b := hm.Spawn(vec.New(2, 2), 100, 10)
	assert.True(t, a.Valid())
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, hm.Count())

	require.True(t, hm.Despawn(a))
	assert.False(t, hm.Despawn(a), "Повторный despawn ничего не делает")
	assert.False(t, hm.Alive(a))
	assert.Equal(t, 1, hm.Count())

	_, ok := hm.Get(a)
	assert.False(t, ok)

	hostile, ok := hm.Get(b)
	require.True(t, ok)
	assert.Equal(t, vec.New(2, 2), hostile.Pos)
	assert.Equal(t, b, hostile.Handle)
}

func TestHostileManager_SlotReuseBumpsGeneration(t *testing.T) {
	hm := NewHostileManager(true)
	old := hm.Spawn(vec.New(0, 0), 100, 0)
	hm.Despawn(old)

	reborn := hm.Spawn(vec.New(5, 5), 100, 0)
	assert.Equal(t, old.Index, reborn.Index, "Освобождённый слот переиспользуется")
	assert.Equal(t, old.Gen+1, reborn.Gen)

	assert.False(t, hm.Alive(old), "Старый handle не указывает на нового жильца")
	assert.False(t, hm.ApplyDamage(old, 10))

	hostile, _ := hm.Get(reborn)
	assert.Equal(t, 100.0, hostile.Health)
}

func TestHostileManager_LooseApplyDamage(t *testing.T) {
	hm := NewHostileManager(false)
	old := hm.Spawn(vec.New(0, 0), 100, 0)
	hm.Despawn(old)
	reborn := hm.Spawn(vec.New(0, 0), 100, 0)

	assert.True(t, hm.ApplyDamage(old, 10), "Без проверки поколения урон идёт по номеру слота")
	hostile, _ := hm.Get(reborn)
	assert.Equal(t, 90.0, hostile.Health)

	hm.Despawn(reborn)
	assert.False(t, hm.ApplyDamage(old, 10), "Пустой слот урона не получает")
	assert.False(t, hm.ApplyDamage(Handle{Index: 99, Gen: 1}, 10))
}

func TestHostileManager_InvalidHandles(t *testing.T) {
	hm := NewHostileManager(true)
	hm.Spawn(vec.New(0, 0), 100, 0)

	assert.False(t, Handle{}.Valid())
	assert.False(t, hm.Alive(Handle{}), "Нулевой handle всегда невалиден")
	assert.False(t, hm.Alive(Handle{Index: 42, Gen: 1}))
	assert.False(t, hm.Despawn(Handle{Index: 42, Gen: 1}))
	assert.Equal(t, "3:7", Handle{Index: 3, Gen: 7}.String())
}

func TestHostileManager_UpdateSeeksTarget(t *testing.T) {
	hm := NewHostileManager(true)
	h := hm.Spawn(vec.New(0, 0), 100, 10)
	near := hm.Spawn(vec.New(99, 0), 100, 10)

	hm.Update(0.5, vec.New(100, 0))

	hostile, _ := hm.Get(h)
	assert.InDelta(t, 5.0, hostile.Pos.X, 1e-9)
	assert.InDelta(t, 0.0, hostile.Pos.Y, 1e-9)

	hostile, _ = hm.Get(near)
	assert.Equal(t, vec.New(100, 0), hostile.Pos, "Не проскакивает цель")
}

func TestHostileManager_Reap(t *testing.T) {
	hm := NewHostileManager(true)
	alive := hm.Spawn(vec.New(0, 0), 100, 0)
	dying := hm.Spawn(vec.New(1, 0), 100, 0)
	overkill := hm.Spawn(vec.New(2, 0), 100, 0)

	hm.ApplyDamage(dying, 100)
	hm.ApplyDamage(overkill, 250)
	hm.ApplyDamage(alive, 99)

	var dead []Handle
	n := hm.Reap(func(h Hostile) { dead = append(dead, h.Handle) })

	assert.Equal(t, 2, n)
	assert.ElementsMatch(t, []Handle{dying, overkill}, dead)
	assert.True(t, hm.Alive(alive))
	assert.Equal(t, 1, hm.Count())
	assert.Equal(t, 0, hm.Reap(nil))
}

func TestHostileManager_EachAndClear(t *testing.T) {
	hm := NewHostileManager(true)
	for i := 0; i < 5; i++ {
		hm.Spawn(vec.New(float64(i), 0), 100, 0)
	}
	seen := 0
	hm.EachHostile(func(h Handle, pos vec.Vec2) {
		assert.True(t, hm.Alive(h))
		seen++
	})
	assert.Equal(t, 5, seen)

	hm.Clear()
	assert.Equal(t, 0, hm.Count())
	hm.EachHostile(func(Handle, vec.Vec2) { t.Fatal("после Clear врагов нет") })
}
