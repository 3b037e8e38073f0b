package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestActor() *Actor {
	return NewActor(SidePlayer, &Card{Name: "Knight", HP: 20, Energy: 4, Morale: 6}, 3, 3)
}

func TestAdjust_Clamps(t *testing.T) {
	a := newTestActor()
	assert.Equal(t, 0, a.AdjustHP(10))
	assert.Equal(t, -20, a.AdjustHP(-50))
	assert.Equal(t, 0, a.HP)
	assert.Equal(t, -4, a.AdjustEnergy(-9))
	assert.Equal(t, 4, a.AdjustEnergy(9))
	assert.Equal(t, 0, a.AdjustMorale(1))
	assert.True(t, a.IsDefeated())
}

func TestEquip_TwoHandedCountsOnce(t *testing.T) {
	a := newTestActor()
	dagger := &Card{Name: "Dagger", Type: CardItem, Atk: 2}
	a.Hand = []*Card{dagger}
	require.True(t, a.Equip(dagger, SlotHandL))
	a.Hand = nil

	great := &Card{Name: "Greatsword", Type: CardItem, Atk: 6, TwoHanded: true, HPBonus: 2}
	require.True(t, a.Equip(great, SlotHandR))
	assert.Same(t, great, a.Equipped[SlotHandL])
	assert.Same(t, great, a.Equipped[SlotHandR])
	assert.Equal(t, []*Card{dagger}, a.Hand, "displaced card returns to hand")
	assert.Equal(t, 6, a.EquippedAtk())
	assert.Len(t, a.DistinctEquipped(), 1)
	assert.Equal(t, 22, a.MaxHP)
	assert.Equal(t, 22, a.HP)

	_, _, ok := a.DualWield()
	assert.False(t, ok)

	require.True(t, a.Unequip(great))
	assert.Empty(t, a.Equipped)
	assert.Equal(t, 20, a.MaxHP)
}

func TestEquip_Rejects(t *testing.T) {
	a := newTestActor()
	assert.False(t, a.Equip(&Card{Name: "Slash", Type: CardAction}, SlotHandR))
	assert.False(t, a.Equip(&Card{Name: "Pike", Type: CardItem, TwoHanded: true}, SlotHead))
}

func TestDualWield(t *testing.T) {
	a := newTestActor()
	l := &Card{Name: "Dagger", Type: CardItem, Atk: 2}
	r := &Card{Name: "Sword", Type: CardItem, Atk: 3}
	a.Equip(l, SlotHandL)
	a.Equip(r, SlotHandR)
	main, off, ok := a.DualWield()
	require.True(t, ok)
	assert.Same(t, r, main)
	assert.Same(t, l, off)
}

func TestPlaceStack(t *testing.T) {
	a := newTestActor()
	a.Hand = []*Card{
		{Name: "Attack", Type: CardAction, EnergyCost: 1},
		{Name: "Power Strike", Type: CardSkill, EnergyCost: 2},
		{Name: "Fireball", Type: CardMagic, EnergyCost: 3},
		{Name: "Focus", Type: CardSkill},
	}

	s, err := a.PlaceStack(0, "attack", []string{"Power Strike"})
	require.NoError(t, err)
	assert.Equal(t, "Attack", s.Core.Name)
	assert.Len(t, s.Modifiers, 1)
	assert.Equal(t, 1, a.APUsed, "modifiers cost no AP")
	assert.Equal(t, 1, a.Energy)
	assert.Len(t, a.Hand, 2)

	_, err = a.PlaceStack(0, "Fireball", nil)
	assert.ErrorIs(t, err, ErrPositionTaken)
	_, err = a.PlaceStack(1, "Fireball", nil)
	assert.ErrorIs(t, err, ErrNotEnoughEnergy)
	_, err = a.PlaceStack(1, "Focus", nil)
	assert.ErrorIs(t, err, ErrCannotBeCore)
	_, err = a.PlaceStack(1, "Fireball", []string{"Fireball"})
	assert.ErrorIs(t, err, ErrDuplicateHandRef)
	_, err = a.PlaceStack(1, "Missing", nil)
	assert.ErrorIs(t, err, ErrCardNotInHand)
	_, err = a.PlaceStack(7, "Fireball", nil)
	assert.ErrorIs(t, err, ErrInvalidPosition)
	assert.Len(t, a.Hand, 2, "failed placements change nothing")
	assert.Equal(t, 1, a.APUsed)

	a.ForfeitAP()
	_, err = a.PlaceStack(2, "Focus", nil)
	assert.ErrorIs(t, err, ErrNoActionPoints)
	assert.True(t, a.PlacementDone())
}

func TestClearBar(t *testing.T) {
	a := newTestActor()
	a.Hand = []*Card{{Name: "Attack", Type: CardAction}, {Name: "Guard", Type: CardAction, Parry: 2}}
	_, err := a.PlaceStack(2, "Guard", nil)
	require.NoError(t, err)
	_, err = a.PlaceStack(0, "Attack", nil)
	require.NoError(t, err)

	a.ClearBar()
	assert.Empty(t, a.Bar)
	require.Len(t, a.Discard, 2)
	assert.Equal(t, "Attack", a.Discard[0].Name)
	assert.Equal(t, []int{0, 1, 2}, a.AvailablePositions())
}

func TestActionStack_IsAttack(t *testing.T) {
	tests := []struct {
		name string
		core *Card
		want bool
	}{
		{name: "attack named", core: &Card{Name: "Quick Attack", Type: CardAction, Effect: "Deal 1"}, want: true},
		{name: "atk value", core: &Card{Name: "Lunge", Type: CardAction, Atk: 2}, want: true},
		{name: "bare action", core: &Card{Name: "Swing", Type: CardAction}, want: true},
		{name: "parry", core: &Card{Name: "Guard", Type: CardAction, Parry: 3}, want: false},
		{name: "effect action", core: &Card{Name: "Rally", Type: CardAction, Effect: "Inspire"}, want: false},
		{name: "magic", core: &Card{Name: "Bolt", Type: CardMagic, Atk: 4}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &ActionStack{Core: tt.core}
			assert.Equal(t, tt.want, s.IsAttack())
		})
	}
	var nilStack *ActionStack
	assert.False(t, nilStack.IsAttack())
	assert.Equal(t, 0, nilStack.ParryBonus())
}
