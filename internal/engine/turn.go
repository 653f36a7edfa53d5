package engine

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/Garsondee/battlescape/internal/battle"
)

var cardinals = [4]battle.Direction{battle.DirNorth, battle.DirEast, battle.DirSouth, battle.DirWest}

// PrepareNewTurn advances fire and smoke by one turn and returns how many
// tiles are still burning.
func (e *TileEngine) PrepareNewTurn() int {
	var onFire, onSmoke []*battle.Tile
	e.m.Each(func(t *battle.Tile) {
		if t.Fire() > 0 {
			onFire = append(onFire, t)
		}
		if t.Smoke() > 0 {
			onSmoke = append(onSmoke, t)
		}
	})

	burning := 0
	for _, t := range onFire {
		if u := t.Unit(); u != nil && !u.IsOut() {
			u.Damage(e.b.Generate(1, 12), battle.DamageIncendiary)
			if e.b.Generate(0, 2) == 1 {
				u.SetFire(e.b.Generate(1, 5))
			}
		}
		if t.BurnDown() {
			e.logEvent(nil, "terrain", "burnt_out", t.Position().String(), 0)
			continue
		}
		burning++
		e.spreadFire(t)
		if above := e.m.Above(t); above != nil && above.Part(battle.PartFloor) == nil && above.Smoke() == 0 {
			above.AddSmoke(t.Smoke() / 2)
		}
	}

	// all smoke drifts the same way this turn
	spread := battle.Pos(e.b.Generate(-1, 1), e.b.Generate(-1, 1), 0)
	for _, t := range onSmoke {
		p := t.Position()
		smoke := t.Smoke()
		if u := t.Unit(); u != nil && e.b.SmokeStun && !u.IsOut() {
			u.Stun(smoke/5 + 1)
		}
		next := e.m.At(p.Add(spread))
		if next != nil && next != t && next.Smoke() == 0 && e.HorizontalBlockage(t, next, battle.DamageSmoke) == 0 {
			next.AddSmoke(smoke / 2)
		}
		far := e.m.At(p.Add(spread).Add(spread))
		if next != nil && far != nil && far != next && far.Smoke() == 0 && e.HorizontalBlockage(next, far, battle.DamageSmoke) == 0 {
			far.AddSmoke(smoke / 4)
		}
		if up := e.m.Above(t); up != nil && up.Smoke() == 0 && e.VerticalBlockage(t, up, battle.DamageSmoke) == 0 {
			up.AddSmoke(smoke / 2)
		}
		t.DiluteSmoke()
	}

	e.burnUnits()
	e.removeCasualties()
	if len(onFire) > 0 {
		e.CalculateTerrainLighting()
	}
	e.log.Debug("new turn terrain", zap.Int("burning", burning), zap.Int("smoke", len(onSmoke)))
	return burning
}

// spreadFire tries to ignite the four neighbours a fire can reach.
func (e *TileEngine) spreadFire(t *battle.Tile) {
	for _, d := range cardinals {
		n := e.m.At(t.Position().Add(d.Vector()))
		if n == nil || n.Fire() > 0 || e.HorizontalBlockage(t, n, battle.DamageIncendiary) != 0 {
			continue
		}
		flam := n.Flammability()
		if flam >= 255 {
			continue
		}
		base := math.Abs(e.b.BoxMuller(0, 126))
		if float64(flam) < base && e.b.Generate(0, flam) < 2 && n.Ignite() {
			e.logEvent(nil, "terrain", "ignite", fmt.Sprintf("%s from %s", n.Position(), t.Position()), 0)
		}
	}
}

// burnUnits applies one turn of burning to units that are on fire.
func (e *TileEngine) burnUnits() {
	for _, u := range e.b.Units {
		if u.FireTurns > 0 && !u.IsOut() {
			u.Damage(e.b.Generate(1, 5)+u.Armor, battle.DamageIncendiary)
		}
	}
}

// CloseUFODoors shuts every sliding door nobody is standing in.
func (e *TileEngine) CloseUFODoors() int {
	closed := 0
	e.m.Each(func(t *battle.Tile) {
		if t.Unit() == nil {
			closed += t.CloseUFODoor()
		}
	})
	return closed
}

// Fall drops a unit that lost its footing until something holds it up.
// Flying units stay put.
func (e *TileEngine) Fall(u *battle.Unit) bool {
	if u.Movement == battle.MoveFly || !u.Placed() {
		return false
	}
	fell := false
	for {
		p := u.Position()
		t := e.m.At(p)
		if p.Z == 0 || t == nil || !t.HasNoFloor(e.m.Below(t)) {
			break
		}
		if err := e.m.PlaceUnit(u, p.Add(battle.Pos(0, 0, -1))); err != nil {
			break
		}
		fell = true
	}
	if fell {
		e.logEvent(u, "move", "fall", u.Position().String(), 0)
	}
	return fell
}
