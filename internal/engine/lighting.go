package engine

import (
	"math"

	"github.com/Garsondee/battlescape/internal/battle"
)

// CalculateSunShading lights every tile from the sky. By day, tiles under
// a floor or roof are a little darker.
func (e *TileEngine) CalculateSunShading() {
	power := battle.MaxLight - e.b.GlobalShade
	top := e.m.Height - 1
	e.m.Each(func(t *battle.Tile) {
		t.ResetLight(battle.LightAmbient)
		p := power
		if e.b.GlobalShade <= 5 {
			sky := e.m.At(battle.Pos(t.Position().X, t.Position().Y, top))
			if e.VerticalBlockage(sky, t, battle.DamageNone) > 0 {
				p -= 2
			}
		}
		t.AddLight(p, battle.LightAmbient)
	})
}

// CalculateTerrainLighting relights the static layer from lamps and fires.
func (e *TileEngine) CalculateTerrainLighting() {
	e.m.Each(func(t *battle.Tile) { t.ResetLight(battle.LightStatic) })
	e.m.Each(func(t *battle.Tile) {
		for _, part := range []battle.PartKind{battle.PartFloor, battle.PartObject} {
			if p := t.Part(part); p != nil && p.LightSource > 0 {
				e.AddLight(t.Position(), p.LightSource, battle.LightStatic)
			}
		}
		if t.Fire() > 0 {
			e.AddLight(t.Position(), FireLightPower, battle.LightStatic)
		}
	})
}

// CalculateUnitLighting relights the dynamic layer from player units'
// personal lights.
func (e *TileEngine) CalculateUnitLighting() {
	e.m.Each(func(t *battle.Tile) { t.ResetLight(battle.LightDynamic) })
	for _, u := range e.b.Units {
		if u.Faction == battle.FactionPlayer && !u.IsOut() && u.Placed() {
			e.AddLight(u.Position(), PersonalLightPower, battle.LightDynamic)
		}
	}
}

// AddLight spreads a circle of light that fades one step per tile, on every
// level.
func (e *TileEngine) AddLight(center battle.Position, power, layer int) {
	for dx := -power; dx <= power; dx++ {
		for dy := -power; dy <= power; dy++ {
			dist := int(math.Floor(math.Sqrt(float64(dx*dx+dy*dy)) + 0.5))
			if dist >= power {
				continue
			}
			for z := 0; z < e.m.Height; z++ {
				if t := e.m.At(battle.Pos(center.X+dx, center.Y+dy, z)); t != nil {
					t.AddLight(power-dist, layer)
				}
			}
		}
	}
}

// RecalculateLighting rebuilds all three layers, as after loading a save.
func (e *TileEngine) RecalculateLighting() {
	e.CalculateSunShading()
	e.CalculateTerrainLighting()
	e.CalculateUnitLighting()
}
