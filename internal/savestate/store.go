// Package savestate persists the mutable state of a battle in SQLite:
// terrain damage, fire and smoke, armed explosives, unit positions and
// condition, and what each AI controller remembers.
package savestate

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Garsondee/battlescape/internal/ai"
	"github.com/Garsondee/battlescape/internal/battle"
)

var (
	// ErrNotFound is returned for an unknown save id.
	ErrNotFound = errors.New("save not found")
	// ErrMapMismatch is returned when loading into a map of another size.
	ErrMapMismatch = errors.New("save does not fit this map")
)

const batchSize = 500

// Store reads and writes saves.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

// Open opens (creating if needed) the store at dsn and migrates it. Use
// ":memory:" for a throwaway store.
func Open(dsn string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open save store %s: %w", dsn, err)
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		return nil, fmt.Errorf("migrate save store: %w", err)
	}
	return &Store{db: db, log: log.Named("savestate")}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save writes the battle and its controllers under a new id.
func (s *Store) Save(ctx context.Context, name string, b *battle.Battle, reg *ai.Registry) (string, error) {
	id := uuid.NewString()
	m := b.Map
	head := Save{
		ID:          id,
		Name:        name,
		Turn:        b.Turn,
		Side:        int(b.Side),
		GlobalShade: b.GlobalShade,
		Cheating:    b.Cheating,
		Width:       m.Width,
		Length:      m.Length,
		Height:      m.Height,
	}

	tiles := make([]TileState, 0, m.Size())
	for i := 0; i < m.Size(); i++ {
		t := m.TileAt(i)
		tiles = append(tiles, TileState{
			SaveID:        id,
			Idx:           i,
			Floor:         partName(t, battle.PartFloor),
			WestWall:      partName(t, battle.PartWestWall),
			NorthWall:     partName(t, battle.PartNorthWall),
			Object:        partName(t, battle.PartObject),
			WestOpen:      t.IsUFODoorOpen(battle.PartWestWall),
			NorthOpen:     t.IsUFODoorOpen(battle.PartNorthWall),
			Fire:          t.Fire(),
			Smoke:         t.Smoke(),
			Explosive:     t.Explosive(),
			ExplosiveKind: int(t.ExplosiveKind()),
		})
	}

	units := make([]UnitState, 0, len(b.Units))
	for _, u := range b.Units {
		p := u.Position()
		units = append(units, UnitState{
			SaveID:            id,
			UnitID:            u.ID,
			Faction:           int(u.Faction),
			Placed:            u.Placed(),
			X:                 p.X,
			Y:                 p.Y,
			Z:                 p.Z,
			Direction:         int(u.Direction),
			TU:                u.TU,
			Energy:            u.Energy,
			Health:            u.Health,
			Stun:              u.StunLevel,
			Morale:            u.Morale,
			FireTurns:         u.FireTurns,
			TurnsSinceSpotted: u.TurnsSinceSpotted,
		})
	}

	var minds []AIState
	if reg != nil {
		states := reg.States()
		for _, uid := range reg.IDs() {
			st := states[uid]
			minds = append(minds, AIState{
				SaveID:   id,
				UnitID:   uid,
				Mode:     int(st.Mode),
				FromNode: st.FromNode,
				ToNode:   st.ToNode,
				WasHitBy: st.WasHitBy,
			})
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&head).Error; err != nil {
			return err
		}
		if err := tx.CreateInBatches(tiles, batchSize).Error; err != nil {
			return err
		}
		if len(units) > 0 {
			if err := tx.CreateInBatches(units, batchSize).Error; err != nil {
				return err
			}
		}
		if len(minds) > 0 {
			if err := tx.Create(&minds).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("save battle: %w", err)
	}
	s.log.Info("saved", zap.String("id", id), zap.String("name", name), zap.Int("turn", b.Turn),
		zap.Int("tiles", len(tiles)), zap.Int("units", len(units)))
	return id, nil
}

func partName(t *battle.Tile, p battle.PartKind) string {
	if part := t.Part(p); part != nil {
		return part.Name
	}
	return ""
}

// Load restores a save into b, which must have been built with the same
// map size and units. Tile parts are resolved by name through the map's
// catalogue. Light, discovery and sight are cleared; callers recompute
// them (lighting, then FOV) before play resumes.
func (s *Store) Load(ctx context.Context, id string, b *battle.Battle, reg *ai.Registry) error {
	db := s.db.WithContext(ctx)
	var head Save
	if err := db.First(&head, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("load %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("load %s: %w", id, err)
	}
	m := b.Map
	if head.Width != m.Width || head.Length != m.Length || head.Height != m.Height {
		return fmt.Errorf("load %s: %dx%dx%d into %dx%dx%d: %w",
			id, head.Width, head.Length, head.Height, m.Width, m.Length, m.Height, ErrMapMismatch)
	}

	var tiles []TileState
	if err := db.Where("save_id = ?", id).Order("idx").Find(&tiles).Error; err != nil {
		return fmt.Errorf("load tiles: %w", err)
	}
	var units []UnitState
	if err := db.Where("save_id = ?", id).Order("unit_id").Find(&units).Error; err != nil {
		return fmt.Errorf("load units: %w", err)
	}
	var minds []AIState
	if err := db.Where("save_id = ?", id).Order("unit_id").Find(&minds).Error; err != nil {
		return fmt.Errorf("load ai: %w", err)
	}

	b.Turn = head.Turn
	b.Side = battle.Faction(head.Side)
	b.GlobalShade = head.GlobalShade
	b.Cheating = head.Cheating

	cat := m.Catalogue()
	for _, ts := range tiles {
		t := m.TileAt(ts.Idx)
		if t == nil {
			continue
		}
		t.SetPart(battle.PartFloor, cat.Get(ts.Floor))
		t.SetPart(battle.PartWestWall, cat.Get(ts.WestWall))
		t.SetPart(battle.PartNorthWall, cat.Get(ts.NorthWall))
		t.SetPart(battle.PartObject, cat.Get(ts.Object))
		if ts.WestOpen {
			t.OpenDoor(battle.PartWestWall)
		}
		if ts.NorthOpen {
			t.OpenDoor(battle.PartNorthWall)
		}
		t.SetFire(ts.Fire)
		t.SetSmoke(ts.Smoke)
		t.SetExplosive(ts.Explosive, battle.DamageType(ts.ExplosiveKind), true)
		t.SetDangerous(false)
		t.ClearDiscovered()
		for l := 0; l < battle.LightLayers; l++ {
			t.ResetLight(l)
		}
	}

	// lift everyone off the map first so units can swap tiles
	for _, us := range units {
		if u := b.UnitByID(us.UnitID); u != nil {
			m.RemoveUnit(u)
		}
	}
	for _, us := range units {
		u := b.UnitByID(us.UnitID)
		if u == nil {
			s.log.Warn("saved unit missing from battle", zap.Int("unit", us.UnitID))
			continue
		}
		u.Faction = battle.Faction(us.Faction)
		u.Direction = battle.Direction(us.Direction)
		u.TU = us.TU
		u.Energy = us.Energy
		u.Health = us.Health
		u.StunLevel = us.Stun
		u.Morale = us.Morale
		u.FireTurns = us.FireTurns
		u.TurnsSinceSpotted = us.TurnsSinceSpotted
		u.Charging = nil
		u.ClearVisible()
		if us.Placed {
			if err := m.PlaceUnit(u, battle.Pos(us.X, us.Y, us.Z)); err != nil {
				return fmt.Errorf("place unit %d: %w", u.ID, err)
			}
		}
	}

	if reg != nil {
		for _, n := range b.Nodes {
			n.Free()
		}
		states := make(map[int]ai.State, len(minds))
		for _, ms := range minds {
			states[ms.UnitID] = ai.State{
				Mode:     ai.Mode(ms.Mode),
				FromNode: ms.FromNode,
				ToNode:   ms.ToNode,
				WasHitBy: ms.WasHitBy,
			}
		}
		reg.Restore(states)
	}
	s.log.Info("loaded", zap.String("id", id), zap.Int("turn", head.Turn))
	return nil
}

// List returns every save, newest first.
func (s *Store) List(ctx context.Context) ([]Save, error) {
	var saves []Save
	if err := s.db.WithContext(ctx).Order("created_at desc").Find(&saves).Error; err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	return saves, nil
}

// Delete removes a save and everything stored under it.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&Save{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("delete save %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("delete save %s: %w", id, ErrNotFound)
		}
		for _, model := range []interface{}{&TileState{}, &UnitState{}, &AIState{}} {
			if err := tx.Where("save_id = ?", id).Delete(model).Error; err != nil {
				return fmt.Errorf("delete save %s: %w", id, err)
			}
		}
		return nil
	})
}
