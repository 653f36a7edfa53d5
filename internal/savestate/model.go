package savestate

import "time"

// Save is one saved battle.
type Save struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:64" json:"name"`
	Turn        int       `json:"turn"`
	Side        int       `json:"side"`
	GlobalShade int       `json:"global_shade"`
	Cheating    bool      `json:"cheating"`
	Width       int       `json:"width"`
	Length      int       `json:"length"`
	Height      int       `json:"height"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Save) TableName() string { return "saves" }

// TileState is the changeable part of a tile. Parts are stored by terrain
// name and resolved through the map's catalogue on load.
type TileState struct {
	SaveID        string `gorm:"primaryKey;size:36" json:"save_id"`
	Idx           int    `gorm:"primaryKey" json:"idx"`
	Floor         string `gorm:"size:32" json:"floor"`
	WestWall      string `gorm:"size:32" json:"west_wall"`
	NorthWall     string `gorm:"size:32" json:"north_wall"`
	Object        string `gorm:"size:32" json:"object"`
	WestOpen      bool   `json:"west_open"` // sliding door open
	NorthOpen     bool   `json:"north_open"`
	Fire          int    `json:"fire"`
	Smoke         int    `json:"smoke"`
	Explosive     int    `json:"explosive"`
	ExplosiveKind int    `json:"explosive_kind"`
}

func (TileState) TableName() string { return "save_tiles" }

// UnitState is a unit's position and condition.
type UnitState struct {
	SaveID            string `gorm:"primaryKey;size:36" json:"save_id"`
	UnitID            int    `gorm:"primaryKey" json:"unit_id"`
	Faction           int    `json:"faction"`
	Placed            bool   `json:"placed"`
	X                 int    `json:"x"`
	Y                 int    `json:"y"`
	Z                 int    `json:"z"`
	Direction         int    `json:"direction"`
	TU                int    `json:"tu"`
	Energy            int    `json:"energy"`
	Health            int    `json:"health"`
	Stun              int    `json:"stun"`
	Morale            int    `json:"morale"`
	FireTurns         int    `json:"fire_turns"`
	TurnsSinceSpotted int    `json:"turns_since_spotted"`
}

func (UnitState) TableName() string { return "save_units" }

// AIState is a controller's persisted memory.
type AIState struct {
	SaveID   string `gorm:"primaryKey;size:36" json:"save_id"`
	UnitID   int    `gorm:"primaryKey" json:"unit_id"`
	Mode     int    `json:"mode"`
	FromNode int    `json:"from_node"`
	ToNode   int    `json:"to_node"`
	WasHitBy []int  `gorm:"serializer:json" json:"was_hit_by"`
}

func (AIState) TableName() string { return "save_ai" }

var allModels = []interface{}{
	&Save{},
	&TileState{},
	&UnitState{},
	&AIState{},
}
