package state

import (
	"errors"
	"math"

	"emberhollow/server/content"
)

var (
	ErrUnknownItem     = errors.New("unknown item")
	ErrUnknownSkill    = errors.New("unknown skill")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInsufficient    = errors.New("insufficient amount")
	ErrLevelTooLow     = errors.New("level too low")
	ErrWrongCategory   = errors.New("wrong item category")
	ErrNothingEquipped = errors.New("nothing equipped")
)

// GameState is the root of all mutable player state. It is owned by the
// core orchestrator and must only be touched while its lock is held.
type GameState struct {
	Skills        map[string]*SkillProgress
	Inventory     map[string]int
	ResourceStats map[string]*ResourceStats
	Player        *Player
	Buffs         []*ActiveBuff
	Prestige      *PrestigeState
	CraftQueue    []*CraftJob
	ActiveCraft   *CraftJob
	Combat        *CombatState
	ActiveSkillID string
	ShopStock     map[string]int
	Achievements  map[string]bool
	LastOnline    int64
	TotalPlayMs   int64

	maxLevels map[string]int
}

// SkillProgress tracks one skill. IsActive, TimeLeftMs and DurationMs
// are runtime only; WasActive marks the skill resume logic keys off.
type SkillProgress struct {
	Level    int
	XP       int
	XPToNext int
	TotalXP  int

	WasActive bool
	ActionID  string

	IsActive   bool
	TimeLeftMs float64
	DurationMs float64
}

// ResourceStats follows an item's lifetime totals for achievements and
// the stats panel.
type ResourceStats struct {
	Gained int
	Used   int
	Sold   int
}

// Player holds combat vitals, equipment and cosmetic unlocks.
type Player struct {
	HP    int
	MaxHP int

	CombatStyle string
	Tools       map[string]string
	Equipment   map[string]string

	Stats       map[string]int
	Titles      []string
	ActiveTitle string
}

// PrestigeState tracks the meta currency and purchased upgrade levels.
// It survives game resets.
type PrestigeState struct {
	Points   int
	Upgrades map[string]int
}

// CraftJob is one queued crafting order. StartedAt and FinishAt anchor
// to wall-clock milliseconds once the job begins.
type CraftJob struct {
	RecipeID  string
	Quantity  int
	StartedAt int64
	FinishAt  int64
	Finishing bool
}

// CombatState exists only while a fight is running.
type CombatState struct {
	EnemyID     string
	EnemyHP     int
	PlayerTimer float64
	EnemyTimer  float64
	StartedAt   int64
	PlayerStyle string
}

// ActiveBuff is a reference to a buff definition plus its expiry.
// Permanent buffs never expire.
type ActiveBuff struct {
	ID        string
	ExpiresAt int64
	Permanent bool
}

const (
	DefaultMaxHP = 100
	HPPerLevel   = 10

	StyleAccurate   = "accurate"
	StyleAggressive = "aggressive"
	StyleDefensive  = "defensive"
	StyleRanged     = "ranged"
	StyleMagic      = "magic"
)

// New builds a fresh state with one entry per content skill and full HP.
func New(reg *content.Registry) *GameState {
	skills := make(map[string]*SkillProgress)
	maxLevels := make(map[string]int)
	for _, id := range reg.SkillIDs() {
		skills[id] = &SkillProgress{Level: 1, XPToNext: XPToNext(1)}
		if def, ok := reg.Skill(id); ok {
			maxLevels[id] = def.MaxLevel
		}
	}
	return &GameState{
		Skills:        skills,
		maxLevels:     maxLevels,
		Inventory:     make(map[string]int),
		ResourceStats: make(map[string]*ResourceStats),
		Player: &Player{
			HP:          DefaultMaxHP,
			MaxHP:       DefaultMaxHP,
			CombatStyle: StyleAccurate,
			Tools:       make(map[string]string),
			Equipment:   make(map[string]string),
			Stats:       make(map[string]int),
		},
		Prestige: &PrestigeState{
			Upgrades: make(map[string]int),
		},
		ShopStock:    make(map[string]int),
		Achievements: make(map[string]bool),
	}
}

// ValidAmount reports whether n can be used as an inventory quantity.
func ValidAmount(n float64) bool {
	return !math.IsNaN(n) && !math.IsInf(n, 0) && n > 0 && n == math.Trunc(n)
}

// Skill returns the progress entry for id, or an error for unknown ids.
func (g *GameState) Skill(id string) (*SkillProgress, error) {
	sp, ok := g.Skills[id]
	if !ok {
		return nil, ErrUnknownSkill
	}
	return sp, nil
}

// TotalLevel sums every skill's level.
func (g *GameState) TotalLevel() int {
	total := 0
	for _, sp := range g.Skills {
		total += sp.Level
	}
	return total
}

// BumpStat increments a named player counter.
func (g *GameState) BumpStat(name string, by int) {
	if by <= 0 {
		return
	}
	g.Player.Stats[name] += by
}
