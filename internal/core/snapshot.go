package core

import "emberhollow/server/internal/state"

// Snapshot is the read-only view broadcast to clients after every tick
// and mutation. It copies everything it exposes so receivers never
// alias live state.
type Snapshot struct {
	Tick          uint64                   `json:"tick"`
	Skills        map[string]SkillSnapshot `json:"skills"`
	ActiveSkillID string                   `json:"activeSkillId,omitempty"`
	Inventory     map[string]int           `json:"inventory"`
	Player        PlayerSnapshot           `json:"player"`
	Buffs         []BuffSnapshot           `json:"buffs,omitempty"`
	Prestige      PrestigeSnapshot         `json:"prestige"`
	CraftQueue    []CraftSnapshot          `json:"craftQueue,omitempty"`
	ActiveCraft   *CraftSnapshot           `json:"activeCraft,omitempty"`
	Combat        *CombatSnapshot          `json:"combat,omitempty"`
	Achievements  []string                 `json:"achievements,omitempty"`
	TotalLevel    int                      `json:"totalLevel"`
	TotalPlayMs   int64                    `json:"totalPlayMs"`
}

type SkillSnapshot struct {
	Level      int     `json:"level"`
	XP         int     `json:"xp"`
	XPToNext   int     `json:"xpToNext"`
	TotalXP    int     `json:"totalXp"`
	IsActive   bool    `json:"isActive"`
	ActionID   string  `json:"actionId,omitempty"`
	TimeLeftMs float64 `json:"timeLeftMs,omitempty"`
	DurationMs float64 `json:"durationMs,omitempty"`
}

type PlayerSnapshot struct {
	HP          int               `json:"hp"`
	MaxHP       int               `json:"maxHp"`
	CombatStyle string            `json:"combatStyle"`
	Tools       map[string]string `json:"tools,omitempty"`
	Equipment   map[string]string `json:"equipment,omitempty"`
	Stats       map[string]int    `json:"stats,omitempty"`
	Titles      []string          `json:"titles,omitempty"`
	ActiveTitle string            `json:"activeTitle,omitempty"`
}

type BuffSnapshot struct {
	ID        string `json:"id"`
	ExpiresAt int64  `json:"expiresAt,omitempty"`
	Permanent bool   `json:"permanent,omitempty"`
}

type PrestigeSnapshot struct {
	Points   int            `json:"points"`
	Upgrades map[string]int `json:"upgrades,omitempty"`
}

type CraftSnapshot struct {
	RecipeID  string `json:"recipeId"`
	Quantity  int    `json:"quantity"`
	StartedAt int64  `json:"startedAt,omitempty"`
	FinishAt  int64  `json:"finishAt,omitempty"`
}

type CombatSnapshot struct {
	EnemyID string `json:"enemyId"`
	EnemyHP int    `json:"enemyHp"`
	Style   string `json:"style"`
}

// buildSnapshot must be called with the lock held.
func (c *Core) buildSnapshot() Snapshot {
	g := c.g
	snap := Snapshot{
		Tick:          c.tick,
		Skills:        make(map[string]SkillSnapshot, len(g.Skills)),
		ActiveSkillID: g.ActiveSkillID,
		Inventory:     make(map[string]int, len(g.Inventory)),
		Player: PlayerSnapshot{
			HP:          g.Player.HP,
			MaxHP:       g.Player.MaxHP,
			CombatStyle: g.Player.CombatStyle,
			Tools:       copyStrings(g.Player.Tools),
			Equipment:   copyStrings(g.Player.Equipment),
			Stats:       copyInts(g.Player.Stats),
			Titles:      append([]string(nil), g.Player.Titles...),
			ActiveTitle: g.Player.ActiveTitle,
		},
		Prestige: PrestigeSnapshot{
			Points:   g.Prestige.Points,
			Upgrades: copyInts(g.Prestige.Upgrades),
		},
		TotalLevel:  g.TotalLevel(),
		TotalPlayMs: g.TotalPlayMs,
	}
	for id, sp := range g.Skills {
		snap.Skills[id] = SkillSnapshot{
			Level:      sp.Level,
			XP:         sp.XP,
			XPToNext:   sp.XPToNext,
			TotalXP:    sp.TotalXP,
			IsActive:   sp.IsActive,
			ActionID:   sp.ActionID,
			TimeLeftMs: sp.TimeLeftMs,
			DurationMs: sp.DurationMs,
		}
	}
	for id, n := range g.Inventory {
		snap.Inventory[id] = n
	}
	for _, b := range g.Buffs {
		snap.Buffs = append(snap.Buffs, BuffSnapshot{ID: b.ID, ExpiresAt: b.ExpiresAt, Permanent: b.Permanent})
	}
	for _, job := range g.CraftQueue {
		snap.CraftQueue = append(snap.CraftQueue, craftSnapshot(job))
	}
	if g.ActiveCraft != nil {
		job := craftSnapshot(g.ActiveCraft)
		snap.ActiveCraft = &job
	}
	if g.Combat != nil {
		snap.Combat = &CombatSnapshot{
			EnemyID: g.Combat.EnemyID,
			EnemyHP: g.Combat.EnemyHP,
			Style:   g.Combat.PlayerStyle,
		}
	}
	for id, done := range g.Achievements {
		if done {
			snap.Achievements = append(snap.Achievements, id)
		}
	}
	return snap
}

// Snapshot returns the current client view.
func (c *Core) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buildSnapshot()
}

func craftSnapshot(job *state.CraftJob) CraftSnapshot {
	return CraftSnapshot{
		RecipeID:  job.RecipeID,
		Quantity:  job.Quantity,
		StartedAt: job.StartedAt,
		FinishAt:  job.FinishAt,
	}
}

func copyStrings(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyInts(in map[string]int) map[string]int {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
