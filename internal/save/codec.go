// Package save serializes a curated projection of the game state and
// rebuilds runtime state from persisted blobs. Loading deep-merges the
// blob against the current default schema so saves survive version
// drift, then rebuilds derived fields from content instead of trusting
// them from storage.
package save

import (
	"encoding/json"
	"fmt"

	"emberhollow/server/content"
	"emberhollow/server/internal/state"
)

// Version tags blobs written by this codec.
const Version = 1

// Blob is the persisted projection. Runtime-only fields (isActive, the
// countdown timers' derived duration) are deliberately absent.
type Blob struct {
	Version       int                          `json:"version"`
	Skills        map[string]SkillBlob         `json:"skills"`
	Inventory     map[string]int               `json:"inventory"`
	ResourceStats map[string]ResourceStatsBlob `json:"resourceStats"`
	Player        PlayerBlob                   `json:"player"`
	Buffs         []BuffBlob                   `json:"buffs"`
	Prestige      PrestigeBlob                 `json:"prestige"`
	CraftQueue    []CraftJobBlob               `json:"craftQueue"`
	ActiveCraft   *CraftJobBlob                `json:"activeCraft"`
	ActiveSkillID string                       `json:"activeSkillId"`
	ShopStock     map[string]int               `json:"shopStock"`
	Achievements  map[string]bool              `json:"achievements"`
	SavedAt       int64                        `json:"savedAt"`
	TotalPlayMs   int64                        `json:"totalPlayMs"`
}

// SkillBlob is the explicit per-skill projection; stale or runtime keys
// in old saves never survive it.
type SkillBlob struct {
	Level     int     `json:"level"`
	XP        int     `json:"xp"`
	XPToNext  int     `json:"xpToNext"`
	TotalXP   int     `json:"totalXp"`
	WasActive bool    `json:"wasActive"`
	ActionID  string  `json:"actionId"`
	TimeLeft  float64 `json:"timeLeft"`
}

type ResourceStatsBlob struct {
	Gained int `json:"gained"`
	Used   int `json:"used"`
	Sold   int `json:"sold"`
}

// PlayerBlob is the fixed projection of the player profile.
type PlayerBlob struct {
	HP          int               `json:"hp"`
	MaxHP       int               `json:"maxHp"`
	CombatStyle string            `json:"combatStyle"`
	Tools       map[string]string `json:"tools"`
	Equipment   map[string]string `json:"equipment"`
	Stats       map[string]int    `json:"stats"`
	Titles      []string          `json:"titles"`
	ActiveTitle string            `json:"activeTitle"`
}

type BuffBlob struct {
	ID        string `json:"id"`
	ExpiresAt int64  `json:"expiresAt,omitempty"`
	Permanent bool   `json:"permanent,omitempty"`
}

type PrestigeBlob struct {
	Points   int            `json:"points"`
	Upgrades map[string]int `json:"upgrades"`
}

type CraftJobBlob struct {
	RecipeID  string `json:"recipeId"`
	Quantity  int    `json:"quantity"`
	StartedAt int64  `json:"startedAt,omitempty"`
	FinishAt  int64  `json:"finishAt,omitempty"`
}

// Build projects a GameState into a Blob.
func Build(g *state.GameState, nowMs int64) *Blob {
	blob := &Blob{
		Version:       Version,
		Skills:        make(map[string]SkillBlob, len(g.Skills)),
		Inventory:     make(map[string]int, len(g.Inventory)),
		ResourceStats: make(map[string]ResourceStatsBlob, len(g.ResourceStats)),
		Player: PlayerBlob{
			HP:          g.Player.HP,
			MaxHP:       g.Player.MaxHP,
			CombatStyle: g.Player.CombatStyle,
			Tools:       cloneStringMap(g.Player.Tools),
			Equipment:   cloneStringMap(g.Player.Equipment),
			Stats:       cloneIntMap(g.Player.Stats),
			Titles:      append([]string(nil), g.Player.Titles...),
			ActiveTitle: g.Player.ActiveTitle,
		},
		Prestige: PrestigeBlob{
			Points:   g.Prestige.Points,
			Upgrades: cloneIntMap(g.Prestige.Upgrades),
		},
		ActiveSkillID: g.ActiveSkillID,
		ShopStock:     cloneIntMap(g.ShopStock),
		Achievements:  make(map[string]bool, len(g.Achievements)),
		SavedAt:       nowMs,
		TotalPlayMs:   g.TotalPlayMs,
	}
	for id, sp := range g.Skills {
		blob.Skills[id] = SkillBlob{
			Level:     sp.Level,
			XP:        sp.XP,
			XPToNext:  sp.XPToNext,
			TotalXP:   sp.TotalXP,
			WasActive: sp.WasActive,
			ActionID:  sp.ActionID,
			TimeLeft:  sp.TimeLeftMs,
		}
	}
	for id, n := range g.Inventory {
		blob.Inventory[id] = n
	}
	for id, rs := range g.ResourceStats {
		blob.ResourceStats[id] = ResourceStatsBlob{Gained: rs.Gained, Used: rs.Used, Sold: rs.Sold}
	}
	for _, b := range g.Buffs {
		blob.Buffs = append(blob.Buffs, BuffBlob{ID: b.ID, ExpiresAt: b.ExpiresAt, Permanent: b.Permanent})
	}
	for _, job := range g.CraftQueue {
		blob.CraftQueue = append(blob.CraftQueue, CraftJobBlob{RecipeID: job.RecipeID, Quantity: job.Quantity})
	}
	if g.ActiveCraft != nil {
		blob.ActiveCraft = &CraftJobBlob{
			RecipeID:  g.ActiveCraft.RecipeID,
			Quantity:  g.ActiveCraft.Quantity,
			StartedAt: g.ActiveCraft.StartedAt,
			FinishAt:  g.ActiveCraft.FinishAt,
		}
	}
	for id, unlocked := range g.Achievements {
		blob.Achievements[id] = unlocked
	}
	return blob
}

// Encode renders a blob as JSON.
func Encode(blob *Blob) ([]byte, error) {
	data, err := json.Marshal(blob)
	if err != nil {
		return nil, fmt.Errorf("encode save: %w", err)
	}
	return data, nil
}

// Decode parses raw persisted bytes, deep-merging them against the
// default schema so partial or drifted blobs still load.
func Decode(data []byte) (*Blob, error) {
	var persisted map[string]any
	if err := json.Unmarshal(data, &persisted); err != nil {
		return nil, fmt.Errorf("parse save: %w", err)
	}
	merged := MergeWithDefaults(persisted)

	rebuilt, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("remarshal merged save: %w", err)
	}
	var blob Blob
	if err := json.Unmarshal(rebuilt, &blob); err != nil {
		return nil, fmt.Errorf("decode merged save: %w", err)
	}
	return &blob, nil
}

func cloneStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneIntMap(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Hydrate rebuilds a runnable GameState from content plus a decoded
// blob. It is a pure step: inventory entries for items that no longer
// exist are pruned (their ids returned), every skill present in content
// gets an entry, and runtime activity flags are never restored.
func Hydrate(reg *content.Registry, blob *Blob) (*state.GameState, []string) {
	g := state.New(reg)
	var pruned []string

	for id, sp := range g.Skills {
		persisted, ok := blob.Skills[id]
		if !ok {
			continue
		}
		sp.Level = persisted.Level
		if sp.Level < 1 {
			sp.Level = 1
		}
		sp.XP = persisted.XP
		sp.XPToNext = persisted.XPToNext
		if sp.XPToNext == 0 && persisted.Level == 0 {
			sp.XPToNext = state.XPToNext(sp.Level)
		}
		sp.TotalXP = persisted.TotalXP
		sp.WasActive = persisted.WasActive
		sp.ActionID = persisted.ActionID
		sp.TimeLeftMs = persisted.TimeLeft
		sp.IsActive = false
	}

	for id, n := range blob.Inventory {
		if _, ok := reg.Item(id); !ok {
			pruned = append(pruned, id)
			continue
		}
		if n > 0 {
			g.Inventory[id] = n
		}
	}
	for id, rs := range blob.ResourceStats {
		if _, ok := reg.Item(id); !ok {
			continue
		}
		g.ResourceStats[id] = &state.ResourceStats{Gained: rs.Gained, Used: rs.Used, Sold: rs.Sold}
	}

	g.Player.HP = blob.Player.HP
	g.Player.MaxHP = blob.Player.MaxHP
	if g.Player.MaxHP <= 0 {
		g.Player.MaxHP = state.DefaultMaxHP
	}
	if g.Player.HP <= 0 || g.Player.HP > g.Player.MaxHP {
		g.Player.HP = g.Player.MaxHP
	}
	if blob.Player.CombatStyle != "" {
		g.Player.CombatStyle = blob.Player.CombatStyle
	}
	for skillID, itemID := range blob.Player.Tools {
		if _, ok := reg.Item(itemID); ok {
			g.Player.Tools[skillID] = itemID
		} else {
			pruned = append(pruned, itemID)
		}
	}
	for slot, itemID := range blob.Player.Equipment {
		if _, ok := reg.Item(itemID); ok {
			g.Player.Equipment[slot] = itemID
		} else {
			pruned = append(pruned, itemID)
		}
	}
	for name, v := range blob.Player.Stats {
		g.Player.Stats[name] = v
	}
	g.Player.Titles = append([]string(nil), blob.Player.Titles...)
	g.Player.ActiveTitle = blob.Player.ActiveTitle

	var buffIDs []string
	for _, b := range blob.Buffs {
		buffIDs = append(buffIDs, b.ID)
	}
	reg.RebuildDynamicBuffs(buffIDs)
	for _, b := range blob.Buffs {
		if _, ok := reg.Buff(b.ID); !ok {
			continue
		}
		if b.Permanent {
			g.AddPermanentBuff(b.ID)
		} else {
			g.AddBuff(b.ID, b.ExpiresAt)
		}
	}

	g.Prestige.Points = blob.Prestige.Points
	for id, level := range blob.Prestige.Upgrades {
		if _, ok := reg.Prestige(id); ok && level > 0 {
			g.Prestige.Upgrades[id] = level
		}
	}

	for _, job := range blob.CraftQueue {
		if _, ok := reg.Recipe(job.RecipeID); !ok {
			continue
		}
		g.CraftQueue = append(g.CraftQueue, &state.CraftJob{RecipeID: job.RecipeID, Quantity: job.Quantity})
	}
	if blob.ActiveCraft != nil {
		if _, ok := reg.Recipe(blob.ActiveCraft.RecipeID); ok {
			g.ActiveCraft = &state.CraftJob{
				RecipeID:  blob.ActiveCraft.RecipeID,
				Quantity:  blob.ActiveCraft.Quantity,
				StartedAt: blob.ActiveCraft.StartedAt,
				FinishAt:  blob.ActiveCraft.FinishAt,
			}
		}
	}

	if _, ok := g.Skills[blob.ActiveSkillID]; ok {
		g.ActiveSkillID = blob.ActiveSkillID
	}
	for id, n := range blob.ShopStock {
		g.ShopStock[id] = n
	}
	for id, unlocked := range blob.Achievements {
		if unlocked {
			g.Achievements[id] = true
		}
	}
	g.LastOnline = blob.SavedAt
	g.TotalPlayMs = blob.TotalPlayMs

	return g, pruned
}
