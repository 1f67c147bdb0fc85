package content

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Registry is the immutable lookup surface for all loaded definitions.
// Dynamic buff definitions (permanent bonuses materialized at runtime) are
// the one mutable corner and are guarded separately.
type Registry struct {
	items        map[string]*ItemDefinition
	skills       map[string]*SkillDefinition
	recipes      map[string]*RecipeDefinition
	enemies      map[string]*EnemyDefinition
	buffs        map[string]*BuffDefinition
	prestiges    map[string]*PrestigeDefinition
	shops        map[string]*ShopDefinition
	achievements []*AchievementDefinition

	dynMu        sync.RWMutex
	dynamicBuffs map[string]*BuffDefinition
}

func (r *Registry) Item(id string) (*ItemDefinition, bool) {
	def, ok := r.items[id]
	return def, ok
}

func (r *Registry) Skill(id string) (*SkillDefinition, bool) {
	def, ok := r.skills[id]
	return def, ok
}

// SkillIDs returns the defined skill ids in stable order.
func (r *Registry) SkillIDs() []string {
	ids := make([]string, 0, len(r.skills))
	for id := range r.skills {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Action finds an action definition inside a skill.
func (r *Registry) Action(skillID, actionID string) (*ActionDefinition, bool) {
	skill, ok := r.skills[skillID]
	if !ok {
		return nil, false
	}
	for i := range skill.Actions {
		if skill.Actions[i].ID == actionID {
			return &skill.Actions[i], true
		}
	}
	return nil, false
}

func (r *Registry) Recipe(id string) (*RecipeDefinition, bool) {
	def, ok := r.recipes[id]
	return def, ok
}

func (r *Registry) RecipesForSkill(skillID string) []*RecipeDefinition {
	var out []*RecipeDefinition
	for _, def := range r.recipes {
		if def.Skill == skillID {
			out = append(out, def)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) Enemy(id string) (*EnemyDefinition, bool) {
	def, ok := r.enemies[id]
	return def, ok
}

// Buff resolves a static definition first, then dynamic registrations.
func (r *Registry) Buff(id string) (*BuffDefinition, bool) {
	if def, ok := r.buffs[id]; ok {
		return def, true
	}
	r.dynMu.RLock()
	defer r.dynMu.RUnlock()
	def, ok := r.dynamicBuffs[id]
	return def, ok
}

func (r *Registry) Prestige(id string) (*PrestigeDefinition, bool) {
	def, ok := r.prestiges[id]
	return def, ok
}

func (r *Registry) Prestiges() []*PrestigeDefinition {
	out := make([]*PrestigeDefinition, 0, len(r.prestiges))
	for _, def := range r.prestiges {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) Shop(id string) (*ShopDefinition, bool) {
	def, ok := r.shops[id]
	return def, ok
}

func (r *Registry) Achievements() []*AchievementDefinition {
	return r.achievements
}

// RegisterDynamicBuff adds a runtime buff definition. Existing static
// definitions are never shadowed.
func (r *Registry) RegisterDynamicBuff(def *BuffDefinition) {
	if def == nil || def.ID == "" {
		return
	}
	if _, ok := r.buffs[def.ID]; ok {
		return
	}
	r.dynMu.Lock()
	defer r.dynMu.Unlock()
	if r.dynamicBuffs == nil {
		r.dynamicBuffs = make(map[string]*BuffDefinition)
	}
	r.dynamicBuffs[def.ID] = def
}

const permanentBuffPrefix = "perm_"

// PermanentBuffID builds the synthetic id used for materialized permanent
// stat bonuses, e.g. perm_mining_speed_percent_10.
func PermanentBuffID(stat string, value float64) string {
	return fmt.Sprintf("%s%s_%s", permanentBuffPrefix, stat, strconv.FormatFloat(value, 'f', -1, 64))
}

// ParsePermanentBuffID reverses PermanentBuffID. Permanent bonuses carry no
// dedicated save schema; their definitions are rebuilt from the id alone.
func ParsePermanentBuffID(id string) (stat string, value float64, ok bool) {
	if !strings.HasPrefix(id, permanentBuffPrefix) {
		return "", 0, false
	}
	rest := strings.TrimPrefix(id, permanentBuffPrefix)
	idx := strings.LastIndex(rest, "_")
	if idx <= 0 || idx == len(rest)-1 {
		return "", 0, false
	}
	value, err := strconv.ParseFloat(rest[idx+1:], 64)
	if err != nil {
		return "", 0, false
	}
	return rest[:idx], value, true
}

// RegisterPermanentBonus materializes a permanent stat bonus as a dynamic
// buff definition and returns its id.
func (r *Registry) RegisterPermanentBonus(stat string, value float64) string {
	id := PermanentBuffID(stat, value)
	r.RegisterDynamicBuff(&BuffDefinition{
		ID:          id,
		Name:        "Permanent Bonus",
		Description: fmt.Sprintf("Permanent +%g %s.", value, stat),
		Modifiers:   map[string]float64{stat: value},
	})
	return id
}

// RebuildDynamicBuffs re-registers definitions for permanent buff ids found
// in a loaded save, so they survive serialization without a schema.
func (r *Registry) RebuildDynamicBuffs(buffIDs []string) {
	for _, id := range buffIDs {
		if _, ok := r.Buff(id); ok {
			continue
		}
		stat, value, ok := ParsePermanentBuffID(id)
		if !ok {
			continue
		}
		r.RegisterPermanentBonus(stat, value)
	}
}
