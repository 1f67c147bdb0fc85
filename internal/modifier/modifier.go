// Package modifier aggregates every bonus source (tools, equipment,
// buffs, prestige upgrades) into typed keys. Percent values are
// percentage points applied as x(1+v/100); chance values are
// probabilities in [0,1].
package modifier

import "strings"

// Kind names one aggregatable bonus dimension.
type Kind string

const (
	KindSpeedPercent      Kind = "speed_percent"
	KindXPPercent         Kind = "xp_percent"
	KindAmountFlat        Kind = "amount_flat"
	KindAmountPercent     Kind = "amount_percent"
	KindRarePercent       Kind = "rare_percent"
	KindDoublePercent     Kind = "double_percent"
	KindOfflineEfficiency Kind = "offline_efficiency"
)

// GlobalSkill is the wildcard scope applying to every skill.
const GlobalSkill = "global"

// Key scopes a Kind to one skill, or to GlobalSkill.
type Key struct {
	Skill string
	Kind  Kind
}

func (k Key) String() string {
	return k.Skill + "_" + string(k.Kind)
}

var kindSuffixes = []Kind{
	KindSpeedPercent,
	KindXPPercent,
	KindAmountFlat,
	KindAmountPercent,
	KindRarePercent,
	KindDoublePercent,
}

// ParseKey reads a serialized modifier key such as "mining_speed_percent"
// or "global_xp_percent". Unrecognized strings report ok=false and are
// ignored by aggregation, which preserves the value-zero fallback for
// unknown keys.
func ParseKey(s string) (Key, bool) {
	if s == string(KindOfflineEfficiency) {
		return Key{Skill: GlobalSkill, Kind: KindOfflineEfficiency}, true
	}
	for _, kind := range kindSuffixes {
		suffix := "_" + string(kind)
		if !strings.HasSuffix(s, suffix) {
			continue
		}
		skill := strings.TrimSuffix(s, suffix)
		if skill == "" {
			return Key{}, false
		}
		return Key{Skill: skill, Kind: kind}, true
	}
	return Key{}, false
}

// Set is one aggregation result. The zero value of any key is 0.
type Set struct {
	values map[Key]float64
}

func NewSet() *Set {
	return &Set{values: make(map[Key]float64)}
}

// Add accumulates v under key.
func (s *Set) Add(key Key, v float64) {
	if v == 0 {
		return
	}
	s.values[key] += v
}

// AddNamed parses a serialized key and accumulates v; unknown keys are
// silently dropped.
func (s *Set) AddNamed(name string, v float64) {
	key, ok := ParseKey(name)
	if !ok {
		return
	}
	s.Add(key, v)
}

// Value returns the accumulated total for key, zero when absent.
func (s *Set) Value(key Key) float64 {
	return s.values[key]
}

// SkillTotal sums the skill-scoped and global entries for kind.
func (s *Set) SkillTotal(skill string, kind Kind) float64 {
	return s.values[Key{Skill: skill, Kind: kind}] + s.values[Key{Skill: GlobalSkill, Kind: kind}]
}
