package combat

import (
	"math"

	"emberhollow/server/content"
	"emberhollow/server/internal/state"
)

// Attack interval bounds in milliseconds.
const (
	playerBaseIntervalMs = 2000
	playerMinIntervalMs  = 600
	enemyDefaultInterval = 2200
)

// Loadout is the player's combat profile resolved from skills and
// equipment, recomputed when a fight starts.
type Loadout struct {
	Style      string
	CombatType string
	Element    string

	Attack   int
	Strength int
	Defence  int
	Ranged   int
	Magic    int

	WeaponAccuracy float64
	WeaponPower    float64
	WeaponSpeed    float64
	TotalDefence   float64
}

// ResolveLoadout reads the player's current skills and gear into a
// Loadout for the given style.
func ResolveLoadout(reg *content.Registry, g *state.GameState, style string) Loadout {
	l := Loadout{Style: style, CombatType: styleCombatType(style), WeaponSpeed: 1}
	l.Attack = skillLevel(g, "attack")
	l.Strength = skillLevel(g, "strength")
	l.Defence = skillLevel(g, "defence")
	l.Ranged = skillLevel(g, "ranged")
	l.Magic = skillLevel(g, "magic")
	l.TotalDefence = float64(l.Defence)

	for slot, itemID := range g.Player.Equipment {
		def, ok := reg.Item(itemID)
		if !ok {
			continue
		}
		l.TotalDefence += def.Stats.DefenceBonus
		if slot != state.SlotWeapon {
			continue
		}
		l.WeaponAccuracy = def.Stats.Accuracy
		l.Element = def.Stats.Element
		if def.Stats.AttackSpeed > 0 {
			l.WeaponSpeed = def.Stats.AttackSpeed
		}
		switch l.CombatType {
		case "ranged":
			l.WeaponPower = def.Stats.RangedPower
		case "magic":
			l.WeaponPower = def.Stats.MagicPower
		default:
			l.WeaponPower = def.Stats.AttackPower
		}
	}
	return l
}

func skillLevel(g *state.GameState, skillID string) int {
	if sp, err := g.Skill(skillID); err == nil {
		return sp.Level
	}
	return 1
}

func styleCombatType(style string) string {
	switch style {
	case state.StyleRanged:
		return "ranged"
	case state.StyleMagic:
		return "magic"
	default:
		return "melee"
	}
}

// Offense weights the relevant skill levels by combat style and adds
// weapon accuracy on top.
func Offense(l Loadout) float64 {
	var off float64
	switch l.Style {
	case state.StyleAccurate:
		off = float64(l.Attack) * 2
	case state.StyleAggressive, state.StyleDefensive:
		off = float64(l.Attack)*1.4 + float64(l.Strength)*0.6
	case state.StyleRanged:
		off = float64(l.Ranged) * 1.8
	case state.StyleMagic:
		off = float64(l.Magic) * 1.6
	default:
		off = float64(l.Attack) * 2
	}
	return off + l.WeaponAccuracy
}

// HitChance is offense against scaled defense, clamped to [0.05, 0.95].
func HitChance(offense, defense float64) float64 {
	denom := offense + defense*1.2
	if denom <= 0 {
		return 0.05
	}
	c := offense / denom
	if c < 0.05 {
		return 0.05
	}
	if c > 0.95 {
		return 0.95
	}
	return c
}

// DamageRange gives the style-dependent min..max inclusive roll before
// effectiveness multipliers.
func DamageRange(l Loadout) (int, int) {
	switch l.CombatType {
	case "ranged":
		lo := 1 + int(math.Floor(float64(l.Ranged)*0.4))
		hi := 3 + int(math.Floor(float64(l.Ranged)*0.7+l.WeaponPower*1.5))
		return lo, hi
	case "magic":
		lo := 2 + int(math.Floor(float64(l.Magic)*0.5))
		hi := 4 + int(math.Floor(float64(l.Magic)*0.8+l.WeaponPower*1.8))
		return lo, hi
	default:
		lo := 1 + int(math.Floor(float64(l.Strength)*0.3))
		hi := 3 + int(math.Floor(float64(l.Strength)*0.6+l.WeaponPower*1.5))
		return lo, hi
	}
}

// Effectiveness multiplies the three independent matchup modifiers.
func Effectiveness(l Loadout, enemy *content.EnemyDefinition) float64 {
	mult := content.TypeMultiplier(content.CombatTriangle, l.CombatType, enemy.AttackType)
	mult *= content.TypeMultiplier(content.ElementMatrix, l.Element, enemy.Element)
	mult *= content.TypeMultiplier(content.FamilyMatrix, l.Element, enemy.Family)
	return mult
}

// EnemyDamage reduces the enemy's attack by a quarter of the player's
// total defence, floors at 1, then applies the +-30 percent variance
// factor (pass 0 for the mean).
func EnemyDamage(enemy *content.EnemyDefinition, totalDefence, variance float64) int {
	reduced := float64(enemy.Attack) - 0.25*totalDefence
	if reduced < 1 {
		reduced = 1
	}
	dmg := math.Round(reduced * (1 + variance))
	if dmg < 1 {
		return 1
	}
	return int(dmg)
}

// PlayerInterval is the time between player attacks, shortened by
// faster weapons but never below the floor.
func PlayerInterval(weaponSpeed float64) float64 {
	if weaponSpeed <= 0 {
		weaponSpeed = 1
	}
	iv := playerBaseIntervalMs / weaponSpeed
	if iv < playerMinIntervalMs {
		return playerMinIntervalMs
	}
	return iv
}

// EnemyInterval reads the enemy's attack cadence with a default.
func EnemyInterval(enemy *content.EnemyDefinition) float64 {
	if enemy.SpeedMs > 0 {
		return float64(enemy.SpeedMs)
	}
	return enemyDefaultInterval
}

// xpWeights is the victory split over combat skills, excluding the
// fixed hp share.
func xpWeights(style string) map[string]float64 {
	switch style {
	case state.StyleAccurate:
		return map[string]float64{"attack": 0.7, "strength": 0.2, "defence": 0.1}
	case state.StyleAggressive:
		return map[string]float64{"strength": 0.7, "attack": 0.2, "defence": 0.1}
	case state.StyleDefensive:
		return map[string]float64{"defence": 0.7, "attack": 0.2, "strength": 0.1}
	case state.StyleRanged:
		return map[string]float64{"ranged": 1}
	case state.StyleMagic:
		return map[string]float64{"magic": 1}
	default:
		return map[string]float64{"attack": 0.7, "strength": 0.2, "defence": 0.1}
	}
}

// hpXPShare of victory experience always goes to hitpoints.
const hpXPShare = 0.2

// SplitXP divides an enemy's experience across skills for the style.
func SplitXP(style string, totalXP int) map[string]int {
	out := map[string]int{
		"hp": int(math.Floor(float64(totalXP) * hpXPShare)),
	}
	rest := float64(totalXP) * (1 - hpXPShare)
	for skillID, w := range xpWeights(style) {
		out[skillID] = int(math.Floor(rest * w))
	}
	return out
}
