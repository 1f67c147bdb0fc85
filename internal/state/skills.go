package state

import "math"

// XPToNext is the experience required to advance from the given level.
func XPToNext(level int) int {
	return int(math.Floor(50 * math.Pow(float64(level), 1.8)))
}

// AddXP grants experience to a skill, resolving any number of level-ups
// in one call. At the skill's maximum level both XP and XPToNext clamp
// to zero. The hp skill also raises MaxHP and heals the difference.
// Returns the number of levels gained.
func (g *GameState) AddXP(skillID string, amount int) (int, error) {
	sp, err := g.Skill(skillID)
	if err != nil {
		return 0, err
	}
	if amount <= 0 {
		return 0, nil
	}
	sp.TotalXP += amount
	maxLevel := g.maxLevel(skillID)
	if sp.Level >= maxLevel {
		sp.XP = 0
		sp.XPToNext = 0
		return 0, nil
	}

	sp.XP += amount
	gained := 0
	for sp.Level < maxLevel && sp.XP >= sp.XPToNext {
		sp.XP -= sp.XPToNext
		sp.Level++
		gained++
		sp.XPToNext = XPToNext(sp.Level)
	}
	if sp.Level >= maxLevel {
		sp.XP = 0
		sp.XPToNext = 0
	}
	if gained > 0 && skillID == "hp" {
		g.Player.MaxHP += gained * HPPerLevel
		g.Player.HP += gained * HPPerLevel
	}
	return gained, nil
}

func (g *GameState) maxLevel(skillID string) int {
	if g.maxLevels != nil {
		if lv, ok := g.maxLevels[skillID]; ok {
			return lv
		}
	}
	return 99
}
