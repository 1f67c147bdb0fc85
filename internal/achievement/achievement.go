// Package achievement evaluates unlock conditions and pays out rewards.
// Unlocks are one-way; the unlock set persists in saves.
package achievement

import (
	"context"
	"strconv"
	"strings"

	"emberhollow/server/content"
	"emberhollow/server/internal/prestige"
	"emberhollow/server/internal/state"
	"emberhollow/server/logging"
	logecon "emberhollow/server/logging/economy"
)

// Condition types.
const (
	CondSkillLevel     = "skill_level"
	CondResourceAmount = "resource_amount"
	CondResourceUsed   = "resource_used"
	CondTotalLevel     = "total_level"
	CondStat           = "stat"
)

type Engine struct {
	reg *content.Registry
	pub logging.Publisher
}

func NewEngine(reg *content.Registry, pub logging.Publisher) *Engine {
	if pub == nil {
		pub = logging.NopPublisher()
	}
	return &Engine{reg: reg, pub: pub}
}

// conditionMet checks one achievement's unlock condition against the
// current state. Unknown condition types never unlock.
func conditionMet(g *state.GameState, cond content.AchievementCondition) bool {
	switch cond.Type {
	case CondSkillLevel:
		sp, err := g.Skill(cond.Skill)
		return err == nil && sp.Level >= cond.Level
	case CondResourceAmount:
		rs, ok := g.ResourceStats[cond.Item]
		return ok && rs.Gained >= cond.Amount
	case CondResourceUsed:
		rs, ok := g.ResourceStats[cond.Item]
		return ok && rs.Used >= cond.Amount
	case CondTotalLevel:
		return g.TotalLevel() >= cond.Value
	case CondStat:
		return g.Player.Stats[cond.Stat] >= cond.Value
	default:
		return false
	}
}

// Sweep checks every locked achievement and unlocks those whose
// condition now holds, paying out rewards and prestige points. Returns
// the ids unlocked this pass.
func (e *Engine) Sweep(ctx context.Context, g *state.GameState, nowMs int64, tick uint64) []string {
	var unlocked []string
	for _, def := range e.reg.Achievements() {
		if g.Achievements[def.ID] {
			continue
		}
		if !conditionMet(g, def.Conditions) {
			continue
		}
		g.Achievements[def.ID] = true
		prestige.Award(g, def.Points)
		for _, reward := range def.Rewards {
			e.grantReward(ctx, g, reward, nowMs, tick)
		}
		unlocked = append(unlocked, def.ID)
	}
	return unlocked
}

// grantReward parses one reward string. Formats: "title:<name>",
// "item:<id>:<amount>", "bonus:<buffId>". Malformed rewards are
// dropped silently.
func (e *Engine) grantReward(ctx context.Context, g *state.GameState, reward string, nowMs int64, tick uint64) {
	switch {
	case strings.HasPrefix(reward, "title:"):
		title := strings.TrimPrefix(reward, "title:")
		if title == "" {
			return
		}
		for _, t := range g.Player.Titles {
			if t == title {
				return
			}
		}
		g.Player.Titles = append(g.Player.Titles, title)
		if g.Player.ActiveTitle == "" {
			g.Player.ActiveTitle = title
		}

	case strings.HasPrefix(reward, "item:"):
		parts := strings.Split(strings.TrimPrefix(reward, "item:"), ":")
		if len(parts) != 2 {
			return
		}
		amount, err := strconv.Atoi(parts[1])
		if err != nil || amount < 1 {
			return
		}
		if _, ok := e.reg.Item(parts[0]); !ok {
			return
		}
		_ = g.AddItem(parts[0], amount)
		logecon.ItemGranted(ctx, e.pub, tick, logecon.ItemPayload{
			Item:   parts[0],
			Amount: amount,
			Reason: "achievement",
		})

	case strings.HasPrefix(reward, "bonus:"):
		buffID := strings.TrimPrefix(reward, "bonus:")
		def, ok := e.reg.Buff(buffID)
		if !ok {
			return
		}
		if def.DurationMs > 0 {
			g.AddBuff(buffID, nowMs+int64(def.DurationMs))
		} else {
			g.AddPermanentBuff(buffID)
		}
	}
}
