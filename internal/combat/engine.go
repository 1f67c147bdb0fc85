// Package combat runs enemy encounters as a pair of countdown timers
// advanced by wall-clock deltas. Each side acts when its timer runs out
// and the interval is added back on, so overshoot carries forward.
package combat

import (
	"context"
	"errors"
	"math"
	"math/rand"

	"emberhollow/server/content"
	"emberhollow/server/internal/state"
	"emberhollow/server/logging"
	logcombat "emberhollow/server/logging/combat"
)

var (
	ErrUnknownEnemy    = errors.New("unknown enemy")
	ErrAlreadyFighting = errors.New("combat already in progress")
	ErrNotFighting     = errors.New("no combat in progress")
)

// Terminal results of an encounter.
const (
	ResultWin  = "win"
	ResultLose = "lose"
	ResultFled = "fled"
)

type Engine struct {
	reg *content.Registry
	rng *rand.Rand
	pub logging.Publisher

	// FleePenaltyPercent of current HP is lost when fleeing. Zero keeps
	// fleeing free.
	FleePenaltyPercent float64
}

func NewEngine(reg *content.Registry, rng *rand.Rand, pub logging.Publisher) *Engine {
	if pub == nil {
		pub = logging.NopPublisher()
	}
	return &Engine{reg: reg, rng: rng, pub: pub}
}

// StartCombat opens an encounter against enemyID using the player's
// current combat style.
func (e *Engine) StartCombat(ctx context.Context, g *state.GameState, enemyID string, nowMs int64, tick uint64) error {
	if g.Combat != nil {
		return ErrAlreadyFighting
	}
	enemy, ok := e.reg.Enemy(enemyID)
	if !ok {
		return ErrUnknownEnemy
	}
	style := g.Player.CombatStyle
	g.Combat = &state.CombatState{
		EnemyID:     enemyID,
		EnemyHP:     enemy.HP,
		PlayerTimer: PlayerInterval(ResolveLoadout(e.reg, g, style).WeaponSpeed),
		EnemyTimer:  EnemyInterval(enemy),
		StartedAt:   nowMs,
		PlayerStyle: style,
	}
	logcombat.Started(ctx, e.pub, tick, logcombat.StartedPayload{Enemy: enemyID, Style: style})
	return nil
}

// StopCombat flees the current encounter. The configured penalty, if
// any, is applied to current HP.
func (e *Engine) StopCombat(ctx context.Context, g *state.GameState, tick uint64) error {
	if g.Combat == nil {
		return ErrNotFighting
	}
	enemyID := g.Combat.EnemyID
	g.Combat = nil
	if e.FleePenaltyPercent > 0 {
		loss := int(math.Floor(float64(g.Player.HP) * e.FleePenaltyPercent / 100))
		g.Player.HP -= loss
		if g.Player.HP < 1 {
			g.Player.HP = 1
		}
	}
	logcombat.Ended(ctx, e.pub, tick, logcombat.EndedPayload{Enemy: enemyID, Result: ResultFled})
	return nil
}

// Tick advances both countdown timers by dtMs and resolves any attacks
// that came due. Returns the terminal result, or "" while the fight
// continues.
func (e *Engine) Tick(ctx context.Context, g *state.GameState, dtMs float64, tick uint64) string {
	c := g.Combat
	if c == nil {
		return ""
	}
	enemy, ok := e.reg.Enemy(c.EnemyID)
	if !ok {
		// Enemy removed from content; dissolve the session.
		g.Combat = nil
		return ResultFled
	}
	loadout := ResolveLoadout(e.reg, g, c.PlayerStyle)

	c.PlayerTimer -= dtMs
	c.EnemyTimer -= dtMs

	for c.PlayerTimer <= 0 {
		e.playerAttack(ctx, g, c, enemy, loadout, tick)
		c.PlayerTimer += PlayerInterval(loadout.WeaponSpeed)
		if c.EnemyHP <= 0 {
			return e.win(ctx, g, c, enemy, tick)
		}
	}
	for c.EnemyTimer <= 0 {
		e.enemyAttack(ctx, g, c, enemy, loadout, tick)
		c.EnemyTimer += EnemyInterval(enemy)
		if g.Player.HP <= 0 {
			return e.lose(ctx, g, c, tick)
		}
	}
	return ""
}

func (e *Engine) playerAttack(ctx context.Context, g *state.GameState, c *state.CombatState, enemy *content.EnemyDefinition, l Loadout, tick uint64) {
	chance := HitChance(Offense(l), float64(enemy.Defence))
	if e.rng.Float64() >= chance {
		return
	}
	lo, hi := DamageRange(l)
	dmg := lo
	if hi > lo {
		dmg += e.rng.Intn(hi - lo + 1)
	}
	dmg = int(math.Floor(float64(dmg) * Effectiveness(l, enemy)))
	if dmg < 1 {
		dmg = 1
	}
	c.EnemyHP -= dmg
	logcombat.PlayerHit(ctx, e.pub, tick, logcombat.HitPayload{Enemy: c.EnemyID, Damage: dmg, Chance: chance})
}

func (e *Engine) enemyAttack(ctx context.Context, g *state.GameState, c *state.CombatState, enemy *content.EnemyDefinition, l Loadout, tick uint64) {
	variance := (e.rng.Float64()*2 - 1) * 0.3
	dmg := EnemyDamage(enemy, l.TotalDefence, variance)
	g.Player.HP -= dmg
	logcombat.EnemyHit(ctx, e.pub, tick, logcombat.HitPayload{Enemy: c.EnemyID, Damage: dmg})
}

func (e *Engine) win(ctx context.Context, g *state.GameState, c *state.CombatState, enemy *content.EnemyDefinition, tick uint64) string {
	g.Combat = nil
	for skillID, xp := range SplitXP(c.PlayerStyle, enemy.XP) {
		_, _ = g.AddXP(skillID, xp)
	}
	for _, drop := range enemy.Drops {
		if e.rng.Float64() >= drop.Chance {
			continue
		}
		amount := drop.Min
		if drop.Max > drop.Min {
			amount += e.rng.Intn(drop.Max - drop.Min + 1)
		}
		if amount > 0 {
			_ = g.AddItem(drop.Item, amount)
		}
	}
	g.BumpStat("enemiesDefeated", 1)
	logcombat.Ended(ctx, e.pub, tick, logcombat.EndedPayload{Enemy: c.EnemyID, Result: ResultWin, XP: enemy.XP})
	return ResultWin
}

func (e *Engine) lose(ctx context.Context, g *state.GameState, c *state.CombatState, tick uint64) string {
	g.Combat = nil
	g.Player.HP = g.Player.MaxHP
	logcombat.Ended(ctx, e.pub, tick, logcombat.EndedPayload{Enemy: c.EnemyID, Result: ResultLose})
	return ResultLose
}
