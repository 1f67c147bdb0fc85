// Package crafting runs the FIFO job queue. Exactly one job is in
// flight at a time; its duration anchors to a wall-clock start stamp so
// progress survives reloads without drift.
package crafting

import (
	"context"
	"errors"
	"math"

	"emberhollow/server/content"
	"emberhollow/server/internal/modifier"
	"emberhollow/server/internal/state"
	"emberhollow/server/logging"
	logcraft "emberhollow/server/logging/crafting"
)

var (
	ErrUnknownRecipe = errors.New("unknown recipe")
	ErrInvalidQty    = errors.New("invalid quantity")
	ErrNoActiveCraft = errors.New("no craft in progress")
)

// minSpeed guards the duration division against zeroed speed modifiers.
const minSpeed = 0.0001

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

// CanCraft reports whether the player can afford quantity runs of the
// recipe right now, including its level gate.
func (e *Engine) CanCraft(g *state.GameState, recipe *content.RecipeDefinition, quantity int) bool {
	if quantity < 1 {
		return false
	}
	if sp, err := g.Skill(recipe.Skill); err != nil || sp.Level < recipe.RequiredLevel {
		return false
	}
	for _, input := range recipe.Inputs {
		if g.Count(input.Item) < input.Amount*quantity {
			return false
		}
	}
	return true
}

// MaxCraftAmount is the largest quantity of the recipe the current
// inventory can pay for, zero when the level gate fails.
func (e *Engine) MaxCraftAmount(g *state.GameState, recipe *content.RecipeDefinition) int {
	if sp, err := g.Skill(recipe.Skill); err != nil || sp.Level < recipe.RequiredLevel {
		return 0
	}
	max := -1
	for _, input := range recipe.Inputs {
		if input.Amount <= 0 {
			continue
		}
		runs := g.Count(input.Item) / input.Amount
		if max < 0 || runs < max {
			max = runs
		}
	}
	if max < 0 {
		return 0
	}
	return max
}

// TotalDuration computes the wall-clock length of a job in milliseconds.
func TotalDuration(recipe *content.RecipeDefinition, quantity int, speed float64) int64 {
	if speed < minSpeed {
		speed = minSpeed
	}
	return int64(math.Floor(float64(recipe.TimeMs) * float64(quantity) / speed))
}

// AddToQueue appends a job and starts it immediately when nothing is in
// flight.
func (e *Engine) AddToQueue(ctx context.Context, g *state.GameState, recipeID string, quantity int, nowMs int64, tick uint64) error {
	if _, ok := e.reg.Recipe(recipeID); !ok {
		return ErrUnknownRecipe
	}
	if !state.ValidAmount(float64(quantity)) {
		return ErrInvalidQty
	}
	g.CraftQueue = append(g.CraftQueue, &state.CraftJob{RecipeID: recipeID, Quantity: quantity})
	if g.ActiveCraft == nil {
		e.startNext(ctx, g, nowMs, tick)
	}
	return nil
}

// startNext pops queued jobs until one passes validation and starts, or
// the queue drains. Unaffordable jobs are skipped with a notice.
func (e *Engine) startNext(ctx context.Context, g *state.GameState, nowMs int64, tick uint64) {
	for g.ActiveCraft == nil && len(g.CraftQueue) > 0 {
		job := g.CraftQueue[0]
		g.CraftQueue = g.CraftQueue[1:]

		recipe, ok := e.reg.Recipe(job.RecipeID)
		if !ok || !e.CanCraft(g, recipe, job.Quantity) {
			logcraft.JobSkipped(ctx, e.pub, tick, logcraft.CraftPayload{
				Recipe:   job.RecipeID,
				Quantity: job.Quantity,
				Reason:   "cannot afford",
			})
			continue
		}

		set := modifier.Aggregate(e.reg, g, nowMs)
		stats := modifier.FinalStats(e.reg, g, set, recipe.Skill)
		job.StartedAt = nowMs
		job.FinishAt = nowMs + TotalDuration(recipe, job.Quantity, stats.SpeedMultiplier)
		job.Finishing = false
		g.ActiveCraft = job
		logcraft.CraftStarted(ctx, e.pub, tick, logcraft.CraftPayload{
			Recipe:   job.RecipeID,
			Quantity: job.Quantity,
		})
	}
}

// Tick finalizes the in-flight job once its wall-clock deadline passes.
// The Finishing flag guards against re-entrant double completion.
func (e *Engine) Tick(ctx context.Context, g *state.GameState, nowMs int64, tick uint64) {
	job := g.ActiveCraft
	if job == nil || job.Finishing || nowMs < job.FinishAt {
		return
	}
	job.Finishing = true
	defer func() {
		if g.ActiveCraft == job {
			g.ActiveCraft = nil
		}
		e.startNext(ctx, g, nowMs, tick)
	}()

	recipe, ok := e.reg.Recipe(job.RecipeID)
	if !ok || !e.CanCraft(g, recipe, job.Quantity) {
		// Materials were spent elsewhere since the job started.
		logcraft.CraftCancelled(ctx, e.pub, tick, logcraft.CraftPayload{
			Recipe:   job.RecipeID,
			Quantity: job.Quantity,
			Reason:   "validation failed at completion",
		})
		return
	}

	for _, input := range recipe.Inputs {
		if err := g.RemoveItem(input.Item, input.Amount*job.Quantity, state.ReasonConsumed); err != nil {
			logcraft.CraftCancelled(ctx, e.pub, tick, logcraft.CraftPayload{
				Recipe:   job.RecipeID,
				Quantity: job.Quantity,
				Reason:   "inputs vanished mid-finalize",
			})
			return
		}
	}
	for _, output := range recipe.Outputs {
		_ = g.AddItem(output.Item, output.Amount*job.Quantity)
	}

	set := modifier.Aggregate(e.reg, g, nowMs)
	stats := modifier.FinalStats(e.reg, g, set, recipe.Skill)
	xp := int(math.Floor(float64(recipe.XP*job.Quantity) * stats.XPMultiplier))
	_, _ = g.AddXP(recipe.Skill, xp)
	g.BumpStat("itemsCrafted", job.Quantity)

	logcraft.CraftFinished(ctx, e.pub, tick, logcraft.CraftPayload{
		Recipe:   job.RecipeID,
		Quantity: job.Quantity,
	})
}

// CancelCraft drops the in-flight job without granting anything, then
// advances the queue.
func (e *Engine) CancelCraft(ctx context.Context, g *state.GameState, nowMs int64, tick uint64) error {
	job := g.ActiveCraft
	if job == nil {
		return ErrNoActiveCraft
	}
	g.ActiveCraft = nil
	logcraft.CraftCancelled(ctx, e.pub, tick, logcraft.CraftPayload{
		Recipe:   job.RecipeID,
		Quantity: job.Quantity,
		Reason:   "cancelled",
	})
	e.startNext(ctx, g, nowMs, tick)
	return nil
}

// Resume restores a loaded in-flight job. The persisted StartedAt and
// FinishAt stamps stay untouched so time spent offline counts toward the
// deadline; an overdue job finalizes on the next Tick. Jobs whose recipe
// vanished from content are dropped.
func (e *Engine) Resume(ctx context.Context, g *state.GameState, nowMs int64, tick uint64) {
	job := g.ActiveCraft
	if job == nil {
		e.startNext(ctx, g, nowMs, tick)
		return
	}
	if _, ok := e.reg.Recipe(job.RecipeID); !ok {
		g.ActiveCraft = nil
		logcraft.JobSkipped(ctx, e.pub, tick, logcraft.CraftPayload{
			Recipe:   job.RecipeID,
			Quantity: job.Quantity,
			Reason:   "recipe removed from content",
		})
		e.startNext(ctx, g, nowMs, tick)
		return
	}
	job.Finishing = false
}
