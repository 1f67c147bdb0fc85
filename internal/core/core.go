// Package core owns the game state and drives the simulation. All
// mutation happens under one mutex: the tick loop and every public
// operation take it, so engines never see a half-updated state.
package core

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"emberhollow/server/content"
	"emberhollow/server/internal/achievement"
	"emberhollow/server/internal/combat"
	"emberhollow/server/internal/config"
	"emberhollow/server/internal/crafting"
	"emberhollow/server/internal/notify"
	"emberhollow/server/internal/offline"
	"emberhollow/server/internal/save"
	"emberhollow/server/internal/shop"
	"emberhollow/server/internal/skill"
	"emberhollow/server/internal/state"
	"emberhollow/server/logging"
	logpersist "emberhollow/server/logging/persistence"
)

// Storage abstracts the persistence layer so tests can run without a
// database file.
type Storage interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

type Core struct {
	mu sync.Mutex

	cfg   config.Config
	reg   *content.Registry
	g     *state.GameState
	store Storage
	pub   logging.Publisher
	clock func() time.Time

	skills       *skill.Engine
	crafts       *crafting.Engine
	combat       *combat.Engine
	shop         *shop.Engine
	achievements *achievement.Engine

	changes *notify.Hub[Snapshot]

	tick           uint64
	lastOffline    *offline.Summary
	savesWritten   uint64
	saveFailures   uint64
	lastSaveUnixMs int64
}

// New assembles a core around fresh default state. Call Load to pull a
// persisted save in before Run.
func New(cfg config.Config, reg *content.Registry, store Storage, pub logging.Publisher, rng *rand.Rand, clock func() time.Time) *Core {
	if pub == nil {
		pub = logging.NopPublisher()
	}
	if clock == nil {
		clock = time.Now
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(clock().UnixNano()))
	}
	combatEngine := combat.NewEngine(reg, rng, pub)
	combatEngine.FleePenaltyPercent = cfg.FleePenaltyPercent
	return &Core{
		cfg:          cfg,
		reg:          reg,
		g:            state.New(reg),
		store:        store,
		pub:          pub,
		clock:        clock,
		skills:       skill.NewEngine(reg, rng, pub),
		crafts:       crafting.NewEngine(reg, pub),
		combat:       combatEngine,
		shop:         shop.NewEngine(reg, rng, pub),
		achievements: achievement.NewEngine(reg, pub),
		changes:      notify.NewHub[Snapshot](),
	}
}

func (c *Core) nowMs() int64 {
	return c.clock().UnixMilli()
}

// Changes exposes the state-changed feed consumed by the transport.
func (c *Core) Changes() *notify.Hub[Snapshot] {
	return c.changes
}

// Load restores persisted state, grants offline catch-up, and resumes
// whatever was running. A missing save starts fresh; a corrupt one is
// logged and degraded to defaults.
func (c *Core) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := c.store.Get(ctx, save.KeySave)
	if errors.Is(err, save.ErrNotFound) {
		return nil
	}
	if err != nil {
		logpersist.LoadFailed(ctx, c.pub, err)
		return nil
	}
	blob, err := save.Decode(data)
	if err != nil {
		logpersist.LoadFailed(ctx, c.pub, err)
		return nil
	}

	g, pruned := save.Hydrate(c.reg, blob)
	for _, id := range pruned {
		logpersist.EntryPruned(ctx, c.pub, "item", id)
	}
	c.g = g

	now := c.nowMs()
	c.lastOffline = offline.Simulate(c.reg, c.g, now)
	offline.Apply(c.g, c.lastOffline)

	c.skills.ResumeAll(ctx, c.g, now)
	c.crafts.Resume(ctx, c.g, now, c.tick)
	return nil
}

// Run drives the simulation until ctx is cancelled. A final save runs
// on the way out.
func (c *Core) Run(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.TickInterval)
	defer ticker.Stop()
	autosave := time.NewTicker(c.cfg.AutosaveInterval)
	defer autosave.Stop()

	last := c.clock()
	for {
		select {
		case <-ctx.Done():
			c.Save(context.WithoutCancel(ctx))
			return
		case <-autosave.C:
			c.Save(ctx)
		case now := <-ticker.C:
			dt := now.Sub(last)
			if dt <= 0 {
				continue
			}
			last = now
			c.Advance(ctx, dt)
		}
	}
}

// Advance runs one simulation step of length dt.
func (c *Core) Advance(ctx context.Context, dt time.Duration) {
	c.mu.Lock()
	c.tick++
	tick := c.tick
	now := c.nowMs()
	dtMs := float64(dt.Milliseconds())

	for _, id := range c.g.PruneExpiredBuffs(now) {
		logpersist.EntryPruned(ctx, c.pub, "buff", id)
	}
	c.skills.Tick(ctx, c.g, dtMs, now, tick)
	c.crafts.Tick(ctx, c.g, now, tick)
	c.combat.Tick(ctx, c.g, dtMs, tick)
	c.achievements.Sweep(ctx, c.g, now, tick)
	c.g.TotalPlayMs += dt.Milliseconds()

	snap := c.buildSnapshot()
	c.mu.Unlock()

	c.changes.Publish(snap)
}

// Save writes the current projection. Failures are logged and the
// in-memory state stays authoritative.
func (c *Core) Save(ctx context.Context) {
	c.mu.Lock()
	now := c.nowMs()
	blob := save.Build(c.g, now)
	tick := c.tick
	c.mu.Unlock()

	data, err := save.Encode(blob)
	if err == nil {
		err = c.store.Put(ctx, save.KeySave, data)
	}
	if err == nil {
		// Stored beside the blob so tooling can read the stamp without
		// decoding a full save.
		err = c.store.Put(ctx, save.KeyLastOnline, []byte(strconv.FormatInt(now, 10)))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.saveFailures++
		logpersist.SaveFailed(ctx, c.pub, tick, err)
		return
	}
	c.g.LastOnline = now
	c.savesWritten++
	c.lastSaveUnixMs = now
	logpersist.SaveWritten(ctx, c.pub, tick)
}

// Diagnostics is a point-in-time operational summary.
type Diagnostics struct {
	Tick           uint64 `json:"tick"`
	SavesWritten   uint64 `json:"savesWritten"`
	SaveFailures   uint64 `json:"saveFailures"`
	LastSaveUnixMs int64  `json:"lastSaveUnixMs"`
	Subscribers    int    `json:"subscribers"`
	TotalPlayMs    int64  `json:"totalPlayMs"`
}

func (c *Core) Diagnostics() Diagnostics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Diagnostics{
		Tick:           c.tick,
		SavesWritten:   c.savesWritten,
		SaveFailures:   c.saveFailures,
		LastSaveUnixMs: c.lastSaveUnixMs,
		Subscribers:    c.changes.Len(),
		TotalPlayMs:    c.g.TotalPlayMs,
	}
}
