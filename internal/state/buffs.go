package state

// AddBuff activates a buff until the given expiry. Re-applying an active
// buff refreshes its expiry instead of stacking a second instance.
func (g *GameState) AddBuff(buffID string, expiresAt int64) {
	for _, b := range g.Buffs {
		if b.ID == buffID {
			if !b.Permanent && expiresAt > b.ExpiresAt {
				b.ExpiresAt = expiresAt
			}
			return
		}
	}
	g.Buffs = append(g.Buffs, &ActiveBuff{ID: buffID, ExpiresAt: expiresAt})
}

// AddPermanentBuff activates a buff that never expires. Duplicate ids
// are ignored.
func (g *GameState) AddPermanentBuff(buffID string) {
	for _, b := range g.Buffs {
		if b.ID == buffID {
			b.Permanent = true
			return
		}
	}
	g.Buffs = append(g.Buffs, &ActiveBuff{ID: buffID, Permanent: true})
}

// PruneExpiredBuffs drops every timed buff whose expiry has passed and
// returns the ids removed.
func (g *GameState) PruneExpiredBuffs(nowMs int64) []string {
	var removed []string
	kept := g.Buffs[:0]
	for _, b := range g.Buffs {
		if !b.Permanent && b.ExpiresAt <= nowMs {
			removed = append(removed, b.ID)
			continue
		}
		kept = append(kept, b)
	}
	g.Buffs = kept
	return removed
}

// HasBuff reports whether buffID is currently active.
func (g *GameState) HasBuff(buffID string) bool {
	for _, b := range g.Buffs {
		if b.ID == buffID {
			return true
		}
	}
	return false
}
