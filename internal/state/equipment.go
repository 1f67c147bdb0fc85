package state

import "emberhollow/server/content"

const (
	SlotWeapon  = "weapon"
	SlotOffhand = "offhand"
	SlotHead    = "head"
	SlotBody    = "body"
)

// EquipTool moves a tool from the inventory into the matching skill's
// tool slot. A previously equipped tool for that skill returns to the
// inventory.
func (g *GameState) EquipTool(reg *content.Registry, itemID string) error {
	def, ok := reg.Item(itemID)
	if !ok {
		return ErrUnknownItem
	}
	if def.Category != content.CategoryTool || def.Skill == "" {
		return ErrWrongCategory
	}
	sp, err := g.Skill(def.Skill)
	if err != nil {
		return err
	}
	if sp.Level < def.Stats.RequiredLevel {
		return ErrLevelTooLow
	}
	if g.Inventory[itemID] < 1 {
		return ErrInsufficient
	}
	if err := g.RemoveItem(itemID, 1, ReasonUsed); err != nil {
		return err
	}
	if prev := g.Player.Tools[def.Skill]; prev != "" {
		g.Inventory[prev]++
	}
	g.Player.Tools[def.Skill] = itemID
	return nil
}

// UnequipTool returns the tool for skillID to the inventory.
func (g *GameState) UnequipTool(skillID string) error {
	itemID := g.Player.Tools[skillID]
	if itemID == "" {
		return ErrNothingEquipped
	}
	delete(g.Player.Tools, skillID)
	g.Inventory[itemID]++
	return nil
}

// EquipItem moves combat equipment from the inventory into its slot.
// Two-handed weapons claim both the weapon and offhand slots, so the
// conflicting piece is unequipped first.
func (g *GameState) EquipItem(reg *content.Registry, itemID string) error {
	def, ok := reg.Item(itemID)
	if !ok {
		return ErrUnknownItem
	}
	if def.Category != content.CategoryEquipment || def.Slot == "" {
		return ErrWrongCategory
	}
	if def.Stats.RequiredLevel > 0 {
		gate, err := g.Skill(equipGateSkill(def))
		if err != nil {
			return err
		}
		if gate.Level < def.Stats.RequiredLevel {
			return ErrLevelTooLow
		}
	}
	if g.Inventory[itemID] < 1 {
		return ErrInsufficient
	}
	if err := g.RemoveItem(itemID, 1, ReasonUsed); err != nil {
		return err
	}

	if def.Slot == SlotWeapon && def.Hands >= 2 {
		g.unequipSlot(SlotOffhand)
	}
	if def.Slot == SlotOffhand {
		if weaponID := g.Player.Equipment[SlotWeapon]; weaponID != "" {
			if weapon, ok := reg.Item(weaponID); ok && weapon.Hands >= 2 {
				g.unequipSlot(SlotWeapon)
			}
		}
	}
	g.unequipSlot(def.Slot)
	g.Player.Equipment[def.Slot] = itemID
	return nil
}

// UnequipItem returns the item in slot to the inventory.
func (g *GameState) UnequipItem(slot string) error {
	if g.Player.Equipment[slot] == "" {
		return ErrNothingEquipped
	}
	g.unequipSlot(slot)
	return nil
}

func (g *GameState) unequipSlot(slot string) {
	itemID := g.Player.Equipment[slot]
	if itemID == "" {
		return
	}
	delete(g.Player.Equipment, slot)
	g.Inventory[itemID]++
}

// equipGateSkill picks which skill level gates an equipment piece.
func equipGateSkill(def *content.ItemDefinition) string {
	if def.Slot != SlotWeapon {
		return "defence"
	}
	switch def.Stats.CombatType {
	case "ranged":
		return "ranged"
	case "magic":
		return "magic"
	default:
		return "attack"
	}
}
