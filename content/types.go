// Package content holds the static definitions the simulation consumes:
// items, skills and their actions, crafting recipes, enemies, buffs,
// prestige upgrades, and shops. Definitions are authored as YAML documents,
// loaded once at startup, and treated as immutable lookup tables.
package content

// ItemStats carries the numeric stats an item contributes when equipped.
// Tools use the multiplier/chance fields; weapons and armor use the combat
// fields. Zero values mean "not present".
type ItemStats struct {
	SpeedMultiplier float64 `yaml:"speedMultiplier"`
	XPMultiplier    float64 `yaml:"xpMultiplier"`
	DoubleChance    float64 `yaml:"doubleChance"`
	RequiredLevel   int     `yaml:"requiredLevel"`

	Accuracy     float64 `yaml:"accuracy"`
	AttackSpeed  float64 `yaml:"attackSpeed"`
	AttackPower  float64 `yaml:"attackPower"`
	RangedPower  float64 `yaml:"rangedPower"`
	MagicPower   float64 `yaml:"magicPower"`
	DefenceBonus float64 `yaml:"defenceBonus"`
	HPBonus      float64 `yaml:"hpBonus"`
	CombatType   string  `yaml:"combatType"`
	Element      string  `yaml:"element"`
}

// ItemDefinition describes one item kind.
type ItemDefinition struct {
	ID          string             `yaml:"id"`
	Name        string             `yaml:"name"`
	Category    string             `yaml:"category"`
	Skill       string             `yaml:"skill,omitempty"`
	Slot        string             `yaml:"slot,omitempty"`
	Hands       int                `yaml:"hands,omitempty"`
	Value       int                `yaml:"value"`
	Stats       ItemStats          `yaml:"stats"`
	Modifiers   map[string]float64 `yaml:"modifiers,omitempty"`
	Openable    *LootTable         `yaml:"openable,omitempty"`
	Description string             `yaml:"description,omitempty"`
}

const (
	CategoryTool       = "tools"
	CategoryResource   = "resources"
	CategoryEquipment  = "equipment"
	CategoryConsumable = "consumables"
)

// LootTable rolls a fixed number of weighted draws, each with an amount range.
type LootTable struct {
	Rolls int         `yaml:"rolls"`
	Loot  []LootEntry `yaml:"loot"`
}

type LootEntry struct {
	Item   string  `yaml:"item"`
	Weight float64 `yaml:"weight"`
	Min    int     `yaml:"min"`
	Max    int     `yaml:"max"`
}

// SkillDefinition describes one trainable skill and its actions.
type SkillDefinition struct {
	ID       string             `yaml:"id"`
	Name     string             `yaml:"name"`
	MaxLevel int                `yaml:"maxLevel"`
	Actions  []ActionDefinition `yaml:"actions"`
}

// ActionDefinition is a skill's repeatable timed task. All timing fields are
// in milliseconds; all chance fields are probabilities in [0,1].
type ActionDefinition struct {
	ID             string            `yaml:"id"`
	Name           string            `yaml:"name"`
	Resource       string            `yaml:"resource,omitempty"`
	BaseTimeMs     int               `yaml:"baseTime"`
	BaseXP         int               `yaml:"baseXp"`
	BaseAmount     int               `yaml:"baseAmount"`
	RequiredLevel  int               `yaml:"requiredLevel,omitempty"`
	Variants       []ResourceVariant `yaml:"variants,omitempty"`
	RareDrops      []RareDrop        `yaml:"rareDrops,omitempty"`
	ExtraResources []ExtraResource   `yaml:"extraResources,omitempty"`
	ActionBuff     *ActionBuff       `yaml:"actionBuff,omitempty"`
	CritChance     float64           `yaml:"critChance,omitempty"`
	CritMultiplier float64           `yaml:"critMultiplier,omitempty"`
	DoubleChance   float64           `yaml:"doubleChance,omitempty"`
}

// ResourceVariant replaces the action's default resource with a weighted pick.
type ResourceVariant struct {
	Resource string  `yaml:"resource"`
	Weight   float64 `yaml:"weight"`
}

// RareDrop is rolled independently per cycle.
type RareDrop struct {
	Item   string  `yaml:"item"`
	Chance float64 `yaml:"chance"`
}

// ExtraResource is a secondary yield rolled independently per cycle.
type ExtraResource struct {
	Item   string  `yaml:"item"`
	Chance float64 `yaml:"chance"`
	Amount int     `yaml:"amount"`
}

// ActionBuff is an on-completion buff chance.
type ActionBuff struct {
	BuffID     string  `yaml:"buffId"`
	Chance     float64 `yaml:"chance"`
	DurationMs int     `yaml:"duration"`
}

// RecipeDefinition describes one crafting recipe. TimeMs is per unit.
type RecipeDefinition struct {
	ID            string  `yaml:"id"`
	Name          string  `yaml:"name"`
	Skill         string  `yaml:"skill"`
	TimeMs        int     `yaml:"time"`
	XP            int     `yaml:"xp"`
	RequiredLevel int     `yaml:"requiredLevel,omitempty"`
	Inputs        []Stack `yaml:"inputs"`
	Outputs       []Stack `yaml:"outputs"`
}

type Stack struct {
	Item   string `yaml:"item"`
	Amount int    `yaml:"amount"`
}

// EnemyDefinition describes one enemy kind. SpeedMs is the attack interval.
type EnemyDefinition struct {
	ID         string      `yaml:"id"`
	Name       string      `yaml:"name"`
	Difficulty string      `yaml:"difficulty,omitempty"`
	HP         int         `yaml:"hp"`
	Attack     int         `yaml:"attack"`
	Defence    int         `yaml:"defence"`
	SpeedMs    int         `yaml:"speed"`
	XP         int         `yaml:"xp"`
	Element    string      `yaml:"element,omitempty"`
	Family     string      `yaml:"family,omitempty"`
	AttackType string      `yaml:"attackType,omitempty"`
	Drops      []EnemyDrop `yaml:"drops,omitempty"`
}

type EnemyDrop struct {
	Item   string  `yaml:"item"`
	Chance float64 `yaml:"chance"`
	Min    int     `yaml:"min"`
	Max    int     `yaml:"max"`
}

// BuffDefinition describes a timed or permanent modifier bundle.
// DurationMs <= 0 means the buff never expires on its own.
type BuffDefinition struct {
	ID          string             `yaml:"id"`
	Name        string             `yaml:"name"`
	Description string             `yaml:"description,omitempty"`
	DurationMs  int                `yaml:"duration"`
	Modifiers   map[string]float64 `yaml:"modifiers"`
}

// PrestigeDefinition describes a purchasable permanent upgrade with
// geometric cost scaling.
type PrestigeDefinition struct {
	ID             string  `yaml:"id"`
	Name           string  `yaml:"name"`
	BaseCost       int     `yaml:"baseCost"`
	CostMultiplier float64 `yaml:"costMultiplier"`
	MaxLevel       int     `yaml:"maxLevel"`
	BonusPerLevel  float64 `yaml:"bonusPerLevel"`
	EffectType     string  `yaml:"effectType"`
}

// Prestige effect types recognized by the ledger.
const (
	EffectOfflineEfficiency   = "offline_efficiency"
	EffectXPPercentGlobal     = "xp_percent_global"
	EffectAmountPercentGlobal = "amount_percent_global"
	EffectRareDropPercent     = "rare_drop_percent"
	EffectSpeedPercentGlobal  = "speed_percent_global"
)

// ShopDefinition describes a vendor and its stock.
type ShopDefinition struct {
	ID         string         `yaml:"id"`
	Name       string         `yaml:"name"`
	Categories []ShopCategory `yaml:"categories"`
}

type ShopCategory struct {
	ID    string      `yaml:"id"`
	Name  string      `yaml:"name"`
	Items []ShopEntry `yaml:"items"`
}

// ShopEntry gates a purchasable item. Stock -1 means unlimited.
type ShopEntry struct {
	ItemID        string `yaml:"itemId"`
	Price         int    `yaml:"price"`
	Currency      string `yaml:"currency"`
	Stock         int    `yaml:"stock"`
	SalePercent   int    `yaml:"salePercent,omitempty"`
	RequiresLevel int    `yaml:"requiresLevel,omitempty"`
	Skill         string `yaml:"skill,omitempty"`
}

// AchievementDefinition describes an unlock condition and its rewards.
type AchievementDefinition struct {
	ID         string               `yaml:"id"`
	Name       string               `yaml:"name"`
	Points     int                  `yaml:"points"`
	Conditions AchievementCondition `yaml:"conditions"`
	Rewards    []string             `yaml:"rewards,omitempty"`
}

// AchievementCondition supports the condition kinds the original tracked.
type AchievementCondition struct {
	Type   string `yaml:"type"`
	Skill  string `yaml:"skill,omitempty"`
	Level  int    `yaml:"level,omitempty"`
	Item   string `yaml:"item,omitempty"`
	Amount int    `yaml:"amount,omitempty"`
	Stat   string `yaml:"stat,omitempty"`
	Value  int    `yaml:"value,omitempty"`
}
