package content

// Combat type effectiveness. A multiplier above 1 means the attacker's
// category counters the defender's; below 1 means it is countered.

// CombatTriangle maps attacker combat type to defender combat type.
// melee beats ranged, ranged beats magic, magic beats melee.
var CombatTriangle = map[string]map[string]float64{
	"melee": {
		"ranged": 1.25,
		"magic":  0.75,
	},
	"ranged": {
		"magic": 1.25,
		"melee": 0.75,
	},
	"magic": {
		"melee":  1.25,
		"ranged": 0.75,
	},
}

// ElementMatrix maps attack element to defender element.
// fire beats nature, nature beats water, water beats fire.
var ElementMatrix = map[string]map[string]float64{
	"fire": {
		"nature": 1.20,
		"water":  0.85,
	},
	"water": {
		"fire":   1.20,
		"nature": 0.85,
	},
	"nature": {
		"water": 1.20,
		"fire":  0.85,
	},
}

// FamilyMatrix maps attack element to enemy family for flavour bonuses,
// such as water attacks dousing demons.
var FamilyMatrix = map[string]map[string]float64{
	"fire": {
		"undead": 1.15,
		"beast":  0.90,
	},
	"water": {
		"demon":  1.15,
		"undead": 0.90,
	},
	"nature": {
		"beast": 1.15,
		"demon": 0.90,
	},
}

// TypeMultiplier looks up an attacker-vs-defender multiplier in the given
// matrix, defaulting to 1 when either side is absent.
func TypeMultiplier(matrix map[string]map[string]float64, attacker, defender string) float64 {
	row, ok := matrix[attacker]
	if !ok {
		return 1
	}
	mult, ok := row[defender]
	if !ok {
		return 1
	}
	return mult
}
