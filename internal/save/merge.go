package save

import (
	"encoding/json"

	"emberhollow/server/internal/state"
)

// defaultSchema renders the zero blob as a generic JSON map. Merging
// iterates its keys, so unknown keys in a persisted blob are dropped by
// construction.
func defaultSchema() map[string]any {
	blob := &Blob{
		Version:       Version,
		Skills:        map[string]SkillBlob{},
		Inventory:     map[string]int{},
		ResourceStats: map[string]ResourceStatsBlob{},
		Player: PlayerBlob{
			HP:          state.DefaultMaxHP,
			MaxHP:       state.DefaultMaxHP,
			CombatStyle: state.StyleAccurate,
			Tools:       map[string]string{},
			Equipment:   map[string]string{},
			Stats:       map[string]int{},
		},
		Prestige:     PrestigeBlob{Upgrades: map[string]int{}},
		ShopStock:    map[string]int{},
		Achievements: map[string]bool{},
	}
	data, err := json.Marshal(blob)
	if err != nil {
		panic("save: default schema: " + err.Error())
	}
	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		panic("save: default schema: " + err.Error())
	}
	return schema
}

// MergeWithDefaults deep-merges a persisted generic blob against the
// default schema. Keys absent from the persisted blob keep defaults;
// dynamic-shaped fields (empty-collection defaults) take the persisted
// value wholesale; nested objects merge recursively; primitives and
// arrays take the persisted value.
func MergeWithDefaults(persisted map[string]any) map[string]any {
	return mergeMaps(defaultSchema(), persisted)
}

func mergeMaps(defaults, persisted map[string]any) map[string]any {
	out := make(map[string]any, len(defaults))
	for key, defVal := range defaults {
		saved, present := persisted[key]
		if !present || saved == nil {
			out[key] = defVal
			continue
		}
		if defVal == nil {
			// Nullable default (optional lists, active craft slot).
			out[key] = saved
			continue
		}
		defMap, defIsMap := defVal.(map[string]any)
		savedMap, savedIsMap := saved.(map[string]any)
		switch {
		case defIsMap && savedIsMap && len(defMap) > 0:
			out[key] = mergeMaps(defMap, savedMap)
		case defIsMap && savedIsMap:
			// Empty-map default marks a dynamic field: replace wholesale.
			out[key] = savedMap
		case defIsMap != savedIsMap:
			// Shape mismatch, distrust the persisted value.
			out[key] = defVal
		default:
			out[key] = saved
		}
	}
	return out
}
