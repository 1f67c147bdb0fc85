package content

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed data
var packFS embed.FS

// Default loads the embedded content pack. It panics on error because a
// malformed embedded pack is a build defect, not a runtime condition.
func Default() *Registry {
	sub, err := fs.Sub(packFS, "data")
	if err != nil {
		panic(fmt.Sprintf("content: embedded pack: %v", err))
	}
	reg, err := Load(sub)
	if err != nil {
		panic(fmt.Sprintf("content: embedded pack: %v", err))
	}
	return reg
}

// Load reads a content pack from the given filesystem. Layout:
//
//	items/*.yaml      each file holds a list of item definitions
//	skills/*.yaml     each file holds one skill definition
//	recipes/*.yaml    each file holds a list of recipe definitions
//	enemies/*.yaml    each file holds a list of enemy definitions
//	shops/*.yaml      each file holds one shop definition
//	buffs.yaml        list of buff definitions
//	prestiges.yaml    list of prestige upgrade definitions
//	achievements.yaml list of achievement definitions
func Load(fsys fs.FS) (*Registry, error) {
	reg := &Registry{
		items:     make(map[string]*ItemDefinition),
		skills:    make(map[string]*SkillDefinition),
		recipes:   make(map[string]*RecipeDefinition),
		enemies:   make(map[string]*EnemyDefinition),
		buffs:     make(map[string]*BuffDefinition),
		prestiges: make(map[string]*PrestigeDefinition),
		shops:     make(map[string]*ShopDefinition),
	}

	if err := loadDirLists(fsys, "items", func(defs []ItemDefinition) error {
		for i := range defs {
			def := defs[i]
			if def.ID == "" {
				return fmt.Errorf("item without id")
			}
			if _, dup := reg.items[def.ID]; dup {
				return fmt.Errorf("duplicate item %q", def.ID)
			}
			reg.items[def.ID] = &def
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := loadDirDocs(fsys, "skills", func(def SkillDefinition) error {
		if def.ID == "" {
			return fmt.Errorf("skill without id")
		}
		if _, dup := reg.skills[def.ID]; dup {
			return fmt.Errorf("duplicate skill %q", def.ID)
		}
		if def.MaxLevel <= 0 {
			def.MaxLevel = 99
		}
		reg.skills[def.ID] = &def
		return nil
	}); err != nil {
		return nil, err
	}

	if err := loadDirLists(fsys, "recipes", func(defs []RecipeDefinition) error {
		for i := range defs {
			def := defs[i]
			if def.ID == "" {
				return fmt.Errorf("recipe without id")
			}
			if _, dup := reg.recipes[def.ID]; dup {
				return fmt.Errorf("duplicate recipe %q", def.ID)
			}
			reg.recipes[def.ID] = &def
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := loadDirLists(fsys, "enemies", func(defs []EnemyDefinition) error {
		for i := range defs {
			def := defs[i]
			if def.ID == "" {
				return fmt.Errorf("enemy without id")
			}
			if _, dup := reg.enemies[def.ID]; dup {
				return fmt.Errorf("duplicate enemy %q", def.ID)
			}
			reg.enemies[def.ID] = &def
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := loadDirDocs(fsys, "shops", func(def ShopDefinition) error {
		if def.ID == "" {
			return fmt.Errorf("shop without id")
		}
		reg.shops[def.ID] = &def
		return nil
	}); err != nil {
		return nil, err
	}

	var buffs []BuffDefinition
	if err := loadFile(fsys, "buffs.yaml", &buffs); err != nil {
		return nil, err
	}
	for i := range buffs {
		def := buffs[i]
		if def.ID == "" {
			return nil, fmt.Errorf("buff without id")
		}
		reg.buffs[def.ID] = &def
	}

	var prestiges []PrestigeDefinition
	if err := loadFile(fsys, "prestiges.yaml", &prestiges); err != nil {
		return nil, err
	}
	for i := range prestiges {
		def := prestiges[i]
		if def.ID == "" {
			return nil, fmt.Errorf("prestige upgrade without id")
		}
		if def.CostMultiplier <= 0 {
			def.CostMultiplier = 1
		}
		reg.prestiges[def.ID] = &def
	}

	var achievements []AchievementDefinition
	if err := loadFile(fsys, "achievements.yaml", &achievements); err != nil {
		return nil, err
	}
	for i := range achievements {
		if achievements[i].ID == "" {
			return nil, fmt.Errorf("achievement without id")
		}
		reg.achievements = append(reg.achievements, &achievements[i])
	}

	if err := reg.validateReferences(); err != nil {
		return nil, err
	}
	return reg, nil
}

// validateReferences catches recipes and drops pointing at unknown items
// before they can surface as silent pruning at runtime.
func (r *Registry) validateReferences() error {
	for _, recipe := range r.recipes {
		for _, input := range recipe.Inputs {
			if _, ok := r.items[input.Item]; !ok {
				return fmt.Errorf("recipe %q input references unknown item %q", recipe.ID, input.Item)
			}
		}
		for _, output := range recipe.Outputs {
			if _, ok := r.items[output.Item]; !ok {
				return fmt.Errorf("recipe %q output references unknown item %q", recipe.ID, output.Item)
			}
		}
	}
	for _, enemy := range r.enemies {
		for _, drop := range enemy.Drops {
			if _, ok := r.items[drop.Item]; !ok {
				return fmt.Errorf("enemy %q drop references unknown item %q", enemy.ID, drop.Item)
			}
		}
	}
	for _, shop := range r.shops {
		for _, cat := range shop.Categories {
			for _, entry := range cat.Items {
				if _, ok := r.items[entry.ItemID]; !ok {
					return fmt.Errorf("shop %q references unknown item %q", shop.ID, entry.ItemID)
				}
			}
		}
	}
	return nil
}

func loadFile(fsys fs.FS, name string, target any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func listYAML(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if path.Ext(entry.Name()) != ".yaml" && path.Ext(entry.Name()) != ".yml" {
			continue
		}
		names = append(names, path.Join(dir, entry.Name()))
	}
	sort.Strings(names)
	return names, nil
}

func loadDirLists[T any](fsys fs.FS, dir string, apply func([]T) error) error {
	names, err := listYAML(fsys, dir)
	if err != nil {
		return err
	}
	for _, name := range names {
		var defs []T
		if err := loadFile(fsys, name, &defs); err != nil {
			return err
		}
		if err := apply(defs); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// loadDirDocs decodes every YAML document in every file of dir, so one
// file may hold several definitions separated by document markers.
func loadDirDocs[T any](fsys fs.FS, dir string, apply func(T) error) error {
	names, err := listYAML(fsys, dir)
	if err != nil {
		return err
	}
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		for {
			var def T
			if err := dec.Decode(&def); err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				return fmt.Errorf("parse %s: %w", name, err)
			}
			if err := apply(def); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
	}
	return nil
}
