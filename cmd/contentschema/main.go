// Command contentschema writes JSON Schemas for the YAML content pack
// so editors can validate definition files before the server loads them.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"emberhollow/server/content"
)

func main() {
	var outDir string
	flag.StringVar(&outDir, "out", "", "directory to write the JSON schemas")
	flag.Parse()

	if outDir == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	for name, target := range schemaTargets() {
		schema := buildSchema(name, target)
		if err := writeSchema(filepath.Join(outDir, name+".schema.json"), schema); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write %s schema: %v\n", name, err)
			os.Exit(1)
		}
	}
}

func schemaTargets() map[string]any {
	return map[string]any{
		"item":        new(content.ItemDefinition),
		"skill":       new(content.SkillDefinition),
		"recipe":      new(content.RecipeDefinition),
		"enemy":       new(content.EnemyDefinition),
		"buff":        new(content.BuffDefinition),
		"prestige":    new(content.PrestigeDefinition),
		"shop":        new(content.ShopDefinition),
		"achievement": new(content.AchievementDefinition),
	}
}

func buildSchema(name string, target any) *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	schema := reflector.Reflect(target)
	schema.Title = fmt.Sprintf("Ember Hollow %s definition", name)
	schema.Description = fmt.Sprintf("Validates %s entries in content/data.", name)
	return schema
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}

	return nil
}
