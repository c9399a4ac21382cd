package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema for specification documents",
	Args:  cobra.NoArgs,
	RunE:  runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, args []string) error {
	data, err := json.MarshalIndent(specJSONSchema, "", "  ")
	if err != nil {
		return errExit(err)
	}
	fmt.Println(string(data))
	return nil
}

// specJSONSchema documents the surface YAML shape a *bspec.File or
// *bspec.Suite is decoded from by internal/specyaml ("schema
// emit the JSON Schema for the spec document"). No generator in the
// dependency set produces JSON Schema from Go structs, so this is
// hand-authored from internal/spec's model and kept in sync by hand.
var specJSONSchema = map[string]interface{}{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"title":   "bintest specification file",
	"type":    "object",
	"properties": map[string]interface{}{
		"binary":          map[string]interface{}{"type": "string"},
		"timeout":         map[string]interface{}{"type": "string", "description": "Go duration string, e.g. \"3s\""},
		"env":             map[string]interface{}{"type": "object", "additionalProperties": map[string]interface{}{"type": "string"}},
		"inherit_env":     map[string]interface{}{"type": "boolean"},
		"serial":          map[string]interface{}{"type": "boolean"},
		"capture_fs_diff": map[string]interface{}{"type": "boolean"},
		"sandbox_dir":     map[string]interface{}{"type": "string", "description": "\"temp\" (default), \"local\", or an explicit path"},
		"setup":           schemaActionList,
		"teardown":        schemaActionList,
		"databases": map[string]interface{}{
			"type": "object",
			"additionalProperties": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"driver":    map[string]interface{}{"type": "string", "enum": []string{"sqlite", "postgres"}},
					"url":       map[string]interface{}{"type": "string"},
					"isolation": map[string]interface{}{"type": "string", "enum": []string{"none", "per_file"}},
				},
			},
		},
		"tests": map[string]interface{}{
			"type":  "array",
			"items": schemaTest,
		},
	},
	"required": []string{"tests"},
}

var schemaRunSpec = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"cmd":     map[string]interface{}{"type": "string"},
		"args":    map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
		"stdin":   map[string]interface{}{"type": "string"},
		"timeout": map[string]interface{}{"type": "string"},
		"env":     map[string]interface{}{"type": "object", "additionalProperties": map[string]interface{}{"type": "string"}},
	},
	"required": []string{"cmd"},
}

var schemaMatcher = map[string]interface{}{
	"description": "a bare string is shorthand for {equals: <string>}",
	"oneOf": []interface{}{
		map[string]interface{}{"type": "string"},
		map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"equals":   map[string]interface{}{"type": "string"},
				"contains": map[string]interface{}{"type": "string"},
				"regex":    map[string]interface{}{"type": "string"},
			},
			"minProperties": 1,
			"maxProperties": 1,
		},
	},
}

var schemaExpect = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"exit":   map[string]interface{}{"type": "integer"},
		"signal": map[string]interface{}{"type": "integer"},
		"stdout": schemaMatcher,
		"stderr": schemaMatcher,
		"files": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":     map[string]interface{}{"type": "string"},
					"exists":   map[string]interface{}{"type": "boolean"},
					"contents": schemaMatcher,
				},
				"required": []string{"path"},
			},
		},
		"tree": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"root": map[string]interface{}{"type": "string"},
				"contains": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"path":     map[string]interface{}{"type": "string"},
							"contents": schemaMatcher,
						},
					},
				},
				"excludes": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
			},
		},
		"sql": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"description": "one of query, table_exists, table_not_exists, row_count",
			},
		},
	},
}

var schemaStep = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"name":     map[string]interface{}{"type": "string"},
		"setup":    schemaActionList,
		"run":      schemaRunSpec,
		"expect":   schemaExpect,
		"teardown": schemaActionList,
	},
	"required": []string{"run"},
}

var schemaCondition = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"env": map[string]interface{}{"type": "string"},
		"cmd": map[string]interface{}{
			"oneOf": []interface{}{
				map[string]interface{}{"type": "string"},
				map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"command": map[string]interface{}{"type": "string"},
						"args":    map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
					},
				},
			},
		},
		"sql": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"database":  map[string]interface{}{"type": "string"},
				"query":     map[string]interface{}{"type": "string"},
				"predicate": map[string]interface{}{"type": "string", "enum": []string{"true", "empty", "non_empty"}},
			},
		},
	},
	"minProperties": 1,
	"maxProperties": 1,
}

var schemaTest = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"name":     map[string]interface{}{"type": "string"},
		"serial":   map[string]interface{}{"type": "boolean"},
		"skip_if":  map[string]interface{}{"type": "array", "items": schemaCondition},
		"require":  map[string]interface{}{"type": "array", "items": schemaCondition},
		"setup":    schemaActionList,
		"teardown": schemaActionList,
		"steps": map[string]interface{}{
			"type":  "array",
			"items": schemaStep,
		},
		"run":    schemaRunSpec,
		"expect": schemaExpect,
	},
	"required": []string{"name"},
	"description": "either steps, or the legacy implicit-step shorthand (run + expect directly on the test)",
}

var schemaActionList = map[string]interface{}{
	"type": "array",
	"items": map[string]interface{}{
		"type":        "object",
		"description": "tagged variant: write_file, create_dir, copy_file, copy_dir, remove_file, remove_dir, run, sql, sql_file, db_snapshot, db_restore",
		"minProperties": 1,
		"maxProperties": 1,
	},
}
