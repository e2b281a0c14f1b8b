package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// includeKey marks paths of additional config files to merge into the containing mapping.
const includeKey = "include"

// LoadFile loads a config file of any recognised type (YAML or JSON) into a raw mapping.
//
// Mappings at any depth may carry an "include" key listing further config
// files. Included mappings enrich the containing mapping without overwriting
// keys it already defines. Relative include paths resolve against the
// directory of the file that names them; include paths which do not exist
// are skipped.
func LoadFile(path string) (map[string]any, error) {
	raw, err := loadAny(path)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return map[string]any{}, nil
	}

	mapping, ok := asMap(raw)
	if !ok {
		return nil, parserError("Config file is not a mapping", "", path)
	}

	if err := resolveIncludes(mapping, filepath.Dir(path)); err != nil {
		return nil, err
	}
	return mapping, nil
}

func loadAny(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var raw any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		return nil, parserError("Unrecognised file type", "", path)
	}

	return raw, nil
}

// resolveIncludes walks the mapping tree, merging any included files into
// the mapping which names them.
func resolveIncludes(mapping map[string]any, parentDir string) error {
	if rawPaths, ok := mapping[includeKey]; ok {
		delete(mapping, includeKey)

		for _, includePath := range toStrings(rawPaths) {
			if !filepath.IsAbs(includePath) {
				includePath = filepath.Join(parentDir, includePath)
			}
			if info, err := os.Stat(includePath); err != nil || info.IsDir() {
				continue
			}

			included, err := loadAny(includePath)
			if err != nil {
				return err
			}
			includedMap, ok := asMap(included)
			if !ok {
				return parserError("Included file is not a mapping", includeKey, includePath)
			}
			if err := resolveIncludes(includedMap, filepath.Dir(includePath)); err != nil {
				return err
			}
			Merge(mapping, includedMap, false)
		}
	}

	for _, value := range mapping {
		if nested, ok := asMap(value); ok {
			if err := resolveIncludes(nested, parentDir); err != nil {
				return err
			}
		}
	}
	return nil
}

// toStrings normalises a scalar or sequence config value to a string slice.
func toStrings(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			} else {
				out = append(out, fmt.Sprintf("%v", item))
			}
		}
		return out
	}
	return []string{fmt.Sprintf("%v", value)}
}
