// Package schema folds the validation service's rule and allowlist documents
// into a single JSON Schema (draft-7) document.
//
// The rules document maps attribute names to rule groups; the allowlists
// document maps attribute list names to their permitted values. Attributes
// become schema properties, allowlists become enum constraints.
package schema

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"

	ferrors "git.home.luguber.info/inful/opsadapter/internal/foundation/errors"
)

// Converter merges a rules document and an allowlists document into one
// schema document. Consumers depend on this type rather than on Convert so
// alternate merge strategies can be injected.
type Converter func(rules, allowlists string) (string, error)

const draft7 = "http://json-schema.org/draft-07/schema#"

// listKeyPrefix marks allowlist keys that reference an attribute by name.
const listKeyPrefix = "list:"

type ruleGroup struct {
	Rules []rule `json:"rules"`
}

type rule struct {
	Type string `json:"type"`
	Kind string `json:"kind"`
	List string `json:"list"`
}

// kindTypes maps rule kinds onto JSON Schema type names. Kinds without an
// entry leave the property untyped.
var kindTypes = map[string]string{
	"string":   "string",
	"boolean":  "boolean",
	"number":   "number",
	"integer":  "integer",
	"array":    "array",
	"datetime": "string",
}

// Convert is the default Converter.
//
// Empty or blank documents are treated as empty objects; malformed JSON in
// either document is an error. Rule entries with unknown types are skipped so
// that new upstream rule kinds do not break older adapters.
func Convert(rules, allowlists string) (string, error) {
	groups, err := decodeRules(rules)
	if err != nil {
		return "", err
	}
	lists, err := decodeAllowlists(allowlists)
	if err != nil {
		return "", err
	}

	properties := map[string]any{}
	var required []string

	for _, name := range slices.Sorted(maps.Keys(groups)) {
		property := map[string]any{}
		listName := name

		for _, r := range groups[name].Rules {
			switch strings.ToLower(r.Type) {
			case "required":
				required = append(required, name)
			case "kind":
				if jsonType, ok := kindTypes[strings.ToLower(r.Kind)]; ok {
					property["type"] = jsonType
					if strings.EqualFold(r.Kind, "datetime") {
						property["format"] = "date-time"
					}
				}
			case "list":
				if r.List != "" {
					listName = r.List
				}
			}
		}

		if values, ok := allowlistFor(lists, listName); ok {
			property["enum"] = values
		}
		properties[name] = property
	}

	document := map[string]any{
		"$schema":    draft7,
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		document["required"] = required
	}

	out, err := json.Marshal(document)
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategorySchema, "encode merged schema").Build()
	}
	return string(out), nil
}

func decodeRules(doc string) (map[string]ruleGroup, error) {
	if strings.TrimSpace(doc) == "" {
		return map[string]ruleGroup{}, nil
	}
	var groups map[string]ruleGroup
	if err := json.Unmarshal([]byte(doc), &groups); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategorySchema, "parse rules document").Build()
	}
	if groups == nil {
		groups = map[string]ruleGroup{}
	}
	return groups, nil
}

func decodeAllowlists(doc string) (map[string]map[string]json.RawMessage, error) {
	if strings.TrimSpace(doc) == "" {
		return map[string]map[string]json.RawMessage{}, nil
	}
	var lists map[string]map[string]json.RawMessage
	if err := json.Unmarshal([]byte(doc), &lists); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategorySchema, "parse allowlists document").Build()
	}
	if lists == nil {
		lists = map[string]map[string]json.RawMessage{}
	}
	return lists, nil
}

// allowlistFor looks up the value set for an attribute, accepting both bare
// attribute names and the service's "list:" prefixed keys.
func allowlistFor(lists map[string]map[string]json.RawMessage, name string) ([]string, bool) {
	values, ok := lists[name]
	if !ok {
		values, ok = lists[listKeyPrefix+strings.TrimPrefix(name, listKeyPrefix)]
	}
	if !ok {
		return nil, false
	}
	return slices.Sorted(maps.Keys(values)), true
}
