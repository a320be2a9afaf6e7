package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"cyberxp/model"
	"cyberxp/xperr"
)

// TypeDoc is the serialized form of a model.EntityStateType. Default and
// possible property values are the type's *effective* (inheritance-resolved)
// values, so reconstruction via Registry.DefineEntityType round-trips to the
// same evaluated behavior even though it no longer distinguishes a value the
// type declared itself from one it merely inherited.
type TypeDoc struct {
	TypeName               string              `json:"typeName"`
	ParentTypeName         string              `json:"parentTypeName,omitempty"`
	DefaultPropertyValues  map[string]string   `json:"defaultPropertyValues,omitempty"`
	PossiblePropertyValues map[string][]string `json:"possiblePropertyValues,omitempty"`
	Links                  []string            `json:"links,omitempty"`
}

// ModelDoc is the serialized form of a registry's entity type declarations -
// the "model definition" document.
type ModelDoc struct {
	Name  string    `json:"name"`
	Types []TypeDoc `json:"types"`
}

// ToModelDoc captures registry's declared entity types.
func ToModelDoc(registry *model.Registry) ModelDoc {
	doc := ModelDoc{Name: registry.Name()}
	for _, name := range registry.EntityStateTypeNames() {
		t := registry.EntityStateType(name)
		if t == nil {
			continue
		}
		doc.Types = append(doc.Types, TypeDoc{
			TypeName:               t.TypeName(),
			ParentTypeName:         t.ParentTypeName(),
			DefaultPropertyValues:  t.DefaultPropertyValues(),
			PossiblePropertyValues: t.PossiblePropertyValues(),
			Links:                  t.Links(),
		})
	}
	return doc
}

// ApplyModelDoc defines every type in doc against registry, in declaration
// order so a child type's parent already exists when the child is defined.
func ApplyModelDoc(registry *model.Registry, doc ModelDoc) {
	for _, t := range doc.Types {
		registry.DefineEntityType(t.ParentTypeName, t.TypeName, t.DefaultPropertyValues, t.PossiblePropertyValues, t.Links)
	}
}

// SaveModel writes registry's model-definition document to dir, named by the
// content id (cid) of its model name, and returns that cid.
func SaveModel(dir string, registry *model.Registry) (string, error) {
	cid := Slug(registry.Name())
	path := filepath.Join(dir, modelFileName(cid))
	if err := writeJSON(path, ToModelDoc(registry)); err != nil {
		return "", xperr.WithPath("/model", err)
	}
	return cid, nil
}

// LoadModelDoc reads back the model-definition document for cid from dir.
func LoadModelDoc(dir, cid string) (ModelDoc, error) {
	var doc ModelDoc
	path := filepath.Join(dir, modelFileName(cid))
	if err := readJSON(path, &doc); err != nil {
		return ModelDoc{}, xperr.WithPath("/model", err)
	}
	return doc, nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("unmarshaling %s: %w", path, err)
	}
	return nil
}
