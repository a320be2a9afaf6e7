package persist

import (
	"path/filepath"

	"cyberxp/model"
	"cyberxp/xperr"
)

// EntityDoc is the serialized form of one entity's state within a
// StateDoc.
type EntityDoc struct {
	TypeName      string                      `json:"typeName"`
	Properties    map[string]string           `json:"properties,omitempty"`
	Relationships map[string]model.RelationshipLink `json:"relationships,omitempty"`
}

// StateDoc is the serialized form of one interned model.EnvironmentState.
type StateDoc struct {
	Entities map[string]EntityDoc `json:"entities,omitempty"`
	Features map[string]string    `json:"features,omitempty"`
}

// KnowledgeDoc is the serialized form of every state a registry has
// interned, in interning order - the "model knowledge" document. A state's
// position in States is its StateRef used by every other document (episode
// transitions, value tables) that needs to refer to it.
type KnowledgeDoc struct {
	ModelName string     `json:"modelName"`
	States    []StateDoc `json:"states"`
}

func toStateDoc(state *model.EnvironmentState) StateDoc {
	doc := StateDoc{Features: state.Features()}
	entities := state.EntityStates()
	if len(entities) > 0 {
		doc.Entities = make(map[string]EntityDoc, len(entities))
		for id, e := range entities {
			doc.Entities[id] = EntityDoc{
				TypeName:      e.TypeName(),
				Properties:    e.PropertyValues(),
				Relationships: e.Relationships(),
			}
		}
	}
	return doc
}

func fromStateDoc(registry *model.Registry, doc StateDoc) *model.EnvironmentState {
	state := model.NewEnvironmentState()
	for name, value := range doc.Features {
		state.SetFeature(name, value)
	}
	for id, ed := range doc.Entities {
		entity := registry.NewEntityState(ed.TypeName)
		for name, value := range ed.Properties {
			entity.SetProperty(name, value)
		}
		for linkID, link := range ed.Relationships {
			entity.SetRelationship(linkID, link)
		}
		state.SetEntityState(id, entity)
	}
	return registry.GetStoredState(state)
}

// ToKnowledgeDoc captures every state registry has interned, in interning
// order.
func ToKnowledgeDoc(registry *model.Registry) KnowledgeDoc {
	doc := KnowledgeDoc{ModelName: registry.Name()}
	for _, state := range registry.AllStates() {
		doc.States = append(doc.States, toStateDoc(state))
	}
	return doc
}

// ApplyKnowledgeDoc interns every state in doc into registry, in the same
// order they were written, so a state's index into doc.States matches the
// index Registry.AllStates() assigns it after loading.
func ApplyKnowledgeDoc(registry *model.Registry, doc KnowledgeDoc) {
	for _, sd := range doc.States {
		fromStateDoc(registry, sd)
	}
}

// SaveKnowledge writes registry's interned states to dir, named by cid.
func SaveKnowledge(dir, cid string, registry *model.Registry) error {
	path := filepath.Join(dir, knowledgeFileName(cid))
	if err := writeJSON(path, ToKnowledgeDoc(registry)); err != nil {
		return xperr.WithPath("/knowledge", err)
	}
	return nil
}

// LoadKnowledgeDoc reads back the model-knowledge document for cid from dir.
func LoadKnowledgeDoc(dir, cid string) (KnowledgeDoc, error) {
	var doc KnowledgeDoc
	path := filepath.Join(dir, knowledgeFileName(cid))
	if err := readJSON(path, &doc); err != nil {
		return KnowledgeDoc{}, xperr.WithPath("/knowledge", err)
	}
	return doc, nil
}

// stateIndex builds a lookup from interned state pointer to its position in
// registry.AllStates(), used to encode StateRef fields.
func stateIndex(registry *model.Registry) map[*model.EnvironmentState]int {
	states := registry.AllStates()
	idx := make(map[*model.EnvironmentState]int, len(states))
	for i, s := range states {
		idx[s] = i
	}
	return idx
}
