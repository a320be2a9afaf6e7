package persist

import (
	"path/filepath"

	"cyberxp/agent"
	"cyberxp/model"
	"cyberxp/xp"
	"cyberxp/xperr"
)

// Bundle is the single-file document written at an experience's base path:
// the experience, its role, and the agent configuration it was trained
// with. The model definition and model knowledge documents live in
// sibling files named by ModelCID, shared across every bundle trained
// against the same model.
type Bundle struct {
	ModelCID   string             `json:"modelCid"`
	Experience ExperienceDoc      `json:"experience"`
	Role       RoleDoc            `json:"role"`
	AgentConfig agent.Config      `json:"agentConfig"`
}

// SaveExperience writes the experience/role/agent-config bundle to path, and
// (re)writes the model definition and knowledge documents alongside it in
// the same directory.
func SaveExperience(path string, registry *model.Registry, experience *xp.Experience, role *xp.Role, cfg agent.Config) error {
	dir := filepath.Dir(path)

	cid, err := SaveModel(dir, registry)
	if err != nil {
		return err
	}
	if err := SaveKnowledge(dir, cid, registry); err != nil {
		return err
	}

	bundle := Bundle{
		ModelCID:    cid,
		Experience:  ToExperienceDoc(registry, experience),
		Role:        ToRoleDoc(role),
		AgentConfig: cfg,
	}
	if err := writeJSON(path, bundle); err != nil {
		return xperr.WithPath("/experience", err)
	}
	return nil
}

// LoadExperience reads back the bundle at path, interning its paired model
// and knowledge documents into a freshly built registry.
func LoadExperience(path string) (*model.Registry, *xp.Experience, *xp.Role, agent.Config, error) {
	var bundle Bundle
	if err := readJSON(path, &bundle); err != nil {
		return nil, nil, nil, agent.Config{}, xperr.WithPath("/experience", err)
	}

	dir := filepath.Dir(path)
	modelDoc, err := LoadModelDoc(dir, bundle.ModelCID)
	if err != nil {
		return nil, nil, nil, agent.Config{}, err
	}
	knowledgeDoc, err := LoadKnowledgeDoc(dir, bundle.ModelCID)
	if err != nil {
		return nil, nil, nil, agent.Config{}, err
	}

	registry := model.NewRegistry(modelDoc.Name)
	ApplyModelDoc(registry, modelDoc)
	ApplyKnowledgeDoc(registry, knowledgeDoc)

	states := registry.AllStates()
	experience := FromExperienceDoc(registry, states, bundle.Experience)
	role := FromRoleDoc(bundle.Role)

	return registry, experience, role, bundle.AgentConfig, nil
}
