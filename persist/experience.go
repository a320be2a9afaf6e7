package persist

import (
	"cyberxp/model"
	"cyberxp/xp"
)

// TransitionDoc is the serialized form of a model.Transition: start/end
// states are indices into the paired KnowledgeDoc's States slice, and the
// action is its canonical "type|param1|..." encoding.
type TransitionDoc struct {
	StartState int    `json:"startState"`
	Action     string `json:"action"`
	EndState   int    `json:"endState"`
}

// EpisodeDoc is the serialized form of an xp.Episode.
type EpisodeDoc struct {
	InitialState     int             `json:"initialState"`
	Transitions      []TransitionDoc `json:"transitions,omitempty"`
	Result           string          `json:"result"`
	Performance      int             `json:"performance"`
	RepetitionsCount int             `json:"repetitionsCount,omitempty"`
}

// StateActionValueDoc is one entry of a Q-learning value table.
type StateActionValueDoc struct {
	State  int     `json:"state"`
	Action string  `json:"action"`
	Value  float64 `json:"value"`
}

// ExperienceDoc is the serialized form of an xp.Experience.
type ExperienceDoc struct {
	Model string `json:"model"`
	Goal  string `json:"goal"`
	Role  string `json:"role"`
	Agent string `json:"agent"`

	Level                string  `json:"level"`
	SystemFailureIgnored bool    `json:"systemFailureIgnored,omitempty"`
	DiscountingConstant  float64 `json:"discountingConstant"`

	Episodes          []EpisodeDoc    `json:"episodes,omitempty"`
	BestEpisodeIndex  int             `json:"bestEpisodeIndex,omitempty"`
	HasBestEpisode    bool            `json:"hasBestEpisode,omitempty"`
	FailedTransitions []TransitionDoc `json:"failedTransitions,omitempty"`

	StateActionValues []StateActionValueDoc `json:"stateActionValues,omitempty"`
}

func toTransitionDoc(idx map[*model.EnvironmentState]int, t model.Transition) TransitionDoc {
	return TransitionDoc{
		StartState: idx[t.StartState],
		Action:     t.ActionTaken.Encode(),
		EndState:   idx[t.EndState],
	}
}

func fromTransitionDoc(registry *model.Registry, states []*model.EnvironmentState, doc TransitionDoc) model.Transition {
	return model.Transition{
		StartState:  stateAt(states, doc.StartState),
		ActionTaken: registry.DecodeAction(doc.Action),
		EndState:    stateAt(states, doc.EndState),
	}
}

func stateAt(states []*model.EnvironmentState, i int) *model.EnvironmentState {
	if i < 0 || i >= len(states) {
		return nil
	}
	return states[i]
}

func toEpisodeDoc(idx map[*model.EnvironmentState]int, episode *xp.Episode) EpisodeDoc {
	doc := EpisodeDoc{
		InitialState:     idx[episode.InitialState],
		Result:           episode.Result.String(),
		Performance:      episode.Performance,
		RepetitionsCount: episode.RepetitionsCount,
	}
	for _, t := range episode.Transitions {
		doc.Transitions = append(doc.Transitions, toTransitionDoc(idx, t))
	}
	return doc
}

func fromEpisodeDoc(registry *model.Registry, states []*model.EnvironmentState, doc EpisodeDoc) *xp.Episode {
	episode := &xp.Episode{
		InitialState:     stateAt(states, doc.InitialState),
		Result:           xp.ActionResultFromString(doc.Result),
		Performance:      doc.Performance,
		RepetitionsCount: doc.RepetitionsCount,
	}
	for _, td := range doc.Transitions {
		episode.AppendTransition(fromTransitionDoc(registry, states, td))
	}
	return episode
}

// ToExperienceDoc captures experience's full state, indexing states against
// registry's current interning order (which must be the same order the
// paired KnowledgeDoc was, or will be, written in).
func ToExperienceDoc(registry *model.Registry, experience *xp.Experience) ExperienceDoc {
	idx := stateIndex(registry)

	doc := ExperienceDoc{
		Model:                experience.Model,
		Goal:                 experience.Goal,
		Role:                 experience.Role,
		Agent:                experience.Agent,
		Level:                experience.Level.String(),
		SystemFailureIgnored: experience.SystemFailureIgnored,
		DiscountingConstant:  experience.DiscountingConstant,
	}

	for _, e := range experience.Episodes {
		doc.Episodes = append(doc.Episodes, toEpisodeDoc(idx, e))
	}
	for _, t := range experience.FailedTransitions {
		doc.FailedTransitions = append(doc.FailedTransitions, toTransitionDoc(idx, t))
	}
	if best := experience.BestEpisode; best != nil {
		for i, e := range experience.Episodes {
			if e == best {
				doc.BestEpisodeIndex = i
				doc.HasBestEpisode = true
				break
			}
		}
	}
	for ref, value := range experience.StateActionValues() {
		doc.StateActionValues = append(doc.StateActionValues, StateActionValueDoc{
			State:  idx[ref.State],
			Action: ref.Action.Encode(),
			Value:  value,
		})
	}
	return doc
}

// FromExperienceDoc reconstructs an experience from doc, resolving state
// indices against states (typically registry.AllStates() after
// ApplyKnowledgeDoc has interned the paired knowledge document) and interning
// actions through registry.
func FromExperienceDoc(registry *model.Registry, states []*model.EnvironmentState, doc ExperienceDoc) *xp.Experience {
	experience := xp.NewExperience(doc.Model, doc.Goal, doc.Role, doc.Agent)
	experience.Level = xp.ExperienceLevelFromString(doc.Level)
	experience.SystemFailureIgnored = doc.SystemFailureIgnored
	experience.DiscountingConstant = doc.DiscountingConstant

	for _, ed := range doc.Episodes {
		experience.Episodes = append(experience.Episodes, fromEpisodeDoc(registry, states, ed))
	}
	for _, td := range doc.FailedTransitions {
		experience.FailedTransitions = append(experience.FailedTransitions, fromTransitionDoc(registry, states, td))
	}
	if doc.HasBestEpisode && doc.BestEpisodeIndex >= 0 && doc.BestEpisodeIndex < len(experience.Episodes) {
		experience.BestEpisode = experience.Episodes[doc.BestEpisodeIndex]
		experience.BestEpisodes = []*xp.Episode{experience.BestEpisode}
	}
	for _, sav := range doc.StateActionValues {
		ref := model.StateActionRef{State: stateAt(states, sav.State), Action: registry.DecodeAction(sav.Action)}
		experience.SetStateActionValue(ref, sav.Value)
	}
	return experience
}
