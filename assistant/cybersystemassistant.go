package assistant

import (
	"fmt"

	"cyberxp/cybersys"
	"cyberxp/model"
	"cyberxp/xp"
	"cyberxp/xperr"
)

// CyberSystemAssistant pairs an Assistant with the live cybersys.CyberSystem
// it drives: every action taken against the system is turned into a
// Transition and fed back through AcquireTransition so the assistant's
// episode state stays in lockstep with the system's actual state.
type CyberSystemAssistant struct {
	*Assistant

	System cybersys.CyberSystem
}

// NewCyberSystemAssistant wraps system behind an assistant of id, sharing
// registry as the model both learn against.
func NewCyberSystemAssistant(id string, registry *model.Registry, system cybersys.CyberSystem) *CyberSystemAssistant {
	return &CyberSystemAssistant{
		Assistant: NewAssistant(id, registry),
		System:    system,
	}
}

// GetAvailableActions lists the actions the live system currently offers for
// the current goal (used as the role id), optionally narrowed by
// smartSelection.
func (a *CyberSystemAssistant) GetAvailableActions(smartSelection bool) []*model.Action {
	return a.System.AvailableActions(a.CurrentGoal(), smartSelection)
}

// GetActionRef interns action and the system's current state into a
// StateActionRef, synchronizing the system's state into the registry first.
func (a *CyberSystemAssistant) GetActionRef(action *model.Action) (model.StateActionRef, error) {
	state, err := a.System.InterpretSystemState()
	if err != nil {
		return model.StateActionRef{}, fmt.Errorf("interpreting system state: %w", err)
	}
	stored := a.Registry.GetStoredState(state)
	return model.StateActionRef{State: stored, Action: a.Registry.EncodeAction(action)}, nil
}

// TakeAction executes action on the live system and folds the resulting
// transition into the current episode, returning the post-action state
// evaluation.
func (a *CyberSystemAssistant) TakeAction(action *model.Action) (xp.EnvironmentStateInfo, model.Transition, error) {
	role := a.CurrentRole()
	if role == nil {
		return xp.EnvironmentStateInfo{}, model.Transition{}, xperr.ErrUnknownRole
	}

	startState, err := a.System.InterpretSystemState()
	if err != nil {
		return xp.EnvironmentStateInfo{}, model.Transition{}, fmt.Errorf("interpreting start state: %w", err)
	}
	start := a.Registry.GetStoredState(startState)

	ok, err := a.System.ExecuteAction(action)
	if err != nil {
		return xp.EnvironmentStateInfo{}, model.Transition{}, fmt.Errorf("executing action: %w", err)
	}
	if !ok {
		return xp.EnvironmentStateInfo{}, model.Transition{}, xperr.ErrInvalidAction
	}

	endState, err := a.System.InterpretSystemState()
	if err != nil {
		return xp.EnvironmentStateInfo{}, model.Transition{}, fmt.Errorf("interpreting end state: %w", err)
	}
	end := a.Registry.GetStoredState(endState)

	t := model.Transition{StartState: start, ActionTaken: a.Registry.EncodeAction(action), EndState: end}
	info := a.AcquireTransition(t, role)
	return info, t, nil
}
