package assistant

import (
	"fmt"
	"sync"

	"cyberxp/agent"
	"cyberxp/cybersys"
	"cyberxp/logx"
	"cyberxp/model"
	"cyberxp/xp"
	"cyberxp/xperr"
)

// AgentStats tracks per-goal training statistics: how many episodes have run
// to completion, how each of them ended, and how many times a trajectory had
// to be cut short as a deadlock.
type AgentStats struct {
	EpisodeCount  int
	SuccessCount  int
	FailureCount  int
	DeadlockCount int
	StatesVisited int
	TotalSteps    int
}

// CustomAgentMaker builds an agent.Agent for a newly registered goal, in
// place of the default NewQAgent(DefaultConfig()).
type CustomAgentMaker func(goal string) agent.Agent

// CyberSystemAgent drives a CyberSystemAssistant autonomously: it chooses
// actions itself (through a per-goal agent.Agent), detects loops by tracking
// which states the current episode has already visited, and keeps running
// statistics per goal.
type CyberSystemAgent struct {
	*CyberSystemAssistant

	mu sync.Mutex

	Agents     map[string]agent.Agent
	AgentMaker CustomAgentMaker

	LearningEnabled      bool
	LoopDetectionEnabled bool
	SmartActionSelection bool

	visitedStates   map[*model.EnvironmentState]bool
	stateVisitCount map[*model.EnvironmentState]int
	deadlockActions map[*model.EnvironmentState][]*model.Action

	LastTransition model.Transition
	newEpisode     bool

	Statistics map[string]*AgentStats
}

// NewCyberSystemAgent wraps system behind an autonomous agent of id, with
// learning and loop detection both enabled by default.
func NewCyberSystemAgent(id string, registry *model.Registry, system cybersys.CyberSystem) *CyberSystemAgent {
	return &CyberSystemAgent{
		CyberSystemAssistant: NewCyberSystemAssistant(id, registry, system),
		Agents:               map[string]agent.Agent{},
		LearningEnabled:      true,
		LoopDetectionEnabled: true,
		visitedStates:        map[*model.EnvironmentState]bool{},
		stateVisitCount:      map[*model.EnvironmentState]int{},
		deadlockActions:      map[*model.EnvironmentState][]*model.Action{},
		Statistics:           map[string]*AgentStats{},
	}
}

// SetCustomAgentMaker installs maker as the factory used for any goal whose
// agent has not yet been created.
func (c *CyberSystemAgent) SetCustomAgentMaker(maker CustomAgentMaker) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.AgentMaker = maker
}

// getAgent returns the agent for goal, creating it (via AgentMaker, or a
// default QAgent) on first use.
func (c *CyberSystemAgent) getAgent(goal string) agent.Agent {
	c.mu.Lock()
	defer c.mu.Unlock()

	if a, ok := c.Agents[goal]; ok {
		return a
	}
	var a agent.Agent
	if c.AgentMaker != nil {
		a = c.AgentMaker(goal)
	} else {
		a = agent.NewQAgent(agent.DefaultConfig())
	}
	c.Agents[goal] = a
	return a
}

// stats returns the statistics bucket for goal, creating it on first use.
func (c *CyberSystemAgent) stats(goal string) *AgentStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statsLocked(goal)
}

// statsLocked is stats without acquiring c.mu; callers must already hold it.
func (c *CyberSystemAgent) statsLocked(goal string) *AgentStats {
	s, ok := c.Statistics[goal]
	if !ok {
		s = &AgentStats{}
		c.Statistics[goal] = s
	}
	return s
}

// GetStatistics returns the statistics accumulated for the current goal.
func (c *CyberSystemAgent) GetStatistics() AgentStats {
	return *c.stats(c.CurrentGoal())
}

// ResetStats clears the statistics accumulated for every goal.
func (c *CyberSystemAgent) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Statistics = map[string]*AgentStats{}
}

// ResetAgentForCurrentGoal drops the learned agent for the current goal
// only, leaving its stored experience and the loop-detection bookkeeping
// (shared across goals) untouched.
func (c *CyberSystemAgent) ResetAgentForCurrentGoal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.Agents, c.CurrentGoal())
}

// ResetAgent drops every goal's learned agent and all loop-detection state.
func (c *CyberSystemAgent) ResetAgent() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Agents = map[string]agent.Agent{}
	c.visitedStates = map[*model.EnvironmentState]bool{}
	c.stateVisitCount = map[*model.EnvironmentState]int{}
	c.deadlockActions = map[*model.EnvironmentState][]*model.Action{}
}

// IsNewEpisode reports whether the next TakeAction call will be starting a
// fresh episode rather than continuing the current one.
func (c *CyberSystemAgent) IsNewEpisode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.newEpisode
}

// registerState records state as visited in the current episode and bumps
// its lifetime visit count, used both by loop detection and statistics.
func (c *CyberSystemAgent) registerState(state *model.EnvironmentState) {
	goal := c.CurrentGoal()

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.visitedStates[state] {
		c.statsLocked(goal).StatesVisited++
	}
	c.visitedStates[state] = true
	c.stateVisitCount[state]++
}

// getPossibleActions lists the system's available actions from state, then
// (if loop detection is enabled) filters out any whose destination the
// current episode has already visited. Filtering down to zero actions is
// itself the deadlock signal: it means every move from here leads somewhere
// already tried, so there is nowhere left to productively go.
func (c *CyberSystemAgent) getPossibleActions(state *model.EnvironmentState) ([]*model.Action, bool) {
	actions := c.GetAvailableActions(c.SmartActionSelection)
	if !c.LoopDetectionEnabled || len(actions) == 0 {
		return actions, false
	}

	filtered := make([]*model.Action, 0, len(actions))
	for _, act := range actions {
		dest, ok := c.peekDestination(state, act)
		if ok && c.visitedAlready(dest) {
			continue
		}
		filtered = append(filtered, act)
	}
	if len(filtered) == 0 {
		c.mu.Lock()
		c.deadlockActions[state] = append(c.deadlockActions[state], actions...)
		c.mu.Unlock()
		return nil, true
	}
	return filtered, false
}

func (c *CyberSystemAgent) visitedAlready(state *model.EnvironmentState) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visitedStates[state]
}

// peekDestination simulates action from state: execute it, read the
// resulting state, then restore the system to state via SynchronizeState
// before the caller tries the next candidate. An action the system rejects
// or errors on (or a state it cannot read back) makes this ok=false, and the
// caller just treats the action as safe to try for real. A SynchronizeState
// failure is only logged; the destination is still returned with ok=true.
func (c *CyberSystemAgent) peekDestination(state *model.EnvironmentState, action *model.Action) (*model.EnvironmentState, bool) {
	ok, err := c.System.ExecuteAction(action)
	if err != nil || !ok {
		return nil, false
	}
	dest, err := c.System.InterpretSystemState()
	if err != nil {
		return nil, false
	}
	if err := c.System.SynchronizeState(state); err != nil {
		logx.Error("agent %s: restoring state after loop-detection lookahead: %v", c.ID, err)
	}
	return c.Registry.GetStoredState(dest), true
}

// Act chooses and takes one action for the current goal, updating the
// chosen agent's value table when learning is enabled and folding the
// result into AgentStats.
func (c *CyberSystemAgent) Act() (xp.EnvironmentStateInfo, error) {
	role := c.CurrentRole()
	if role == nil {
		return xp.EnvironmentStateInfo{}, xperr.ErrUnknownRole
	}

	state, err := c.System.InterpretSystemState()
	if err != nil {
		return xp.EnvironmentStateInfo{}, fmt.Errorf("interpreting system state: %w", err)
	}
	current := c.Registry.GetStoredState(state)
	c.registerState(current)

	goal := c.CurrentGoal()

	if info := role.GetStateInfo(current); info.IsTerminal() {
		c.finishEpisode(role, info)
		return info, nil
	}

	actions, deadlocked := c.getPossibleActions(current)
	if deadlocked || len(actions) == 0 {
		info := role.OverrideStateResult(current, xp.Deadlock)
		c.finishEpisode(role, info)
		return info, nil
	}

	ag := c.getAgent(goal)
	action, err := ag.ChooseAction(current, actions)
	if err != nil {
		return xp.EnvironmentStateInfo{}, fmt.Errorf("choosing action: %w", err)
	}
	if action == nil {
		return xp.EnvironmentStateInfo{}, nil
	}

	info, t, err := c.TakeAction(action)
	if err != nil {
		return xp.EnvironmentStateInfo{}, err
	}
	c.mu.Lock()
	c.LastTransition = t
	c.newEpisode = false
	c.mu.Unlock()
	c.stats(goal).TotalSteps++

	if c.LearningEnabled {
		next, _ := c.getPossibleActions(t.EndState)
		ag.QLearn(t.StartState, t.ActionTaken, info.Reward, t.EndState, next)
	}

	if info.IsTerminal() {
		c.finishEpisode(role, info)
	}
	return info, nil
}

func (c *CyberSystemAgent) finishEpisode(role *xp.Role, info xp.EnvironmentStateInfo) {
	goal := c.CurrentGoal()
	st := c.stats(goal)
	st.EpisodeCount++
	switch info.Result {
	case xp.Succeeded:
		st.SuccessCount++
	case xp.Failed:
		st.FailureCount++
	case xp.Deadlock:
		st.DeadlockCount++
	}

	c.EvaluateEpisode(info.Reward)
	c.ProcessCurrentEpisode()

	if c.LearningEnabled && c.CurrentEpisode != nil {
		if ag, ok := c.Agents[goal]; ok {
			n := len(c.CurrentEpisode.Transitions)
			if n > 0 {
				rewards := make([]int, n)
				nextActions := make([][]*model.Action, n)
				for i, tr := range c.CurrentEpisode.Transitions {
					rewards[i] = role.GetStateInfo(tr.EndState).Reward
					nextActions[i], _ = c.getPossibleActions(tr.EndState)
				}
				ag.BackUp(c.CurrentEpisode.Transitions, rewards, nextActions)
			}
		}
	}

	c.mu.Lock()
	c.visitedStates = map[*model.EnvironmentState]bool{}
	c.newEpisode = true
	c.mu.Unlock()

	logx.Debug("agent %s: goal %q episode finished: %s", c.ID, goal, info.Result)
}

// Train runs episodes against the current goal's system until the budget of
// episodes is exhausted, starting a fresh episode each time the previous one
// completed (or on the very first call). updateXp controls whether learning
// is applied this run, independent of LearningEnabled's sticky setting.
func (c *CyberSystemAgent) Train(episodes int, updateXp bool) (xp.ActionResult, error) {
	prevLearning := c.LearningEnabled
	c.LearningEnabled = updateXp
	defer func() { c.LearningEnabled = prevLearning }()

	var last xp.EnvironmentStateInfo
	for i := 0; i < episodes; i++ {
		if err := c.System.Reset(); err != nil {
			return xp.InProgress, fmt.Errorf("resetting system: %w", err)
		}
		state, err := c.System.InterpretSystemState()
		if err != nil {
			return xp.InProgress, fmt.Errorf("interpreting reset state: %w", err)
		}
		c.StartEpisode(state)

		for {
			info, err := c.Act()
			if err != nil {
				return xp.InProgress, err
			}
			last = info
			if info.IsTerminal() {
				break
			}
		}
	}
	return last.Result, nil
}

// UpdateState re-synchronizes the assistant's view of the system's live
// state, without taking an action - used after an external actor changes the
// system out from under this agent (see SharedArena).
func (c *CyberSystemAgent) UpdateState() (*model.EnvironmentState, error) {
	state, err := c.System.InterpretSystemState()
	if err != nil {
		return nil, fmt.Errorf("interpreting system state: %w", err)
	}
	return c.Registry.GetStoredState(state), nil
}
