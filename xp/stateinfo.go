package xp

// EnvironmentStateInfo is the result of evaluating a state against a role:
// the state's classification (in-progress, succeeded, failed, deadlock) and
// the reward computed for it.
type EnvironmentStateInfo struct {
	Result ActionResult
	Reward int
}

func (i EnvironmentStateInfo) Succeeded() bool    { return i.Result == Succeeded }
func (i EnvironmentStateInfo) Failed() bool       { return i.Result == Failed }
func (i EnvironmentStateInfo) IsDeadlock() bool    { return i.Result == Deadlock }
func (i EnvironmentStateInfo) IsInProgress() bool  { return i.Result == InProgress }
func (i EnvironmentStateInfo) IsCompleted() bool   { return i.Result.Terminal() }
func (i EnvironmentStateInfo) IsTerminal() bool    { return i.Result.Terminal() }
