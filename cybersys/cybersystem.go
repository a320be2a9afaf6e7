// Package cybersys defines the contract a pluggable cyber system (a
// gridworld, a tic-tac-toe board, a simulated circuit, ...) must implement
// to be driven by an assistant.
package cybersys

import "cyberxp/model"

// CyberSystem is the capability interface an assistant drives to interact
// with a concrete system and keep its environment-state view in sync. It is
// the one boundary in this module meant to be implemented externally;
// nothing else in the core depends on how a given system actually works.
type CyberSystem interface {
	// Name identifies the system (used in logs and persisted documents).
	Name() string

	// Initialize prepares the system for use, building its initial state.
	// If rebuild is true, the initial state is rebuilt even if the system
	// was already initialized.
	Initialize(rebuild bool) error

	// Clear fully resets the system to "not initialized".
	Clear()

	// IsInitialized reports whether Initialize has been called.
	IsInitialized() bool

	// Reset restores the system to its initial state without clearing its
	// configuration.
	Reset() error

	// SynchronizeState pushes environmentState's entity/feature values onto
	// the live system, e.g. to replay a previously recorded state.
	SynchronizeState(environmentState *model.EnvironmentState) error

	// InterpretSystemState reads the system's live state into an
	// EnvironmentState.
	InterpretSystemState() (*model.EnvironmentState, error)

	// InitialState returns the state captured by the most recent
	// Initialize call.
	InitialState() *model.EnvironmentState

	// LastState returns the state captured by the most recent
	// InterpretSystemState call.
	LastState() *model.EnvironmentState

	// AvailableActions lists the actions the system currently supports,
	// optionally narrowed to ones sensible for roleID. When smartSelection
	// is true the system may prune to actions a heuristic considers
	// promising (e.g. ones leading to immediate success); a system with no
	// such heuristic should just return every available action.
	AvailableActions(roleID string, smartSelection bool) []*model.Action

	// ExecuteAction carries out action on the live system. It returns false
	// (with a nil error) if action was not recognized, and a non-nil error
	// only for an actual execution failure.
	ExecuteAction(action *model.Action) (bool, error)

	// FailureCondition is the system's own built-in failure condition
	// (distinct from any role's failure condition), e.g. "the reactor
	// melted down" rather than "the operator didn't reach the goal".
	FailureCondition() *model.Condition

	// InitRoles registers this system's default roles with the given model
	// registry.
	InitRoles(registry *model.Registry) error

	// Configuration/entity management, used by systems that expose a
	// richer textual configuration surface than plain actions.
	SetConfiguration(config string) error
	Configuration() string
	ReadEntityConfiguration(entityID string) (string, error)
	WriteEntityConfiguration(entityID, config string) error
	ConfigureEntity(entityID, entityType, config string) error
	RemoveEntity(entityID string) error

	// Info returns free-form diagnostic information about the system, or
	// about a specific aspect of it if infoID is non-empty.
	Info(infoID string) string

	SetLogEnabled(enabled bool)
	LogEnabled() bool
}
