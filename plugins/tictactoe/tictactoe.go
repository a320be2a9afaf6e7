// Package tictactoe implements a cybersys.CyberSystem over a shared 3x3
// board: two goals, one per mark, take turns placing it in an empty cell
// until one of them lines up three in a row or the board fills up.
package tictactoe

import (
	"fmt"
	"strconv"
	"strings"

	"cyberxp/logx"
	"cyberxp/model"
)

// EntityID is the id of the system's single tracked entity.
const EntityID = "board"

// EntityTypeName is the entity type tictactoe registers via InitRoles.
const EntityTypeName = "board"

// Mark is a player's symbol on the board.
type Mark string

const (
	X     Mark = "X"
	O     Mark = "O"
	Empty Mark = " "
)

// MoveAction is the one action type this system supports; its single
// parameter is the board cell index, "1".."9", numbered left to right, top
// to bottom.
const MoveAction = "move"

// GoalName returns the goal name a player of mark is registered under,
// matching the "AI player (X)"/"AI player (O)" naming used throughout the
// original scenarios.
func GoalName(mark Mark) string {
	return fmt.Sprintf("AI player (%s)", mark)
}

func cellProp(cell int) string { return "c" + strconv.Itoa(cell) }

// winningLines lists every triple of cell indices (1-based) that wins the
// game if all three hold the same mark.
var winningLines = [][3]int{
	{1, 2, 3}, {4, 5, 6}, {7, 8, 9}, // rows
	{1, 4, 7}, {2, 5, 8}, {3, 6, 9}, // columns
	{1, 5, 9}, {3, 5, 7}, // diagonals
}

// System is a pluggable cybersys.CyberSystem implementing tic-tac-toe for
// two shared goals (one per mark) driven through the same board.
type System struct {
	registry *model.Registry

	cells [9]Mark
	turn  Mark

	initialized bool
	logOn       bool

	initial *model.EnvironmentState
	last    *model.EnvironmentState
}

// NewSystem builds a tic-tac-toe system backed by registry.
func NewSystem(registry *model.Registry) *System {
	return &System{registry: registry}
}

func (s *System) Name() string { return "TicTacToeCybSys" }

func (s *System) Initialize(rebuild bool) error {
	if s.initialized && !rebuild {
		return nil
	}
	s.resetBoard()
	s.initial = s.buildState()
	s.last = s.initial
	s.initialized = true
	return nil
}

func (s *System) resetBoard() {
	for i := range s.cells {
		s.cells[i] = Empty
	}
	s.turn = X
}

func (s *System) Clear() {
	s.initialized = false
	s.initial, s.last = nil, nil
	s.resetBoard()
}

func (s *System) IsInitialized() bool { return s.initialized }

func (s *System) Reset() error {
	s.resetBoard()
	s.last = s.buildState()
	return nil
}

func (s *System) buildState() *model.EnvironmentState {
	board := s.registry.NewEntityState(EntityTypeName)
	for i, mark := range s.cells {
		board.SetProperty(cellProp(i+1), string(mark))
	}
	board.SetProperty("turn", string(s.turn))

	state := model.NewEnvironmentState()
	state.SetEntityState(EntityID, board)
	return s.registry.GetStoredState(state)
}

func (s *System) InterpretSystemState() (*model.EnvironmentState, error) {
	s.last = s.buildState()
	return s.last, nil
}

func (s *System) InitialState() *model.EnvironmentState { return s.initial }
func (s *System) LastState() *model.EnvironmentState     { return s.last }

// SynchronizeState pushes environmentState's board and turn onto the live
// system, used by loop-detection lookahead to undo a simulated move.
func (s *System) SynchronizeState(environmentState *model.EnvironmentState) error {
	board := environmentState.GetEntityState(EntityID)
	if board == nil {
		return fmt.Errorf("tictactoe: state has no %q entity", EntityID)
	}
	for i := range s.cells {
		v, ok := board.GetProperty(cellProp(i + 1))
		if !ok {
			return fmt.Errorf("tictactoe: state missing %q", cellProp(i+1))
		}
		s.cells[i] = Mark(v)
	}
	turn, ok := board.GetProperty("turn")
	if !ok {
		return fmt.Errorf("tictactoe: state missing turn")
	}
	s.turn = Mark(turn)
	s.last = s.buildState()
	return nil
}

// markFor resolves which mark roleID's goal corresponds to, or "" if it
// does not name a known goal.
func markFor(roleID string) Mark {
	switch roleID {
	case GoalName(X):
		return X
	case GoalName(O):
		return O
	default:
		return ""
	}
}

// AvailableActions lists every empty cell as a candidate move, but only when
// roleID names the mark whose turn it currently is - the other player's
// assistant sees no actions at all until the turn comes back around. With
// smartSelection, a move that completes three in a row for the current mark
// is offered on its own, since taking an immediate win is never the wrong
// choice.
func (s *System) AvailableActions(roleID string, smartSelection bool) []*model.Action {
	mark := markFor(roleID)
	if mark == "" || mark != s.turn || s.Winner() != Empty {
		return nil
	}

	var actions []*model.Action
	var winning []*model.Action
	for i := 0; i < 9; i++ {
		if s.cells[i] != Empty {
			continue
		}
		cell := strconv.Itoa(i + 1)
		action := model.NewAction(MoveAction, cell)
		actions = append(actions, action)
		if smartSelection && s.wins(i, mark) {
			winning = append(winning, action)
		}
	}
	if smartSelection && len(winning) > 0 {
		return winning
	}
	return actions
}

// wins reports whether placing mark at cell index (0-based) completes a
// winning line.
func (s *System) wins(cellIndex int, mark Mark) bool {
	saved := s.cells[cellIndex]
	s.cells[cellIndex] = mark
	won := s.winnerIs(mark)
	s.cells[cellIndex] = saved
	return won
}

func (s *System) winnerIs(mark Mark) bool {
	for _, line := range winningLines {
		if s.cells[line[0]-1] == mark && s.cells[line[1]-1] == mark && s.cells[line[2]-1] == mark {
			return true
		}
	}
	return false
}

// Winner returns the mark occupying a completed line, or Empty if there is
// none yet.
func (s *System) Winner() Mark {
	if s.winnerIs(X) {
		return X
	}
	if s.winnerIs(O) {
		return O
	}
	return Empty
}

// Full reports whether every cell is occupied.
func (s *System) Full() bool {
	for _, c := range s.cells {
		if c == Empty {
			return false
		}
	}
	return true
}

// ExecuteAction places the current mark in the cell named by action's single
// parameter, then passes the turn.
func (s *System) ExecuteAction(action *model.Action) (bool, error) {
	if action.TypeID != MoveAction || len(action.Params) != 1 {
		return false, nil
	}
	cell, err := strconv.Atoi(action.Params[0])
	if err != nil || cell < 1 || cell > 9 {
		return false, nil
	}
	if s.cells[cell-1] != Empty {
		return false, nil
	}
	s.cells[cell-1] = s.turn
	if s.turn == X {
		s.turn = O
	} else {
		s.turn = X
	}
	s.last = s.buildState()
	return true, nil
}

// FailureCondition is always empty: tic-tac-toe has no system-level failure
// distinct from a role's own win/lose conditions.
func (s *System) FailureCondition() *model.Condition {
	return &model.Condition{}
}

// InitRoles registers the board entity type with registry.
func (s *System) InitRoles(registry *model.Registry) error {
	defaults := map[string]string{"turn": string(X)}
	for i := 1; i <= 9; i++ {
		defaults[cellProp(i)] = string(Empty)
	}
	registry.DefineEntityType("", EntityTypeName, defaults, nil, nil)
	return nil
}

func (s *System) SetConfiguration(config string) error { return nil }
func (s *System) Configuration() string                { return "" }

func (s *System) ReadEntityConfiguration(entityID string) (string, error) {
	if entityID != EntityID {
		return "", fmt.Errorf("tictactoe: unknown entity %q", entityID)
	}
	var b strings.Builder
	for _, c := range s.cells {
		b.WriteString(string(c))
	}
	return b.String(), nil
}

func (s *System) WriteEntityConfiguration(entityID, config string) error {
	return fmt.Errorf("tictactoe: entity configuration is read-only")
}

func (s *System) ConfigureEntity(entityID, entityType, config string) error {
	return fmt.Errorf("tictactoe: entities are fixed, none can be configured")
}

func (s *System) RemoveEntity(entityID string) error {
	return fmt.Errorf("tictactoe: the board entity cannot be removed")
}

// Info renders the board as three rows of three marks.
func (s *System) Info(infoID string) string {
	var b strings.Builder
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			b.WriteString(string(s.cells[row*3+col]))
			if col < 2 {
				b.WriteByte('|')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (s *System) SetLogEnabled(enabled bool) {
	s.logOn = enabled
	if enabled {
		logx.Debug("tictactoe: logging enabled")
	}
}

func (s *System) LogEnabled() bool { return s.logOn }
