// Package gridworld implements a cybersys.CyberSystem over a text-defined
// grid: a pawn entity moves with up/down/left/right actions across a track
// of empty, start, finish, bonus and trap cells, bumping against obstacles
// rather than crossing them.
package gridworld

import (
	"fmt"
	"strconv"
	"strings"

	"cyberxp/logx"
	"cyberxp/model"
)

// Cell is one grid position's terrain.
type Cell byte

const (
	Empty    Cell = ' '
	Start    Cell = 'S'
	Finish   Cell = 'E'
	Bonus    Cell = '$'
	Obstacle Cell = '#'
	Trap     Cell = '!'
)

func (c Cell) name() string {
	switch c {
	case Start:
		return "start"
	case Finish:
		return "finish"
	case Bonus:
		return "bonus"
	case Obstacle:
		return "obstacle"
	case Trap:
		return "trap"
	default:
		return "track"
	}
}

// EntityID is the id of the system's single tracked entity.
const EntityID = "pawn"

// EntityTypeName is the entity type gridworld registers via InitRoles.
const EntityTypeName = "pawn"

const (
	propX    = "x"
	propY    = "y"
	propCell = "cell"
)

// Action type ids.
const (
	Up    = "up"
	Down  = "down"
	Left  = "left"
	Right = "right"
)

var directions = map[string][2]int{
	Up:    {0, 1},
	Down:  {0, -1},
	Left:  {-1, 0},
	Right: {1, 0},
}

// System is a pluggable cybersys.CyberSystem backed by a rectangular grid of
// cells, parsed from a "<width> <height>\n<rows top-to-bottom>" configuration
// string matching the layout used throughout the original test scenarios.
type System struct {
	registry *model.Registry

	config         string
	grid           [][]Cell // grid[y][x], y=0 at the bottom
	width, height  int
	startX, startY int

	x, y int

	initialized bool
	logOn       bool

	initial *model.EnvironmentState
	last    *model.EnvironmentState
}

// NewSystem builds a gridworld system backed by registry. Call
// SetConfiguration then Initialize before driving it.
func NewSystem(registry *model.Registry) *System {
	return &System{registry: registry}
}

func (s *System) Name() string { return "Gridworld" }

// SetConfiguration parses a track layout. The first line is "<width>
// <height>"; the following height lines are the grid rows as printed (top
// row first), using Start/Finish/Bonus/Obstacle/Trap/space cell codes.
func (s *System) SetConfiguration(config string) error {
	lines := strings.Split(strings.ReplaceAll(config, "\r\n", "\n"), "\n")
	if len(lines) < 1 {
		return fmt.Errorf("gridworld: empty configuration")
	}
	dims := strings.Fields(lines[0])
	if len(dims) != 2 {
		return fmt.Errorf("gridworld: expected \"width height\" on the first line, got %q", lines[0])
	}
	width, err := strconv.Atoi(dims[0])
	if err != nil {
		return fmt.Errorf("gridworld: invalid width: %w", err)
	}
	height, err := strconv.Atoi(dims[1])
	if err != nil {
		return fmt.Errorf("gridworld: invalid height: %w", err)
	}
	if len(lines) < height+1 {
		return fmt.Errorf("gridworld: expected %d grid rows, got %d", height, len(lines)-1)
	}

	grid := make([][]Cell, height)
	startX, startY := -1, -1
	for row := 0; row < height; row++ {
		line := lines[row+1]
		y := height - row - 1 // bottom row is y=0
		grid[y] = make([]Cell, width)
		for x := 0; x < width; x++ {
			c := Cell(' ')
			if x < len(line) {
				c = Cell(line[x])
			}
			grid[y][x] = c
			if c == Start {
				startX, startY = x, y
			}
		}
	}
	if startX < 0 {
		return fmt.Errorf("gridworld: configuration has no start (%c) cell", Start)
	}

	s.config = config
	s.grid = grid
	s.width = width
	s.height = height
	s.startX, s.startY = startX, startY
	return nil
}

func (s *System) Configuration() string { return s.config }

func (s *System) Initialize(rebuild bool) error {
	if s.initialized && !rebuild {
		return nil
	}
	if s.grid == nil {
		return fmt.Errorf("gridworld: Initialize called before SetConfiguration")
	}
	s.x, s.y = s.startX, s.startY
	s.initial = s.buildState()
	s.last = s.initial
	s.initialized = true
	return nil
}

func (s *System) Clear() {
	s.grid = nil
	s.width, s.height = 0, 0
	s.initialized = false
	s.initial, s.last = nil, nil
}

func (s *System) IsInitialized() bool { return s.initialized }

func (s *System) Reset() error {
	if !s.initialized {
		return fmt.Errorf("gridworld: Reset called before Initialize")
	}
	s.x, s.y = s.startX, s.startY
	s.last = s.buildState()
	return nil
}

func (s *System) cellAt(x, y int) Cell {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return Obstacle
	}
	return s.grid[y][x]
}

func (s *System) buildState() *model.EnvironmentState {
	pawn := s.registry.NewEntityState(EntityTypeName)
	pawn.SetProperty(propX, strconv.Itoa(s.x))
	pawn.SetProperty(propY, strconv.Itoa(s.y))
	pawn.SetProperty(propCell, s.cellAt(s.x, s.y).name())

	state := model.NewEnvironmentState()
	state.SetEntityState(EntityID, pawn)
	return s.registry.GetStoredState(state)
}

func (s *System) InterpretSystemState() (*model.EnvironmentState, error) {
	s.last = s.buildState()
	return s.last, nil
}

func (s *System) InitialState() *model.EnvironmentState { return s.initial }
func (s *System) LastState() *model.EnvironmentState     { return s.last }

// SynchronizeState pushes environmentState's pawn position onto the live
// grid, used by loop-detection lookahead to undo a simulated move.
func (s *System) SynchronizeState(environmentState *model.EnvironmentState) error {
	pawn := environmentState.GetEntityState(EntityID)
	if pawn == nil {
		return fmt.Errorf("gridworld: state has no %q entity", EntityID)
	}
	x, ok := pawn.GetProperty(propX)
	if !ok {
		return fmt.Errorf("gridworld: pawn state has no %q property", propX)
	}
	y, ok := pawn.GetProperty(propY)
	if !ok {
		return fmt.Errorf("gridworld: pawn state has no %q property", propY)
	}
	xi, err := strconv.Atoi(x)
	if err != nil {
		return fmt.Errorf("gridworld: invalid %q property: %w", propX, err)
	}
	yi, err := strconv.Atoi(y)
	if err != nil {
		return fmt.Errorf("gridworld: invalid %q property: %w", propY, err)
	}
	s.x, s.y = xi, yi
	s.last = s.buildState()
	return nil
}

// AvailableActions lists the directions that lead somewhere other than an
// obstacle or the grid edge. With smartSelection it additionally drops any
// direction stepping onto a trap, provided at least one non-trap direction
// remains - a pawn backed into a corner of traps still needs a way out.
func (s *System) AvailableActions(roleID string, smartSelection bool) []*model.Action {
	if s.cellAt(s.x, s.y) == Finish {
		return nil
	}

	var actions []*model.Action
	for _, dir := range []string{Up, Down, Left, Right} {
		d := directions[dir]
		if s.cellAt(s.x+d[0], s.y+d[1]) == Obstacle {
			continue
		}
		actions = append(actions, model.NewAction(dir))
	}

	if !smartSelection {
		return actions
	}
	safe := make([]*model.Action, 0, len(actions))
	for _, a := range actions {
		d := directions[a.TypeID]
		if s.cellAt(s.x+d[0], s.y+d[1]) != Trap {
			safe = append(safe, a)
		}
	}
	if len(safe) == 0 {
		return actions
	}
	return safe
}

// ExecuteAction moves the pawn one cell in the given direction. Stepping
// onto an obstacle is rejected outright (AvailableActions should already
// exclude it); every other destination, including a trap or the finish
// cell, is carried out and left for the role's conditions to classify.
func (s *System) ExecuteAction(action *model.Action) (bool, error) {
	d, known := directions[action.TypeID]
	if !known {
		return false, nil
	}
	nx, ny := s.x+d[0], s.y+d[1]
	if s.cellAt(nx, ny) == Obstacle {
		return false, nil
	}
	s.x, s.y = nx, ny
	s.last = s.buildState()
	return true, nil
}

// FailureCondition reports the system's own failure: the pawn standing on a
// trap cell, regardless of which role is evaluating it.
func (s *System) FailureCondition() *model.Condition {
	return &model.Condition{
		EntityConditions: []model.EntityCondition{{
			EntityID:       EntityID,
			PropConditions: []model.PropertyCondition{model.NewPropertyCondition(propCell, Trap.name())},
		}},
	}
}

// InitRoles registers the pawn entity type with registry.
func (s *System) InitRoles(registry *model.Registry) error {
	registry.DefineEntityType("", EntityTypeName,
		map[string]string{propX: "0", propY: "0", propCell: Start.name()},
		nil,
		nil,
	)
	return nil
}

func (s *System) ReadEntityConfiguration(entityID string) (string, error) {
	if entityID != EntityID {
		return "", fmt.Errorf("gridworld: unknown entity %q", entityID)
	}
	return fmt.Sprintf("%d,%d", s.x, s.y), nil
}

func (s *System) WriteEntityConfiguration(entityID, config string) error {
	if entityID != EntityID {
		return fmt.Errorf("gridworld: unknown entity %q", entityID)
	}
	parts := strings.Split(config, ",")
	if len(parts) != 2 {
		return fmt.Errorf("gridworld: expected \"x,y\", got %q", config)
	}
	x, err := strconv.Atoi(parts[0])
	if err != nil {
		return err
	}
	y, err := strconv.Atoi(parts[1])
	if err != nil {
		return err
	}
	s.x, s.y = x, y
	s.last = s.buildState()
	return nil
}

func (s *System) ConfigureEntity(entityID, entityType, config string) error {
	return s.WriteEntityConfiguration(entityID, config)
}

func (s *System) RemoveEntity(entityID string) error {
	return fmt.Errorf("gridworld: the pawn entity cannot be removed")
}

// Info renders the grid with the pawn's current position marked.
func (s *System) Info(infoID string) string {
	var b strings.Builder
	for row := 0; row < s.height; row++ {
		y := s.height - row - 1
		for x := 0; x < s.width; x++ {
			switch {
			case x == s.x && y == s.y:
				b.WriteByte('@')
			default:
				b.WriteByte(byte(s.grid[y][x]))
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (s *System) SetLogEnabled(enabled bool) {
	s.logOn = enabled
	if enabled {
		logx.Debug("gridworld: logging enabled")
	}
}

func (s *System) LogEnabled() bool { return s.logOn }
