package main

import (
	"fmt"
	"os"

	"cyberxp/cybersys"
	"cyberxp/model"
	"cyberxp/plugins/gridworld"
	"cyberxp/plugins/tictactoe"
	"cyberxp/xp"
)

// systemBuild is everything a subcommand needs to drive one named system
// against one named goal: the live system, the registry it was built
// against, the goal name to train/replay, and the default role for that
// goal.
type systemBuild struct {
	Registry *model.Registry
	System   cybersys.CyberSystem
	Goal     string
	Role     *xp.Role
}

// buildSystem constructs the named system together with its goal name and
// default role. mark picks the tictactoe side and is ignored by gridworld;
// trackFile is only consulted for gridworld.
func buildSystem(name, trackFile, mark string) (*systemBuild, error) {
	return buildSystemOn(model.NewRegistry(name+"-model"), name, trackFile, mark)
}

// buildSystemOn is buildSystem against a caller-supplied registry, used by
// replay to wire a system up against a registry already populated from a
// saved model/knowledge document instead of a blank one.
func buildSystemOn(registry *model.Registry, name, trackFile, mark string) (*systemBuild, error) {
	switch name {
	case "gridworld":
		sys := gridworld.NewSystem(registry)
		if err := sys.InitRoles(registry); err != nil {
			return nil, fmt.Errorf("registering entity types: %w", err)
		}
		if trackFile == "" {
			return nil, fmt.Errorf("gridworld requires --track")
		}
		track, err := os.ReadFile(trackFile)
		if err != nil {
			return nil, fmt.Errorf("reading track file: %w", err)
		}
		if err := sys.SetConfiguration(string(track)); err != nil {
			return nil, fmt.Errorf("parsing track file: %w", err)
		}
		if err := sys.Initialize(false); err != nil {
			return nil, fmt.Errorf("initializing gridworld: %w", err)
		}
		return &systemBuild{
			Registry: registry,
			System:   sys,
			Goal:     gridworld.GoalName,
			Role:     gridworld.DefaultRole(registry.Name()),
		}, nil

	case "tictactoe":
		sys := tictactoe.NewSystem(registry)
		if err := sys.InitRoles(registry); err != nil {
			return nil, fmt.Errorf("registering entity types: %w", err)
		}
		if err := sys.Initialize(false); err != nil {
			return nil, fmt.Errorf("initializing tictactoe: %w", err)
		}
		m := tictactoe.X
		if mark == "O" || mark == "o" {
			m = tictactoe.O
		}
		return &systemBuild{
			Registry: registry,
			System:   sys,
			Goal:     tictactoe.GoalName(m),
			Role:     tictactoe.DefaultRole(registry.Name(), m),
		}, nil

	default:
		return nil, fmt.Errorf("unknown system %q (want gridworld or tictactoe)", name)
	}
}
