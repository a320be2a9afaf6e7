package assistant

import (
	"fmt"
	"sync"

	"cyberxp/model"
	"cyberxp/xp"
	"cyberxp/xperr"
)

// SharedArena coordinates several CyberSystemAssistants driving roles in the
// same shared environment: whichever actor actually takes an action, the
// resulting transition is broadcast to every other registered actor via
// AcquireTransition, so each actor's episode stays synchronized with the
// one true sequence of events even though only one of them moved.
type SharedArena struct {
	mu sync.Mutex

	actors    map[string]*CyberSystemAssistant
	actorOrder []string
}

// NewSharedArena builds an arena with no actors registered yet.
func NewSharedArena() *SharedArena {
	return &SharedArena{actors: map[string]*CyberSystemAssistant{}}
}

// AddActor registers actor under its own ID.
func (s *SharedArena) AddActor(actor *CyberSystemAssistant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.actors[actor.ID]; exists {
		return fmt.Errorf("actor %q: %w", actor.ID, xperr.ErrAlreadyExists)
	}
	s.actors[actor.ID] = actor
	s.actorOrder = append(s.actorOrder, actor.ID)
	return nil
}

// RemoveActor drops actorID from the arena.
func (s *SharedArena) RemoveActor(actorID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.actors, actorID)
	for i, id := range s.actorOrder {
		if id == actorID {
			s.actorOrder = append(s.actorOrder[:i], s.actorOrder[i+1:]...)
			break
		}
	}
}

// HasActor reports whether actorID is currently registered. Named to read
// true when the actor is actually present - the sense a caller expects from
// a method called "HasActor".
func (s *SharedArena) HasActor(actorID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.actors[actorID]
	return ok
}

// ActorIDs returns every registered actor's ID, in registration order.
func (s *SharedArena) ActorIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.actorOrder...)
}

// NewEpisode starts a fresh episode on initialState for every registered
// actor.
func (s *SharedArena) NewEpisode(initialState *model.EnvironmentState) {
	s.mu.Lock()
	actors := make([]*CyberSystemAssistant, 0, len(s.actorOrder))
	for _, id := range s.actorOrder {
		actors = append(actors, s.actors[id])
	}
	s.mu.Unlock()

	for _, a := range actors {
		a.StartEpisode(initialState)
	}
}

// TakeAction has actorID execute action against the shared system, then
// broadcasts the resulting transition to every other registered actor so
// their episodes observe it too.
func (s *SharedArena) TakeAction(actorID string, action *model.Action) (xp.EnvironmentStateInfo, error) {
	s.mu.Lock()
	actor, ok := s.actors[actorID]
	others := make([]*CyberSystemAssistant, 0, len(s.actorOrder))
	for _, id := range s.actorOrder {
		if id != actorID {
			others = append(others, s.actors[id])
		}
	}
	s.mu.Unlock()

	if !ok {
		return xp.EnvironmentStateInfo{}, fmt.Errorf("actor %q: %w", actorID, xperr.ErrUnknownAgent)
	}

	info, t, err := actor.TakeAction(action)
	if err != nil {
		return xp.EnvironmentStateInfo{}, err
	}

	for _, other := range others {
		role := other.CurrentRole()
		if role == nil {
			continue
		}
		other.AcquireTransition(t, role)
	}

	return info, nil
}
