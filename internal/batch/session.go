package batch

import (
	"fmt"
	"slices"

	"github.com/hearthledger/hearth/internal/candidate"
	"github.com/hearthledger/hearth/internal/duplicate"
)

// State is the lifecycle stage of a Session.
type State string

const (
	StateCollecting State = "collecting"
	StateReviewing  State = "reviewing"
	StateSkipped    State = "skipped"
	StateForced     State = "forced"
	StateSubmitted  State = "submitted"
	StateRolledBack State = "rolled_back"
)

// Session is one batch being assembled, reviewed and submitted. It is not
// safe for concurrent use.
type Session struct {
	epoch      int64
	user       string
	state      State
	candidates []candidate.Candidate
	selected   map[string]bool
	duplicates []duplicate.Pair

	importTimestamp int64
}

// NewSession starts a batch. epoch is the client clock in unix milliseconds
// and seeds candidate ids.
func NewSession(epoch int64, user string) *Session {
	return &Session{
		epoch:    epoch,
		user:     user,
		state:    StateCollecting,
		selected: make(map[string]bool),
	}
}

func (s *Session) Epoch() int64 { return s.epoch }

func (s *Session) User() string { return s.user }

func (s *Session) State() State { return s.state }

// NextIndex is the index the next added candidate should be built with.
func (s *Session) NextIndex() int { return len(s.candidates) }

// ImportTimestamp is the backend handle of the submitted batch, zero before
// submission.
func (s *Session) ImportTimestamp() int64 { return s.importTimestamp }

// Duplicates returns the pairs found by the last Submit.
func (s *Session) Duplicates() []duplicate.Pair { return s.duplicates }

// Open reports whether candidates can still be added or reselected.
func (s *Session) Open() bool { return s.mutable() == nil }

func (s *Session) mutable() error {
	if s.state != StateCollecting && s.state != StateReviewing {
		return fmt.Errorf("%w: %s", ErrSessionClosed, s.state)
	}

	return nil
}

// Add appends candidates, selected by default. Ids already in the session
// are rejected.
func (s *Session) Add(cs ...candidate.Candidate) error {
	if err := s.mutable(); err != nil {
		return err
	}

	for _, c := range cs {
		if s.index(c.ID) >= 0 {
			return fmt.Errorf("candidate %s already in batch", c.ID)
		}

		s.candidates = append(s.candidates, c)
		s.selected[c.ID] = true
	}

	return nil
}

func (s *Session) Select(id string) error {
	return s.setSelected(id, true)
}

func (s *Session) Deselect(id string) error {
	return s.setSelected(id, false)
}

// Toggle flips the selection of id and returns the new value.
func (s *Session) Toggle(id string) (bool, error) {
	on := !s.selected[id]
	if err := s.setSelected(id, on); err != nil {
		return false, err
	}

	return on, nil
}

func (s *Session) setSelected(id string, on bool) error {
	if err := s.mutable(); err != nil {
		return err
	}

	if s.index(id) < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownCandidate, id)
	}

	s.selected[id] = on

	return nil
}

// Remove drops a candidate from the batch.
func (s *Session) Remove(id string) error {
	if err := s.mutable(); err != nil {
		return err
	}

	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownCandidate, id)
	}

	s.candidates = slices.Delete(s.candidates, i, i+1)
	delete(s.selected, id)

	return nil
}

// Candidates returns every candidate in insertion order.
func (s *Session) Candidates() []candidate.Candidate {
	return slices.Clone(s.candidates)
}

func (s *Session) IsSelected(id string) bool {
	return s.selected[id]
}

// Selected returns the selected candidates in insertion order.
func (s *Session) Selected() []candidate.Candidate {
	var out []candidate.Candidate

	for _, c := range s.candidates {
		if s.selected[c.ID] {
			out = append(out, c)
		}
	}

	return out
}

func (s *Session) index(id string) int {
	return slices.IndexFunc(s.candidates, func(c candidate.Candidate) bool { return c.ID == id })
}
