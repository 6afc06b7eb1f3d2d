package questions

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"
)

// Question categories
const (
	CategoryScience       = "science"
	CategoryHistory       = "history"
	CategorySports        = "sports"
	CategoryEntertainment = "entertainment"
	CategoryGeography     = "geography"
)

// Question is one multiple-choice quiz question. By convention the first
// stored option is the correct one; shuffling the options for display is
// the client's concern.
type Question struct {
	ID       string    `json:"id"`
	Text     string    `json:"text"`
	Category string    `json:"category"`
	Options  [4]string `json:"options"`
}

// CorrectOption returns the designated correct option.
func (q Question) CorrectOption() string {
	return q.Options[0]
}

// Validate checks that a question is complete enough to be served.
func (q Question) Validate() error {
	if q.Text == "" {
		return fmt.Errorf("question has no text")
	}
	for i, option := range q.Options {
		if option == "" {
			return fmt.Errorf("question %q is missing option %d", q.Text, i+1)
		}
	}
	return nil
}

// Source provides questions for new sessions and lookups during scoring.
// Implementations must be safe for concurrent use.
type Source interface {
	// Sample returns up to n distinct random questions. It may return
	// fewer than n if not enough questions exist; callers must handle
	// a short sample.
	Sample(n int) []Question
	// Get returns a question by id.
	Get(id string) (Question, bool)
	// Len returns the number of available questions.
	Len() int
}

// InMemorySource serves questions from memory, typically seeded from the
// repository at startup.
type InMemorySource struct {
	lock  sync.RWMutex
	byID  map[string]Question
	order []string
}

// NewInMemorySource creates a source holding the given questions.
// Questions without an id are assigned one.
func NewInMemorySource(qs []Question) *InMemorySource {
	s := &InMemorySource{
		byID: make(map[string]Question, len(qs)),
	}
	for _, q := range qs {
		s.Add(q)
	}
	return s
}

// Add registers a question, assigning an id if it has none.
func (s *InMemorySource) Add(q Question) Question {
	s.lock.Lock()
	defer s.lock.Unlock()

	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	if _, ok := s.byID[q.ID]; !ok {
		s.order = append(s.order, q.ID)
	}
	s.byID[q.ID] = q
	return q
}

// Sample returns up to n distinct questions drawn uniformly without
// replacement.
func (s *InMemorySource) Sample(n int) []Question {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if n > len(s.order) {
		n = len(s.order)
	}
	if n <= 0 {
		return nil
	}

	sampled := make([]Question, 0, n)
	for _, i := range rand.Perm(len(s.order))[:n] {
		sampled = append(sampled, s.byID[s.order[i]])
	}
	return sampled
}

// Get returns a question by id.
func (s *InMemorySource) Get(id string) (Question, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	q, ok := s.byID[id]
	return q, ok
}

// Len returns the number of available questions.
func (s *InMemorySource) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.order)
}
