package objective

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"pso-sim/internal/common"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrEmptyLandmarkSet is returned when the landmark objective has nothing to measure against.
	ErrEmptyLandmarkSet = errors.New("landmark set is empty")
	// ErrUnknownLandmark is returned when an edit names a landmark that is not in the set.
	ErrUnknownLandmark = errors.New("unknown landmark")
)

// Landmark is a fixed point of interest, e.g. a marker on a map.
type Landmark struct {
	ID       string
	Position common.Vector
}

// String representation for logging
func (l Landmark) String() string {
	return fmt.Sprintf("Landmark[%s] Pos: %s", l.ID, l.Position)
}

// Landmarks scores a position by its mean Euclidean distance to every
// landmark in the set. The set may be edited between ticks; each
// evaluation reads the landmarks as they are at that moment.
type Landmarks struct {
	mu    sync.RWMutex
	items []Landmark
}

// NewLandmarks creates a landmark objective from the given positions.
func NewLandmarks(positions ...common.Vector) (*Landmarks, error) {
	if len(positions) == 0 {
		return nil, ErrEmptyLandmarkSet
	}
	l := &Landmarks{}
	for _, pos := range positions {
		l.items = append(l.items, newLandmark(pos))
	}
	return l, nil
}

func newLandmark(pos common.Vector) Landmark {
	return Landmark{
		ID:       fmt.Sprintf("landmark-%s", uuid.NewString()[:8]),
		Position: pos,
	}
}

// Evaluate returns the mean distance from pos to the current landmarks.
// An empty set scores 0 so the function stays total; the swarm validates
// the set before it builds particles.
func (l *Landmarks) Evaluate(pos common.Vector) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.items) == 0 {
		return 0
	}
	distances := make([]float64, len(l.items))
	for i, lm := range l.items {
		distances[i] = pos.Distance(lm.Position)
	}
	return stat.Mean(distances, nil)
}

// Validate reports ErrEmptyLandmarkSet when there are no landmarks.
func (l *Landmarks) Validate() error {
	if l.Len() == 0 {
		return ErrEmptyLandmarkSet
	}
	return nil
}

// Len returns the number of landmarks.
func (l *Landmarks) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// All returns a copy of the landmarks in insertion order.
func (l *Landmarks) All() []Landmark {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Landmark, len(l.items))
	copy(out, l.items)
	return out
}

// Add appends a landmark and returns its id.
func (l *Landmarks) Add(pos common.Vector) string {
	lm := newLandmark(pos)
	l.mu.Lock()
	l.items = append(l.items, lm)
	l.mu.Unlock()
	return lm.ID
}

// Move sets the position of the landmark with the given id.
func (l *Landmarks) Move(id string, pos common.Vector) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.indexOf(id)
	if i < 0 {
		return fmt.Errorf("move %s: %w", id, ErrUnknownLandmark)
	}
	l.items[i].Position = pos
	return nil
}

// Remove deletes the landmark with the given id. Removing the last landmark
// is allowed; the swarm rejects the empty set on its next reset.
func (l *Landmarks) Remove(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.indexOf(id)
	if i < 0 {
		return fmt.Errorf("remove %s: %w", id, ErrUnknownLandmark)
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	return nil
}

// Set replaces every landmark with new ones at the given positions.
func (l *Landmarks) Set(positions ...common.Vector) {
	items := make([]Landmark, 0, len(positions))
	for _, pos := range positions {
		items = append(items, newLandmark(pos))
	}
	l.mu.Lock()
	l.items = items
	l.mu.Unlock()
}

// Nearest returns the landmark closest to pos if it lies within radius.
func (l *Landmarks) Nearest(pos common.Vector, radius float64) (Landmark, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	best, found := Landmark{}, false
	bestDist := radius
	for _, lm := range l.items {
		if d := pos.Distance(lm.Position); d <= bestDist {
			best, bestDist, found = lm, d, true
		}
	}
	return best, found
}

func (l *Landmarks) indexOf(id string) int {
	for i, lm := range l.items {
		if lm.ID == id {
			return i
		}
	}
	return -1
}

func (l *Landmarks) String() string {
	all := l.All()
	strs := make([]string, len(all))
	for i, lm := range all {
		strs[i] = lm.Position.String()
	}
	return fmt.Sprintf("landmarks{%s}", strings.Join(strs, " "))
}
