/*
The session pkg keeps many independent clustering runs, each behind an id.

It generally works like so: Table contains a map where the keys are ids while
vals are slots, each keeping one kmeans.Engine. Both have a lock, such that one
goroutine working on a run won't lock the whole table.

So lock the table -> access slot -> unlock table.
Lock slot -> do op -> unlock slot.
*/
package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"kmviz/pkg/kmeans"
)

// ErrNotFound is returned for ids that don't exist in a Table.
var ErrNotFound = errors.New("session not found")

// slot keeps one engine. Safe concurrency usage done with slot.access.
type slot struct {
	engine *kmeans.Engine
	sync.Mutex
}

func (s *slot) access(f func(*kmeans.Engine) error) error {
	s.Lock()
	defer s.Unlock()

	return f(s.engine)
}

// Table contains engines keyed by session id. Safe for concurrent use.
type Table struct {
	slots map[string]*slot
	// opts are passed to each new engine.
	opts []kmeans.Option
	sync.Mutex
}

// NewTable creates an empty table. opts are used for every engine created by
// Table.Create. A *rand.Rand given with kmeans.WithRand is never handed to the
// engines directly, each engine gets its own generator seeded from it.
func NewTable(opts ...kmeans.Option) *Table {
	return &Table{slots: make(map[string]*slot), opts: opts}
}

// engineOptions merges the table options with opts. A shared generator is
// replaced by a per-engine one, seeded from the shared one under the table
// lock, so runs never touch the same *rand.Rand.
func (t *Table) engineOptions(opts []kmeans.Option) []kmeans.Option {
	all := append(append([]kmeans.Option{}, t.opts...), opts...)

	var o kmeans.Options
	for _, opt := range all {
		opt(&o)
	}
	if o.Rand == nil {
		return all
	}

	t.Lock()
	seed := o.Rand.Int63()
	t.Unlock()
	return append(all, kmeans.WithSeed(seed))
}

// Create starts a new run and gives its id.
func (t *Table) Create(ds kmeans.DataSet, cfg kmeans.Config, opts ...kmeans.Option) (string, error) {
	e, err := kmeans.NewEngine(ds, cfg, t.engineOptions(opts)...)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()

	t.Lock()
	defer t.Unlock()
	t.slots[id] = &slot{engine: e}
	return id, nil
}

// Access does a concurrency safe operation on the engine behind id. Errors
// from f are passed through, ErrNotFound (wrapped) is returned if id doesn't
// exist.
//
//	err := t.Access(id, func(e *kmeans.Engine) error {
//		snap, err = e.Step()
//		return err
//	})
func (t *Table) Access(id string, f func(*kmeans.Engine) error) error {
	// Grab lock only for the map access, the slot has another lock for
	// the engine itself.
	t.Lock()
	s, ok := t.slots[id]
	t.Unlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return s.access(f)
}

// Snapshot is a shorthand for accessing the snapshot behind id.
func (t *Table) Snapshot(id string) (kmeans.Snapshot, error) {
	var snap kmeans.Snapshot
	err := t.Access(id, func(e *kmeans.Engine) error {
		snap = e.Snapshot()
		return nil
	})
	return snap, err
}

// Delete drops the run behind id.
func (t *Table) Delete(id string) error {
	t.Lock()
	defer t.Unlock()

	if _, ok := t.slots[id]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	delete(t.slots, id)
	return nil
}

// Len gives the number of runs.
func (t *Table) Len() int {
	t.Lock()
	defer t.Unlock()
	return len(t.slots)
}

// IDs gives all ids, sorted.
func (t *Table) IDs() []string {
	t.Lock()
	defer t.Unlock()

	res := make([]string, 0, len(t.slots))
	for id := range t.slots {
		res = append(res, id)
	}
	sort.Strings(res)
	return res
}
