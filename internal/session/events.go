package session

import (
	"sync"

	"LivingHistory/server/internal/models"
)

// Progress is the payload of progress notifications.
type Progress struct {
	Percent     int  `json:"percent"`
	IsComplete  bool `json:"isComplete"`
	ChoicesMade int  `json:"choicesMade"`
}

// Emitter fans storyline events out to registered listeners. Registration
// returns an unsubscribe func; listeners are invoked synchronously in
// registration order on the emitting goroutine.
type Emitter struct {
	mu       sync.Mutex
	nextID   int
	node     map[int]func(*models.StoryNode)
	choices  map[int]func([]models.Choice)
	loading  map[int]func(bool)
	errs     map[int]func(error)
	progress map[int]func(Progress)
}

func NewEmitter() *Emitter {
	return &Emitter{
		node:     make(map[int]func(*models.StoryNode)),
		choices:  make(map[int]func([]models.Choice)),
		loading:  make(map[int]func(bool)),
		errs:     make(map[int]func(error)),
		progress: make(map[int]func(Progress)),
	}
}

// OnNode registers a listener for newly presented story nodes.
func (e *Emitter) OnNode(fn func(*models.StoryNode)) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	e.node[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.node, id)
	}
}

// OnChoices registers a listener for choice-set updates.
func (e *Emitter) OnChoices(fn func([]models.Choice)) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	e.choices[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.choices, id)
	}
}

// OnLoading registers a listener for loading-state transitions.
func (e *Emitter) OnLoading(fn func(bool)) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	e.loading[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.loading, id)
	}
}

// OnError registers a listener for session errors.
func (e *Emitter) OnError(fn func(error)) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	e.errs[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.errs, id)
	}
}

// OnProgress registers a listener for progress updates.
func (e *Emitter) OnProgress(fn func(Progress)) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	e.progress[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.progress, id)
	}
}

func (e *Emitter) emitNode(node *models.StoryNode) {
	for _, fn := range e.snapshotNode() {
		fn(node)
	}
}

func (e *Emitter) emitChoices(choices []models.Choice) {
	e.mu.Lock()
	fns := make([]func([]models.Choice), 0, len(e.choices))
	for _, fn := range e.choices {
		fns = append(fns, fn)
	}
	e.mu.Unlock()
	for _, fn := range fns {
		fn(choices)
	}
}

func (e *Emitter) emitLoading(loading bool) {
	e.mu.Lock()
	fns := make([]func(bool), 0, len(e.loading))
	for _, fn := range e.loading {
		fns = append(fns, fn)
	}
	e.mu.Unlock()
	for _, fn := range fns {
		fn(loading)
	}
}

func (e *Emitter) emitError(err error) {
	e.mu.Lock()
	fns := make([]func(error), 0, len(e.errs))
	for _, fn := range e.errs {
		fns = append(fns, fn)
	}
	e.mu.Unlock()
	for _, fn := range fns {
		fn(err)
	}
}

func (e *Emitter) emitProgress(p Progress) {
	e.mu.Lock()
	fns := make([]func(Progress), 0, len(e.progress))
	for _, fn := range e.progress {
		fns = append(fns, fn)
	}
	e.mu.Unlock()
	for _, fn := range fns {
		fn(p)
	}
}

func (e *Emitter) snapshotNode() []func(*models.StoryNode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fns := make([]func(*models.StoryNode), 0, len(e.node))
	for _, fn := range e.node {
		fns = append(fns, fn)
	}
	return fns
}
