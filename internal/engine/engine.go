package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"LivingHistory/server/internal/characters"
	"LivingHistory/server/internal/config"
	"LivingHistory/server/internal/generators"
	"LivingHistory/server/internal/models"
	"LivingHistory/server/internal/storage"
)

const (
	storylineKeyPrefix = "storyline_"
	indexKey           = "storyline_list"
)

// Engine owns the storyline node graph, the choice-application state machine,
// and persistence. The persistent store is authoritative; the in-memory maps
// are pure caches and can be dropped at any time.
//
// Callers must not overlap mutating calls for the same storyline; the engine
// is driven by a single cooperative session per storyline.
type Engine struct {
	store      storage.Store
	characters characters.Provider
	chain      *generators.Chain
	logger     *zap.Logger

	choicePoints int
	traitBonus   int

	mu          sync.Mutex
	byID        map[string]*models.Storyline
	byCharacter map[string]*models.Storyline
}

func New(store storage.Store, provider characters.Provider, chain *generators.Chain, cfg config.StoryConfig, logger *zap.Logger) *Engine {
	return &Engine{
		store:        store,
		characters:   provider,
		chain:        chain,
		logger:       logger,
		choicePoints: cfg.EstimatedChoicePoints,
		traitBonus:   cfg.TraitBonus,
		byID:         make(map[string]*models.Storyline),
		byCharacter:  make(map[string]*models.Storyline),
	}
}

// CreateOrResume returns the storyline for the given character and accuracy
// mode, resuming an explicit identifier when given, reusing the session cache
// otherwise, and creating (and persisting) a fresh storyline as a last resort.
func (e *Engine) CreateOrResume(ctx context.Context, characterID string, characterType models.CharacterType, accuracy models.Accuracy, existingID string) (*models.Storyline, error) {
	if existingID != "" {
		sl, err := e.StorylineByID(ctx, existingID)
		if err == nil {
			return sl, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		// Fall through and create a fresh storyline.
	}

	cacheKey := characterCacheKey(characterType, characterID, accuracy)
	e.mu.Lock()
	if sl, ok := e.byCharacter[cacheKey]; ok {
		e.mu.Unlock()
		return sl, nil
	}
	e.mu.Unlock()

	character, err := e.lookupCharacter(ctx, characterID, characterType)
	if err != nil {
		return nil, err
	}

	startNode := e.generateStartNode(ctx, character, accuracy)

	now := time.Now()
	sl := &models.Storyline{
		ID:    uuid.NewString(),
		Title: fmt.Sprintf("%s's Journey", character.Name),
		Character: models.CharacterRef{
			ID:   characterID,
			Type: characterType,
			Name: character.Name,
		},
		Nodes:       map[string]*models.StoryNode{startNode.ID: startNode},
		StartNodeID: startNode.ID,
		Context: models.StoryContext{
			CharacterID:     characterID,
			CharacterType:   characterType,
			Accuracy:        accuracy,
			PreviousNodes:   []string{},
			PreviousChoices: []models.ChoiceRecord{},
			Relationships:   map[string]int{},
			Attributes:      initialAttributes(character.Traits, e.traitBonus),
			VisitedEvents:   []string{},
		},
		Created:     now,
		LastUpdated: now,
	}

	if meta := startNode.Metadata; meta != nil {
		sl.Context.CurrentYear = meta.Year
		sl.Context.CurrentLocation = meta.Location
		sl.Context.CurrentSituation = meta.HistoricalEvent
	}

	if err := e.persist(ctx, sl); err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.byCharacter[cacheKey] = sl
	e.byID[sl.ID] = sl
	e.mu.Unlock()

	e.logger.Info("storyline created",
		zap.String("storyline", sl.ID),
		zap.String("character", character.Name),
		zap.String("accuracy", string(accuracy)))
	return sl, nil
}

// ChoicesFor returns the node's choice set, generating and persisting one if
// the node does not carry choices yet. Idempotent.
func (e *Engine) ChoicesFor(ctx context.Context, nodeID, storylineID string) ([]models.Choice, error) {
	sl, err := e.StorylineByID(ctx, storylineID)
	if err != nil {
		return nil, err
	}

	node, ok := sl.Nodes[nodeID]
	if !ok {
		return nil, fmt.Errorf("node %s in storyline %s: %w", nodeID, storylineID, ErrNotFound)
	}
	if len(node.Choices) > 0 {
		return node.Choices, nil
	}

	character, err := e.lookupCharacter(ctx, sl.Context.CharacterID, sl.Context.CharacterType)
	if err != nil {
		return nil, err
	}

	scene := e.chain.Generate(ctx, character, e.promptContext(sl, node, nil))
	node.Choices = scene.Choices

	if err := e.persist(ctx, sl); err != nil {
		return nil, err
	}
	return node.Choices, nil
}

// ApplyChoice advances the storyline along the given choice. Re-taking an
// already-resolved choice is a pure read: the bound successor is returned
// with no history or state mutation. A first-time transition records the
// choice, applies its consequences, generates and inserts the successor,
// binds leadsTo, and persists before returning.
func (e *Engine) ApplyChoice(ctx context.Context, choiceID, currentNodeID, storylineID string) (*models.StoryNode, error) {
	sl, err := e.StorylineByID(ctx, storylineID)
	if err != nil {
		return nil, err
	}

	currentNode, ok := sl.Nodes[currentNodeID]
	if !ok {
		return nil, fmt.Errorf("node %s in storyline %s: %w", currentNodeID, storylineID, ErrNotFound)
	}

	choiceIdx := -1
	for i := range currentNode.Choices {
		if currentNode.Choices[i].ID == choiceID {
			choiceIdx = i
			break
		}
	}
	if choiceIdx < 0 {
		return nil, fmt.Errorf("choice %s on node %s: %w", choiceID, currentNodeID, ErrNotFound)
	}
	choice := &currentNode.Choices[choiceIdx]

	// Memoized path: the successor is already bound.
	if choice.LeadsTo.IsResolved() {
		if next, ok := sl.Nodes[choice.LeadsTo.NodeID()]; ok {
			return next, nil
		}
	}

	character, err := e.lookupCharacter(ctx, sl.Context.CharacterID, sl.Context.CharacterType)
	if err != nil {
		return nil, err
	}

	snap := snapshotContext(&sl.Context)

	sl.Context.PreviousNodes = append(sl.Context.PreviousNodes, currentNodeID)
	sl.Context.PreviousChoices = append(sl.Context.PreviousChoices, models.ChoiceRecord{
		ChoiceID:   choiceID,
		ChoiceText: choice.Text,
		NodeID:     currentNodeID,
		Timestamp:  time.Now(),
	})

	applyConsequences(&sl.Context, choice.Consequences)

	scene := e.chain.Generate(ctx, character, e.promptContext(sl, currentNode, choice))
	nextNode := nodeFromScene(scene)

	sl.Nodes[nextNode.ID] = nextNode
	choice.LeadsTo = models.ResolvedTo(nextNode.ID)

	if meta := nextNode.Metadata; meta != nil {
		if meta.Year != "" {
			sl.Context.CurrentYear = meta.Year
		}
		if meta.Location != "" {
			sl.Context.CurrentLocation = meta.Location
		}
		if meta.HistoricalEvent != "" {
			sl.Context.CurrentSituation = meta.HistoricalEvent
			if meta.IsKeyMoment && !containsString(sl.Context.VisitedEvents, meta.HistoricalEvent) {
				sl.Context.VisitedEvents = append(sl.Context.VisitedEvents, meta.HistoricalEvent)
			}
		}
	}

	if err := e.persist(ctx, sl); err != nil {
		// Roll the cached storyline back so it still mirrors the store;
		// a retry will re-apply the choice from the pre-choice state.
		delete(sl.Nodes, nextNode.ID)
		choice.LeadsTo = models.Unresolved()
		restoreContext(&sl.Context, snap)
		return nil, err
	}
	return nextNode, nil
}

// StorylineByID loads a storyline from the cache or the persistent store.
func (e *Engine) StorylineByID(ctx context.Context, id string) (*models.Storyline, error) {
	e.mu.Lock()
	if sl, ok := e.byID[id]; ok {
		e.mu.Unlock()
		return sl, nil
	}
	e.mu.Unlock()

	raw, err := e.store.Get(ctx, storylineKeyPrefix+id)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, fmt.Errorf("storyline %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load storyline %s: %w (%v)", id, ErrStorage, err)
	}

	var sl models.Storyline
	if err := json.Unmarshal([]byte(raw), &sl); err != nil {
		return nil, fmt.Errorf("decode storyline %s: %w", id, err)
	}

	e.mu.Lock()
	e.byID[id] = &sl
	e.mu.Unlock()
	return &sl, nil
}

// Save persists the storyline, optionally retitling it first.
func (e *Engine) Save(ctx context.Context, storylineID, title string) error {
	sl, err := e.StorylineByID(ctx, storylineID)
	if err != nil {
		return err
	}
	if title != "" {
		sl.Title = title
	}
	return e.persist(ctx, sl)
}

// Delete removes the storyline and its index entry.
func (e *Engine) Delete(ctx context.Context, storylineID string) error {
	if err := e.store.Remove(ctx, storylineKeyPrefix+storylineID); err != nil {
		return fmt.Errorf("delete storyline %s: %w (%v)", storylineID, ErrStorage, err)
	}

	e.mu.Lock()
	delete(e.byID, storylineID)
	for key, sl := range e.byCharacter {
		if sl.ID == storylineID {
			delete(e.byCharacter, key)
		}
	}
	e.mu.Unlock()

	summaries, err := e.List(ctx)
	if err != nil {
		return err
	}
	kept := summaries[:0]
	for _, s := range summaries {
		if s.ID != storylineID {
			kept = append(kept, s)
		}
	}
	return e.writeIndex(ctx, kept)
}

// List returns the saved-storyline index, most recently updated first.
func (e *Engine) List(ctx context.Context) ([]models.StorylineSummary, error) {
	raw, err := e.store.Get(ctx, indexKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return []models.StorylineSummary{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load storyline index: %w (%v)", ErrStorage, err)
	}

	var summaries []models.StorylineSummary
	if err := json.Unmarshal([]byte(raw), &summaries); err != nil {
		return nil, fmt.Errorf("decode storyline index: %w", err)
	}
	return summaries, nil
}

func (e *Engine) persist(ctx context.Context, sl *models.Storyline) error {
	sl.LastUpdated = time.Now()

	data, err := json.Marshal(sl)
	if err != nil {
		return fmt.Errorf("encode storyline %s: %w", sl.ID, err)
	}
	if err := e.store.Set(ctx, storylineKeyPrefix+sl.ID, string(data)); err != nil {
		return fmt.Errorf("save storyline %s: %w (%v)", sl.ID, ErrStorage, err)
	}

	e.mu.Lock()
	e.byID[sl.ID] = sl
	e.mu.Unlock()

	return e.updateIndex(ctx, sl)
}

func (e *Engine) updateIndex(ctx context.Context, sl *models.Storyline) error {
	summaries, err := e.List(ctx)
	if err != nil {
		return err
	}

	entry := models.StorylineSummary{
		ID:          sl.ID,
		Title:       sl.Title,
		Character:   sl.Character,
		Created:     sl.Created,
		LastUpdated: sl.LastUpdated,
	}

	replaced := false
	for i := range summaries {
		if summaries[i].ID == sl.ID {
			summaries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		summaries = append(summaries, entry)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].LastUpdated.After(summaries[j].LastUpdated)
	})

	return e.writeIndex(ctx, summaries)
}

func (e *Engine) writeIndex(ctx context.Context, summaries []models.StorylineSummary) error {
	data, err := json.Marshal(summaries)
	if err != nil {
		return fmt.Errorf("encode storyline index: %w", err)
	}
	if err := e.store.Set(ctx, indexKey, string(data)); err != nil {
		return fmt.Errorf("save storyline index: %w (%v)", ErrStorage, err)
	}
	return nil
}

func (e *Engine) lookupCharacter(ctx context.Context, id string, characterType models.CharacterType) (*models.Character, error) {
	var (
		c   *models.Character
		err error
	)
	if characterType == models.CharacterHistorical {
		c, err = e.characters.Historical(ctx, id)
	} else {
		c, err = e.characters.Custom(ctx, id)
	}
	if errors.Is(err, characters.ErrCharacterNotFound) {
		return nil, fmt.Errorf("character %s (%s): %w", id, characterType, ErrNotFound)
	}
	return c, err
}

// generateStartNode seeds the storyline: historical characters with key
// events start at the chronologically earliest one, everyone else gets an
// era-appropriate generic opening.
func (e *Engine) generateStartNode(ctx context.Context, character *models.Character, accuracy models.Accuracy) *models.StoryNode {
	pc := generators.PromptContext{Accuracy: accuracy}

	if character.Type == models.CharacterHistorical && len(character.KeyEvents) > 0 {
		events := make([]models.HistoricalEvent, len(character.KeyEvents))
		copy(events, character.KeyEvents)
		sort.SliceStable(events, func(i, j int) bool {
			return eventYear(events[i]) < eventYear(events[j])
		})
		event := events[0]

		pc.Event = &event
		pc.Year = generators.YearOf(event.Date)
		pc.Location = generators.LocationOf(&event)
	} else {
		pc.Year = generators.EraYear(character.Era)
	}

	return nodeFromScene(e.chain.Generate(ctx, character, pc))
}

// promptContext assembles generation input from the node being left and the
// accumulated storyline context. choice is nil for choice-set generation.
func (e *Engine) promptContext(sl *models.Storyline, node *models.StoryNode, choice *models.Choice) generators.PromptContext {
	pc := generators.PromptContext{
		Year:         sl.Context.CurrentYear,
		Location:     sl.Context.CurrentLocation,
		Situation:    sl.Context.CurrentSituation,
		Accuracy:     sl.Context.Accuracy,
		PreviousText: node.Text,
		Attributes:   sl.Context.Attributes,
	}
	if meta := node.Metadata; meta != nil {
		if meta.Year != "" {
			pc.Year = meta.Year
		}
		if meta.Location != "" {
			pc.Location = meta.Location
		}
		if meta.HistoricalEvent != "" {
			pc.Situation = meta.HistoricalEvent
		}
	}
	if choice != nil {
		pc.ChoiceTaken = choice
	} else {
		pc.WantChoices = true
	}
	return pc
}

func applyConsequences(ctx *models.StoryContext, c models.Consequences) {
	if ctx.Attributes == nil {
		ctx.Attributes = map[string]int{}
	}
	for attr, delta := range c.AffectsAttributes {
		current, ok := ctx.Attributes[attr]
		if !ok {
			current = 50
		}
		ctx.Attributes[attr] = clampAttribute(current + delta)
	}

	if ctx.Relationships == nil {
		ctx.Relationships = map[string]int{}
	}
	for name, delta := range c.AffectsRelationships {
		ctx.Relationships[name] = clampRelationship(ctx.Relationships[name] + delta)
	}
}

func nodeFromScene(scene *models.StructuredScene) *models.StoryNode {
	text := scene.NarrationText()
	if text == "" {
		text = "You find yourself at a pivotal moment in history."
	}
	return &models.StoryNode{
		ID:        uuid.NewString(),
		Text:      text,
		Kind:      models.KindNarration,
		Timestamp: time.Now(),
		Choices:   scene.Choices,
		Metadata:  scene.Metadata,
	}
}

func eventYear(e models.HistoricalEvent) int {
	year, err := strconv.Atoi(generators.YearOf(e.Date))
	if err != nil {
		return 0
	}
	return year
}

func characterCacheKey(t models.CharacterType, id string, a models.Accuracy) string {
	return string(t) + "_" + id + "_" + string(a)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// contextSnapshot captures the mutable parts of a StoryContext so a failed
// advance can be undone without reloading from the store.
type contextSnapshot struct {
	previousNodes   []string
	previousChoices []models.ChoiceRecord
	visitedEvents   []string
	year            string
	location        string
	situation       string
	relationships   map[string]int
	attributes      map[string]int
}

func snapshotContext(c *models.StoryContext) contextSnapshot {
	return contextSnapshot{
		previousNodes:   c.PreviousNodes[:len(c.PreviousNodes):len(c.PreviousNodes)],
		previousChoices: c.PreviousChoices[:len(c.PreviousChoices):len(c.PreviousChoices)],
		visitedEvents:   c.VisitedEvents[:len(c.VisitedEvents):len(c.VisitedEvents)],
		year:            c.CurrentYear,
		location:        c.CurrentLocation,
		situation:       c.CurrentSituation,
		relationships:   copyIntMap(c.Relationships),
		attributes:      copyIntMap(c.Attributes),
	}
}

func restoreContext(c *models.StoryContext, snap contextSnapshot) {
	c.PreviousNodes = snap.previousNodes
	c.PreviousChoices = snap.previousChoices
	c.VisitedEvents = snap.visitedEvents
	c.CurrentYear = snap.year
	c.CurrentLocation = snap.location
	c.CurrentSituation = snap.situation
	c.Relationships = snap.relationships
	c.Attributes = snap.attributes
}

func copyIntMap(m map[string]int) map[string]int {
	if m == nil {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
