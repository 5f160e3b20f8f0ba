package session

import (
	"context"
	"fmt"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"LivingHistory/server/internal/characters"
	"LivingHistory/server/internal/engine"
	"LivingHistory/server/internal/generators"
	"LivingHistory/server/internal/models"
)

// PlayerStat is one display-ready attribute entry.
type PlayerStat struct {
	Name        string `json:"name"`
	Value       int    `json:"value"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// Relationship is one display-ready relationship entry.
type Relationship struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Label string `json:"label"`
}

// NodeVisuals carries generated imagery for a story node.
type NodeVisuals struct {
	AvatarURL      string `json:"avatarUrl"`
	EnvironmentURL string `json:"environmentUrl"`
}

var statPresentation = map[string]struct {
	icon        string
	description string
}{
	"influence":  {"👑", "Your sway over events and people around you"},
	"resolve":    {"💪", "Your inner strength and determination"},
	"intellect":  {"🧠", "Your reasoning and analytical ability"},
	"charisma":   {"✨", "Your ability to inspire and persuade"},
	"compassion": {"❤️", "Your care for the wellbeing of others"},
}

// Controller drives one player's interaction with the storyline engine.
// It serializes the play loop, tracks loading state, and pushes every
// state change through the emitter so transports stay passive.
type Controller struct {
	engine     *engine.Engine
	characters *characters.Service
	assets     generators.AssetClient
	events     *Emitter
	logger     *zap.Logger

	loading atomic.Bool
	// epoch counts generation requests; results arriving after a newer
	// request started are discarded instead of overwriting fresher state.
	epoch atomic.Int64

	storylineID   atomic.String
	currentNodeID atomic.String
}

func NewController(eng *engine.Engine, chars *characters.Service, assets generators.AssetClient, logger *zap.Logger) *Controller {
	return &Controller{
		engine:     eng,
		characters: chars,
		assets:     assets,
		events:     NewEmitter(),
		logger:     logger,
	}
}

// Events exposes the controller's emitter for transports to subscribe on.
func (c *Controller) Events() *Emitter { return c.events }

// Loading reports whether a generation request is in flight.
func (c *Controller) Loading() bool { return c.loading.Load() }

// Start begins or resumes a storyline for the character and pushes the
// current node and its choices to subscribers.
func (c *Controller) Start(ctx context.Context, characterID string, characterType models.CharacterType, accuracy models.Accuracy, existingID string) (*models.Storyline, error) {
	epoch := c.beginRequest()
	defer c.endRequest()

	sl, err := c.engine.CreateOrResume(ctx, characterID, characterType, accuracy, existingID)
	if err != nil {
		c.fail(err)
		return nil, err
	}
	if c.stale(epoch) {
		return sl, nil
	}

	nodeID, err := c.engine.CurrentNodeID(ctx, sl.ID)
	if err != nil {
		c.fail(err)
		return nil, err
	}

	c.storylineID.Store(sl.ID)
	c.currentNodeID.Store(nodeID)

	if err := c.presentNode(ctx, sl, nodeID, epoch); err != nil {
		return nil, err
	}
	return sl, nil
}

// Choose applies the given choice on the current node and pushes the
// successor node, its choices, and updated progress.
func (c *Controller) Choose(ctx context.Context, choiceID string) (*models.StoryNode, error) {
	storylineID := c.storylineID.Load()
	nodeID := c.currentNodeID.Load()
	if storylineID == "" || nodeID == "" {
		err := fmt.Errorf("no active storyline: %w", engine.ErrNotFound)
		c.fail(err)
		return nil, err
	}

	epoch := c.beginRequest()
	defer c.endRequest()

	next, err := c.engine.ApplyChoice(ctx, choiceID, nodeID, storylineID)
	if err != nil {
		c.fail(err)
		return nil, err
	}
	if c.stale(epoch) {
		return next, nil
	}

	c.currentNodeID.Store(next.ID)

	sl, err := c.engine.StorylineByID(ctx, storylineID)
	if err != nil {
		c.fail(err)
		return nil, err
	}
	if err := c.presentNode(ctx, sl, next.ID, epoch); err != nil {
		return nil, err
	}
	return next, nil
}

// Resume loads a saved storyline by id and pushes its current position.
func (c *Controller) Resume(ctx context.Context, storylineID string) (*models.Storyline, error) {
	epoch := c.beginRequest()
	defer c.endRequest()

	sl, err := c.engine.StorylineByID(ctx, storylineID)
	if err != nil {
		c.fail(err)
		return nil, err
	}

	nodeID, err := c.engine.CurrentNodeID(ctx, sl.ID)
	if err != nil {
		c.fail(err)
		return nil, err
	}

	c.storylineID.Store(sl.ID)
	c.currentNodeID.Store(nodeID)

	if err := c.presentNode(ctx, sl, nodeID, epoch); err != nil {
		return nil, err
	}
	return sl, nil
}

// Save persists the active storyline under the given title.
func (c *Controller) Save(ctx context.Context, title string) error {
	storylineID := c.storylineID.Load()
	if storylineID == "" {
		return fmt.Errorf("no active storyline: %w", engine.ErrNotFound)
	}
	return c.engine.Save(ctx, storylineID, title)
}

// List returns the saved-storyline index.
func (c *Controller) List(ctx context.Context) ([]models.StorylineSummary, error) {
	return c.engine.List(ctx)
}

// Delete removes a saved storyline. Deleting the active one clears the
// session position.
func (c *Controller) Delete(ctx context.Context, storylineID string) error {
	if err := c.engine.Delete(ctx, storylineID); err != nil {
		return err
	}
	if c.storylineID.Load() == storylineID {
		c.storylineID.Store("")
		c.currentNodeID.Store("")
	}
	return nil
}

// Progress reports completion for the given storyline, defaulting to the
// active one.
func (c *Controller) Progress(ctx context.Context, storylineID string) (Progress, error) {
	if storylineID == "" {
		storylineID = c.storylineID.Load()
	}
	if storylineID == "" {
		return Progress{}, fmt.Errorf("no active storyline: %w", engine.ErrNotFound)
	}

	pct, err := c.engine.CompletionPercent(ctx, storylineID)
	if err != nil {
		return Progress{}, err
	}
	complete, err := c.engine.IsComplete(ctx, storylineID)
	if err != nil {
		return Progress{}, err
	}
	sl, err := c.engine.StorylineByID(ctx, storylineID)
	if err != nil {
		return Progress{}, err
	}
	return Progress{
		Percent:     pct,
		IsComplete:  complete,
		ChoicesMade: len(sl.Context.PreviousChoices),
	}, nil
}

// PlayerStats returns the storyline's attributes decorated for display.
func (c *Controller) PlayerStats(ctx context.Context, storylineID string) ([]PlayerStat, error) {
	sl, err := c.resolve(ctx, storylineID)
	if err != nil {
		return nil, err
	}

	stats := make([]PlayerStat, 0, len(sl.Context.Attributes))
	for _, name := range []string{"influence", "resolve", "intellect", "charisma", "compassion"} {
		value, ok := sl.Context.Attributes[name]
		if !ok {
			continue
		}
		p := statPresentation[name]
		stats = append(stats, PlayerStat{
			Name:        name,
			Value:       value,
			Icon:        p.icon,
			Description: p.description,
		})
	}
	return stats, nil
}

// Relationships returns the storyline's relationship standings with a
// coarse sentiment label.
func (c *Controller) Relationships(ctx context.Context, storylineID string) ([]Relationship, error) {
	sl, err := c.resolve(ctx, storylineID)
	if err != nil {
		return nil, err
	}

	rels := make([]Relationship, 0, len(sl.Context.Relationships))
	for name, value := range sl.Context.Relationships {
		rels = append(rels, Relationship{
			Name:  name,
			Value: value,
			Label: relationshipLabel(value),
		})
	}
	return rels, nil
}

// NodeVisuals returns generated imagery for the node's setting and the
// storyline's character. Failures degrade to placeholders inside the
// asset client, so this never errors on generation.
func (c *Controller) NodeVisuals(ctx context.Context, storylineID, nodeID string) (*NodeVisuals, error) {
	sl, err := c.resolve(ctx, storylineID)
	if err != nil {
		return nil, err
	}
	node, ok := sl.Nodes[nodeID]
	if !ok {
		return nil, fmt.Errorf("node %s in storyline %s: %w", nodeID, storylineID, engine.ErrNotFound)
	}

	var character *models.Character
	if sl.Context.CharacterType == models.CharacterHistorical {
		character, err = c.characters.Historical(ctx, sl.Context.CharacterID)
	} else {
		character, err = c.characters.Custom(ctx, sl.Context.CharacterID)
	}
	if err != nil {
		return nil, err
	}

	visuals := &NodeVisuals{
		AvatarURL: c.assets.GenerateAvatar(ctx, character.Name, character.Era, character.Biography),
	}
	location, year, situation := sl.Context.CurrentLocation, sl.Context.CurrentYear, sl.Context.CurrentSituation
	if meta := node.Metadata; meta != nil {
		if meta.Location != "" {
			location = meta.Location
		}
		if meta.Year != "" {
			year = meta.Year
		}
		if meta.HistoricalEvent != "" {
			situation = meta.HistoricalEvent
		}
	}
	visuals.EnvironmentURL = c.assets.GenerateEnvironment(ctx, location, year, situation)
	return visuals, nil
}

// Achievements returns the badges earned in the storyline.
func (c *Controller) Achievements(ctx context.Context, storylineID string) ([]string, error) {
	if storylineID == "" {
		storylineID = c.storylineID.Load()
	}
	return c.engine.Achievements(ctx, storylineID)
}

// Transcript renders the storyline's playthrough as markdown.
func (c *Controller) Transcript(ctx context.Context, storylineID string) (string, error) {
	if storylineID == "" {
		storylineID = c.storylineID.Load()
	}
	return c.engine.Transcript(ctx, storylineID)
}

func (c *Controller) resolve(ctx context.Context, storylineID string) (*models.Storyline, error) {
	if storylineID == "" {
		storylineID = c.storylineID.Load()
	}
	if storylineID == "" {
		return nil, fmt.Errorf("no active storyline: %w", engine.ErrNotFound)
	}
	return c.engine.StorylineByID(ctx, storylineID)
}

// presentNode pushes the node, its (lazily generated) choices, and the
// updated progress to subscribers, unless a newer request has started.
func (c *Controller) presentNode(ctx context.Context, sl *models.Storyline, nodeID string, epoch int64) error {
	node, ok := sl.Nodes[nodeID]
	if !ok {
		err := fmt.Errorf("node %s in storyline %s: %w", nodeID, sl.ID, engine.ErrNotFound)
		c.fail(err)
		return err
	}
	if c.stale(epoch) {
		return nil
	}
	c.events.emitNode(node)

	complete, err := c.engine.IsComplete(ctx, sl.ID)
	if err != nil {
		c.fail(err)
		return err
	}

	if !complete {
		choices, err := c.engine.ChoicesFor(ctx, nodeID, sl.ID)
		if err != nil {
			c.fail(err)
			return err
		}
		if c.stale(epoch) {
			return nil
		}
		c.events.emitChoices(choices)
	} else {
		c.events.emitChoices([]models.Choice{})
	}

	pct, err := c.engine.CompletionPercent(ctx, sl.ID)
	if err != nil {
		c.fail(err)
		return err
	}
	if c.stale(epoch) {
		return nil
	}
	c.events.emitProgress(Progress{
		Percent:     pct,
		IsComplete:  complete,
		ChoicesMade: len(sl.Context.PreviousChoices),
	})
	return nil
}

func (c *Controller) beginRequest() int64 {
	epoch := c.epoch.Add(1)
	c.loading.Store(true)
	c.events.emitLoading(true)
	return epoch
}

func (c *Controller) endRequest() {
	c.loading.Store(false)
	c.events.emitLoading(false)
}

func (c *Controller) stale(epoch int64) bool {
	return c.epoch.Load() != epoch
}

func (c *Controller) fail(err error) {
	c.logger.Error("session error", zap.Error(err))
	c.events.emitError(err)
}

func relationshipLabel(value int) string {
	switch {
	case value >= 60:
		return "devoted"
	case value >= 20:
		return "friendly"
	case value > -20:
		return "neutral"
	case value > -60:
		return "strained"
	default:
		return "hostile"
	}
}
