package engine

import (
	"context"
	"strings"

	"LivingHistory/server/internal/models"
)

// achievementRule awards a badge when its condition holds for the storyline.
type achievementRule struct {
	characterID string // empty means any character
	matches     func(sl *models.Storyline) bool
	text        string
}

var achievementRules = []achievementRule{
	{
		characterID: "1",
		matches:     visitedEvent("Train Incident"),
		text:        "Pivotal Moment: Experienced the train incident in South Africa",
	},
	{
		characterID: "1",
		matches:     attributeAbove("resolve", 80),
		text:        "Unwavering Spirit: Demonstrated exceptional determination",
	},
	{
		characterID: "2",
		matches:     attributeAbove("intellect", 80),
		text:        "Scientific Brilliance: Demonstrated exceptional scientific intellect",
	},
	{
		characterID: "3",
		matches:     visitedEvent("Emancipation"),
		text:        "Great Emancipator: Took steps toward abolishing slavery",
	},
	{
		matches: nodesVisited(5),
		text:    "Journey Begun: Experienced 5 story moments",
	},
	{
		matches: nodesVisited(10),
		text:    "Historian: Experienced 10 story moments",
	},
}

// Achievements evaluates every rule against the storyline and returns the
// badges earned, in rule order.
func (e *Engine) Achievements(ctx context.Context, storylineID string) ([]string, error) {
	sl, err := e.StorylineByID(ctx, storylineID)
	if err != nil {
		return nil, err
	}

	earned := []string{}
	for _, rule := range achievementRules {
		if rule.characterID != "" && rule.characterID != sl.Context.CharacterID {
			continue
		}
		if rule.matches(sl) {
			earned = append(earned, rule.text)
		}
	}
	return earned, nil
}

func visitedEvent(fragment string) func(*models.Storyline) bool {
	return func(sl *models.Storyline) bool {
		for _, event := range sl.Context.VisitedEvents {
			if strings.Contains(event, fragment) {
				return true
			}
		}
		return false
	}
}

func attributeAbove(name string, threshold int) func(*models.Storyline) bool {
	return func(sl *models.Storyline) bool {
		return sl.Context.Attributes[name] > threshold
	}
}

func nodesVisited(count int) func(*models.Storyline) bool {
	return func(sl *models.Storyline) bool {
		return len(sl.Context.PreviousNodes) >= count
	}
}
