package engine

import (
	"context"
	"fmt"
	"math"
	"strings"

	"LivingHistory/server/internal/models"
)

// IsComplete reports whether the storyline has reached an ending: the node
// the player currently sits on is marked as an ending or offers no choices.
func (e *Engine) IsComplete(ctx context.Context, storylineID string) (bool, error) {
	sl, err := e.StorylineByID(ctx, storylineID)
	if err != nil {
		return false, err
	}
	return storylineComplete(sl), nil
}

// CompletionPercent estimates progress as choices made over the expected
// number of choice points, capped at 99 until the storyline actually ends.
func (e *Engine) CompletionPercent(ctx context.Context, storylineID string) (int, error) {
	sl, err := e.StorylineByID(ctx, storylineID)
	if err != nil {
		return 0, err
	}
	if storylineComplete(sl) {
		return 100, nil
	}
	pct := int(math.Round(float64(len(sl.Context.PreviousChoices)) / float64(e.choicePoints) * 100))
	if pct > 99 {
		pct = 99
	}
	return pct, nil
}

func storylineComplete(sl *models.Storyline) bool {
	currentID := sl.StartNodeID
	if n := len(sl.Context.PreviousNodes); n > 0 {
		currentID = sl.Context.PreviousNodes[n-1]
	}
	// The player's actual position is the successor of the last recorded
	// choice when one is bound.
	if n := len(sl.Context.PreviousChoices); n > 0 {
		last := sl.Context.PreviousChoices[n-1]
		if node, ok := sl.Nodes[last.NodeID]; ok {
			for i := range node.Choices {
				if node.Choices[i].ID == last.ChoiceID && node.Choices[i].LeadsTo.IsResolved() {
					currentID = node.Choices[i].LeadsTo.NodeID()
				}
			}
		}
	}

	node, ok := sl.Nodes[currentID]
	if !ok {
		return false
	}
	if node.Metadata != nil && node.Metadata.IsEnding {
		return true
	}
	// A nil choice slice means choices were never generated for the node;
	// only an explicitly empty generated set marks a dead end.
	return node.Choices != nil && len(node.Choices) == 0
}

// CurrentNodeID returns the node the player sits on after replaying the
// recorded choice history from the start node.
func (e *Engine) CurrentNodeID(ctx context.Context, storylineID string) (string, error) {
	sl, err := e.StorylineByID(ctx, storylineID)
	if err != nil {
		return "", err
	}

	currentID := sl.StartNodeID
	for _, record := range sl.Context.PreviousChoices {
		node, ok := sl.Nodes[record.NodeID]
		if !ok {
			continue
		}
		for i := range node.Choices {
			if node.Choices[i].ID == record.ChoiceID && node.Choices[i].LeadsTo.IsResolved() {
				currentID = node.Choices[i].LeadsTo.NodeID()
			}
		}
	}
	return currentID, nil
}

// Transcript renders the playthrough so far as markdown: each visited node's
// narration followed by the choice the player took there.
func (e *Engine) Transcript(ctx context.Context, storylineID string) (string, error) {
	sl, err := e.StorylineByID(ctx, storylineID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", sl.Title)
	fmt.Fprintf(&b, "*Playing as %s*\n\n", sl.Character.Name)

	writeNode := func(id string) {
		node, ok := sl.Nodes[id]
		if !ok {
			return
		}
		if node.Metadata != nil && (node.Metadata.Year != "" || node.Metadata.Location != "") {
			fmt.Fprintf(&b, "**%s — %s**\n\n", node.Metadata.Location, node.Metadata.Year)
		}
		b.WriteString(node.Text)
		b.WriteString("\n\n")
	}

	for _, record := range sl.Context.PreviousChoices {
		writeNode(record.NodeID)
		fmt.Fprintf(&b, "> %s\n\n", record.ChoiceText)
	}

	currentID, err := e.CurrentNodeID(ctx, storylineID)
	if err == nil && currentID != "" {
		visited := false
		for _, record := range sl.Context.PreviousChoices {
			if record.NodeID == currentID {
				visited = true
				break
			}
		}
		if !visited {
			writeNode(currentID)
		}
	}
	return b.String(), nil
}
