package models

import (
	"encoding/json"
	"time"
)

// NodeKind classifies a narrative beat.
type NodeKind string

const (
	KindNarration      NodeKind = "narration"
	KindDialogue       NodeKind = "dialogue"
	KindThought        NodeKind = "thought"
	KindHistoricalFact NodeKind = "historical-fact"
	KindDecisionPoint  NodeKind = "decision-point"
)

// ValidNodeKind reports whether k is one of the known node kinds.
func ValidNodeKind(k NodeKind) bool {
	switch k {
	case KindNarration, KindDialogue, KindThought, KindHistoricalFact, KindDecisionPoint:
		return true
	}
	return false
}

// EmotionalTone is the mood a scene carries.
type EmotionalTone string

const (
	ToneNeutral    EmotionalTone = "neutral"
	ToneTense      EmotionalTone = "tense"
	ToneHopeful    EmotionalTone = "hopeful"
	ToneSomber     EmotionalTone = "somber"
	ToneTriumphant EmotionalTone = "triumphant"
)

// Accuracy is the historical-fidelity mode of a storyline, fixed at creation.
type Accuracy string

const (
	AccuracyAccurate Accuracy = "accurate"
	AccuracyCreative Accuracy = "creative"
)

// ChoiceAccuracy grades how faithful a single choice is to the record.
type ChoiceAccuracy string

const (
	ChoiceAccurate         ChoiceAccuracy = "accurate"
	ChoiceSomewhatAccurate ChoiceAccuracy = "somewhat-accurate"
	ChoiceCreative         ChoiceAccuracy = "creative"
)

// NodeRef is the successor binding of a choice. It starts unresolved and is
// bound permanently to a node identifier the first time the choice is taken.
type NodeRef struct {
	id string
}

// ResolvedTo returns a NodeRef bound to the given node identifier.
func ResolvedTo(nodeID string) NodeRef { return NodeRef{id: nodeID} }

// Unresolved returns the zero NodeRef.
func Unresolved() NodeRef { return NodeRef{} }

func (r NodeRef) IsResolved() bool { return r.id != "" }
func (r NodeRef) NodeID() string   { return r.id }

// NodeRef serializes as the bare node identifier, empty when unresolved,
// matching the persisted storyline layout.
func (r NodeRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.id)
}

func (r *NodeRef) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &r.id)
}

// NodeMetadata carries the setting and narrative flags of a node.
type NodeMetadata struct {
	Location             string        `json:"location,omitempty"`
	Year                 string        `json:"year,omitempty"`
	HistoricalEvent      string        `json:"historicalEvent,omitempty"`
	EmotionalTone        EmotionalTone `json:"emotionalTone,omitempty"`
	IsKeyMoment          bool          `json:"isKeyMoment,omitempty"`
	IsEnding             bool          `json:"isEnding,omitempty"`
	ContextualBackground string        `json:"contextualBackground,omitempty"`
}

// StoryNode is one narrative beat in a storyline graph.
type StoryNode struct {
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	Kind      NodeKind      `json:"type"`
	Speaker   string        `json:"speaker,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Choices   []Choice      `json:"choices,omitempty"`
	Metadata  *NodeMetadata `json:"metadata,omitempty"`
}

// Terminal reports whether the node has no outgoing choices.
func (n *StoryNode) Terminal() bool { return len(n.Choices) == 0 }

// Consequences describes what taking a choice does to the player state.
type Consequences struct {
	Immediate            string         `json:"immediate,omitempty"`
	LongTerm             string         `json:"longTerm,omitempty"`
	AffectsRelationships map[string]int `json:"affectsRelationships,omitempty"`
	AffectsAttributes    map[string]int `json:"affectsAttributes,omitempty"`
}

// Choice is a player-selectable option on a node.
type Choice struct {
	ID                 string         `json:"id"`
	Text               string         `json:"text"`
	Impact             string         `json:"impact"`
	HistoricalAccuracy ChoiceAccuracy `json:"historicalAccuracy"`
	Consequences       Consequences   `json:"consequences"`
	LeadsTo            NodeRef        `json:"leadsTo"`
}

// ChoiceRecord is one entry in the choice history of a storyline.
type ChoiceRecord struct {
	ChoiceID   string    `json:"choiceId"`
	ChoiceText string    `json:"choiceText"`
	NodeID     string    `json:"nodeId"`
	Timestamp  time.Time `json:"timestamp"`
}

// StoryContext is the mutable player state threaded through a storyline.
type StoryContext struct {
	CharacterID      string         `json:"characterId"`
	CharacterType    CharacterType  `json:"characterType"`
	Accuracy         Accuracy       `json:"accuracy"`
	PreviousNodes    []string       `json:"previousNodes"`
	PreviousChoices  []ChoiceRecord `json:"previousChoices"`
	CurrentYear      string         `json:"currentYear,omitempty"`
	CurrentLocation  string         `json:"currentLocation,omitempty"`
	CurrentSituation string         `json:"currentSituation,omitempty"`
	Relationships    map[string]int `json:"relationships"`
	Attributes       map[string]int `json:"attributes"`
	VisitedEvents    []string       `json:"visitedEvents"`
}

// CharacterRef is the denormalized character summary on a storyline.
type CharacterRef struct {
	ID   string        `json:"id"`
	Type CharacterType `json:"type"`
	Name string        `json:"name"`
}

// Storyline is the full persisted graph of narrative nodes plus the player
// context for one character playthrough. Nodes are append-only.
type Storyline struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Character   CharacterRef          `json:"character"`
	Nodes       map[string]*StoryNode `json:"nodes"`
	StartNodeID string                `json:"startNodeId"`
	Context     StoryContext          `json:"context"`
	Created     time.Time             `json:"created"`
	LastUpdated time.Time             `json:"lastUpdated"`
}

// StorylineSummary is one entry of the saved-storyline index.
type StorylineSummary struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Character   CharacterRef `json:"character"`
	Created     time.Time    `json:"created"`
	LastUpdated time.Time    `json:"lastUpdated"`
}
