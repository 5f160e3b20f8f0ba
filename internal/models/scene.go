package models

// SceneFragment is one ordered piece of generated narrative content.
type SceneFragment struct {
	Kind    NodeKind `json:"type"`
	Text    string   `json:"text"`
	Speaker string   `json:"speaker,omitempty"`
}

// StructuredScene is the shape every scene-generation backend must return.
// Fragments carry the narration; Metadata carries the setting; Choices, when
// present, becomes the choice set of the resulting node.
type StructuredScene struct {
	Fragments []SceneFragment `json:"scenes"`
	Metadata  *NodeMetadata   `json:"metadata,omitempty"`
	Choices   []Choice        `json:"choices,omitempty"`
}

// NarrationText joins the narration fragments of the scene; if the scene has
// no narration fragment it falls back to the first fragment of any kind.
func (s *StructuredScene) NarrationText() string {
	var combined string
	for _, f := range s.Fragments {
		if f.Kind != KindNarration {
			continue
		}
		if combined != "" {
			combined += "\n\n"
		}
		combined += f.Text
	}
	if combined == "" && len(s.Fragments) > 0 {
		combined = s.Fragments[0].Text
	}
	return combined
}

// Valid reports whether the scene satisfies the structural contract: at least
// one fragment, every fragment non-empty with a known kind.
func (s *StructuredScene) Valid() bool {
	if s == nil || len(s.Fragments) == 0 {
		return false
	}
	for _, f := range s.Fragments {
		if f.Text == "" || !ValidNodeKind(f.Kind) {
			return false
		}
	}
	return true
}
