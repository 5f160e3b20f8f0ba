package generators

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"LivingHistory/server/internal/config"
	"LivingHistory/server/internal/models"
)

// OpenAIBackend generates scenes through any OpenAI-compatible chat API.
type OpenAIBackend struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

func NewOpenAIBackend(cfg config.OpenAIConfig) *OpenAIBackend {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIBackend{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: float32(cfg.Temperature),
	}
}

func (b *OpenAIBackend) Name() string { return "openai" }

func (b *OpenAIBackend) Generate(ctx context.Context, character *models.Character, pc PromptContext) (*models.StructuredScene, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: buildScenePrompt(character, pc)},
		},
		Temperature: b.temperature,
		MaxTokens:   b.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned from model %s", b.model)
	}

	scene, err := parseSceneJSON(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	// Model output carries no identifiers; assign them here.
	for i := range scene.Choices {
		if scene.Choices[i].ID == "" {
			scene.Choices[i].ID = uuid.NewString()
		}
	}
	return scene, nil
}

func buildScenePrompt(character *models.Character, pc PromptContext) string {
	var sb strings.Builder

	if pc.ChoiceTaken != nil {
		fmt.Fprintf(&sb, "Generate the next scene in a historical narrative where %s has chosen: %q\n\n", character.Name, pc.ChoiceTaken.Text)
		fmt.Fprintf(&sb, "PREVIOUS SCENARIO:\n%s\n\n", pc.PreviousText)
		if pc.ChoiceTaken.Consequences.Immediate != "" {
			fmt.Fprintf(&sb, "IMMEDIATE CONSEQUENCES:\n%s\n\n", pc.ChoiceTaken.Consequences.Immediate)
		}
	} else if pc.Event != nil {
		fmt.Fprintf(&sb, "Generate a detailed historical narrative scene about %s during the event: %q in %s at %s.\n\n", character.Name, pc.Event.Title, pc.Year, pc.Location)
		fmt.Fprintf(&sb, "Event description: %s\nEvent significance: %s\n\n", pc.Event.Description, pc.Event.Significance)
	} else {
		fmt.Fprintf(&sb, "Generate the opening scene of a historical narrative about %s, a figure of the %s.\n\n", character.Name, character.Era)
	}

	fmt.Fprintf(&sb, "CONTEXT:\nYear: %s\nLocation: %s\n", pc.Year, pc.Location)
	if pc.Situation != "" {
		fmt.Fprintf(&sb, "Situation: %s\n", pc.Situation)
	}
	if pc.Accuracy == models.AccuracyAccurate {
		sb.WriteString("Accuracy mode: historically accurate\n")
	} else {
		sb.WriteString("Accuracy mode: creative with alternative possibilities\n")
	}
	if len(pc.Attributes) > 0 {
		sb.WriteString("CHARACTER ATTRIBUTES: ")
		first := true
		for attr, value := range pc.Attributes {
			if !first {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s: %d", attr, value)
			first = false
		}
		sb.WriteString("\n")
	}

	sb.WriteString(`
Format the response as a JSON object:
{
  "scenes": [
    {"type": "narration|dialogue|thought|historical-fact", "text": "...", "speaker": "only for dialogue"}
  ],
  "metadata": {
    "year": "...",
    "location": "...",
    "emotionalTone": "neutral|tense|hopeful|somber|triumphant",
    "historicalEvent": "...",
    "isKeyMoment": false,
    "isEnding": false,
    "contextualBackground": "..."
  }`)
	if pc.WantChoices {
		sb.WriteString(`,
  "choices": [
    {
      "text": "...",
      "impact": "...",
      "historicalAccuracy": "accurate|somewhat-accurate|creative",
      "consequences": {"immediate": "...", "longTerm": "...", "affectsAttributes": {"resolve": 5}, "affectsRelationships": {}}
    }
  ]`)
	}
	sb.WriteString("\n}\n")

	return sb.String()
}

// parseSceneJSON extracts the first JSON object from the model output; models
// routinely wrap the payload in prose or code fences.
func parseSceneJSON(content string) (*models.StructuredScene, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in model output")
	}

	var scene models.StructuredScene
	if err := json.Unmarshal([]byte(content[start:end+1]), &scene); err != nil {
		return nil, fmt.Errorf("unmarshal scene: %w", err)
	}
	return &scene, nil
}
