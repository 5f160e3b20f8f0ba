package generators

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"LivingHistory/server/internal/models"
)

// Fallback is the deterministic rule-based generator terminating the chain.
// It recognizes a small set of authored (character, event) combinations and
// synthesizes generic scenes for everything else. It never fails.
type Fallback struct{}

func NewFallback() *Fallback { return &Fallback{} }

func (f *Fallback) Name() string { return "fallback" }

// Scene produces a structurally valid scene for any input.
func (f *Fallback) Scene(character *models.Character, pc PromptContext) *models.StructuredScene {
	var scene *models.StructuredScene

	switch {
	case pc.ChoiceTaken != nil:
		scene = f.nextScene(character, pc)
	case pc.Event != nil:
		scene = f.eventScene(character, pc)
	default:
		scene = f.genericScene(character, pc)
	}

	if pc.WantChoices && len(scene.Choices) == 0 {
		scene.Choices = f.ChoiceSet(character, pc)
	}
	return scene
}

// ChoiceSet produces a non-empty choice set for any input.
func (f *Fallback) ChoiceSet(character *models.Character, pc PromptContext) []models.Choice {
	if character.Name == "Mahatma Gandhi" && strings.Contains(pc.Situation, "Train Incident") {
		return gandhiTrainChoices()
	}
	if character.Name == "Marie Curie" && strings.Contains(pc.Year, "1891") {
		return curieParisChoices()
	}
	if character.Name == "Abraham Lincoln" && strings.Contains(pc.Situation, "Civil War") {
		return lincolnWarChoices()
	}
	return genericChoices(pc.Accuracy)
}

func (f *Fallback) eventScene(character *models.Character, pc PromptContext) *models.StructuredScene {
	event := pc.Event

	if character.Name == "Mahatma Gandhi" && strings.Contains(event.Title, "Train Incident") {
		return narrationScene(
			"South Africa, 1893. You are Mohandas Gandhi, a 24-year-old lawyer who has recently arrived in South Africa to work on a legal case. The train to Pretoria stops at Pietermaritzburg station. Despite having a first-class ticket, a railway official orders you to move to the third-class carriage.",
			&models.NodeMetadata{
				Year:                 "1893",
				Location:             "Pietermaritzburg, South Africa",
				HistoricalEvent:      "Train Incident in South Africa",
				EmotionalTone:        models.ToneTense,
				IsKeyMoment:          true,
				ContextualBackground: "This incident was a turning point that began to awaken Gandhi to social injustice and inspired his transformation into an activist.",
			})
	}

	if character.Name == "Marie Curie" && strings.Contains(event.Title, "Moved to Paris") {
		return narrationScene(
			"Paris, 1891. You are Marie Sklodowska, a determined young woman who has just arrived in Paris to pursue your studies at the University of Paris. After years of working as a governess to save money and facing the limitations imposed on women's education in Poland, you finally have the opportunity to follow your scientific passions. The city buzzes with intellectual energy, but as a foreign woman in the male-dominated world of science, you know you will face significant challenges.",
			&models.NodeMetadata{
				Year:                 "1891",
				Location:             "Paris, France",
				HistoricalEvent:      "Marie Curie Moves to Paris",
				EmotionalTone:        models.ToneHopeful,
				IsKeyMoment:          true,
				ContextualBackground: "Women were rare in scientific fields at this time, and Marie's move to Paris was crucial for her scientific career, as she had limited opportunities for advanced education in Poland.",
			})
	}

	if character.Name == "Abraham Lincoln" && strings.Contains(event.Title, "Civil War") {
		return narrationScene(
			"Washington D.C., 1861. You are Abraham Lincoln, newly inaugurated as the 16th President of the United States during the nation's greatest crisis. Seven Southern states have already seceded from the Union, and more threaten to follow. The fate of the nation rests on your shoulders as tensions escalate toward armed conflict. Your advisors are divided on how to respond to the rebellion, and every decision you make will have profound consequences for the future of the country.",
			&models.NodeMetadata{
				Year:                 "1861",
				Location:             "Washington D.C., United States",
				HistoricalEvent:      "Beginning of the American Civil War",
				EmotionalTone:        models.ToneTense,
				IsKeyMoment:          true,
				ContextualBackground: "Lincoln became president just as the nation was splitting apart over the issues of states' rights and slavery, leading to the deadliest conflict in American history.",
			})
	}

	background := event.Significance
	if background == "" {
		background = "This is an important historical moment."
	}
	return narrationScene(
		fmt.Sprintf("%s, %s. You are %s, and you find yourself at a pivotal moment. %s", pc.Location, pc.Year, character.Name, event.Description),
		&models.NodeMetadata{
			Year:                 pc.Year,
			Location:             pc.Location,
			HistoricalEvent:      event.Title,
			EmotionalTone:        models.ToneNeutral,
			IsKeyMoment:          true,
			ContextualBackground: background,
		})
}

func (f *Fallback) genericScene(character *models.Character, pc PromptContext) *models.StructuredScene {
	year := pc.Year
	if year == "" {
		year = EraYear(character.Era)
	}
	location := pc.Location
	if location == "" {
		location = eraLocation(character.Era)
	}

	return narrationScene(
		fmt.Sprintf("%s, %s. You are %s, a %s individual living in the %s. Today, you face important decisions that will shape your future and potentially history itself.",
			location, year, character.Name, strings.Join(character.Traits, ", "), character.Era),
		&models.NodeMetadata{
			Year:                 year,
			Location:             location,
			EmotionalTone:        models.ToneNeutral,
			ContextualBackground: fmt.Sprintf("The %s was a time of significant changes and challenges.", character.Era),
		})
}

func (f *Fallback) nextScene(character *models.Character, pc PromptContext) *models.StructuredScene {
	choice := pc.ChoiceTaken

	if character.Name == "Mahatma Gandhi" && strings.Contains(pc.Situation, "Train Incident") {
		switch {
		case strings.Contains(choice.Text, "Refuse to move"):
			return narrationScene(
				"\"I have a first-class ticket and the right to be here,\" you state firmly, showing your ticket. The railway official's face hardens. He calls for a police constable who forcibly removes you from the train. You're thrown off with your belongings. As the train departs, you're left alone on the cold platform at Pietermaritzburg station. Sitting in the waiting room through the freezing night, you contemplate the injustice of racial prejudice. A transformative realization begins to form in your mind.",
				&models.NodeMetadata{
					Year:                 "1893",
					Location:             "Pietermaritzburg Station, South Africa",
					HistoricalEvent:      "Train Incident in South Africa",
					EmotionalTone:        models.ToneSomber,
					IsKeyMoment:          true,
					ContextualBackground: "This night spent in the cold waiting room was later described by Gandhi as the most creative night of his life, when he decided to fight against racial prejudice.",
				})
		case strings.Contains(choice.Text, "Comply with the official"):
			return narrationScene(
				"You reluctantly gather your belongings and move to the third-class carriage, feeling a deep sense of humiliation but avoiding immediate conflict. The cramped, uncomfortable carriage is a stark contrast to your first-class seat. As you sit among the other Indian passengers, you observe their resigned expressions, suggesting this treatment is all too familiar. Throughout the journey, the burning sense of injustice grows within you, and you begin to contemplate the systematic discrimination faced by Indians in South Africa.",
				&models.NodeMetadata{
					Year:                 "1893",
					Location:             "Train to Pretoria, South Africa",
					HistoricalEvent:      "Train Incident in South Africa",
					EmotionalTone:        models.ToneSomber,
					ContextualBackground: "While Gandhi historically was removed from the train, this alternative explores how the experience of discrimination might still have affected him even if he had complied.",
				})
		default:
			return narrationScene(
				"You attempt to reason with the official, calmly explaining that you have a valid first-class ticket and the legal right to travel in the carriage. The official listens impassively but remains unmoved. \"The rules are different in this country,\" he states coldly. \"Indians travel third-class.\" Despite your logical arguments and appeals to fairness, the conversation ends with you being given an ultimatum: move to third-class or be removed from the train.",
				&models.NodeMetadata{
					Year:                 "1893",
					Location:             "Train at Pietermaritzburg Station, South Africa",
					HistoricalEvent:      "Train Incident in South Africa",
					EmotionalTone:        models.ToneTense,
					ContextualBackground: "Gandhi's experience with discrimination in South Africa would eventually lead him to develop his philosophy of satyagraha (truth-force), based on nonviolent resistance to injustice.",
				})
		}
	}

	if character.Name == "Marie Curie" && strings.Contains(pc.Year, "1891") &&
		strings.Contains(choice.Text, "Divide your attention") {
		return narrationScene(
			"You decide to pursue both physics and chemistry, recognizing the valuable connections between the fields. Despite the heavy workload, you excel in your studies, fueled by your passion for science. During a physics lecture, you're introduced to the concept of magnetism and electricity, while your chemistry courses delve into atomic theory. Late at night, studying in your small, cold apartment, you begin to see connections that your peers miss. \"The properties of elements and the forces that govern them are interconnected,\" you note in your journal.",
			&models.NodeMetadata{
				Year:                 "1891",
				Location:             "University of Paris, France",
				EmotionalTone:        models.ToneHopeful,
				IsKeyMoment:          true,
				ContextualBackground: "This interdisciplinary approach would later prove crucial in Marie Curie's groundbreaking work on radioactivity.",
			})
	}

	immediate := choice.Consequences.Immediate
	if immediate == "" {
		immediate = "you face new challenges and opportunities"
	}
	surroundings := pc.Location
	if surroundings == "" {
		surroundings = "Your surroundings"
	}
	background := choice.Consequences.LongTerm
	if background == "" {
		background = "The consequences of this choice will echo through time."
	}
	return narrationScene(
		fmt.Sprintf("Following your decision to %s, %s. %s seem to respond to your choice, as if history itself is being shaped by your actions.",
			strings.ToLower(choice.Text), immediate, surroundings),
		&models.NodeMetadata{
			Year:                 pc.Year,
			Location:             pc.Location,
			EmotionalTone:        models.ToneNeutral,
			ContextualBackground: background,
		})
}

func gandhiTrainChoices() []models.Choice {
	return []models.Choice{
		{
			ID:                 uuid.NewString(),
			Text:               "Comply with the official and move to the third-class carriage",
			Impact:             "Avoid immediate conflict but feel the burn of injustice",
			HistoricalAccuracy: models.ChoiceSomewhatAccurate,
			Consequences: models.Consequences{
				Immediate:         "You quietly move to the third-class carriage, avoiding confrontation",
				LongTerm:          "The humiliation deepens your resolve to fight systematic discrimination",
				AffectsAttributes: map[string]int{"resolve": 5, "influence": -2},
			},
		},
		{
			ID:                 uuid.NewString(),
			Text:               "Refuse to move, citing your valid first-class ticket",
			Impact:             "Stand up for your rights at personal risk",
			HistoricalAccuracy: models.ChoiceAccurate,
			Consequences: models.Consequences{
				Immediate:         "You are forcibly removed from the train",
				LongTerm:          "This pivotal experience shapes your commitment to civil resistance",
				AffectsAttributes: map[string]int{"resolve": 10, "influence": 5},
			},
		},
		{
			ID:                 uuid.NewString(),
			Text:               "Attempt to reason calmly with the official about your legal rights",
			Impact:             "Seek understanding while maintaining dignity",
			HistoricalAccuracy: models.ChoiceSomewhatAccurate,
			Consequences: models.Consequences{
				Immediate:         "The official listens briefly but insists you must move",
				LongTerm:          "You begin formulating ideas about peaceful resistance",
				AffectsAttributes: map[string]int{"intellect": 5, "charisma": 3},
			},
		},
	}
}

func curieParisChoices() []models.Choice {
	return []models.Choice{
		{
			ID:                 uuid.NewString(),
			Text:               "Focus entirely on your studies in physics",
			Impact:             "Prioritize academic excellence in your primary field",
			HistoricalAccuracy: models.ChoiceSomewhatAccurate,
			Consequences: models.Consequences{
				Immediate:         "You excel in your physics courses",
				LongTerm:          "Your dedication to physics provides a strong foundation for your future work",
				AffectsAttributes: map[string]int{"intellect": 8, "resolve": 5},
			},
		},
		{
			ID:                 uuid.NewString(),
			Text:               "Divide your attention between physics and chemistry",
			Impact:             "Develop an interdisciplinary approach to science",
			HistoricalAccuracy: models.ChoiceAccurate,
			Consequences: models.Consequences{
				Immediate:         "You make connections between the fields that others miss",
				LongTerm:          "This interdisciplinary knowledge becomes crucial in your radioactivity research",
				AffectsAttributes: map[string]int{"intellect": 10, "resolve": 3},
			},
		},
		{
			ID:                 uuid.NewString(),
			Text:               "Seek a mentor to guide your scientific career",
			Impact:             "Form important professional relationships",
			HistoricalAccuracy: models.ChoiceSomewhatAccurate,
			Consequences: models.Consequences{
				Immediate:            "You connect with established scientists in Paris",
				LongTerm:             "These connections help advance your research",
				AffectsRelationships: map[string]int{"Scientific Community": 8},
				AffectsAttributes:    map[string]int{"influence": 5},
			},
		},
	}
}

func lincolnWarChoices() []models.Choice {
	return []models.Choice{
		{
			ID:                 uuid.NewString(),
			Text:               "Prioritize preserving the Union above all else",
			Impact:             "Focus on military strategy to defeat the Confederacy",
			HistoricalAccuracy: models.ChoiceAccurate,
			Consequences: models.Consequences{
				Immediate:         "You rally Northern support for the war effort",
				LongTerm:          "Your single-minded focus helps prevent the permanent division of the country",
				AffectsAttributes: map[string]int{"resolve": 8, "influence": 5},
			},
		},
		{
			ID:                 uuid.NewString(),
			Text:               "Make abolition of slavery the central war aim",
			Impact:             "Transform the conflict into a moral crusade against slavery",
			HistoricalAccuracy: models.ChoiceAccurate,
			Consequences: models.Consequences{
				Immediate:         "This polarizes opinion but energizes abolitionists",
				LongTerm:          "The war gains a powerful moral dimension",
				AffectsAttributes: map[string]int{"compassion": 10, "charisma": 5},
			},
		},
		{
			ID:                 uuid.NewString(),
			Text:               "Seek diplomatic solutions to end the conflict quickly",
			Impact:             "Attempt to reduce bloodshed through negotiation",
			HistoricalAccuracy: models.ChoiceCreative,
			Consequences: models.Consequences{
				Immediate:         "Negotiation attempts are viewed skeptically by both sides",
				LongTerm:          "History remembers your peace efforts, but with mixed results",
				AffectsAttributes: map[string]int{"charisma": 3, "influence": -5},
			},
		},
	}
}

func genericChoices(accuracy models.Accuracy) []models.Choice {
	boldAccuracy := models.ChoiceSomewhatAccurate
	if accuracy == models.AccuracyCreative {
		boldAccuracy = models.ChoiceCreative
	}

	return []models.Choice{
		{
			ID:                 uuid.NewString(),
			Text:               "Take a cautious, measured approach",
			Impact:             "Minimize risk but potentially miss opportunities",
			HistoricalAccuracy: models.ChoiceSomewhatAccurate,
			Consequences: models.Consequences{
				Immediate:         "You proceed carefully and avoid immediate danger",
				LongTerm:          "Your cautious approach builds a reputation for reliability",
				AffectsAttributes: map[string]int{"resolve": 3, "influence": -2},
			},
		},
		{
			ID:                 uuid.NewString(),
			Text:               "Take bold, decisive action",
			Impact:             "Potentially create significant change at personal risk",
			HistoricalAccuracy: boldAccuracy,
			Consequences: models.Consequences{
				Immediate:         "Your bold move attracts immediate attention",
				LongTerm:          "Your willingness to take risks becomes well-known",
				AffectsAttributes: map[string]int{"resolve": 8, "influence": 5},
			},
		},
		{
			ID:                 uuid.NewString(),
			Text:               "Seek advice and build consensus before acting",
			Impact:             "Gain support but delay immediate action",
			HistoricalAccuracy: models.ChoiceSomewhatAccurate,
			Consequences: models.Consequences{
				Immediate:         "You gather valuable perspectives but progress is slow",
				LongTerm:          "You develop a network of allies for future challenges",
				AffectsAttributes: map[string]int{"charisma": 5, "influence": 3},
			},
		},
	}
}

func narrationScene(text string, meta *models.NodeMetadata) *models.StructuredScene {
	return &models.StructuredScene{
		Fragments: []models.SceneFragment{{Kind: models.KindNarration, Text: text}},
		Metadata:  meta,
	}
}

var yearPattern = regexp.MustCompile(`\d{4}`)

// YearOf extracts a 4-digit year from a free-form date string, returning the
// original string when none is present.
func YearOf(date string) string {
	if m := yearPattern.FindString(date); m != "" {
		return m
	}
	return date
}

// EraYear maps a free-form era label to a representative year.
func EraYear(era string) string {
	if m := yearPattern.FindString(era); m != "" {
		return m
	}
	switch {
	case strings.Contains(era, "Ancient"):
		return "500 BCE"
	case strings.Contains(era, "Medieval"):
		return "1200 CE"
	case strings.Contains(era, "Renaissance"):
		return "1500 CE"
	case strings.Contains(era, "19th Century"):
		return "1850 CE"
	case strings.Contains(era, "20th Century"):
		return "1920 CE"
	}
	return "unknown year"
}

func eraLocation(era string) string {
	switch {
	case strings.Contains(era, "Ancient"):
		return "Rome"
	case strings.Contains(era, "Medieval"):
		return "a European kingdom"
	case strings.Contains(era, "Renaissance"):
		return "Florence"
	case strings.Contains(era, "19th Century"):
		return "London"
	case strings.Contains(era, "20th Century"):
		return "New York"
	}
	return "unknown location"
}

// LocationOf guesses a location mentioned in an event's title or description.
func LocationOf(event *models.HistoricalEvent) string {
	for _, loc := range []string{"India", "America", "England", "France", "Germany", "Russia", "China", "Japan", "South Africa"} {
		if strings.Contains(event.Description, loc) || strings.Contains(event.Title, loc) {
			return loc
		}
	}
	return "unknown location"
}
