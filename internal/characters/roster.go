package characters

import "LivingHistory/server/internal/models"

// rosterOrder keeps AllHistorical deterministic.
var rosterOrder = []string{"1", "2", "3"}

// roster is the built-in set of historical figures.
var roster = map[string]*models.Character{
	"1": {
		ID:        "1",
		Type:      models.CharacterHistorical,
		Name:      "Mahatma Gandhi",
		Era:       "20th Century",
		Biography: "Mohandas Karamchand Gandhi was an Indian lawyer, anti-colonial nationalist and political ethicist who employed nonviolent resistance to lead the successful campaign for India's independence from British rule.",
		Traits:    []string{"non-violent", "determined", "principled", "spiritual"},
		KeyEvents: []models.HistoricalEvent{
			{
				Date:         "1893",
				Title:        "Train Incident in South Africa",
				Description:  "Gandhi was thrown off a train at Pietermaritzburg after refusing to move from the first-class to a third-class coach while holding a valid first-class ticket.",
				Significance: "This incident was a turning point that began to awaken him to social injustice and inspired his transformation into an activist.",
			},
			{
				Date:         "1915",
				Title:        "Return to India",
				Description:  "After 21 years in South Africa, Gandhi returned to India with a reputation as a nationalist, theorist and organizer.",
				Significance: "His return marked the beginning of his leadership in the Indian independence movement.",
			},
			{
				Date:         "1930",
				Title:        "Salt March",
				Description:  "Gandhi led a 24-day march to the sea to protest the British salt monopoly.",
				Significance: "This became one of the most significant organized challenges to British authority and a catalyst for the Civil Disobedience Movement.",
			},
			{
				Date:         "1942",
				Title:        "Quit India Movement",
				Description:  "Gandhi launched the Quit India Movement calling for immediate independence from British rule.",
				Significance: "This movement intensified the independence struggle and eventually led to British withdrawal from India.",
			},
			{
				Date:         "1947",
				Title:        "India's Independence",
				Description:  "India gained independence from British rule, but was partitioned into India and Pakistan.",
				Significance: "While independence was achieved, the partition led to massive violence, which deeply distressed Gandhi.",
			},
			{
				Date:         "1948",
				Title:        "Assassination",
				Description:  "Gandhi was assassinated by Nathuram Godse, a Hindu nationalist.",
				Significance: "His death led to nationwide mourning and solidified his legacy as a martyr for peace and nonviolence.",
			},
		},
	},
	"2": {
		ID:        "2",
		Type:      models.CharacterHistorical,
		Name:      "Marie Curie",
		Era:       "Late 19th - Early 20th Century",
		Biography: "Marie Sklodowska Curie was a Polish and naturalized-French physicist and chemist who conducted pioneering research on radioactivity. She was the first woman to win a Nobel Prize, the first person to win the Nobel Prize twice, and the only person to win the Nobel Prize in two scientific fields.",
		Traits:    []string{"brilliant", "dedicated", "pioneering", "perseverant"},
		KeyEvents: []models.HistoricalEvent{
			{
				Date:         "1891",
				Title:        "Moved to Paris",
				Description:  "Marie moved to Paris to continue her studies in physics, chemistry, and mathematics at the University of Paris.",
				Significance: "This move was crucial for her scientific career, as she had limited opportunities for advanced education in Poland.",
			},
			{
				Date:         "1895",
				Title:        "Marriage to Pierre Curie",
				Description:  "Marie married Pierre Curie, a physicist who shared her scientific interests.",
				Significance: "This began their scientific partnership that would lead to groundbreaking discoveries.",
			},
			{
				Date:         "1898",
				Title:        "Discovery of Polonium and Radium",
				Description:  "The Curies discovered the elements polonium and radium, isolating them from uraninite.",
				Significance: "These discoveries fundamentally changed our understanding of atomic structure and led to the development of nuclear physics.",
			},
			{
				Date:         "1903",
				Title:        "Nobel Prize in Physics",
				Description:  "Marie, Pierre Curie, and Henri Becquerel were awarded the Nobel Prize in Physics for their research on radiation phenomena.",
				Significance: "Marie became the first woman to win a Nobel Prize.",
			},
			{
				Date:         "1911",
				Title:        "Nobel Prize in Chemistry",
				Description:  "Marie won her second Nobel Prize, this time in Chemistry, for her discovery of the elements polonium and radium.",
				Significance: "She became the first person to win Nobel Prizes in multiple scientific fields.",
			},
			{
				Date:         "1914-1918",
				Title:        "Mobile X-ray Units in World War I",
				Description:  "During World War I, Marie developed mobile X-ray units to provide X-ray services to field hospitals.",
				Significance: "Her work saved the lives of countless soldiers and demonstrated practical applications of her scientific research.",
			},
		},
	},
	"3": {
		ID:        "3",
		Type:      models.CharacterHistorical,
		Name:      "Abraham Lincoln",
		Era:       "19th Century",
		Biography: "Abraham Lincoln was an American statesman and lawyer who served as the 16th president of the United States from 1861 until his assassination in 1865. Lincoln led the nation through the American Civil War, preserved the Union, abolished slavery, strengthened the federal government, and modernized the U.S. economy.",
		Traits:    []string{"determined", "compassionate", "strategic", "eloquent"},
		KeyEvents: []models.HistoricalEvent{
			{
				Date:         "1834",
				Title:        "Elected to Illinois State Legislature",
				Description:  "Lincoln began his political career when he was elected to the Illinois state legislature.",
				Significance: "This marked his entry into politics and the beginning of his political career.",
			},
			{
				Date:         "1836",
				Title:        "Admitted to the Bar",
				Description:  "Lincoln was admitted to the bar, allowing him to practice law in Illinois.",
				Significance: "His legal career provided him with valuable experience and connections that would later support his political ambitions.",
			},
			{
				Date:         "1860",
				Title:        "Elected President",
				Description:  "Lincoln was elected as the 16th President of the United States.",
				Significance: "His election precipitated the secession of several Southern states and eventually led to the Civil War.",
			},
			{
				Date:         "1861",
				Title:        "Beginning of the American Civil War",
				Description:  "The Civil War began as Southern states seceded from the Union following Lincoln's election.",
				Significance: "Lincoln led the nation through its greatest internal crisis.",
			},
			{
				Date:         "1863",
				Title:        "Emancipation Proclamation",
				Description:  "Lincoln issued the Emancipation Proclamation, declaring \"that all persons held as slaves\" within the rebellious states \"are, and henceforward shall be free.\"",
				Significance: "This was a crucial step toward the abolition of slavery in the United States.",
			},
			{
				Date:         "1863",
				Title:        "Gettysburg Address",
				Description:  "Lincoln delivered the Gettysburg Address, one of the most famous speeches in American history.",
				Significance: "The speech redefined the purpose of the Civil War and articulated a vision of America based on equality and democracy.",
			},
			{
				Date:         "1865",
				Title:        "Assassination",
				Description:  "Lincoln was assassinated by John Wilkes Booth at Ford's Theatre in Washington, D.C.",
				Significance: "His death came just days after the effective end of the Civil War and dramatically altered the course of Reconstruction.",
			},
		},
	},
}
