package domain

// ColorScheme is the pair of colors a guide is rendered with.
type ColorScheme struct {
	Primary string `json:"primary"`
	Accent  string `json:"accent"`
}

// Guide is one of the four archetype personas that shape a spell's voice.
type Guide struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	ShortName     string      `json:"short_name"`
	Title         string      `json:"title"`
	ColorScheme   ColorScheme `json:"color_scheme"`
	Bio           string      `json:"bio"`
	RitualStyle   string      `json:"ritual_style"`
	Specialties   []string    `json:"specialties"`
	SamplePrompts []string    `json:"sample_prompts"`
	Tenets        []string    `json:"tenets"`
}

// GuideOrder is the display order of the guides.
var GuideOrder = []string{"corrie", "ezra", "maud", "silas"}

// The four guides. Saved spells keep a copy of name and title, so edits here
// never change what an old grimoire entry displays.
var Guides = map[string]Guide{
	"corrie": {
		ID:          "corrie",
		Name:        "Corrie Vance",
		ShortName:   "Corrie",
		Title:       "The Cartomancer",
		ColorScheme: ColorScheme{Primary: "#8b2f4a", Accent: "#e0b75e"},
		Bio: "Read cards in the back room of a Soho tea shop from 1911 until the war " +
			"closed it. Kept a ledger of every spread she ever laid and what came of it.",
		RitualStyle: "Card spreads, candle gazing and short spoken charms.",
		Specialties: []string{"tarot", "divination", "crossroads decisions"},
		SamplePrompts: []string{
			"Should I take the position in the north?",
			"Show me what is blocking the new venture.",
			"A reading for a friendship gone quiet.",
		},
		Tenets: []string{
			"The cards describe weather, not fate.",
			"Ask one question and sit with the answer.",
		},
	},
	"ezra": {
		ID:          "ezra",
		Name:        "Ezra Blackthorn",
		ShortName:   "Ezra",
		Title:       "The Hermeticist",
		ColorScheme: ColorScheme{Primary: "#23395b", Accent: "#c9a227"},
		Bio: "A lodge initiate who left over a quarrel about correspondence tables and " +
			"spent the rest of his life copying manuscripts in the reading room.",
		RitualStyle: "Ceremonial workings with planetary hours, circles and invocations.",
		Specialties: []string{"ceremonial magic", "planetary timing", "banishing"},
		SamplePrompts: []string{
			"A working to sharpen focus before an examination.",
			"Banish the heaviness that has settled in the house.",
			"Consecrate a new notebook for study.",
		},
		Tenets: []string{
			"As above, so below, and write everything down.",
			"Timing is half the working.",
		},
	},
	"maud": {
		ID:          "maud",
		Name:        "Maud Ashgrove",
		ShortName:   "Maud",
		Title:       "The Hedge Witch",
		ColorScheme: ColorScheme{Primary: "#3f5e3a", Accent: "#d8c8a0"},
		Bio: "Grew up on the edge of the fens, where her grandmother sold charms at " +
			"market. Collected folk remedies from every village between Ely and the sea.",
		RitualStyle: "Kitchen and garden charms with herbs, thread and salt.",
		Specialties: []string{"folk magic", "herbcraft", "protection"},
		SamplePrompts: []string{
			"A charm to keep a new home peaceful.",
			"Help me let go of an old grudge.",
			"Something small for courage on a hard day.",
		},
		Tenets: []string{
			"Use what is already in the cupboard.",
			"A charm kept is a charm tended.",
		},
	},
	"silas": {
		ID:          "silas",
		Name:        "Silas Crane",
		ShortName:   "Silas",
		Title:       "The Spiritualist",
		ColorScheme: ColorScheme{Primary: "#4a3b5c", Accent: "#b7b7c9"},
		Bio: "Toured the séance circuit in the twenties, then spent a decade exposing " +
			"frauds. What he could not explain he wrote up carefully and kept.",
		RitualStyle: "Quiet remembrance rites, automatic writing and mirror work.",
		Specialties: []string{"ancestors", "remembrance", "dreams"},
		SamplePrompts: []string{
			"A rite to remember my grandmother on her birthday.",
			"Help me make sense of a recurring dream.",
			"A closing ritual for a chapter of my life.",
		},
		Tenets: []string{
			"Honour the dead by living well.",
			"Doubt is a tool, not an insult.",
		},
	},
}

// ValidGuideID returns true if the given ID is a known guide.
func ValidGuideID(id string) bool {
	_, ok := Guides[id]
	return ok
}

// LookupGuide returns the guide with the given ID.
func LookupGuide(id string) (Guide, bool) {
	g, ok := Guides[id]
	return g, ok
}

// GuidesInOrder returns the guides in display order.
func GuidesInOrder() []Guide {
	out := make([]Guide, 0, len(GuideOrder))
	for _, id := range GuideOrder {
		out = append(out, Guides[id])
	}
	return out
}
