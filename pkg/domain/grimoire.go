package domain

import "time"

// SavedGrimoireEntry is a spell saved to the account's grimoire. The guide's
// name and title are stored alongside so the entry renders the same even if
// the registry changes.
type SavedGrimoireEntry struct {
	ID             string    `json:"id"`
	SpellData      Spell     `json:"spell_data"`
	ArchetypeID    string    `json:"archetype_id,omitempty"`
	ArchetypeName  string    `json:"archetype_name,omitempty"`
	ArchetypeTitle string    `json:"archetype_title,omitempty"`
	ImageBase64    string    `json:"image_base64,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// SaveSpellRequest is the payload for saving a spell to the grimoire.
type SaveSpellRequest struct {
	SpellData      Spell  `json:"spell_data"`
	ArchetypeID    string `json:"archetype_id,omitempty"`
	ArchetypeName  string `json:"archetype_name,omitempty"`
	ArchetypeTitle string `json:"archetype_title,omitempty"`
	ImageBase64    string `json:"image_base64,omitempty"`
}

// SavedWard is a ward kept in the account's grimoire.
type SavedWard struct {
	ID        string    `json:"id"`
	WardData  Ward      `json:"ward_data"`
	Concern   string    `json:"concern,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
