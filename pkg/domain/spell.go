package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxIntentionLen is the longest intention the backend accepts.
const MaxIntentionLen = 2000

var validate = validator.New()

// ErrEmptyIntention is returned when the intention is blank after trimming.
var ErrEmptyIntention = errors.New("intention is required")

// SpellRequest is one submission of the spell form.
type SpellRequest struct {
	IntentionText string `json:"intention" validate:"max=2000"`
	GuideID       string `json:"guide_id,omitempty" validate:"omitempty,oneof=corrie ezra maud silas"`
	GenerateImage bool   `json:"generate_image"`
}

// Normalized returns a copy with the intention trimmed.
func (r SpellRequest) Normalized() SpellRequest {
	r.IntentionText = strings.TrimSpace(r.IntentionText)
	return r
}

// Validate checks the request before anything leaves the machine.
func (r SpellRequest) Validate() error {
	n := r.Normalized()
	if n.IntentionText == "" {
		return ErrEmptyIntention
	}
	if err := validate.Struct(n); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid %s", strings.ToLower(verrs[0].Field()))
		}
		return err
	}
	return nil
}

// SpellKind tags which half of Spell is populated.
type SpellKind int

const (
	// SpellStructured carries a parsed SpellDocument.
	SpellStructured SpellKind = iota
	// SpellUnstructured carries only the model's raw text.
	SpellUnstructured
)

// Spell is either a structured document or raw text the backend could not
// parse. Exactly one of Document and Raw is meaningful, selected by Kind.
type Spell struct {
	Kind     SpellKind
	Document *SpellDocument
	Raw      string
}

// StructuredSpell wraps a document.
func StructuredSpell(doc SpellDocument) Spell {
	return Spell{Kind: SpellStructured, Document: &doc}
}

// UnstructuredSpell wraps raw text.
func UnstructuredSpell(raw string) Spell {
	return Spell{Kind: SpellUnstructured, Raw: raw}
}

// IsZero reports whether s carries neither a document nor raw text, as when
// the backend sent no spell at all.
func (s Spell) IsZero() bool {
	return s.Kind == SpellStructured && s.Document == nil
}

// Title returns a display title for either kind.
func (s Spell) Title() string {
	if s.Kind == SpellStructured && s.Document != nil && s.Document.Title != "" {
		return s.Document.Title
	}
	return "Untitled working"
}

type spellEnvelope struct {
	ParseError  bool   `json:"parse_error,omitempty"`
	RawResponse string `json:"raw_response,omitempty"`
}

// UnmarshalJSON decodes the backend's flat shape, turning parse_error into
// the unstructured variant.
func (s *Spell) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}
	var env spellEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	if env.ParseError {
		*s = UnstructuredSpell(env.RawResponse)
		return nil
	}
	var doc SpellDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*s = StructuredSpell(doc)
	return nil
}

// MarshalJSON writes the backend's flat shape.
func (s Spell) MarshalJSON() ([]byte, error) {
	if s.Kind == SpellUnstructured || s.Document == nil {
		return json.Marshal(spellEnvelope{ParseError: true, RawResponse: s.Raw})
	}
	return json.Marshal(s.Document)
}

// SpellDocument is a fully parsed ritual. Every section is optional.
type SpellDocument struct {
	Title             string             `json:"title"`
	Subtitle          string             `json:"subtitle,omitempty"`
	Introduction      string             `json:"introduction,omitempty"`
	Materials         []Material         `json:"materials,omitempty"`
	Steps             []Step             `json:"steps,omitempty"`
	SpokenWords       *SpokenWords       `json:"spoken_words,omitempty"`
	Timing            *Timing            `json:"timing,omitempty"`
	HistoricalContext *HistoricalContext `json:"historical_context,omitempty"`
	TarotCard         *TarotCard         `json:"tarot_card,omitempty"`
	SuggestedWard     *SuggestedWard     `json:"suggested_ward,omitempty"`
	Warnings          []string           `json:"warnings,omitempty"`
	Variations        []Variation        `json:"variations,omitempty"`
}

// Material is one item to gather.
type Material struct {
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
	Note string `json:"note,omitempty"`
}

// Step is one numbered instruction.
type Step struct {
	Number      int    `json:"number"`
	Title       string `json:"title"`
	Instruction string `json:"instruction"`
	Duration    string `json:"duration,omitempty"`
	Note        string `json:"note,omitempty"`
}

// SpokenWords are the lines said aloud during the working.
type SpokenWords struct {
	Invocation      string `json:"invocation,omitempty"`
	MainIncantation string `json:"main_incantation,omitempty"`
	Closing         string `json:"closing,omitempty"`
}

// Empty reports whether no line is set.
func (w *SpokenWords) Empty() bool {
	return w == nil || (w.Invocation == "" && w.MainIncantation == "" && w.Closing == "")
}

// Timing suggests when to perform the working.
type Timing struct {
	MoonPhase string `json:"moon_phase,omitempty"`
	TimeOfDay string `json:"time_of_day,omitempty"`
	Day       string `json:"day,omitempty"`
	Note      string `json:"note,omitempty"`
}

// HistoricalContext ties the working to period sources.
type HistoricalContext struct {
	Era       string             `json:"era,omitempty"`
	Tradition string             `json:"tradition,omitempty"`
	Summary   string             `json:"summary,omitempty"`
	Figures   []HistoricalFigure `json:"figures,omitempty"`
	Citations []Citation         `json:"citations,omitempty"`
}

// HistoricalFigure is a person the context refers to.
type HistoricalFigure struct {
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
	Note string `json:"note,omitempty"`
}

// Citation is a period source.
type Citation struct {
	Source string `json:"source"`
	Author string `json:"author,omitempty"`
	Year   string `json:"year,omitempty"`
	Quote  string `json:"quote,omitempty"`
}

// TarotCard is the single card a spell is summarized by.
type TarotCard struct {
	Name     string   `json:"name"`
	Arcana   string   `json:"arcana,omitempty"`
	Number   string   `json:"number,omitempty"`
	Upright  bool     `json:"upright"`
	Meaning  string   `json:"meaning,omitempty"`
	Imagery  string   `json:"imagery,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// SuggestedWard points at a ward that pairs with the spell.
type SuggestedWard struct {
	Name        string `json:"name"`
	Purpose     string `json:"purpose,omitempty"`
	Description string `json:"description,omitempty"`
}

// Variation is an alternative way to perform the working.
type Variation struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// LimitInfo is the usage snapshot returned alongside a generation.
type LimitInfo struct {
	SpellsUsed      int `json:"spells_used"`
	SpellLimit      int `json:"spell_limit"`
	SpellsRemaining int `json:"spells_remaining"`
}

// ArchetypeRef is the guide as echoed back by the backend.
type ArchetypeRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Title string `json:"title"`
}

// GenerationResult is the body of a successful spell generation.
type GenerationResult struct {
	Spell       Spell         `json:"spell"`
	Archetype   *ArchetypeRef `json:"archetype,omitempty"`
	ImageBase64 string        `json:"image_base64,omitempty"`
	LimitInfo   *LimitInfo    `json:"limit_info,omitempty"`
}
