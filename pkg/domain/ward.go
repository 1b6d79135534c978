package domain

// Ward is a short protective talisman suggestion.
type Ward struct {
	Name            string   `json:"name"`
	Purpose         string   `json:"purpose,omitempty"`
	Description     string   `json:"description,omitempty"`
	Materials       []string `json:"materials,omitempty"`
	Instructions    []string `json:"instructions,omitempty"`
	Placement       string   `json:"placement,omitempty"`
	ActivationWords string   `json:"activation_words,omitempty"`
	HistoricalNote  string   `json:"historical_note,omitempty"`
}

// WardRequest asks for a ward against a concern.
type WardRequest struct {
	Concern string `json:"concern"`
	GuideID string `json:"guide_id,omitempty"`
}

// WardResult is the body of a successful ward suggestion.
type WardResult struct {
	Ward      Ward       `json:"ward"`
	LimitInfo *LimitInfo `json:"limit_info,omitempty"`
}
