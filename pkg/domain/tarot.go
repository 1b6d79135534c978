package domain

// TarotRequest asks Corrie for a reading.
type TarotRequest struct {
	Question string `json:"question"`
	Spread   string `json:"spread,omitempty"`
}

// TarotDraw is one card laid in a spread.
type TarotDraw struct {
	Position string `json:"position"`
	Name     string `json:"name"`
	Arcana   string `json:"arcana,omitempty"`
	Upright  bool   `json:"upright"`
	Meaning  string `json:"meaning,omitempty"`
}

// TarotReading is Corrie's reading of a spread.
type TarotReading struct {
	Question       string      `json:"question,omitempty"`
	Cards          []TarotDraw `json:"cards"`
	Interpretation string      `json:"interpretation,omitempty"`
	Advice         string      `json:"advice,omitempty"`
	Closing        string      `json:"closing,omitempty"`
}

// TarotResult is the body of a successful reading.
type TarotResult struct {
	Reading   TarotReading `json:"reading"`
	LimitInfo *LimitInfo   `json:"limit_info,omitempty"`
}
