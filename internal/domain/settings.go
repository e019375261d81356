package domain

// Settings holds desk-wide preferences.
// Branding images (logo, favicon) are stored in the media side-store, not here.
type Settings struct {
	BrandName        string `json:"brandName"`
	Currency         string `json:"currency"`
	Theme            string `json:"theme,omitempty"`
	DefaultImprintID string `json:"defaultImprintId,omitempty"`
	DailyWordGoal    int    `json:"dailyWordGoal,omitempty"`
}

// DefaultSettings returns the settings of a fresh desk.
func DefaultSettings() Settings {
	return Settings{
		BrandName: "Editorial Desk",
		Currency:  "USD",
		Theme:     "light",
	}
}
