package projects

// AfricanRegion describes a supported country with its local currency
// and mobile-money landscape.
type AfricanRegion struct {
	ID                   string   `json:"id"`
	Country              string   `json:"country"`
	Region               string   `json:"region"`
	LocalCurrency        string   `json:"localCurrency"`
	MobileMoneyProviders []string `json:"mobileMoneyProviders"`
	LanguagePreferences  []string `json:"languagePreferences"`
}

// AfricanRegions is the static region registry.
var AfricanRegions = []AfricanRegion{
	{
		ID:                   "ke",
		Country:              "Kenya",
		Region:               "East Africa",
		LocalCurrency:        "KES",
		MobileMoneyProviders: []string{"M-Pesa", "Airtel Money"},
		LanguagePreferences:  []string{"English", "Swahili"},
	},
	{
		ID:                   "ng",
		Country:              "Nigeria",
		Region:               "West Africa",
		LocalCurrency:        "NGN",
		MobileMoneyProviders: []string{"MTN Mobile Money", "Airtel Money"},
		LanguagePreferences:  []string{"English", "Hausa", "Yoruba", "Igbo"},
	},
	{
		ID:                   "gh",
		Country:              "Ghana",
		Region:               "West Africa",
		LocalCurrency:        "GHS",
		MobileMoneyProviders: []string{"MTN Mobile Money", "Airtel Money"},
		LanguagePreferences:  []string{"English", "Twi", "Ga"},
	},
	{
		ID:                   "za",
		Country:              "South Africa",
		Region:               "Southern Africa",
		LocalCurrency:        "ZAR",
		MobileMoneyProviders: []string{"MTN Mobile Money"},
		LanguagePreferences:  []string{"English", "Afrikaans", "Zulu", "Xhosa"},
	},
	{
		ID:                   "ug",
		Country:              "Uganda",
		Region:               "East Africa",
		LocalCurrency:        "UGX",
		MobileMoneyProviders: []string{"MTN Mobile Money", "Airtel Money"},
		LanguagePreferences:  []string{"English", "Luganda"},
	},
	{
		ID:                   "tz",
		Country:              "Tanzania",
		Region:               "East Africa",
		LocalCurrency:        "TZS",
		MobileMoneyProviders: []string{"M-Pesa", "Airtel Money"},
		LanguagePreferences:  []string{"English", "Swahili"},
	},
}

// RegionByID looks up a region in the registry.
func RegionByID(id string) (AfricanRegion, bool) {
	for _, r := range AfricanRegions {
		if r.ID == id {
			return r, true
		}
	}
	return AfricanRegion{}, false
}
