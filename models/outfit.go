package models

type OutfitRequest struct {
	Occasion string `json:"occasion"`
	Weather  string `json:"weather"`
	Vibe     string `json:"vibe"`
}

type OutfitItem struct {
	ItemID     uint       `json:"item_id"`
	Category   Category   `json:"category"`
	MatchLevel MatchLevel `json:"match_level"`
	Reason     string     `json:"reason"`
}

type OutfitResponse struct {
	OutfitName        string       `json:"outfit_name"`
	Items             []OutfitItem `json:"items"`
	Explanation       string       `json:"explanation"`
	MissingCategories []Category   `json:"missing_categories"`
}
