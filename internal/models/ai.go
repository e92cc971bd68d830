package models

type MetadataRequest struct {
	VideoURL string `json:"videoUrl" validate:"required,url"`
	Title    string `json:"title" validate:"required"`
}

type MetadataResult struct {
	Duration    string   `json:"duration"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
}

type HistoryRecommendationRequest struct {
	ViewingHistory []string            `json:"viewingHistory"`
	ContentTags    map[string][]string `json:"contentTags"`
}

type HistoryRecommendationResult struct {
	Recommendations []string `json:"recommendations"`
}
