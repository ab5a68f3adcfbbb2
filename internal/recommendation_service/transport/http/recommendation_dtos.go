package http

// RecommendationDTO is one suggested member in the API response.
type RecommendationDTO struct {
	UID         string `json:"uid"`
	Gender      string `json:"gender"`
	DisplayName string `json:"display_name"`
}

// RecommendationsResponseDTO wraps the recommendation list.
type RecommendationsResponseDTO struct {
	Recommendations []RecommendationDTO `json:"recommendations"`
	Count           int                 `json:"count"`
}
