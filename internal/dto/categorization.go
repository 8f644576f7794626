package dto

type CategorizationRequest struct {
	Description *string `json:"description" validate:"required" example:"UBER EATS"`
}

type CategorizationResult struct {
	Description string  `json:"description" example:"UBER EATS"`
	Category    string  `json:"category" example:"Restaurants"`
	Confidence  float64 `json:"confidence" example:"0.9"`
}

type BatchCategorizationRequest struct {
	Descriptions []string `json:"descriptions" validate:"required"`
}

type BatchCategorizationItem struct {
	Description string `json:"description" example:"AMAZON.COM"`
	Category    string `json:"category" example:"Shopping"`
}
