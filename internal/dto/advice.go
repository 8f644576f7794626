package dto

type AdviceRequest struct {
	Prompt *string `json:"prompt" validate:"required" example:"How much did I spend on restaurants?"`
}

type AdviceResult struct {
	Advice string `json:"advice"`
}
