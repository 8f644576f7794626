package dto

type HealthResponse struct {
	Status  string `json:"status" example:"healthy"`
	Storage string `json:"storage" example:"up"`
	Version string `json:"version" example:"1.0.0"`
	Time    string `json:"time" example:"2024-01-05T10:00:00Z"`
}
