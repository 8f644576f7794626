package models

// Categorization is the model's label for a single description. Batch
// categorization does not ask for a confidence, so it is left at zero there.
type Categorization struct {
	Description string
	Category    string
	Confidence  float64
}
