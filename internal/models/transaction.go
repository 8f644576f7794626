package models

// Transaction is a single stored financial event. ID is assigned by storage.
type Transaction struct {
	ID          int64
	Date        Date
	Description string
	Amount      float64
	Category    *string // nil means uncategorized
}

// NewTransaction holds the fields supplied when creating a transaction.
type NewTransaction struct {
	Date        Date
	Description string
	Amount      float64
	Category    *string
}
