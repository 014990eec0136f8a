package storage

// Transaction is a row of the transactions table.
type Transaction struct {
	ID                string
	Kind              string
	AmountCents       int64
	Description       string
	OccurredOn        string
	DeclaredFrequency string
}

// CategoryHint is a row of the category_hints table.
type CategoryHint struct {
	CanonicalKey string
	Category     string
}
