package models

import "time"

// CategoryAlias is one upstream catalog spelling mapped to a canonical
// category. Rows are merged into the classifier's built-in table at startup,
// so new spellings are data, not code.
type CategoryAlias struct {
	ID        int       `json:"id"`
	Alias     string    `json:"alias"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCategoryAliasRequest is used when registering a new alias
type CreateCategoryAliasRequest struct {
	Alias    string `json:"alias"`
	Category string `json:"category"`
}
