package models

type MenuItem struct {
	ID       string  `json:"id"`
	BranchID string  `json:"branch_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}
