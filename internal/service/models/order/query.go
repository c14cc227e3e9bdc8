package order

// QueryOrdersModel represents filter parameters for querying orders.
type QueryOrdersModel struct {
	Ids   []int64  `json:"ids,omitempty"`
	Codes []string `json:"codes,omitempty"`
	Limit int      `json:"limit,omitempty"`
}
