package common

// Meta 包含列表元数据。
type Meta struct {
	Limit int64 `json:"limit"`
	Total int64 `json:"total"`
}
