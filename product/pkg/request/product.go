package request

type FindProducts struct {
	CategoryID *int64 `json:"category_id" validate:"omitempty,min=1"`
	IsPopular  *bool  `json:"is_popular"`
	IsActive   *bool  `json:"is_active"`
	Search     string `json:"search"`
	Skip       int32  `json:"skip" validate:"omitempty,min=0"`
	Limit      int32  `json:"limit" validate:"omitempty,min=1,max=100"`
}
