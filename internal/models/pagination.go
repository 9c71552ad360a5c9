package models

const (
	DefaultPage  = 1
	DefaultLimit = 100
	MaxLimit     = 1000
)

// PageRequest is a normalized page/limit window.
type PageRequest struct {
	Page  int `json:"page" query:"page"`
	Limit int `json:"limit" query:"limit"`
}

// NewPageRequest applies the defaults and bounds.
func NewPageRequest(page, limit int) PageRequest {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return PageRequest{Page: page, Limit: limit}
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

type PageMeta struct {
	Total    int `json:"total"`
	Page     int `json:"page"`
	LastPage int `json:"last_page"`
	Limit    int `json:"limit"`
}

type Page[T any] struct {
	Items []T      `json:"items"`
	Meta  PageMeta `json:"meta"`
}

// NewPage builds the envelope; lastPage is ceil(total/limit).
func NewPage[T any](items []T, total int, req PageRequest) *Page[T] {
	if items == nil {
		items = []T{}
	}
	lastPage := 0
	if req.Limit > 0 {
		lastPage = (total + req.Limit - 1) / req.Limit
	}
	return &Page[T]{
		Items: items,
		Meta: PageMeta{
			Total:    total,
			Page:     req.Page,
			LastPage: lastPage,
			Limit:    req.Limit,
		},
	}
}
