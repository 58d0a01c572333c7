package compay

import "encoding/json"

// Paginator is the upstream page envelope. Missing pagination fields fall
// back to page 1 of 1 with the marketplace's default page size.
type Paginator[T any] struct {
	Data        []T     `json:"data"`
	CurrentPage int     `json:"current_page"`
	LastPage    int     `json:"last_page"`
	PerPage     int     `json:"per_page"`
	Total       int     `json:"total"`
	NextPageURL *string `json:"next_page_url"`
	PrevPageURL *string `json:"prev_page_url"`
}

func (p *Paginator[T]) UnmarshalJSON(data []byte) error {
	var w struct {
		Data        []T     `json:"data"`
		CurrentPage *int    `json:"current_page"`
		LastPage    *int    `json:"last_page"`
		PerPage     *int    `json:"per_page"`
		Total       *int    `json:"total"`
		NextPageURL *string `json:"next_page_url"`
		PrevPageURL *string `json:"prev_page_url"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Data == nil {
		w.Data = []T{}
	}
	p.Data = w.Data
	p.CurrentPage = intOr(w.CurrentPage, 1)
	p.LastPage = intOr(w.LastPage, 1)
	p.PerPage = intOr(w.PerPage, 15)
	p.Total = intOr(w.Total, 0)
	p.NextPageURL = w.NextPageURL
	p.PrevPageURL = w.PrevPageURL
	return nil
}

// HasMore reports whether pages remain after the current one.
func (p *Paginator[T]) HasMore() bool {
	return p.CurrentPage < p.LastPage
}

func intOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}
