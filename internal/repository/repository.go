package repository

import (
	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Page bounds a list query.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) normalize() (int, int) {
	limit := p.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := p.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// isID reports whether id can address a uuid primary key. Callers treat
// anything else as not found instead of sending it to the database.
func isID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
