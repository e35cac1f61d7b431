package domain

import (
	"strings"
	"unicode/utf8"
)

// Category is the free-form "type" label of a reminder, e.g. "medication".
type Category string

const (
	CategoryGeneral Category = "general"

	maxCategoryLength = 64
)

func NewCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CategoryGeneral, nil
	}

	if utf8.RuneCountInString(s) > maxCategoryLength {
		return "", ErrCategoryTooLong
	}

	return Category(s), nil
}

func (c Category) String() string {
	return string(c)
}
