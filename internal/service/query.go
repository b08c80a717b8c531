package service

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/foodshare/backend/internal/types"
)

// paginate counts the rows matched by q and loads one page of them into T.
// Scopes are applied to the row query only, so joins belong on q while
// selects and preloads go in scopes. Page 1 is always valid; any other page
// must start inside the result set.
func paginate[T any](q *gorm.DB, page types.PageRequest, order string, scopes ...func(*gorm.DB) *gorm.DB) (types.Page[T], error) {
	var count int64
	if err := q.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return types.Page[T]{}, fmt.Errorf("failed to count rows: %w", err)
	}

	if page.Page < 1 || page.Limit < 1 || (page.Page > 1 && !page.StartsWithin(count)) {
		return types.Page[T]{}, ErrInvalidPage
	}

	var results []T
	err := q.Session(&gorm.Session{}).
		Scopes(scopes...).
		Order(order).
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&results).Error
	if err != nil {
		return types.Page[T]{}, fmt.Errorf("failed to load page: %w", err)
	}

	return types.Page[T]{Count: count, Results: results}, nil
}

// mapPage converts every result of a page
func mapPage[T, U any](p types.Page[T], fn func(T) U) types.Page[U] {
	out := types.Page[U]{Count: p.Count, Results: make([]U, 0, len(p.Results))}
	for _, r := range p.Results {
		out.Results = append(out.Results, fn(r))
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// prefixPattern builds a LIKE pattern matching values that start with prefix
func prefixPattern(prefix string) string {
	return strings.ToLower(likeEscaper.Replace(prefix)) + "%"
}
