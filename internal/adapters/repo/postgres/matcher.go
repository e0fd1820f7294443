package postgres

import (
	"fmt"
	"strings"

	"github.com/phenrril/catalog/internal/domain"
)

// textMatcher renders a case-insensitive "any column contains term" clause.
type textMatcher interface {
	containsAny(cols []domain.Column, term string) (string, []any)
}

func matcherFor(dialect string) textMatcher {
	if dialect == "postgres" {
		return ilikeMatcher{}
	}
	return lowerLikeMatcher{}
}

// ilikeMatcher uses PostgreSQL's native case-insensitive LIKE.
type ilikeMatcher struct{}

func (ilikeMatcher) containsAny(cols []domain.Column, term string) (string, []any) {
	return orClause(cols, "%s ILIKE ? ESCAPE '\\'", likePattern(term))
}

// lowerLikeMatcher lower-cases both sides for dialects without ILIKE.
type lowerLikeMatcher struct{}

func (lowerLikeMatcher) containsAny(cols []domain.Column, term string) (string, []any) {
	return orClause(cols, "LOWER(%s) LIKE ? ESCAPE '\\'", likePattern(strings.ToLower(term)))
}

func orClause(cols []domain.Column, format, pattern string) (string, []any) {
	parts := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols))
	for _, c := range cols {
		parts = append(parts, fmt.Sprintf(format, c))
		args = append(args, pattern)
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps term for a literal substring match.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
