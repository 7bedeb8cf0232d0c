package db

import (
	"fmt"
	"strings"

	"github.com/culturepulse/culture-pulse/internal/core/domain"
)

// condBuilder accumulates WHERE conditions with positional placeholders.
// Expressions use %d where the placeholder number should go.
type condBuilder struct {
	conds []string
	args  []any
}

func (b *condBuilder) add(expr string, vals ...any) {
	nums := make([]any, len(vals))
	for i := range vals {
		nums[i] = len(b.args) + i + 1
	}

	b.conds = append(b.conds, fmt.Sprintf(expr, nums...))
	b.args = append(b.args, vals...)
}

func (b *condBuilder) where() string {
	if len(b.conds) == 0 {
		return ""
	}

	return " WHERE " + strings.Join(b.conds, " AND ")
}

// filterBuilder returns a condBuilder pre-seeded with the shared exclusions
// and the conditions a FilterSet implies. Empty filter fields add nothing.
func filterBuilder(f domain.FilterSet) *condBuilder {
	b := &condBuilder{}
	b.add("(base_theme IS NULL OR NOT (base_theme = ANY($%d)))", excludedThemes)
	b.add("(sub_theme IS NULL OR NOT (sub_theme = ANY($%d)))", excludedThemes)

	if len(f.BaseThemes) > 0 {
		b.add("base_theme = ANY($%d)", f.BaseThemes)
	}

	if len(f.SubThemes) > 0 {
		b.add("sub_theme = ANY($%d)", f.SubThemes)
	}

	if len(f.Languages) > 0 {
		b.add("language = ANY($%d)", f.Languages)
	}

	if len(f.Sources) > 0 {
		b.add("source = ANY($%d)", f.Sources)
	}

	if f.StartDate != "" {
		b.add("date >= $%d", f.StartDate)
	}

	if f.EndDate != "" {
		b.add("date <= $%d", f.EndDate)
	}

	return b
}

// Sentiment predicates shared by the aggregate queries. Rows without a
// sentiment label fall back to the likes proxy.
const (
	positiveCond = "(sentiment = 'positive' OR (sentiment IS NULL AND likes > 5))"
	negativeCond = "(sentiment = 'negative' OR (sentiment IS NULL AND likes < -5))"
)
