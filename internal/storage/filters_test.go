package db

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/culturepulse/culture-pulse/internal/core/domain"
)

func TestFilterBuilder_EmptyFilterKeepsOnlyExclusions(t *testing.T) {
	b := filterBuilder(domain.FilterSet{})

	assert.Equal(t,
		" WHERE (base_theme IS NULL OR NOT (base_theme = ANY($1))) AND (sub_theme IS NULL OR NOT (sub_theme = ANY($2)))",
		b.where())
	assert.Equal(t, []any{excludedThemes, excludedThemes}, b.args)
}

func TestFilterBuilder_AllFieldsNumberPlaceholdersInOrder(t *testing.T) {
	b := filterBuilder(domain.FilterSet{
		BaseThemes: []string{"Workload"},
		SubThemes:  []string{"Overtime"},
		Languages:  []string{"en", "de"},
		Sources:    []string{"glassdoor"},
		StartDate:  "2024-01-01",
		EndDate:    "2024-12-31",
	})

	assert.Contains(t, b.where(), "base_theme = ANY($3)")
	assert.Contains(t, b.where(), "sub_theme = ANY($4)")
	assert.Contains(t, b.where(), "language = ANY($5)")
	assert.Contains(t, b.where(), "source = ANY($6)")
	assert.Contains(t, b.where(), "date >= $7")
	assert.Contains(t, b.where(), "date <= $8")
	assert.Len(t, b.args, 8)
	assert.Equal(t, "2024-01-01", b.args[6])
}

func TestFilterBuilder_SkipsEmptyFields(t *testing.T) {
	b := filterBuilder(domain.FilterSet{Languages: []string{"en"}})

	assert.NotContains(t, b.where(), "base_theme = ANY")
	assert.NotContains(t, b.where(), "date")
	assert.Contains(t, b.where(), "language = ANY($3)")
	assert.Len(t, b.args, 3)
}

func TestCondBuilder_AppendAfterFilters(t *testing.T) {
	b := filterBuilder(domain.FilterSet{BaseThemes: []string{"Workload"}})
	b.add("sub_theme IS NOT NULL")
	b.add("base_theme = $%d", "Workload")

	assert.Contains(t, b.where(), "sub_theme IS NOT NULL")
	assert.Contains(t, b.where(), "base_theme = $4")
	assert.Equal(t, "Workload", b.args[3])
}

func TestCondBuilder_EmptyWhere(t *testing.T) {
	b := &condBuilder{}

	assert.Empty(t, b.where())
}
