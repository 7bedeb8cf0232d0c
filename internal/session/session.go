// Package session implements the page-session core of the dashboard: the
// filter state store, the data fetch orchestrator, the sub-theme expansion
// cache, and the on-demand insight cache. One Session owns all mutable state
// for one logical page session; consumers receive it by reference and observe
// changes through the session's update channel. State mutation is serialized
// by a single mutex while the I/O stays concurrent, so in-flight fetches
// never race on shared state.
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/culturepulse/culture-pulse/internal/core/domain"
	"github.com/culturepulse/culture-pulse/internal/core/ports"
)

const updateBufferSize = 128

// Deps are the external collaborators a session consumes.
type Deps struct {
	Queries  ports.QueryService
	Insights ports.InsightService
	Options  ports.OptionsService
	Logger   *zerolog.Logger
}

// Session holds all filter-scoped dashboard state for one page session.
type Session struct {
	id       string
	queries  ports.QueryService
	insights ports.InsightService
	logger   *zerolog.Logger

	mu      sync.Mutex
	filters domain.FilterSet
	options domain.FilterOptions
	mapping map[string][]string

	// Fetch cycle state. The epoch is the staleness token: it increments on
	// every filter mutation and every response compares its own epoch before
	// committing.
	epoch   uint64
	loading bool
	pending int

	kpis            domain.KPISummary
	monthlyComments []domain.MonthlyCount
	monthlyENPS     []domain.MonthlyENPS
	hotness         []domain.ThemeHotnessRow

	expanded   map[string]bool
	subRows    map[string][]domain.ThemeHotnessRow
	subLoading map[string]bool

	insightEntries  map[string]domain.ThemeInsight
	insightInflight map[string]struct{}

	updates chan Update
}

// New creates a session and loads the filter vocabulary once. A failure to
// load options is not fatal: the session starts with an empty vocabulary and
// the dashboard stays usable.
func New(ctx context.Context, deps Deps) *Session {
	s := &Session{
		id:              uuid.NewString(),
		queries:         deps.Queries,
		insights:        deps.Insights,
		logger:          deps.Logger,
		mapping:         map[string][]string{},
		expanded:        map[string]bool{},
		subRows:         map[string][]domain.ThemeHotnessRow{},
		subLoading:      map[string]bool{},
		insightEntries:  map[string]domain.ThemeInsight{},
		insightInflight: map[string]struct{}{},
		updates:         make(chan Update, updateBufferSize),
	}

	if deps.Options != nil {
		opts, err := deps.Options.FilterOptions(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("filter options unavailable, starting with empty vocabulary")
		} else {
			s.options = opts
			if opts.ThemeMapping != nil {
				s.mapping = opts.ThemeMapping
			}
		}
	}

	s.logger.Debug().Str("session_id", s.id).Msg("session created")

	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Options returns the filter vocabulary loaded at session start.
func (s *Session) Options() domain.FilterOptions {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.options
}

// Filters returns a copy of the current filter selection.
func (s *Session) Filters() domain.FilterSet {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.filters
}

// Loading reports whether a fetch cycle is still in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loading
}

// KPIs returns the last committed KPI summary.
func (s *Session) KPIs() domain.KPISummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.kpis
}

// MonthlyComments returns the last committed comment-volume series.
func (s *Session) MonthlyComments() []domain.MonthlyCount {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.monthlyComments
}

// MonthlyENPS returns the last committed eNPS series.
func (s *Session) MonthlyENPS() []domain.MonthlyENPS {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.monthlyENPS
}

// TopicHotness returns the last committed theme hotness rows.
func (s *Session) TopicHotness() []domain.ThemeHotnessRow {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.hotness
}
