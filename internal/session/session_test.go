package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/culturepulse/culture-pulse/internal/core/domain"
)

const waitTimeout = 2 * time.Second

var errUpstream = errors.New("upstream unavailable")

// stubQueries implements ports.QueryService with overridable function fields.
// Unset fields return empty results.
type stubQueries struct {
	kpis    func(ctx context.Context, f domain.FilterSet) (domain.KPISummary, error)
	monthly func(ctx context.Context, f domain.FilterSet) ([]domain.MonthlyCount, error)
	enps    func(ctx context.Context, f domain.FilterSet) ([]domain.MonthlyENPS, error)
	hotness func(ctx context.Context, f domain.FilterSet) ([]domain.ThemeHotnessRow, error)
	sub     func(ctx context.Context, base string, f domain.FilterSet) ([]domain.ThemeHotnessRow, error)
}

func (q *stubQueries) KPIs(ctx context.Context, f domain.FilterSet) (domain.KPISummary, error) {
	if q.kpis == nil {
		return domain.KPISummary{}, nil
	}

	return q.kpis(ctx, f)
}

func (q *stubQueries) MonthlyComments(ctx context.Context, f domain.FilterSet) ([]domain.MonthlyCount, error) {
	if q.monthly == nil {
		return nil, nil
	}

	return q.monthly(ctx, f)
}

func (q *stubQueries) MonthlyENPS(ctx context.Context, f domain.FilterSet) ([]domain.MonthlyENPS, error) {
	if q.enps == nil {
		return nil, nil
	}

	return q.enps(ctx, f)
}

func (q *stubQueries) TopicHotness(ctx context.Context, f domain.FilterSet) ([]domain.ThemeHotnessRow, error) {
	if q.hotness == nil {
		return nil, nil
	}

	return q.hotness(ctx, f)
}

func (q *stubQueries) SubThemeHotness(ctx context.Context, base string, f domain.FilterSet) ([]domain.ThemeHotnessRow, error) {
	if q.sub == nil {
		return nil, nil
	}

	return q.sub(ctx, base, f)
}

type stubInsights struct {
	fn func(ctx context.Context, themeType, themeName string) (domain.ThemeInsight, error)
}

func (i *stubInsights) ThemeInsight(ctx context.Context, themeType, themeName string) (domain.ThemeInsight, error) {
	if i.fn == nil {
		return domain.ThemeInsight{}, nil
	}

	return i.fn(ctx, themeType, themeName)
}

type stubOptions struct {
	opts domain.FilterOptions
	err  error
}

func (o *stubOptions) FilterOptions(_ context.Context) (domain.FilterOptions, error) {
	return o.opts, o.err
}

func newTestSession(t *testing.T, queries *stubQueries, insights *stubInsights, mapping map[string][]string) *Session {
	t.Helper()

	logger := zerolog.Nop()

	return New(context.Background(), Deps{
		Queries:  queries,
		Insights: insights,
		Options:  &stubOptions{opts: domain.FilterOptions{ThemeMapping: mapping}},
		Logger:   &logger,
	})
}

// waitUpdate reads updates until pred matches or the timeout elapses.
func waitUpdate(t *testing.T, s *Session, pred func(Update) bool) Update {
	t.Helper()

	deadline := time.After(waitTimeout)

	for {
		select {
		case u := <-s.Updates():
			if pred(u) {
				return u
			}
		case <-deadline:
			t.Fatal("timed out waiting for update")

			return Update{}
		}
	}
}

// waitSettled waits for the loading=false event of the given epoch.
func waitSettled(t *testing.T, s *Session, epoch uint64) {
	t.Helper()

	waitUpdate(t, s, func(u Update) bool {
		return u.Slice == SliceLoading && u.Epoch == epoch
	})
}

// waitUntil polls cond, for state changes that publish no update.
func waitUntil(t *testing.T, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(waitTimeout)

	for time.Now().Before(deadline) {
		if cond() {
			return
		}

		time.Sleep(5 * time.Millisecond)
	}

	t.Fatal(msg)
}

func strs(v ...string) *[]string { return &v }
