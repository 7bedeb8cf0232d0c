package session

import (
	"context"

	"github.com/culturepulse/culture-pulse/internal/core/domain"
	"github.com/culturepulse/culture-pulse/internal/platform/observability"
)

// sliceCount is the fixed batch of one fetch cycle: KPIs, both monthly
// series, and topic hotness.
const sliceCount = 4

// startCycleLocked begins a new fetch cycle for the current filters. The
// caller must hold s.mu. The four requests are dispatched together and may
// resolve in any order; each one compares the cycle epoch before committing,
// so a late response from a superseded cycle can never overwrite newer data.
func (s *Session) startCycleLocked(ctx context.Context) {
	s.epoch++
	epoch := s.epoch
	filters := s.filters
	s.loading = true
	s.pending = sliceCount

	observability.FetchCycles.Inc()

	go s.fetchKPIs(ctx, epoch, filters)
	go s.fetchMonthlyComments(ctx, epoch, filters)
	go s.fetchMonthlyENPS(ctx, epoch, filters)
	go s.fetchTopicHotness(ctx, epoch, filters)
}

func (s *Session) fetchKPIs(ctx context.Context, epoch uint64, filters domain.FilterSet) {
	v, err := s.queries.KPIs(ctx, filters)
	if err != nil {
		s.recordSliceFailure(SliceKPIs, err)

		v = domain.KPISummary{}
	}

	s.commit(epoch, SliceKPIs, v, func() { s.kpis = v })
}

func (s *Session) fetchMonthlyComments(ctx context.Context, epoch uint64, filters domain.FilterSet) {
	v, err := s.queries.MonthlyComments(ctx, filters)
	if err != nil {
		s.recordSliceFailure(SliceMonthlyComments, err)

		v = nil
	}

	s.commit(epoch, SliceMonthlyComments, v, func() { s.monthlyComments = v })
}

func (s *Session) fetchMonthlyENPS(ctx context.Context, epoch uint64, filters domain.FilterSet) {
	v, err := s.queries.MonthlyENPS(ctx, filters)
	if err != nil {
		s.recordSliceFailure(SliceMonthlyENPS, err)

		v = nil
	}

	s.commit(epoch, SliceMonthlyENPS, v, func() { s.monthlyENPS = v })
}

func (s *Session) fetchTopicHotness(ctx context.Context, epoch uint64, filters domain.FilterSet) {
	v, err := s.queries.TopicHotness(ctx, filters)
	if err != nil {
		s.recordSliceFailure(SliceTopicHotness, err)

		v = nil
	}

	s.commit(epoch, SliceTopicHotness, v, func() { s.hotness = v })
}

// commit applies one slice result if its cycle is still current. A failed
// request has already been replaced by its zero default before commit, so the
// dashboard stays usable with partial data. Stale results are discarded
// silently; that is the cancellation substitute.
func (s *Session) commit(epoch uint64, slice Slice, payload any, apply func()) {
	s.mu.Lock()

	if epoch != s.epoch {
		s.mu.Unlock()
		observability.StaleResultsDiscarded.WithLabelValues(string(slice)).Inc()

		return
	}

	apply()

	s.pending--
	settled := s.pending == 0

	if settled {
		s.loading = false
	}

	s.mu.Unlock()

	s.publish(Update{Slice: slice, Epoch: epoch, Payload: payload})

	if settled {
		s.publish(Update{Slice: SliceLoading, Epoch: epoch, Payload: false})
	}
}

func (s *Session) recordSliceFailure(slice Slice, err error) {
	observability.SliceFetchFailures.WithLabelValues(string(slice)).Inc()
	s.logger.Warn().Err(err).Str("slice", string(slice)).Msg("slice fetch failed, substituting default")
}
