package session

// Slice identifies one independently fetched and applied data slice.
type Slice string

const (
	SliceKPIs            Slice = "kpis"
	SliceMonthlyComments Slice = "monthly_comments"
	SliceMonthlyENPS     Slice = "monthly_enps"
	SliceTopicHotness    Slice = "topic_hotness"
	SliceSubThemes       Slice = "sub_themes"
	SliceInsight         Slice = "insight"
	SliceLoading         Slice = "loading"
)

// ViewConfig tells the consumer which view the payload belongs to, so
// producers stay decoupled from any particular consumer's state shape.
type ViewConfig struct {
	View  string `json:"view,omitempty"`
	Theme string `json:"theme,omitempty"`
}

// Update is the single message type delivered on to consumers whenever a data
// slice changes. Payload carries the slice's committed value.
type Update struct {
	Slice      Slice
	Epoch      uint64
	Payload    any
	ViewConfig ViewConfig
}

// Updates exposes the session's event channel. Events are dropped, with a
// warning, if the consumer falls more than the buffer size behind.
func (s *Session) Updates() <-chan Update {
	return s.updates
}

func (s *Session) publish(u Update) {
	select {
	case s.updates <- u:
	default:
		s.logger.Warn().Str("slice", string(u.Slice)).Msg("update channel full, dropping event")
	}
}
