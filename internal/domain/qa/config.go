package qa

import "time"

// Config holds runtime knobs for the Q&A service.
type Config struct {
	RefreshInterval    time.Duration
	DefaultReply       string
	UnavailableReply   string
	Matchers           []MatchMode
	TopRecommendations int
}
