package qa

import "time"

// MatchMode identifies one lookup rule of the answer store.
type MatchMode string

const (
	// MatchModeExact only considers equality of the normalized text.
	MatchModeExact MatchMode = "exact"
	// MatchModeContains accepts a query contained in a question or vice versa.
	MatchModeContains MatchMode = "contains"
	// MatchModeOverlap picks the question sharing the most words with the query.
	MatchModeOverlap MatchMode = "overlap"
	// MatchModeKeyword combines answers whose questions share an interrogative keyword.
	MatchModeKeyword MatchMode = "keyword"
	// MatchModeNone marks a reply that came from a fallback message.
	MatchModeNone MatchMode = "none"
)

// Entry is one question/answer pair taken from the source document.
type Entry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Match is a successful lookup.
type Match struct {
	Entry Entry
	Mode  MatchMode
}

// Request encapsulates an inbound question.
type Request struct {
	Question string `json:"question"`
}

// Response is returned to the transports.
type Response struct {
	Question        string          `json:"question"`
	Answer          string          `json:"answer"`
	Found           bool            `json:"found"`
	Mode            MatchMode       `json:"mode"`
	MatchedQuestion string          `json:"matchedQuestion,omitempty"`
	Recommendations []TrendingQuery `json:"recommendations,omitempty"`
}

// TrendingQuery represents a frequently asked question.
type TrendingQuery struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Outcome values recorded in the query log.
const (
	OutcomeMatched  = "matched"
	OutcomeNotFound = "not_found"
	// OutcomeUnavailable marks queries asked while no document was loaded;
	// they are kept out of the misses report.
	OutcomeUnavailable = "unavailable"
)

// DefaultTrendingLimit caps the trending list when no limit is configured.
const DefaultTrendingLimit = 10

// QueryRecord is one row of the query log.
type QueryRecord struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	Outcome   string    `json:"outcome"`
	Mode      MatchMode `json:"mode"`
	CreatedAt time.Time `json:"createdAt"`
}

// MissedQuery aggregates unanswered questions so the document owner can add them.
type MissedQuery struct {
	Query    string    `json:"query"`
	Count    int64     `json:"count"`
	LastSeen time.Time `json:"lastSeen"`
}

// Snapshot is the last document text that parsed successfully.
type Snapshot struct {
	Text      string    `json:"text"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// Status describes the cache for operators.
type Status struct {
	Entries         int       `json:"entries"`
	Loaded          bool      `json:"loaded"`
	Stale           bool      `json:"stale"`
	LastRefreshedAt time.Time `json:"lastRefreshedAt"`
	RefreshInterval string    `json:"refreshInterval"`
	LastError       string    `json:"lastError,omitempty"`
	FromSnapshot    bool      `json:"fromSnapshot"`
}
