package qa

import "strings"

const maxCombinedAnswers = 3

var interrogativeKeywords = []string{
	"who", "what", "when", "where", "why", "how",
	"are you", "can you", "will you", "do you",
	"is it", "am i", "should i", "life", "fact",
}

// DefaultMatchers is the lookup plan used when none is configured.
var DefaultMatchers = []MatchMode{MatchModeExact, MatchModeContains, MatchModeOverlap}

// AnswerStore is an immutable, ordered set of entries. A new store is built on
// every refresh; nothing carries over from the previous one.
type AnswerStore struct {
	entries []Entry
	words   [][]string
	plan    []MatchMode
}

// NewAnswerStore indexes entries for lookup with the given plan.
func NewAnswerStore(entries []Entry, plan []MatchMode) *AnswerStore {
	plan = SanitizeMatchers(plan)
	cloned := append([]Entry(nil), entries...)
	tokens := make([][]string, len(cloned))
	for i, entry := range cloned {
		tokens[i] = words(entry.Question)
	}
	return &AnswerStore{entries: cloned, words: tokens, plan: plan}
}

// Len reports the number of entries.
func (s *AnswerStore) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Entries returns a copy of the entries in document order.
func (s *AnswerStore) Entries() []Entry {
	if s == nil {
		return nil
	}
	return append([]Entry(nil), s.entries...)
}

// Lookup runs the match plan in order; the first rule that hits wins and
// ties resolve to the earliest entry.
func (s *AnswerStore) Lookup(query string) (Match, bool) {
	if s == nil || len(s.entries) == 0 {
		return Match{}, false
	}
	normalized := normalizeText(query)
	if normalized == "" {
		return Match{}, false
	}
	for _, mode := range s.plan {
		var (
			entry Entry
			found bool
		)
		switch mode {
		case MatchModeExact:
			entry, found = s.exact(normalized)
		case MatchModeContains:
			entry, found = s.contains(normalized)
		case MatchModeOverlap:
			entry, found = s.overlap(normalized)
		case MatchModeKeyword:
			entry, found = s.keyword(normalized)
		}
		if found {
			return Match{Entry: entry, Mode: mode}, true
		}
	}
	return Match{}, false
}

func (s *AnswerStore) exact(query string) (Entry, bool) {
	for _, entry := range s.entries {
		if entry.Question == query {
			return entry, true
		}
	}
	return Entry{}, false
}

func (s *AnswerStore) contains(query string) (Entry, bool) {
	for _, entry := range s.entries {
		if strings.Contains(entry.Question, query) || strings.Contains(query, entry.Question) {
			return entry, true
		}
	}
	return Entry{}, false
}

// overlap needs at least half of the query words to appear in the question.
func (s *AnswerStore) overlap(query string) (Entry, bool) {
	queryWords := make(map[string]struct{})
	for _, w := range words(query) {
		queryWords[w] = struct{}{}
	}
	var (
		best      Entry
		bestScore int
	)
	for i, entry := range s.entries {
		seen := make(map[string]struct{}, len(s.words[i]))
		score := 0
		for _, w := range s.words[i] {
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			if _, ok := queryWords[w]; ok {
				score++
			}
		}
		if score > bestScore && score*2 >= len(queryWords) {
			best, bestScore = entry, score
		}
	}
	return best, bestScore > 0
}

func (s *AnswerStore) keyword(query string) (Entry, bool) {
	padded := " " + query + " "
	var (
		answers []string
		used    = make(map[int]struct{})
	)
	for _, kw := range interrogativeKeywords {
		needle := " " + kw + " "
		if !strings.Contains(padded, needle) {
			continue
		}
		for i, entry := range s.entries {
			if _, ok := used[i]; ok {
				continue
			}
			if strings.Contains(" "+entry.Question+" ", needle) {
				used[i] = struct{}{}
				answers = append(answers, entry.Answer)
				if len(answers) == maxCombinedAnswers {
					return combineAnswers(query, answers), true
				}
			}
		}
	}
	if len(answers) == 0 {
		return Entry{}, false
	}
	return combineAnswers(query, answers), true
}

func combineAnswers(query string, answers []string) Entry {
	var b strings.Builder
	b.WriteString("Abeg, no vex. From wetin I sabi: \n\n")
	b.WriteString(strings.Join(answers, "\n\n"))
	b.WriteString("\n\nNo be me talk am, na life show us.")
	return Entry{Question: query, Answer: b.String()}
}

// SanitizeMatchers drops unknown and repeated modes and falls back to DefaultMatchers.
func SanitizeMatchers(plan []MatchMode) []MatchMode {
	out := make([]MatchMode, 0, len(plan))
	seen := make(map[MatchMode]struct{}, len(plan))
	for _, mode := range plan {
		switch mode {
		case MatchModeExact, MatchModeContains, MatchModeOverlap, MatchModeKeyword:
		default:
			continue
		}
		if _, dup := seen[mode]; dup {
			continue
		}
		seen[mode] = struct{}{}
		out = append(out, mode)
	}
	if len(out) == 0 {
		return append([]MatchMode(nil), DefaultMatchers...)
	}
	return out
}
