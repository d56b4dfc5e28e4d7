package qa

import "strings"

const (
	questionMarker = "q:"
	answerMarker   = "a:"
)

// Parse turns the raw document text into ordered entries.
//
// A line starting with "Q:" opens a question and the "A:" lines after it form
// its answer. Questions without an answer, answers without a question and any
// other text are skipped; parsing never fails as a whole.
func Parse(raw string) []Entry {
	var (
		entries  []Entry
		question string
		answer   []string
		open     bool
	)

	flush := func() {
		if !open {
			return
		}
		text := strings.TrimSpace(strings.Join(answer, " "))
		if question != "" && text != "" {
			entries = append(entries, Entry{Question: question, Answer: text})
		}
		question, answer, open = "", nil, false
	}

	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case hasMarker(line, questionMarker):
			flush()
			question = normalizeText(line[len(questionMarker):])
			open = true
		case hasMarker(line, answerMarker):
			if !open {
				continue
			}
			if text := strings.TrimSpace(line[len(answerMarker):]); text != "" {
				answer = append(answer, text)
			}
		}
	}
	flush()
	return entries
}

func hasMarker(line, marker string) bool {
	return len(line) >= len(marker) && strings.EqualFold(line[:len(marker)], marker)
}
