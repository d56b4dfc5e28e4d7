package qa

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRecoversPairsInOrder(t *testing.T) {
	raw := "Q: hello\nA: Wetin you want?\n\nQ: how are you\nA: Na suffer dey worry person."

	entries := Parse(raw)

	require.Equal(t, []Entry{
		{Question: "hello", Answer: "Wetin you want?"},
		{Question: "how are you", Answer: "Na suffer dey worry person."},
	}, entries)
}

func TestParseDropsBlockWithoutAnswer(t *testing.T) {
	raw := "Q: first\nA: one\n\nQ: orphan question\n\nQ: third\nA: three"

	entries := Parse(raw)

	require.Equal(t, []Entry{
		{Question: "first", Answer: "one"},
		{Question: "third", Answer: "three"},
	}, entries)
}

func TestParseIgnoresStrayLines(t *testing.T) {
	raw := "I Know All knowledge base\nA: answer before any question\n" +
		"Q: Who be your papa?\nsome note\nA: Na life.\n" +
		"q: lower case marker\na: still works\r\n"

	entries := Parse(raw)

	require.Equal(t, []Entry{
		{Question: "who be your papa", Answer: "Na life."},
		{Question: "lower case marker", Answer: "still works"},
	}, entries)
}

func TestParseJoinsMultipleAnswerLines(t *testing.T) {
	entries := Parse("Q: life\nA: Life hard.\nA:   E no easy.\nA:")

	require.Len(t, entries, 1)
	require.Equal(t, "Life hard. E no easy.", entries[0].Answer)
}

func TestParseKeepsDuplicateQuestions(t *testing.T) {
	entries := Parse("Q: hello\nA: first\nQ: HELLO\nA: second")

	require.Len(t, entries, 2)
	require.Equal(t, "first", entries[0].Answer)
	require.Equal(t, "second", entries[1].Answer)
}

func TestParseEmptyInput(t *testing.T) {
	require.Empty(t, Parse(""))
	require.Empty(t, Parse("\n\n  \n"))
}
