package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCodeFence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain_json", input: `{"status": "success"}`, expected: `{"status": "success"}`},
		{name: "json_fence", input: "```json\n{\"status\": \"success\"}\n```", expected: `{"status": "success"}`},
		{name: "bare_fence", input: "```\n[\"a\"]\n```", expected: `["a"]`},
		{name: "surrounding_whitespace", input: "  \n{\"a\":1}\n ", expected: `{"a":1}`},
		{name: "prose_untouched", input: "Here is the JSON: {\"a\":1}", expected: `Here is the JSON: {"a":1}`},
		{name: "single_line_fence", input: "```{\"a\":1}```", expected: `{"a":1}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, StripCodeFence(tt.input))
		})
	}
}

func TestParseNumberedList(t *testing.T) {
	t.Parallel()

	in := "1) What is a goroutine?\n2. Explain channels.\n3 - Describe select.\n\n  4)   How do you cancel work?\r\nPlain line"
	got := ParseNumberedList(in)
	assert.Equal(t, []string{
		"What is a goroutine?",
		"Explain channels.",
		"Describe select.",
		"How do you cancel work?",
		"Plain line",
	}, got)
}

func TestParseNumberedList_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, ParseNumberedList(""))
	assert.Empty(t, ParseNumberedList("\n \n1)\n"))
}
