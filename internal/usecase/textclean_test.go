package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"json fence", "intro\n```json\n{\"a\": 1}\n```\ntrailer", `{"a": 1}`, true},
		{"plain fence", "```\n{\"a\": 2}\n```", `{"a": 2}`, true},
		{"plain fence not object", "```\nnot json\n```", "", false},
		{"bare object", `Here you go: {"a": 3} thanks`, `{"a": 3}`, true},
		{"invalid bare", "{not json}", "", false},
		{"nothing", "just text", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := extractJSON(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFindingsText(t *testing.T) {
	raw := "```json\n{\"findings\": [\"Revenue rose 5% in Q1 2024.\", \"  CEO   resigned on 2024-02-01. \", \"\", 42]}\n```"
	got := findingsText(raw)
	assert.Equal(t, "- Revenue rose 5% in Q1 2024.\n- CEO resigned on 2024-02-01.\n- 42", got)
}

func TestFindingsTextEmptyList(t *testing.T) {
	assert.Equal(t, "", findingsText("```json\n{\"findings\": []}\n```"))
}

func TestFindingsTextFallsBackToRawText(t *testing.T) {
	got := findingsText("  The company   reported\n\n\n\nstrong growth.  ")
	assert.Equal(t, "The company reported\n\nstrong growth.", got)
}

func TestCleanTextConvertsHTML(t *testing.T) {
	got := cleanText("<p>Revenue grew <strong>12%</strong></p><br>")
	assert.Contains(t, got, "Revenue grew")
	assert.Contains(t, got, "**12%**")
	assert.NotContains(t, got, "<")
}

func TestReportText(t *testing.T) {
	assert.Equal(t, "## Summary\n\nSteady quarter.", reportText(`{"full_report": "## Summary\n\nSteady quarter."}`))
	assert.Equal(t, "Plain narrative.", reportText("Plain narrative."))
}
