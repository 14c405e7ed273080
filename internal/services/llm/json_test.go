package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSONResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
		wantErr  bool
	}{
		{
			name:     "bare JSON object",
			response: `{"headline":"Markets rally"}`,
			want:     `{"headline":"Markets rally"}`,
		},
		{
			name:     "json fence",
			response: "```json\n{\"headline\":\"Markets rally\"}\n```",
			want:     `{"headline":"Markets rally"}`,
		},
		{
			name:     "plain fence",
			response: "```\n{\"headline\":\"Markets rally\"}\n```",
			want:     `{"headline":"Markets rally"}`,
		},
		{
			name:     "uppercase fence tag",
			response: "```JSON\n{\"a\":1}\n```",
			want:     `{"a":1}`,
		},
		{
			name:     "leading prose before object",
			response: "Here is the requested document:\n{\"a\":1}",
			want:     `{"a":1}`,
		},
		{
			name:     "prose around array",
			response: "Result: [1,2,3] as requested.",
			want:     `[1,2,3]`,
		},
		{
			name:     "surrounding whitespace",
			response: "\n\n  {\"a\":1}  \n",
			want:     `{"a":1}`,
		},
		{
			name:     "no JSON at all",
			response: "I could not produce the document.",
			wantErr:  true,
		},
		{
			name:     "truncated object",
			response: `{"headline":"Markets ral`,
			wantErr:  true,
		},
		{
			name:     "empty response",
			response: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseJSONResponse(tt.response)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestCleanMarkdownFences_PreservesInteriorBackticks(t *testing.T) {
	response := "```json\n{\"code\":\"use `go build` here\"}\n```"
	got, err := ParseJSONResponse(response)
	require.NoError(t, err)
	assert.Contains(t, string(got), "go build")
}
