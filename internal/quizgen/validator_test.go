package quizgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRecord(t *testing.T) {
	long := func(n int) string { return strings.Repeat("x", n) }

	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{
			name: "valid",
			raw:  `{"question":"Q","options":["a","b","c","d"],"correct_option_id":3,"explanation":"e"}`,
		},
		{
			name: "unknown fields are ignored",
			raw:  `{"question":"Q","options":["a","b","c","d"],"correct_option_id":1,"explanation":"e","difficulty":5}`,
		},
		{
			name: "fenced",
			raw:  "```json\n{\"question\":\"Q\",\"options\":[\"a\",\"b\",\"c\",\"d\"],\"correct_option_id\":0,\"explanation\":\"\"}\n```",
		},
		{
			name:    "blank",
			raw:     "  \t ",
			wantErr: ErrUpstreamUnavailable,
		},
		{
			name:    "not json",
			raw:     `Sure! Here is your quiz.`,
			wantErr: ErrMalformedContent,
		},
		{
			name:    "trailing data",
			raw:     `{"question":"Q","options":["a","b","c","d"],"correct_option_id":0,"explanation":""} {}`,
			wantErr: ErrMalformedContent,
		},
		{
			name:    "missing index",
			raw:     `{"question":"Q","options":["a","b","c","d"],"explanation":"e"}`,
			wantErr: ErrMalformedContent,
		},
		{
			name:    "index out of range",
			raw:     `{"question":"Q","options":["a","b","c","d"],"correct_option_id":4,"explanation":"e"}`,
			wantErr: ErrMalformedContent,
		},
		{
			name:    "negative index",
			raw:     `{"question":"Q","options":["a","b","c","d"],"correct_option_id":-1,"explanation":"e"}`,
			wantErr: ErrMalformedContent,
		},
		{
			name:    "three options",
			raw:     `{"question":"Q","options":["a","b","c"],"correct_option_id":0,"explanation":"e"}`,
			wantErr: ErrMalformedContent,
		},
		{
			name:    "duplicate options",
			raw:     `{"question":"Q","options":["a","a","c","d"],"correct_option_id":0,"explanation":"e"}`,
			wantErr: ErrMalformedContent,
		},
		{
			name:    "blank option",
			raw:     `{"question":"Q","options":["a"," ","c","d"],"correct_option_id":0,"explanation":"e"}`,
			wantErr: ErrMalformedContent,
		},
		{
			name:    "blank question",
			raw:     `{"question":"   ","options":["a","b","c","d"],"correct_option_id":0,"explanation":"e"}`,
			wantErr: ErrMalformedContent,
		},
		{
			name:    "option too long",
			raw:     `{"question":"Q","options":["` + long(101) + `","b","c","d"],"correct_option_id":0,"explanation":"e"}`,
			wantErr: ErrMalformedContent,
		},
		{
			name: "option at limit",
			raw:  `{"question":"Q","options":["` + long(100) + `","b","c","d"],"correct_option_id":0,"explanation":"e"}`,
		},
		{
			name:    "explanation too long",
			raw:     `{"question":"Q","options":["a","b","c","d"],"correct_option_id":0,"explanation":"` + long(201) + `"}`,
			wantErr: ErrMalformedContent,
		},
		{
			name: "limits count characters not bytes",
			raw:  `{"question":"Q","options":["` + strings.Repeat("é", 100) + `","b","c","d"],"correct_option_id":0,"explanation":"e"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := DecodeRecord([]byte(tt.raw))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Q", rec.Question)
			assert.Len(t, rec.Options, 4)
		})
	}
}

func TestValidateRecord_MessageNamesField(t *testing.T) {
	err := ValidateRecord(Record{Question: "Q", Options: []string{"a", "b"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "options")
}
