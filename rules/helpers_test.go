package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitLeading(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		in          string
		wantIndent  string
		wantBody    string
		wantMarkers int
	}{{
		name:        "plain",
		in:          "\tBaseType == \"Chaos Orb\"",
		wantIndent:  "\t",
		wantBody:    "BaseType == \"Chaos Orb\"",
		wantMarkers: 0,
	}, {
		name:        "commented",
		in:          "#\tSetFontSize 45",
		wantIndent:  "\t",
		wantBody:    "SetFontSize 45",
		wantMarkers: 1,
	}, {
		name:        "commented_twice",
		in:          "#    #PlayEffect Red",
		wantIndent:  "    ",
		wantBody:    "PlayEffect Red",
		wantMarkers: 2,
	}, {
		name:        "blank",
		in:          " # ",
		wantIndent:  "  ",
		wantBody:    "",
		wantMarkers: 1,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			indent, markers, body := splitLeading(tc.in)
			assert.Equal(t, tc.wantIndent, indent)
			assert.Equal(t, tc.wantMarkers, markers)
			assert.Equal(t, tc.wantBody, body)
		})
	}
}

func TestTokenizeBody(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		in          string
		wantComment string
		wantTokens  []string
		wantQuoted  bool
	}{{
		name:        "quoted",
		in:          `BaseType == "Chaos Orb" "Vaal Orb"`,
		wantComment: "",
		wantTokens:  []string{"BaseType", "==", "Chaos Orb", "Vaal Orb"},
		wantQuoted:  true,
	}, {
		name:        "comment",
		in:          "PlayAlertSound 6 300 # Divine",
		wantComment: "# Divine",
		wantTokens:  []string{"PlayAlertSound", "6", "300"},
		wantQuoted:  false,
	}, {
		name:        "hash_in_quotes",
		in:          `CustomAlertSound "sounds/#1.mp3"`,
		wantComment: "",
		wantTokens:  []string{"CustomAlertSound", "sounds/#1.mp3"},
		wantQuoted:  true,
	}, {
		name:        "empty_quotes",
		in:          `BaseType == ""`,
		wantComment: "",
		wantTokens:  []string{"BaseType", "==", ""},
		wantQuoted:  true,
	}, {
		name:        "unterminated",
		in:          `Class "Maps`,
		wantComment: "",
		wantTokens:  []string{"Class", "Maps"},
		wantQuoted:  true,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tokens, quoted, comment := tokenizeBody(tc.in)
			assert.Equal(t, tc.wantTokens, tokens)
			assert.Equal(t, tc.wantQuoted, quoted)
			assert.Equal(t, tc.wantComment, comment)
		})
	}
}

func TestSplitOperator(t *testing.T) {
	t.Parallel()

	op, rest := splitOperator(">=2")
	assert.Equal(t, ">=", op)
	assert.Equal(t, "2", rest)

	op, rest = splitOperator("==")
	assert.Equal(t, "==", op)
	assert.Empty(t, rest)
}
