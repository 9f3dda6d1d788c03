package rules

import (
	"strings"
)

// commentMarker is the character that comments out a filter line.
const commentMarker = '#'

// isComment checks if the line is a comment.
func isComment(line string) bool {
	line = strings.TrimLeft(line, " \t")

	return line != "" && line[0] == commentMarker
}

// splitLeading splits line into the leading run of whitespace and comment
// markers and the rest.  indent is the whitespace of that run with the markers
// removed, markers is the number of comment markers in it.
func splitLeading(line string) (indent string, markers int, body string) {
	var sb strings.Builder
	i := 0
	for ; i < len(line); i++ {
		switch c := line[i]; c {
		case ' ', '\t':
			sb.WriteByte(c)
		case commentMarker:
			markers++
		default:
			return sb.String(), markers, line[i:]
		}
	}

	return sb.String(), markers, ""
}

// tokenizeBody splits the condition line body by whitespace.  Double-quoted
// tokens are returned without the quotes and may contain spaces.  An unquoted
// comment marker at the start of a token ends the tokens; the rest of the body
// starting with the marker is returned as comment.
func tokenizeBody(body string) (tokens []string, quoted bool, comment string) {
	var sb strings.Builder
	inToken, inQuotes := false, false

	flush := func() {
		if inToken {
			tokens = append(tokens, sb.String())
			sb.Reset()
			inToken = false
		}
	}

	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case inQuotes:
			if c == '"' {
				inQuotes = false
				// Keep empty quoted tokens like "".
				inToken = true
				flush()
			} else {
				sb.WriteByte(c)
			}
		case c == '"':
			flush()
			inQuotes, quoted, inToken = true, true, true
		case c == ' ' || c == '\t':
			flush()
		case c == commentMarker && !inToken:
			return tokens, quoted, body[i:]
		default:
			sb.WriteByte(c)
			inToken = true
		}
	}

	// An unterminated quote takes the rest of the line.
	flush()

	return tokens, quoted, ""
}

// isKeyword returns true if s looks like a filter keyword: an ASCII letter
// followed by ASCII letters or digits.
func isKeyword(s string) (ok bool) {
	if s == "" || !isASCIILetter(s[0]) {
		return false
	}

	for i := 1; i < len(s); i++ {
		if c := s[i]; !isASCIILetter(c) && (c < '0' || c > '9') {
			return false
		}
	}

	return true
}

// isASCIILetter returns true if c is an ASCII letter.
func isASCIILetter(c byte) (ok bool) {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// isOperatorChar returns true if c may be a part of a condition operator.
func isOperatorChar(c byte) (ok bool) {
	return c == '=' || c == '!' || c == '<' || c == '>'
}

// splitOperator splits the leading operator off tok.  rest is the remainder of
// tok, for example "2" in ">=2".
func splitOperator(tok string) (op, rest string) {
	i := 0
	for i < len(tok) && isOperatorChar(tok[i]) {
		i++
	}

	return tok[:i], tok[i:]
}
