package rules

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// Condition is a single line of a rule after the Show/Hide line, for example
// `BaseType == "Chaos Orb"` or `SetFontSize 45`.  The grammar of a line is
//
//	[#] KEYWORD [OPERATOR] [VALUE...] [# COMMENT]
//
// Lines that do not start with a keyword are kept as opaque text.
type Condition struct {
	keyword  string
	operator string
	values   []string

	// orig is the line as it was in the source.
	orig string
	// indent is the whitespace before the keyword with comment markers
	// removed.
	indent string
	// lead is the text before the keyword without the markers of the
	// disabled rule.  It keeps the own markers of the line where they were.
	lead string
	// body is the text after the indent as it was in the source.
	body string
	// comment is the trailing comment including the marker.
	comment string

	// origOuter and origOwn are the numbers of the rule and the own comment
	// markers orig had.
	origOuter int
	origOwn   int

	// commented is true if the line is commented out on its own, besides the
	// whole rule being disabled.
	commented bool
	// suppressed is true if the line is commented out because the rule is a
	// Hide rule.
	suppressed bool
	quoted     bool
	opaque     bool
	modified   bool
}

// newCondition returns a new condition that has no source text.
func newCondition(keyword, op string, values []string) (c *Condition) {
	return &Condition{
		keyword:   keyword,
		operator:  op,
		values:    values,
		indent:    "\t",
		lead:      "\t",
		quoted:    true,
		modified:  true,
		origOuter: -1,
	}
}

// parseCondition parses a single condition line.  outer is the number of
// comment markers that belong to the rule being disabled rather than to the
// line itself.  hide is true if the line belongs to a Hide rule, in which case
// a single own marker on an effect line is the suppression of the effect.
func parseCondition(line string, outer int, hide bool) (c *Condition) {
	indent, markers, body := splitLeading(line)
	own := max(markers-outer, 0)
	c = &Condition{
		orig:      line,
		indent:    indent,
		lead:      stripMarkers(line[:len(line)-len(body)], outer),
		body:      body,
		origOuter: outer,
		origOwn:   own,
		commented: own > 0,
	}

	tokens, quoted, comment := tokenizeBody(body)
	tokens = splitGluedKeyword(tokens)
	if len(tokens) == 0 || !isKeyword(tokens[0]) {
		c.opaque = true

		return c
	}

	c.keyword, c.quoted, c.comment = tokens[0], quoted, comment
	tokens = tokens[1:]
	if len(tokens) > 0 && tokens[0] != "" && isOperatorChar(tokens[0][0]) {
		op, rest := splitOperator(tokens[0])
		c.operator = op
		if rest != "" {
			tokens[0] = rest
		} else {
			tokens = tokens[1:]
		}
	}

	if hide && own == 1 && hideSuppressedKeywords.Has(c.keyword) {
		c.commented, c.suppressed = false, true
	}

	c.values = tokens
	if quotedKeywords.Has(c.keyword) {
		// An empty quoted value, as in `BaseType == ""`, stands for an empty
		// list.
		c.values = slices.DeleteFunc(c.values, isEmpty)
		if len(c.values) == 0 {
			c.quoted = true
		}
	}

	return c
}

// splitGluedKeyword splits the operator glued to the keyword, as in
// "ItemLevel>=75", into a separate token.
func splitGluedKeyword(tokens []string) (res []string) {
	if len(tokens) == 0 {
		return tokens
	}

	tok := tokens[0]
	i := strings.IndexFunc(tok, func(r rune) (ok bool) {
		return r < utf8.RuneSelf && isOperatorChar(byte(r))
	})
	if i <= 0 || !isKeyword(tok[:i]) {
		return tokens
	}

	return append([]string{tok[:i], tok[i:]}, tokens[1:]...)
}

// Keyword returns the keyword of the line.  It is empty for opaque lines.
func (c *Condition) Keyword() (kw string) {
	return c.keyword
}

// Operator returns the comparison operator or an empty string.
func (c *Condition) Operator() (op string) {
	return c.operator
}

// Values returns a copy of the values of the line.
func (c *Condition) Values() (vals []string) {
	return slices.Clone(c.values)
}

// Commented returns true if the line is commented out on its own, including
// the effect lines commented out because the rule is a Hide rule.
func (c *Condition) Commented() (ok bool) {
	return c.commented || c.suppressed
}

// set replaces the operator and the values of c.
func (c *Condition) set(op string, values []string) {
	c.operator = op
	c.values = values
	c.modified = true

	if !c.quoted && slices.ContainsFunc(values, hasSpace) {
		c.quoted = true
	} else if len(values) == 0 && quotedKeywords.Has(c.keyword) {
		c.quoted = true
	}
}

// stripMarkers returns lead without its first n comment markers.
func stripMarkers(lead string, n int) (res string) {
	if n == 0 {
		return lead
	}

	var sb strings.Builder
	for i := range len(lead) {
		if lead[i] == commentMarker && n > 0 {
			n--

			continue
		}

		sb.WriteByte(lead[i])
	}

	return sb.String()
}

// hasSpace returns true if s contains a space or a tab.
func hasSpace(s string) (ok bool) {
	return strings.ContainsAny(s, " \t")
}

// isEmpty returns true if s is empty.
func isEmpty(s string) (ok bool) {
	return s == ""
}

// has returns true if c has the value v.
func (c *Condition) has(v string) (ok bool) {
	return slices.Contains(c.values, v)
}

// ownMarkers returns the number of comment markers c gets on its own.
func (c *Condition) ownMarkers() (n int) {
	switch {
	case c.commented:
		return c.origOwn
	case c.suppressed:
		return 1
	default:
		return 0
	}
}

// format returns the text of c with outer markers of the disabled rule and own
// markers of the line.  The rule markers go first, the own ones stay where
// they were in the source.
func (c *Condition) format(outer, own int) (line string) {
	if !c.modified && outer == c.origOuter && own == c.origOwn {
		return c.orig
	}

	var sb strings.Builder
	for range outer {
		sb.WriteByte(commentMarker)
	}

	if own == c.origOwn {
		sb.WriteString(c.lead)
	} else {
		for range own {
			sb.WriteByte(commentMarker)
		}

		sb.WriteString(c.indent)
	}

	if c.modified {
		c.writeBody(&sb)
	} else {
		sb.WriteString(c.body)
	}

	return sb.String()
}

// writeBody writes the regenerated body of c into sb.
func (c *Condition) writeBody(sb *strings.Builder) {
	sb.WriteString(c.keyword)
	if c.operator != "" {
		sb.WriteByte(' ')
		sb.WriteString(c.operator)
	}

	if len(c.values) == 0 && c.quoted {
		sb.WriteString(` ""`)
	}

	for _, v := range c.values {
		sb.WriteByte(' ')
		if c.quoted {
			sb.WriteByte('"')
			sb.WriteString(v)
			sb.WriteByte('"')
		} else {
			sb.WriteString(v)
		}
	}

	if c.comment != "" {
		sb.WriteByte(' ')
		sb.WriteString(c.comment)
	}
}
