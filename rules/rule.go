// Package rules contains the loot filter rule model: parsing of a single rule
// block into conditions, its visibility state, the mutations the filter
// manager applies to it, and matching of items against it.
package rules

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
)

// ErrNoDirective is returned when a block has no Show or Hide line.
const ErrNoDirective errors.Error = "no show or hide line"

// SyntaxError represents an error while parsing a rule block.
type SyntaxError struct {
	// Msg describes the problem.
	Msg string

	// Line is the text of the offending line.
	Line string

	// LineIdx is the zero-based index of the line within the block.
	LineIdx int
}

// type check
var _ error = (*SyntaxError)(nil)

// Error implements the error interface for *SyntaxError.
func (e *SyntaxError) Error() (msg string) {
	return fmt.Sprintf("syntax error: %s, line %d: %q", e.Msg, e.LineIdx, e.Line)
}

var (
	// reDirective matches the Show/Hide line.  The groups are the indent, the
	// optional comment marker, the keyword, and the tail.
	reDirective = regexp.MustCompile(`^([ \t]*)(#?)(Show|Hide)\b(.*)$`)

	reTypeTag = regexp.MustCompile(`\$type->(\S+)`)
	reTierTag = regexp.MustCompile(`\$tier->(\S+)`)
)

// Rule is a single Show/Hide block of a loot filter.  Its text is kept in sync
// with the model: every mutating method regenerates the text lines, while an
// unmodified rule reproduces its source text exactly.
type Rule struct {
	logger *slog.Logger

	header     []string
	conditions []*Condition

	// lines is the current text of the whole block.
	lines []string

	indent string
	// tail is the text after the Show/Hide keyword.
	tail string

	typeTag string
	tierTag string

	polarity Polarity
	disabled bool
}

// IsParsableAsRule returns true if one of lines is a Show or Hide line,
// possibly commented out.
func IsParsableAsRule(lines []string) (ok bool) {
	return directiveIndex(lines) >= 0
}

// directiveIndex returns the index of the first Show/Hide line or -1.
func directiveIndex(lines []string) (idx int) {
	for i, l := range lines {
		if reDirective.MatchString(l) {
			return i
		}
	}

	return -1
}

// NewRule parses the rule from the non-blank lines of a block.  All lines
// before the Show/Hide line must be comments.  If logger is nil, nothing is
// logged.
func NewRule(lines []string, logger *slog.Logger) (r *Rule, err error) {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}

	di := directiveIndex(lines)
	if di < 0 {
		return nil, ErrNoDirective
	}

	for i, l := range lines[:di] {
		if !isComment(l) {
			return nil, &SyntaxError{
				Msg:     "non-comment line before the show or hide line",
				Line:    l,
				LineIdx: i,
			}
		}
	}

	m := reDirective.FindStringSubmatch(lines[di])
	r = &Rule{
		logger:   logger,
		header:   lines[:di:di],
		lines:    lines,
		indent:   m[1],
		disabled: m[2] != "",
		polarity: parsePolarity(m[3]),
		tail:     m[4],
	}
	r.typeTag, r.tierTag = parseTags(r.tail)

	outer := 0
	if r.disabled {
		outer = 1
	}

	body := lines[di+1:]
	r.conditions = make([]*Condition, 0, len(body))
	for _, l := range body {
		r.conditions = append(r.conditions, parseCondition(l, outer, r.polarity == PolarityHide))
	}

	if !r.disabled && r.hasEmptyBaseType() {
		r.logger.Debug("disabling rule with empty basetype list", "type", r.typeTag, "tier", r.tierTag)
		r.disabled = true
		r.regenerate()
	}

	return r, nil
}

// parseTags returns the type and the tier tags found in the tail of the
// Show/Hide line.
func parseTags(tail string) (typeTag, tierTag string) {
	if m := reTypeTag.FindStringSubmatch(tail); m != nil {
		typeTag = m[1]
	}

	if m := reTierTag.FindStringSubmatch(tail); m != nil {
		tierTag = m[1]
	}

	return typeTag, tierTag
}

// TypeTag returns the $type-> tag of the rule or an empty string.
func (r *Rule) TypeTag() (tag string) {
	return r.typeTag
}

// TierTag returns the $tier-> tag of the rule or an empty string.
func (r *Rule) TierTag() (tag string) {
	return r.tierTag
}

// SetTags sets the type and the tier tags of the rule, rewriting the Show/Hide
// line.
func (r *Rule) SetTags(typeTag, tierTag string) {
	tail := r.tail
	tail = setTag(tail, reTypeTag, "$type->"+typeTag)
	tail = setTag(tail, reTierTag, "$tier->"+tierTag)

	r.tail, r.typeTag, r.tierTag = tail, typeTag, tierTag
	r.UpdateRuleTextLines()
}

// setTag replaces the tag matching re in tail with tag or appends tag to the
// comment of tail.
func setTag(tail string, re *regexp.Regexp, tag string) (res string) {
	if re.MatchString(tail) {
		return re.ReplaceAllLiteralString(tail, tag)
	}

	if strings.IndexByte(tail, commentMarker) < 0 {
		return tail + " " + string(commentMarker) + " " + tag
	}

	return strings.TrimRight(tail, " \t") + " " + tag
}

// Conditions returns the lines of the rule after the Show/Hide line in order.
// The returned conditions must not be modified.
func (r *Rule) Conditions() (conds []*Condition) {
	return r.conditions
}

// Condition returns the first condition with the keyword or nil.
func (r *Rule) Condition(keyword string) (c *Condition) {
	for _, c = range r.conditions {
		if c.keyword == keyword {
			return c
		}
	}

	return nil
}

// HasContinue returns true if the rule has an active Continue line.
func (r *Rule) HasContinue() (ok bool) {
	c := r.Condition(KeywordContinue)

	return c != nil && !c.commented
}

// Lines returns the current text lines of the rule.  The returned slice must
// not be modified.
func (r *Rule) Lines() (lines []string) {
	return r.lines
}

// Text returns the current text of the rule.
func (r *Rule) Text() (s string) {
	return strings.Join(r.lines, "\n")
}

// String implements the fmt.Stringer interface for *Rule.
func (r *Rule) String() (s string) {
	return fmt.Sprintf("%s $type->%s $tier->%s", r.polarity, r.typeTag, r.tierTag)
}

// UpdateRuleTextLines regenerates the text lines of the rule from its model.
// The effect lines of a Hide rule are commented out and the ones of a Show
// rule are restored.  It also disables a rule with an empty BaseType list,
// since the game client rejects those.
func (r *Rule) UpdateRuleTextLines() {
	r.suppressEffects()
	r.regenerate()
}

// regenerate rebuilds the text lines from the current state of the lines.
// Unlike [Rule.UpdateRuleTextLines], it doesn't change the suppression of the
// effect lines, so enabling and disabling don't alter them.
func (r *Rule) regenerate() {
	if !r.disabled && r.hasEmptyBaseType() {
		r.logger.Debug("disabling rule with empty basetype list", "rule", r)
		r.disabled = true
	}

	outer := 0
	if r.disabled {
		outer = 1
	}

	lines := make([]string, 0, len(r.header)+1+len(r.conditions))
	lines = append(lines, r.header...)
	lines = append(lines, r.directiveLine())
	for _, c := range r.conditions {
		lines = append(lines, c.format(outer, c.ownMarkers()))
	}

	r.lines = lines
}

// directiveLine returns the current Show/Hide line.
func (r *Rule) directiveLine() (line string) {
	marker := ""
	if r.disabled {
		marker = string(commentMarker)
	}

	return r.indent + marker + r.polarity.String() + r.tail
}

// hasEmptyBaseType returns true if the rule has a BaseType line with no
// values.
func (r *Rule) hasEmptyBaseType() (ok bool) {
	c := r.Condition(KeywordBaseType)

	return c != nil && len(c.values) == 0
}
