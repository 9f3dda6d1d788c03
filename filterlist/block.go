package filterlist

import (
	"github.com/lootkeeper/lootfilter/rules"
)

// Reserved type tags of the synthesized keys.
const (
	// TypeTextBlock is the type of the keys of text blocks.  Their tiers are
	// sequential numbers.
	TypeTextBlock = "text_block"

	// TypeUntagged is the type tag given to rules that have none.  Their
	// tiers are sequential numbers.
	TypeUntagged = "untagged"
)

// Key is the key of a block in a document: the type and the tier tags of a
// rule, or a synthesized pair for a text block.
type Key struct {
	Type string
	Tier string
}

// String implements the fmt.Stringer interface for Key.
func (k Key) String() (s string) {
	return "$type->" + k.Type + " $tier->" + k.Tier
}

// Block is an entry of a document, either a [*rules.Rule] or a [*TextBlock].
type Block interface {
	// Lines returns the current text lines of the block.
	Lines() (lines []string)
}

// type check
var (
	_ Block = (*rules.Rule)(nil)
	_ Block = (*TextBlock)(nil)
)

// TextBlock is a block that is not a rule: headers, comments, and the table of
// contents.  It is written back verbatim.
type TextBlock struct {
	lines []string
}

// NewTextBlock returns a new text block with the given lines.
func NewTextBlock(lines []string) (tb *TextBlock) {
	return &TextBlock{lines: lines}
}

// Lines implements the [Block] interface for *TextBlock.
func (tb *TextBlock) Lines() (lines []string) {
	return tb.lines
}
