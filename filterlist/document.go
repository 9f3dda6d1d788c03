// Package filterlist implements the loot filter document: an ordered,
// key-addressable sequence of rule and text blocks that is parsed from and
// written back to the filter file.
package filterlist

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/AdguardTeam/golibs/container"
	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/lootkeeper/lootfilter/filterutil"
	"github.com/lootkeeper/lootfilter/internal/ordered"
	"github.com/lootkeeper/lootfilter/rules"
)

// DefaultInsertionMarker is the text of the section heading before which the
// generated blocks are inserted.
const DefaultInsertionMarker = "[[0100]]"

// filePerm is the permission of the saved filter file.
const filePerm = 0o644

const (
	// ErrUnknownKey is returned when there is no block with the requested key.
	ErrUnknownKey errors.Error = "no block with such key"

	// ErrNotRule is returned when the requested block is a text block.
	ErrNotRule errors.Error = "block is not a rule"
)

// PreconditionError is returned when the input has no insertion marker, which
// means that it is not a filter of the supported format.
type PreconditionError struct {
	// Marker is the marker that was looked for.
	Marker string
}

// type check
var _ error = (*PreconditionError)(nil)

// Error implements the error interface for *PreconditionError.
func (e *PreconditionError) Error() (msg string) {
	return fmt.Sprintf(
		"insertion marker %q not found: not a recognized filter format",
		e.Marker,
	)
}

// Config is the configuration structure for a [Document].
type Config struct {
	// Logger is used to log the soft failures of the operations.  If nil,
	// nothing is logged.
	Logger *slog.Logger

	// InsertionMarker is the text that marks the text block before which the
	// generated blocks are inserted.  If empty, [DefaultInsertionMarker] is
	// used.  The last text block containing it is used, since the table of
	// contents at the top of the filter mentions it too.
	InsertionMarker string
}

// Document is a parsed loot filter.  It is not safe for concurrent use.
type Document struct {
	logger *slog.Logger
	blocks *ordered.Map[Key, Block]

	// anchor is the key of the text block before which the generated blocks
	// are inserted.
	anchor Key
	marker string

	// newline is the line terminator of the source text.
	newline string

	untaggedCount int
	textCount     int

	imported bool
}

// Parse parses the filter text.  It returns a *rules.SyntaxError if a block
// is a malformed rule and a *PreconditionError if text has no insertion
// marker.
func Parse(text string, c *Config) (d *Document, err error) {
	if c == nil {
		c = &Config{}
	}

	d = &Document{
		logger:  c.Logger,
		marker:  c.InsertionMarker,
		newline: filterutil.DetectNewline(text),
	}

	if d.logger == nil {
		d.logger = slogutil.NewDiscardLogger()
	}

	if d.marker == "" {
		d.marker = DefaultInsertionMarker
	}

	blocks := filterutil.SplitTextBlocks(text)
	d.blocks = ordered.New[Key, Block](len(blocks))

	hasAnchor := false
	keys, err := d.addBlocks(blocks, func(k Key, b Block) (err error) {
		err = d.blocks.Append(k, b)
		if err != nil {
			return err
		}

		if tb, ok := b.(*TextBlock); ok {
			if tb.contains(d.marker) {
				d.anchor, hasAnchor = k, true
			}

			if tb.contains(GeneratedHeaderMarker) {
				d.imported = true
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing filter: %w", err)
	}

	if !hasAnchor {
		return nil, &PreconditionError{Marker: d.marker}
	}

	d.logger.Debug("parsed filter", "blocks", len(keys), "imported", d.imported)

	return d, nil
}

// contains returns true if any line of tb contains s.
func (tb *TextBlock) contains(s string) (ok bool) {
	for _, l := range tb.lines {
		if strings.Contains(l, s) {
			return true
		}
	}

	return false
}

// reUntaggedTier matches the tier tags of the rules which were untagged when
// parsed previously.
var reUntaggedTier = regexp.MustCompile(`\$type->` + TypeUntagged + `\s.*\$tier->(\d+)`)

// addBlocks classifies blocks into rules and text blocks, assigns their keys,
// and passes them to insert in order.  Rules are parsed before anything is
// inserted, so a syntax error leaves the document intact.  If insert fails,
// the blocks inserted by this call are removed.
func (d *Document) addBlocks(
	blocks []filterutil.Block,
	insert func(k Key, b Block) (err error),
) (keys []Key, err error) {
	parsed := make([]Block, 0, len(blocks))
	explicit := container.NewMapSet[Key]()
	for _, b := range blocks {
		if !rules.IsParsableAsRule(b.Lines) {
			parsed = append(parsed, NewTextBlock(b.Lines))

			continue
		}

		var r *rules.Rule
		r, err = rules.NewRule(b.Lines, d.logger)
		if err != nil {
			return nil, errors.Annotate(err, "block at line %d: %w", b.Start+1)
		}

		d.reserveUntagged(r)
		if r.TypeTag() != "" && r.TierTag() != "" {
			explicit.Add(Key{Type: r.TypeTag(), Tier: r.TierTag()})
		}

		parsed = append(parsed, r)
	}

	keys = make([]Key, 0, len(parsed))
	for _, b := range parsed {
		k := d.keyFor(b, explicit)
		err = insert(k, b)
		if err != nil {
			for _, ik := range keys {
				d.blocks.Delete(ik)
			}

			return nil, fmt.Errorf("inserting %s: %w", k, err)
		}

		keys = append(keys, k)
	}

	return keys, nil
}

// reserveUntagged makes sure that the synthesized tiers never collide with the
// ones given to r when the filter was processed before.
func (d *Document) reserveUntagged(r *rules.Rule) {
	if r.TypeTag() != TypeUntagged {
		return
	}

	m := reUntaggedTier.FindStringSubmatch(strings.Join(r.Lines(), "\n"))
	if m == nil {
		return
	}

	if n, err := strconv.Atoi(m[1]); err == nil && n >= d.untaggedCount {
		d.untaggedCount = n + 1
	}
}

// keyFor returns the key for the block.  Text blocks get a sequential key,
// untagged rules get their tags synthesized and written into the Show/Hide
// line.  The synthesized keys never collide with the ones in the document or
// in explicit, the keys the blocks being added carry themselves.
func (d *Document) keyFor(b Block, explicit *container.MapSet[Key]) (k Key) {
	r, ok := b.(*rules.Rule)
	if !ok {
		k = Key{Type: TypeTextBlock, Tier: strconv.Itoa(d.textCount)}
		d.textCount++

		return k
	}

	if r.TypeTag() != "" && r.TierTag() != "" {
		return Key{Type: r.TypeTag(), Tier: r.TierTag()}
	}

	typeTag := r.TypeTag()
	if typeTag == "" {
		typeTag = TypeUntagged
	}

	for {
		k = Key{Type: typeTag, Tier: strconv.Itoa(d.untaggedCount)}
		d.untaggedCount++
		if !d.blocks.Has(k) && !explicit.Has(k) {
			break
		}
	}

	d.logger.Debug("synthesized rule tags", "key", k)
	r.SetTags(k.Type, k.Tier)

	return k
}

// Len returns the number of blocks.
func (d *Document) Len() (n int) {
	return d.blocks.Len()
}

// Imported returns true if the import pipeline has been applied to the
// document, either now or when the filter was processed before.
func (d *Document) Imported() (ok bool) {
	return d.imported
}

// AnchorKey returns the key of the text block before which generated blocks
// are inserted.
func (d *Document) AnchorKey() (k Key) {
	return d.anchor
}

// Get returns the block with the key.
func (d *Document) Get(k Key) (b Block, err error) {
	b, ok := d.blocks.Get(k)
	if !ok {
		return nil, fmt.Errorf("%s: %w", k, ErrUnknownKey)
	}

	return b, nil
}

// GetRule returns the rule with the given tags.
func (d *Document) GetRule(typeTag, tierTag string) (r *rules.Rule, err error) {
	b, err := d.Get(Key{Type: typeTag, Tier: tierTag})
	if err != nil {
		return nil, err
	}

	r, ok := b.(*rules.Rule)
	if !ok {
		return nil, fmt.Errorf("%s: %w", Key{Type: typeTag, Tier: tierTag}, ErrNotRule)
	}

	return r, nil
}

// InsertBlocks parses text the same way the filter itself is parsed and
// inserts the resulting blocks before the insertion anchor, so that they are
// indistinguishable from the parsed ones.  Either all blocks are inserted or
// none.
func (d *Document) InsertBlocks(text string) (keys []Key, err error) {
	blocks := filterutil.SplitTextBlocks(text)

	keys, err = d.addBlocks(blocks, func(k Key, b Block) (err error) {
		return d.blocks.InsertBefore(k, b, d.anchor)
	})
	if err != nil {
		return nil, fmt.Errorf("inserting blocks: %w", err)
	}

	d.logger.Debug("inserted blocks", "count", len(keys))

	return keys, nil
}

// RemoveRule removes the rule with the given tags.
func (d *Document) RemoveRule(typeTag, tierTag string) (err error) {
	_, err = d.GetRule(typeTag, tierTag)
	if err != nil {
		return fmt.Errorf("removing rule: %w", err)
	}

	d.blocks.Delete(Key{Type: typeTag, Tier: tierTag})

	return nil
}

// Range calls f for each block in file order until f returns false.
func (d *Document) Range(f func(k Key, b Block) (cont bool)) {
	d.blocks.Range(f)
}

// Rules calls f for each rule in file order until f returns false.
func (d *Document) Rules(f func(r *rules.Rule) (cont bool)) {
	d.blocks.Range(func(_ Key, b Block) (cont bool) {
		r, ok := b.(*rules.Rule)
		if !ok {
			return true
		}

		return f(r)
	})
}

// Serialize returns the current text of the document.  The blocks are
// separated by exactly one blank line and the line terminators of the source
// are kept.
func (d *Document) Serialize() (text string) {
	blocks := make([][]string, 0, d.blocks.Len())
	d.blocks.Range(func(_ Key, b Block) (cont bool) {
		blocks = append(blocks, b.Lines())

		return true
	})

	return filterutil.JoinBlocks(blocks, d.newline)
}

// type check
var _ io.WriterTo = (*Document)(nil)

// WriteTo implements the [io.WriterTo] interface for *Document.
func (d *Document) WriteTo(w io.Writer) (n int64, err error) {
	written, err := io.WriteString(w, d.Serialize())

	return int64(written), err
}

// SaveToFile writes the document to path replacing the file as a whole.
func (d *Document) SaveToFile(path string) (err error) {
	err = filterutil.WriteFile(path, d.Serialize(), filePerm)
	if err != nil {
		return fmt.Errorf("saving filter: %w", err)
	}

	d.logger.Info("saved filter", "path", path, "blocks", d.blocks.Len())

	return nil
}

// logError is a helper for logging the soft failures.
func (d *Document) logError(msg string, err error, args ...any) {
	d.logger.Info(msg, append(args, slogutil.KeyError, err)...)
}
