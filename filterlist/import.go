package filterlist

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/lootkeeper/lootfilter/rules"
)

// GeneratedHeaderMarker is the text of the header block the import pipeline
// puts at the top of the filter.  Its presence marks the filter as imported.
const GeneratedHeaderMarker = "# Processed by lootfilter"

// TypeManage is the type tag of the management rules.
const TypeManage = "lootfilter_manage"

// Tiers of the management rules.
const (
	TierShowBaseTypes     = "show_basetypes"
	TierHideBaseTypes     = "hide_basetypes"
	TierHideMapsBelowTier = "hide_maps_below_tier"
)

// managementRules are the rules the management commands operate on.  The
// BaseType lists are empty so the rules start disabled.
const managementRules = `# Items shown with the show command.
Show # $type->` + TypeManage + ` $tier->` + TierShowBaseTypes + `
	BaseType == ""
	SetFontSize 45
	SetBorderColor 255 255 255 255
	PlayEffect White

# Items hidden with the hide command.
Hide # $type->` + TypeManage + ` $tier->` + TierHideBaseTypes + `
	BaseType == ""

# Maps below the tier set with the map tier command.
#Hide # $type->` + TypeManage + ` $tier->` + TierHideMapsBelowTier + `
#	Class == "Maps"
#	MapTier < 1
`

// StackedVariant describes a rule tier that duplicates the BaseType list of
// another tier for stacks of items.
type StackedVariant struct {
	// Type is the type tag of the stacked rules.
	Type string

	// SourceType is the type tag of the rules whose BaseType lists are
	// copied, tier by tier.
	SourceType string

	// MinStackSize is the StackSize threshold set on the stacked rules.  Zero
	// means the threshold is left as is.
	MinStackSize int
}

// DefaultStackedVariants are the stacked currency tiers of the filters
// generated by FilterBlade.
var DefaultStackedVariants = []StackedVariant{{
	Type:         "currency->stackedthree",
	SourceType:   "currency",
	MinStackSize: 3,
}, {
	Type:         "currency->stackedsix",
	SourceType:   "currency",
	MinStackSize: 6,
}}

// ImportConfig is the configuration of the import pipeline.
type ImportConfig struct {
	// CustomRules is the text of the user rules inserted along with the
	// management rules.  It may be empty.
	CustomRules string

	// StackedVariants are the stacked tiers to normalize.
	StackedVariants []StackedVariant

	// ManagementRules adds the management rules if true.
	ManagementRules bool
}

// Import applies the one-time structural edits to a freshly obtained filter.
// It is a no-op for a filter that has been imported already.  The generated
// rules are inserted as a whole or not at all.
func (d *Document) Import(c *ImportConfig) (err error) {
	if d.imported {
		d.logger.Info("filter already imported, skipping")

		return nil
	}

	if c == nil {
		c = &ImportConfig{}
	}

	hdr, err := d.insertHeader()
	if err != nil {
		return fmt.Errorf("importing: %w", err)
	}

	keys, err := d.InsertBlocks(generatedBatch(c))
	if err != nil {
		d.blocks.Delete(hdr)

		return fmt.Errorf("importing: %w", err)
	}

	err = d.normalizeStacked(c.StackedVariants)
	if err != nil {
		// The edits are soft, the filter is usable without them.
		d.logError("normalizing stacked tiers", err)
	}

	d.imported = true
	d.logger.Info("imported filter", "generated_blocks", len(keys))

	return nil
}

// generatedBatch returns the text of the blocks inserted before the anchor.
func generatedBatch(c *ImportConfig) (text string) {
	var sb strings.Builder
	if c.CustomRules != "" {
		sb.WriteString(c.CustomRules)
		sb.WriteString("\n\n")
	}

	if c.ManagementRules {
		sb.WriteString(managementRules)
	}

	return sb.String()
}

// insertHeader puts the generated header block at the top of the filter.
func (d *Document) insertHeader() (k Key, err error) {
	k = Key{Type: TypeTextBlock, Tier: strconv.Itoa(d.textCount)}
	hdr := NewTextBlock([]string{
		GeneratedHeaderMarker + ".",
		"# Edit the filter with the lootfilter tool, manual changes may be lost.",
	})

	err = d.blocks.InsertAt(k, hdr, 0)
	if err != nil {
		return Key{}, fmt.Errorf("inserting header: %w", err)
	}

	d.textCount++

	return k, nil
}

// normalizeStacked makes the BaseType lists of the stacked tiers equal to the
// lists of the corresponding source tiers, enables them, and sets their
// StackSize thresholds.  It returns the joined errors of the tiers it couldn't
// process.
func (d *Document) normalizeStacked(variants []StackedVariant) (err error) {
	var errs []error
	for _, v := range variants {
		d.Rules(func(r *rules.Rule) (cont bool) {
			if r.TypeTag() != v.Type {
				return true
			}

			nerr := d.normalizeStackedRule(r, v)
			if nerr != nil {
				errs = append(errs, fmt.Errorf("%s: %w", r, nerr))
			}

			return true
		})
	}

	return errors.Join(errs...)
}

// normalizeStackedRule processes a single stacked rule.
func (d *Document) normalizeStackedRule(r *rules.Rule, v StackedVariant) (err error) {
	src, err := d.GetRule(v.SourceType, r.TierTag())
	if err != nil {
		return err
	}

	names, ok := src.BaseTypes()
	if !ok {
		return fmt.Errorf("source rule %s: %w", src, errNoBaseType)
	}

	if _, ok = r.BaseTypes(); ok {
		r.ClearBaseTypeList()
	}

	for _, name := range names {
		r.AddBaseType(name)
	}

	r.Enable()

	if v.MinStackSize > 0 && r.Condition(rules.KeywordStackSize) != nil {
		r.ModifyLine(rules.KeywordStackSize, rules.OpGreaterEq, strconv.Itoa(v.MinStackSize))
	}

	return nil
}

// errNoBaseType is returned when a rule has no BaseType line.
const errNoBaseType errors.Error = "no basetype line"
