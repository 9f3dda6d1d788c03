package rules

import (
	"strconv"
	"strings"
)

// ItemDivider is the line that separates the sections of a copied item
// description.
const ItemDivider = "--------"

// Item property keys that are not taken from the item text verbatim.
const (
	ItemKeyBaseType      = "BaseType"
	ItemKeyClass         = "Item Class"
	ItemKeyName          = "Name"
	ItemKeyIdentified    = "Identified"
	ItemKeySocketCount   = "Socket Count"
	ItemKeyLinkedSockets = "Linked Sockets"

	// RequiredPrefix is prepended to the keys of the requirements section.
	RequiredPrefix = "Required "
)

// itemFlags are the flag lines of an item description.  A flag is set if its
// line appears on its own.
var itemFlags = []string{
	"Corrupted",
	"Mirrored",
	"Unidentified",
	"Split",
	"Fractured Item",
	"Synthesised Item",
	"Shaper Item",
	"Elder Item",
	"Crusader Item",
	"Redeemer Item",
	"Hunter Item",
	"Warlord Item",
	"Searing Exarch Item",
	"Eater of Worlds Item",
}

// influences are the influence names as used by the HasInfluence condition.
// The item flag of each is the name followed by " Item".
var influences = []string{
	"Shaper",
	"Elder",
	"Crusader",
	"Redeemer",
	"Hunter",
	"Warlord",
}

// leadingNumberKeys are the properties whose values start with a number
// followed by decorations, for example "+20% (augmented)" or "3/40".
var leadingNumberKeys = []string{
	"Quality",
	"Stack Size",
	"Map Tier",
	"Item Level",
	"Level",
}

// Value is a property value of an item.
type Value struct {
	// Text is the value as it was in the item description.
	Text string

	// Number is the integer value, if IsNumber is true.
	Number int

	// IsNumber is true if the value is an integer.
	IsNumber bool
}

// Item is an item parsed from the text the game copies to the clipboard.
// Item is immutable after parsing.
//
// NOTE: The base type of a magic item can't be reliably told apart from its
// affixes without a catalog of base types, so for identified magic items
// BaseType is the whole name line.
type Item struct {
	props map[string]Value
	flags map[string]bool

	// Name is the display name of the item, if it has one.
	Name string

	// BaseType is the base type of the item.
	BaseType string
}

// NewItem parses the copied item description.
func NewItem(text string) (it *Item) {
	it = &Item{
		props: map[string]Value{},
		flags: make(map[string]bool, len(itemFlags)+1),
	}
	for _, f := range itemFlags {
		it.flags[f] = false
	}

	sections := splitSections(text)
	if len(sections) == 0 {
		it.flags[ItemKeyIdentified] = true

		return it
	}

	it.parseHeader(sections[0])
	for _, sec := range sections[1:] {
		if len(sec) > 0 && strings.HasPrefix(sec[0], "Requirements:") {
			it.parseRequirements(sec[1:])

			continue
		}

		it.parseSection(sec)
	}

	it.flags[ItemKeyIdentified] = !it.flags["Unidentified"]
	it.fixBaseType()

	it.props[ItemKeyBaseType] = Value{Text: it.BaseType}
	if it.Name != "" {
		it.props[ItemKeyName] = Value{Text: it.Name}
	}

	it.deriveSockets()

	return it
}

// splitSections returns the trimmed non-empty lines of text grouped by the
// divider lines.
func splitSections(text string) (sections [][]string) {
	var cur []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(l)
		switch {
		case l == "":
			continue
		case l == ItemDivider:
			if len(cur) > 0 {
				sections = append(sections, cur)
			}

			cur = nil
		default:
			cur = append(cur, l)
		}
	}

	if len(cur) > 0 {
		sections = append(sections, cur)
	}

	return sections
}

// parseHeader parses the first section: the item class and rarity properties
// followed by the name lines.
func (it *Item) parseHeader(sec []string) {
	var names []string
	for _, l := range sec {
		if !it.parseProperty(l, "") {
			names = append(names, l)
		}
	}

	switch len(names) {
	case 0:
		// Go on.
	case 1:
		it.BaseType = names[0]
	default:
		it.Name = names[0]
		it.BaseType = names[len(names)-1]
	}
}

// parseRequirements parses the lines of the requirements section.
func (it *Item) parseRequirements(lines []string) {
	for _, l := range lines {
		it.parseProperty(l, RequiredPrefix)
	}
}

// parseSection parses a section that is neither the header nor the
// requirements.
func (it *Item) parseSection(sec []string) {
	for _, l := range sec {
		if _, ok := it.flags[l]; ok {
			it.flags[l] = true

			continue
		}

		it.parseProperty(l, "")
	}
}

// parseProperty parses a "KEY: VALUE" line into the property map adding
// prefix to the key.  ok is false if l is not a property line.
func (it *Item) parseProperty(l, prefix string) (ok bool) {
	key, val, ok := strings.Cut(l, ": ")
	if !ok || key == "" || val == "" {
		return false
	}

	key = prefix + key
	if _, exists := it.props[key]; exists {
		// The first occurrence wins, the later ones are usually mod text.
		return true
	}

	it.props[key] = parseValue(key, val)

	return true
}

// parseValue converts the text of a property into a value.
func parseValue(key, text string) (v Value) {
	v = Value{Text: text}
	if n, err := strconv.Atoi(text); err == nil {
		v.Number, v.IsNumber = n, true

		return v
	}

	for _, k := range leadingNumberKeys {
		if key == k || key == RequiredPrefix+k {
			v.Number, v.IsNumber = leadingNumber(text)

			break
		}
	}

	return v
}

// leadingNumber parses the number at the start of s skipping a plus sign and
// thousands separators.
func leadingNumber(s string) (n int, ok bool) {
	s = strings.TrimPrefix(s, "+")

	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= '0' && c <= '9' {
			sb.WriteByte(c)
		} else if c != ',' {
			break
		}
	}

	n, err := strconv.Atoi(sb.String())

	return n, err == nil
}

// fixBaseType strips the "Superior " prefix the game shows for unidentified
// items with quality.
func (it *Item) fixBaseType() {
	const superior = "Superior "

	q, _ := it.Int("Quality")
	if it.flags["Unidentified"] && q > 0 && strings.HasPrefix(it.BaseType, superior) {
		it.BaseType = it.BaseType[len(superior):]
	}
}

// deriveSockets computes the socket count and the size of the largest link
// group from a sockets string like "R-G-B W".
func (it *Item) deriveSockets() {
	v, ok := it.props["Sockets"]
	if !ok {
		return
	}

	count, linked := 0, 0
	for _, group := range strings.Fields(v.Text) {
		n := len(strings.Split(group, "-"))
		count += n
		linked = max(linked, n)
	}

	it.props[ItemKeySocketCount] = Value{Text: strconv.Itoa(count), Number: count, IsNumber: true}
	it.props[ItemKeyLinkedSockets] = Value{Text: strconv.Itoa(linked), Number: linked, IsNumber: true}
}

// Prop returns the property by its key.
func (it *Item) Prop(key string) (v Value, ok bool) {
	v, ok = it.props[key]

	return v, ok
}

// Int returns the integer value of the property.  ok is false if there is no
// such property or it is not a number.
func (it *Item) Int(key string) (n int, ok bool) {
	v, ok := it.props[key]
	if !ok || !v.IsNumber {
		return 0, false
	}

	return v.Number, true
}

// Text returns the text of the property.
func (it *Item) Text(key string) (s string, ok bool) {
	v, ok := it.props[key]

	return v.Text, ok
}

// Flag returns the value of a flag and whether the flag is known.  Known
// flags are false unless their line is in the item description.
func (it *Item) Flag(name string) (val, known bool) {
	val, known = it.flags[name]

	return val, known
}

// Identified returns true if the item is identified.
func (it *Item) Identified() (ok bool) {
	return it.flags[ItemKeyIdentified]
}

// Influences returns the names of the influences the item has.
func (it *Item) Influences() (names []string) {
	for _, inf := range influences {
		if it.flags[inf+" Item"] {
			names = append(names, inf)
		}
	}

	return names
}
