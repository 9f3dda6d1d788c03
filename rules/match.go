package rules

import (
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// conditionItemKeys maps the condition keywords to the item properties they
// test.  Keywords not in the map test the property with the same name.
var conditionItemKeys = map[string]string{
	KeywordBaseType:   ItemKeyBaseType,
	KeywordClass:      ItemKeyClass,
	KeywordStackSize:  "Stack Size",
	"ItemLevel":       "Item Level",
	"MapTier":         "Map Tier",
	"GemLevel":        "Level",
	"Quality":         "Quality",
	"Sockets":         ItemKeySocketCount,
	"LinkedSockets":   ItemKeyLinkedSockets,
	"Corrupted":       "Corrupted",
	"Mirrored":        "Mirrored",
	"Identified":      ItemKeyIdentified,
	"FracturedItem":   "Fractured Item",
	"SynthesisedItem": "Synthesised Item",
	"ShaperItem":      "Shaper Item",
	"ElderItem":       "Elder Item",
}

// rarities are the item rarities in ascending order.
var rarities = []string{"Normal", "Magic", "Rare", "Unique"}

// influenceNone is the HasInfluence value that requires no influence at all.
const influenceNone = "None"

// Match returns true if every matching condition of the rule holds for the
// item.  Styling lines and lines commented out on their own are skipped,
// enablement of the rule itself is not checked.
//
// Conditions on properties the item doesn't carry never hold.  In particular,
// AreaLevel depends on where the item dropped, so rules with it never match.
func (r *Rule) Match(it *Item) (ok bool) {
	for _, c := range r.conditions {
		if c.opaque || c.commented || actionKeywords.Has(c.keyword) {
			continue
		}

		if !matchCondition(c, it) {
			return false
		}
	}

	return true
}

// matchCondition returns true if the single condition holds for the item.
func matchCondition(c *Condition, it *Item) (ok bool) {
	switch c.keyword {
	case KeywordHasInfluence:
		return matchInfluence(c, it)
	case KeywordRarity:
		return matchRarity(c, it)
	}

	key, ok := conditionItemKeys[c.keyword]
	if !ok {
		key = c.keyword
	}

	if flag, known := it.Flag(key); known {
		return matchFlag(c, flag)
	}

	v, ok := it.Prop(key)
	if !ok {
		return false
	}

	if v.IsNumber {
		return matchNumber(c, v.Number)
	} else if isOrdering(c.operator) {
		return false
	}

	return matchString(c, v.Text)
}

// isOrdering returns true if op is one of the ordering comparisons.
func isOrdering(op string) (ok bool) {
	switch op {
	case OpLess, OpLessEq, OpGreater, OpGreaterEq:
		return true
	default:
		return false
	}
}

// isNegation returns true if op negates the condition.
func isNegation(op string) (ok bool) {
	return op == OpNotEqual || op == OpNot
}

// matchNumber matches an integer property.  Ordering comparisons use the first
// value, equality holds if any value is equal.
func matchNumber(c *Condition, n int) (ok bool) {
	if len(c.values) == 0 {
		return false
	}

	if isOrdering(c.operator) {
		want, err := strconv.Atoi(c.values[0])
		if err != nil {
			return false
		}

		return compareInts(c.operator, n, want)
	}

	found := slices.ContainsFunc(c.values, func(s string) (eq bool) {
		want, err := strconv.Atoi(s)

		return err == nil && want == n
	})

	return found != isNegation(c.operator)
}

// compareInts applies the ordering operator op to a and b.
func compareInts(op string, a, b int) (ok bool) {
	switch op {
	case OpLess:
		return a < b
	case OpLessEq:
		return a <= b
	case OpGreater:
		return a > b
	case OpGreaterEq:
		return a >= b
	default:
		return false
	}
}

// matchString matches a text property.  With the exact operator the property
// must be equal to one of the values, otherwise it must contain one of them.
// The comparison is case-insensitive.
func matchString(c *Condition, s string) (ok bool) {
	fold := cases.Fold()
	s = fold.String(s)

	exact := c.operator == OpExactEqual || c.operator == OpNotEqual
	found := slices.ContainsFunc(c.values, func(v string) (eq bool) {
		v = fold.String(v)
		if exact {
			return s == v
		}

		return strings.Contains(s, v)
	})

	return found != isNegation(c.operator)
}

// matchFlag matches a boolean property.  The value is either True or False.
func matchFlag(c *Condition, flag bool) (ok bool) {
	if len(c.values) == 0 {
		return false
	}

	want, err := strconv.ParseBool(strings.ToLower(c.values[0]))
	if err != nil {
		return false
	}

	return (flag == want) != isNegation(c.operator)
}

// matchRarity matches the rarity of the item.  Ordering comparisons use the
// Normal < Magic < Rare < Unique order.
func matchRarity(c *Condition, it *Item) (ok bool) {
	r, ok := it.Text("Rarity")
	if !ok {
		return false
	}

	if !isOrdering(c.operator) {
		exact := *c
		if exact.operator == "" || exact.operator == OpEqual {
			exact.operator = OpExactEqual
		}

		return matchString(&exact, r)
	}

	have := slices.Index(rarities, r)
	if have < 0 || len(c.values) == 0 {
		return false
	}

	want := slices.Index(rarities, c.values[0])
	if want < 0 {
		return false
	}

	return compareInts(c.operator, have, want)
}

// matchInfluence matches the influences of the item.  The item must have one
// of the listed influences, or none at all if the value is None.
func matchInfluence(c *Condition, it *Item) (ok bool) {
	have := it.Influences()

	var found bool
	if slices.Contains(c.values, influenceNone) {
		found = len(have) == 0
	} else {
		found = slices.ContainsFunc(have, func(inf string) (eq bool) {
			return slices.Contains(c.values, inf)
		})
	}

	return found != isNegation(c.operator)
}
