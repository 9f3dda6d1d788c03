package rules

import "fmt"

// Polarity is the directive of a rule: whether matching items are shown or
// hidden.  Whether the rule is active at all is a separate axis, see
// [Rule.Enabled].
type Polarity uint8

// Polarity values.
const (
	PolarityShow Polarity = iota
	PolarityHide
)

// String implements the fmt.Stringer interface for Polarity.
func (p Polarity) String() (s string) {
	switch p {
	case PolarityShow:
		return "Show"
	case PolarityHide:
		return "Hide"
	default:
		return fmt.Sprintf("Polarity(%d)", uint8(p))
	}
}

// parsePolarity returns the polarity for the directive keyword, which must be
// either "Show" or "Hide".
func parsePolarity(kw string) (p Polarity) {
	if kw == "Hide" {
		return PolarityHide
	}

	return PolarityShow
}

// Visibility is a target state for [Rule.SetVisibility].
type Visibility uint8

// Visibility values.
const (
	// VisibilityShow enables the rule and makes it a Show rule.
	VisibilityShow Visibility = iota
	// VisibilityHide enables the rule and makes it a Hide rule.
	VisibilityHide
	// VisibilityDisabled comments the rule out keeping its polarity.
	VisibilityDisabled
)

// String implements the fmt.Stringer interface for Visibility.
func (v Visibility) String() (s string) {
	switch v {
	case VisibilityShow:
		return "show"
	case VisibilityHide:
		return "hide"
	case VisibilityDisabled:
		return "disable"
	default:
		return fmt.Sprintf("Visibility(%d)", uint8(v))
	}
}

// ParseVisibility parses a visibility name as returned by
// [Visibility.String].
func ParseVisibility(s string) (v Visibility, err error) {
	switch s {
	case "show":
		return VisibilityShow, nil
	case "hide":
		return VisibilityHide, nil
	case "disable":
		return VisibilityDisabled, nil
	default:
		return 0, fmt.Errorf("unknown visibility %q", s)
	}
}

// Polarity returns the directive of the rule.
func (r *Rule) Polarity() (p Polarity) {
	return r.polarity
}

// Enabled returns true if the rule is not commented out.
func (r *Rule) Enabled() (ok bool) {
	return !r.disabled
}

// Enable uncomments the rule.  A rule with an empty BaseType list stays
// disabled.
func (r *Rule) Enable() {
	if !r.disabled {
		return
	}

	if r.hasEmptyBaseType() {
		r.logger.Info("not enabling rule with empty basetype list", "rule", r)

		return
	}

	r.disabled = false
	r.regenerate()
}

// Disable comments out every line of the rule keeping its polarity.
func (r *Rule) Disable() {
	if r.disabled {
		return
	}

	r.disabled = true
	r.regenerate()
}

// Show enables the rule and makes it a Show rule.
func (r *Rule) Show() {
	r.setPolarity(PolarityShow)
}

// Hide enables the rule and makes it a Hide rule.
func (r *Rule) Hide() {
	r.setPolarity(PolarityHide)
}

// setPolarity enables the rule and sets its directive to p.  Making a rule a
// Hide rule also comments out its sound, beam, and minimap icon lines, and
// making it a Show rule restores them.
func (r *Rule) setPolarity(p Polarity) {
	r.Enable()

	changed := r.polarity != p
	r.polarity = p
	if r.suppressEffects() || changed {
		r.regenerate()
	}
}

// suppressEffects comments out the effect lines of a Hide rule and restores
// the ones of a Show rule.  Lines commented out on their own are left as is.
// It returns true if any line has changed.
func (r *Rule) suppressEffects() (changed bool) {
	suppress := r.polarity == PolarityHide
	for _, c := range r.conditions {
		if hideSuppressedKeywords.Has(c.keyword) && c.suppressed != suppress {
			c.suppressed = suppress
			changed = true
		}
	}

	return changed
}

// SetVisibility brings the rule to the state v.
func (r *Rule) SetVisibility(v Visibility) {
	switch v {
	case VisibilityShow:
		r.Show()
	case VisibilityHide:
		r.Hide()
	case VisibilityDisabled:
		r.Disable()
	default:
		r.logger.Warn("unexpected visibility", "visibility", v, "rule", r)
	}
}
