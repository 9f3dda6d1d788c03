package rules

import (
	"slices"
)

// BaseTypes returns a copy of the BaseType list of the rule.  ok is false if
// the rule has no BaseType line.
func (r *Rule) BaseTypes() (names []string, ok bool) {
	c := r.Condition(KeywordBaseType)
	if c == nil {
		return nil, false
	}

	return c.Values(), true
}

// AddBaseType adds name to the BaseType list of the rule, creating an empty
// list first if there is none.  It never enables the rule.  added is false if
// name is already in the list.
func (r *Rule) AddBaseType(name string) (added bool) {
	c := r.Condition(KeywordBaseType)
	if c == nil {
		c = newCondition(KeywordBaseType, OpExactEqual, nil)
		r.insertCondition(c)
	} else if c.has(name) {
		r.logger.Debug("basetype already present", "basetype", name, "rule", r)

		return false
	}

	c.set(c.operator, append(c.Values(), name))
	r.UpdateRuleTextLines()

	return true
}

// RemoveBaseType removes name from the BaseType list of the rule.  If the list
// becomes empty, the rule is disabled.  removed is false if there was nothing
// to remove.
func (r *Rule) RemoveBaseType(name string) (removed bool) {
	c := r.Condition(KeywordBaseType)
	if c == nil {
		r.logger.Info("rule has no basetype list", "basetype", name, "rule", r)

		return false
	}

	i := slices.Index(c.values, name)
	if i < 0 {
		r.logger.Info("basetype not found in rule", "basetype", name, "rule", r)

		return false
	}

	c.set(c.operator, slices.Delete(c.Values(), i, i+1))
	if len(c.values) == 0 {
		r.Disable()
	}

	r.UpdateRuleTextLines()

	return true
}

// ClearBaseTypeList removes all names from the BaseType list of the rule,
// thus disabling it.
func (r *Rule) ClearBaseTypeList() {
	names, _ := r.BaseTypes()
	for _, name := range names {
		r.RemoveBaseType(name)
	}
}

// ModifyLine replaces the operator and the values of the first line with the
// keyword.  ok is false if the rule has no such line.
func (r *Rule) ModifyLine(keyword, op string, values ...string) (ok bool) {
	c := r.Condition(keyword)
	if c == nil {
		r.logger.Info("line not found in rule", "keyword", keyword, "rule", r)

		return false
	}

	c.set(op, slices.Clone(values))
	r.UpdateRuleTextLines()

	return true
}

// insertCondition inserts c before the first styling line of the rule or at
// its end.
func (r *Rule) insertCondition(c *Condition) {
	i := slices.IndexFunc(r.conditions, func(rc *Condition) (found bool) {
		return actionKeywords.Has(rc.keyword)
	})
	if i < 0 {
		i = len(r.conditions)
	}

	r.conditions = slices.Insert(r.conditions, i, c)
}
