// Package lootfilter contains the matching engine that finds the rule of a
// loot filter that applies to an item.
package lootfilter

import (
	"log/slog"

	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/lootkeeper/lootfilter/filterlist"
	"github.com/lootkeeper/lootfilter/rules"
)

// Engine finds the rules of a document that apply to items.
type Engine struct {
	logger *slog.Logger
}

// NewEngine returns a new engine.  If logger is nil, nothing is logged.
func NewEngine(logger *slog.Logger) (e *Engine) {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}

	return &Engine{
		logger: logger,
	}
}

// GetRuleMatchingItem returns the rule of doc that decides how the game shows
// it, or nil if no rule matches.  Disabled rules are skipped.  A matching rule
// with a Continue line doesn't stop the scan, so the last matching rule wins
// unless a rule without Continue matches first.
func (e *Engine) GetRuleMatchingItem(doc *filterlist.Document, it *rules.Item) (r *rules.Rule) {
	var matched *rules.Rule
	doc.Rules(func(rule *rules.Rule) (cont bool) {
		if !rule.Enabled() || !rule.Match(it) {
			return true
		}

		matched = rule
		if rule.HasContinue() {
			e.logger.Debug("continuing past matching rule", "rule", rule)

			return true
		}

		return false
	})

	if matched == nil {
		e.logger.Debug("no rule matches item", "basetype", it.BaseType)
	}

	return matched
}

// MatchAll returns all enabled rules of doc that match the item in file order,
// regardless of Continue lines.
func (e *Engine) MatchAll(doc *filterlist.Document, it *rules.Item) (matched []*rules.Rule) {
	doc.Rules(func(rule *rules.Rule) (cont bool) {
		if rule.Enabled() && rule.Match(it) {
			matched = append(matched, rule)
		}

		return true
	})

	return matched
}
