package main

import (
	"fmt"
	"io"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/lootkeeper/lootfilter"
	"github.com/lootkeeper/lootfilter/filterutil"
	"github.com/lootkeeper/lootfilter/rules"
)

// ruleOptions select a rule by its tags.
type ruleOptions struct {
	Type string `short:"t" long:"type" description:"Type tag of the rule." default:"lootfilter_manage"`
	Tier string `short:"r" long:"tier" description:"Tier tag of the rule." required:"true"`
}

// importCommand is the import command.
type importCommand struct {
	app *app
}

// Execute implements the [goFlags.Commander] interface for *importCommand.
func (c *importCommand) Execute(_ []string) (err error) {
	a := c.app
	err = a.init()
	if err != nil {
		return err
	}

	doc, err := a.loadDocument()
	if err != nil {
		return err
	}

	conf, err := a.conf.ImportConfig()
	if err != nil {
		return err
	}

	err = doc.Import(conf)
	if err != nil {
		return err
	}

	return a.saveDocument(doc)
}

// matchCommand is the match command.
type matchCommand struct {
	app *app

	// ItemPath is the path to the file with the item text.
	ItemPath string `short:"i" long:"item" description:"Path to the file with the item text. If not set, it is read from stdin." default:""`

	// All prints every enabled rule matching the item.
	All bool `short:"a" long:"all" description:"Print all matching rules, ignoring Continue." optional:"yes" optional-value:"true"`
}

// Execute implements the [goFlags.Commander] interface for *matchCommand.
func (c *matchCommand) Execute(_ []string) (err error) {
	a := c.app
	err = a.init()
	if err != nil {
		return err
	}

	doc, err := a.loadDocument()
	if err != nil {
		return err
	}

	text, err := c.readItem()
	if err != nil {
		return err
	}

	it := rules.NewItem(text)
	eng := lootfilter.NewEngine(a.logger.With(slogutil.KeyPrefix, "engine"))

	var matched []*rules.Rule
	if c.All {
		matched = eng.MatchAll(doc, it)
	} else if r := eng.GetRuleMatchingItem(doc, it); r != nil {
		matched = append(matched, r)
	}

	if len(matched) == 0 {
		_, err = fmt.Fprintln(a.stdout, "no rule matches the item")

		return err
	}

	for _, r := range matched {
		_, err = fmt.Fprintf(a.stdout, "%s\n\n", r.Text())
		if err != nil {
			return fmt.Errorf("writing rule: %w", err)
		}
	}

	return nil
}

// readItem returns the text of the item.
func (c *matchCommand) readItem() (text string, err error) {
	if c.ItemPath != "" {
		return filterutil.ReadFile(c.ItemPath)
	}

	b, err := io.ReadAll(c.app.stdin)
	if err != nil {
		return "", fmt.Errorf("reading item: %w", err)
	}

	return filterutil.Decode(b)
}

// visibilityCommand is the visibility command.
type visibilityCommand struct {
	app *app

	ruleOptions

	// State is the new visibility of the rule.
	State string `short:"s" long:"state" description:"New visibility." choice:"show" choice:"hide" choice:"disable" required:"true"`
}

// Execute implements the [goFlags.Commander] interface for *visibilityCommand.
func (c *visibilityCommand) Execute(_ []string) (err error) {
	v, err := rules.ParseVisibility(c.State)
	if err != nil {
		return err
	}

	return c.app.editRule(c.ruleOptions, func(r *rules.Rule) (err error) {
		r.SetVisibility(v)

		return nil
	})
}

// baseTypeCommand is the add-base and remove-base command.
type baseTypeCommand struct {
	app *app

	ruleOptions

	// Enable enables the rule after the edit.
	Enable bool `short:"e" long:"enable" description:"Enable the rule after the edit." optional:"yes" optional-value:"true"`

	// remove is true for the remove-base command.
	remove bool
}

// errNoNames is returned when no base types are given.
const errNoNames errors.Error = "no base types given"

// Execute implements the [goFlags.Commander] interface for *baseTypeCommand.
func (c *baseTypeCommand) Execute(names []string) (err error) {
	if len(names) == 0 {
		return errNoNames
	}

	return c.app.editRule(c.ruleOptions, func(r *rules.Rule) (err error) {
		n := 0
		for _, name := range names {
			var changed bool
			if c.remove {
				changed = r.RemoveBaseType(name)
			} else {
				changed = r.AddBaseType(name)
			}

			if changed {
				n++
			}
		}

		if c.Enable {
			r.Enable()
		}

		c.app.logger.Info("edited base types", "rule", r, "changed", n, "enabled", r.Enabled())

		return nil
	})
}

// editRule loads the filter, applies f to the selected rule, and saves the
// filter.
func (a *app) editRule(o ruleOptions, f func(r *rules.Rule) (err error)) (err error) {
	err = a.init()
	if err != nil {
		return err
	}

	doc, err := a.loadDocument()
	if err != nil {
		return err
	}

	r, err := doc.GetRule(o.Type, o.Tier)
	if err != nil {
		return err
	}

	err = f(r)
	if err != nil {
		return err
	}

	return a.saveDocument(doc)
}
