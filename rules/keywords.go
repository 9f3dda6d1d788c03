package rules

import "github.com/AdguardTeam/golibs/container"

// Filter keywords the package works with directly.
const (
	KeywordBaseType     = "BaseType"
	KeywordClass        = "Class"
	KeywordContinue     = "Continue"
	KeywordHasInfluence = "HasInfluence"
	KeywordRarity       = "Rarity"
	KeywordStackSize    = "StackSize"
)

// Operators of the condition lines.
const (
	OpEqual      = "="
	OpExactEqual = "=="
	OpNotEqual   = "!="
	OpNot        = "!"
	OpLess       = "<"
	OpLessEq     = "<="
	OpGreater    = ">"
	OpGreaterEq  = ">="
)

// actionKeywords are the styling and control lines of a rule.  They never
// affect whether an item matches the rule.
var actionKeywords = container.NewMapSet(
	"SetFontSize",
	"SetTextColor",
	"SetBorderColor",
	"SetBackgroundColor",
	"PlayAlertSound",
	"PlayAlertSoundPositional",
	"PlayEffect",
	"MinimapIcon",
	"CustomAlertSound",
	"CustomAlertSoundOptional",
	"DisableDropSound",
	"EnableDropSound",
	"DisableDropSoundIfAlertSound",
	"EnableDropSoundIfAlertSound",
	KeywordContinue,
)

// hideSuppressedKeywords are the lines commented out when a rule is made a
// Hide rule so that hidden items make no sound and have no beam or map icon.
var hideSuppressedKeywords = container.NewMapSet(
	"PlayEffect",
	"MinimapIcon",
	"PlayAlertSound",
)

// quotedKeywords are the keywords whose values are always written in quotes.
var quotedKeywords = container.NewMapSet(
	KeywordBaseType,
	KeywordClass,
	"HasExplicitMod",
	"HasImplicitMod",
	"HasEnchantment",
	"EnchantmentPassiveNode",
	"ArchnemesisMod",
)

// IsActionKeyword returns true if keyword is a styling or control keyword,
// which is not a matching condition.
func IsActionKeyword(keyword string) (ok bool) {
	return actionKeywords.Has(keyword)
}
