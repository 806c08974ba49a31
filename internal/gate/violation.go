package gate

import "fmt"

// Rule names the constraint a featured set broke.
type Rule string

const (
	RuleMissingTranslation Rule = "missing-translation"
	RuleUnknownPhrase      Rule = "unknown-phrase"
	RuleTooManyWords       Rule = "too-many-words"
	RuleForbiddenPhrase    Rule = "forbidden-phrase"
	RuleLevelFloor         Rule = "level-floor"
	RuleLevel2Length       Rule = "level2-length"
	RuleFallbackRejected   Rule = "fallback-rejected"
	RuleEmptySet           Rule = "empty-set"
	RuleMinHighImpact      Rule = "min-high-impact"
	RuleLevel2Ratio        Rule = "level2-ratio"
)

// VocabularyViolation is a build-halting gate failure. Where and ItemID are
// empty for set-wide rules.
type VocabularyViolation struct {
	Where  string
	ItemID string
	Rule   Rule
	Detail string
}

func (v *VocabularyViolation) Error() string {
	if v.ItemID == "" {
		return fmt.Sprintf("vocabulary gate: %s: %s", v.Rule, v.Detail)
	}
	return fmt.Sprintf("vocabulary gate: %s (%s) %s: %s", v.Where, v.ItemID, v.Rule, v.Detail)
}
