package services

import (
	"strings"

	"github.com/Erdaulet0341/taxi-bots/internal/i18n"
)

// Action is a structured menu action. Inbound text is classified into an
// Action once, against every loaded language's button labels; the state
// machine switches on actions, never on raw label strings.
type Action int

const (
	ActionUnknown Action = iota
	ActionNewOrder
	ActionHistory
	ActionSettings
	ActionSupport
	ActionConfirm
	ActionCancel
)

var actionKeys = map[string]Action{
	"button.new_order": ActionNewOrder,
	"button.history":   ActionHistory,
	"button.settings":  ActionSettings,
	"button.support":   ActionSupport,
	"button.confirm":   ActionConfirm,
	"button.cancel":    ActionCancel,
}

// ActionClassifier matches normalized inbound text against the localized
// button labels of all languages, so a user whose session language lags
// behind their client still hits the right action.
type ActionClassifier struct {
	byLabel map[string]Action
}

func NewActionClassifier(catalog *i18n.Catalog) *ActionClassifier {
	byLabel := make(map[string]Action)
	for key, action := range actionKeys {
		for _, label := range catalog.Translations(key) {
			byLabel[normalizeLabel(label)] = action
		}
	}
	return &ActionClassifier{byLabel: byLabel}
}

// Classify returns the action for the text, or ActionUnknown.
func (c *ActionClassifier) Classify(text string) Action {
	if action, ok := c.byLabel[normalizeLabel(text)]; ok {
		return action
	}
	return ActionUnknown
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
