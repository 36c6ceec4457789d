// Package menu builds role- and state-conditioned reply keyboard layouts.
package menu

import (
	"log"

	"github.com/Erdaulet0341/taxi-bots/internal/domain/models"
	"github.com/Erdaulet0341/taxi-bots/internal/i18n"
)

// Button is a single reply keyboard button.
type Button struct {
	Text            string `json:"text"`
	RequestLocation bool   `json:"request_location,omitempty"`
}

// Layout is an ordered grid of button rows, consumed opaquely by the
// chat-delivery adapters.
type Layout struct {
	Rows   [][]Button `json:"rows"`
	Resize bool       `json:"resize"`
}

type Builder struct {
	catalog *i18n.Catalog
}

func NewBuilder(catalog *i18n.Catalog) *Builder {
	return &Builder{catalog: catalog}
}

// MainMenu builds the role's main menu. The driver's first row depends on the
// live online flag and must be recomputed on every call: online status changes
// between interactions, so the layout is never cached.
func (b *Builder) MainMenu(role models.Role, lang string, snapshot models.DomainSnapshot) Layout {
	if role == models.RoleDriver {
		onlineKey := "button.go_online"
		if snapshot.DriverOnline {
			onlineKey = "button.go_offline"
		}
		return Layout{
			Resize: true,
			Rows: [][]Button{
				{b.button(onlineKey, lang)},
				{b.button("button.active_rides", lang)},
				{b.button("button.statistics", lang), b.button("button.history", lang)},
				{b.button("button.support", lang)},
				{b.button("button.settings", lang)},
			},
		}
	}
	return Layout{
		Resize: true,
		Rows: [][]Button{
			{b.button("button.new_order", lang)},
			{b.button("button.history", lang), b.button("button.settings", lang)},
			{b.button("button.support", lang)},
		},
	}
}

// ShareLocation builds the pickup-address keyboard with a single button that
// requests the client's live location.
func (b *Builder) ShareLocation(lang string) Layout {
	btn := b.button("button.share_location", lang)
	btn.RequestLocation = true
	return Layout{
		Resize: true,
		Rows:   [][]Button{{btn}},
	}
}

// Confirmation builds the confirm/cancel keyboard for the booking summary.
func (b *Builder) Confirmation(lang string) Layout {
	return Layout{
		Resize: true,
		Rows: [][]Button{
			{b.button("button.confirm", lang), b.button("button.cancel", lang)},
		},
	}
}

func (b *Builder) button(key, lang string) Button {
	text, err := b.catalog.Resolve(key, lang)
	if err != nil {
		log.Printf("Menu label %s unresolved for %s: %v", key, lang, err)
		if text, err = b.catalog.Resolve(key, b.catalog.DefaultLang()); err != nil {
			text = key
		}
	}
	return Button{Text: text}
}
