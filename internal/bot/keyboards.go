package bot

import (
	tele "gopkg.in/telebot.v4"

	"github.com/Shadman554/telegram-bot/core/telegram/keyboard"
	"github.com/Shadman554/telegram-bot/internal/catalog"
	"github.com/Shadman554/telegram-bot/internal/flow"
)

// Callback uniques. "menu" carries a top-level action as payload, "pick"
// carries "action|collectionKey".
const (
	cbMenu = "menu"
	cbPick = "pick"
)

const (
	menuAdd         = "add"
	menuView        = "view"
	menuEdit        = "edit"
	menuDelete      = "delete"
	menuSearch      = "search"
	menuStats       = "stats"
	menuCollections = "collections"
	menuBack        = "back"
)

const backButtonText = "« Back to Menu"

// mainMenu builds the top-level menu, one action per row.
func mainMenu() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "➕ Add Content", Unique: cbMenu, Data: menuAdd},
		{Text: "👁️ View Content", Unique: cbMenu, Data: menuView},
		{Text: "✏️ Edit Content", Unique: cbMenu, Data: menuEdit},
		{Text: "🗑️ Delete Content", Unique: cbMenu, Data: menuDelete},
		{Text: "🔍 Search Content", Unique: cbMenu, Data: menuSearch},
		{Text: "📊 Statistics", Unique: cbMenu, Data: menuStats},
		{Text: "📋 Collections Info", Unique: cbMenu, Data: menuCollections},
	})
}

// collectionPicker builds the two-per-row collection keyboard for an action,
// with a trailing back row.
func collectionPicker(registry *catalog.Registry, action string) *tele.ReplyMarkup {
	descs := registry.All()
	buttons := make([]keyboard.InlineBtn, 0, len(descs))
	for _, d := range descs {
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   d.Icon + " " + d.Name,
			Unique: cbPick,
			Data:   action + "|" + d.Key,
		})
	}

	markup := keyboard.InlineButtonsNPerRow(buttons, 2)
	return keyboard.AppendInlineRow(markup, keyboard.InlineBtn{Text: backButtonText, Unique: cbMenu, Data: menuBack})
}

// backMenu builds a keyboard with only the back-to-menu row.
func backMenu() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: backButtonText, Unique: cbMenu, Data: menuBack},
	})
}

// markupFor maps a machine reply keyboard kind onto an inline keyboard.
func (b *Bot) markupFor(reply flow.Reply) *tele.ReplyMarkup {
	switch reply.Keyboard {
	case flow.KeyboardMainMenu:
		return mainMenu()
	case flow.KeyboardCollections:
		return collectionPicker(b.catalog, reply.PickerAction)
	case flow.KeyboardBack:
		return backMenu()
	default:
		return nil
	}
}
