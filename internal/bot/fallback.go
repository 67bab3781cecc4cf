package bot

import (
	tele "gopkg.in/telebot.v4"

	"github.com/Shadman554/telegram-bot/core/telegram/callbacks"
	tghelpers "github.com/Shadman554/telegram-bot/core/telegram/helpers"
)

// UnknownText handles free text while no flow is active: point back to the
// menu, no state change.
func (b *Bot) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, "Please use /start to get the menu first!",
			&tele.SendOptions{ReplyMarkup: mainMenu()})
	}
}

// UnknownDocument handles attachments, which no flow accepts.
func (b *Bot) UnknownDocument() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, "Please send text messages only.",
			&tele.SendOptions{ReplyMarkup: backMenu()})
	}
}

// UnknownCallback handles button tokens outside the registered vocabulary.
func (b *Bot) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return b.unknownAction(c, callbacks.CallbackKey(c))
	}
}
