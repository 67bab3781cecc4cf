package bot

import (
	"errors"
	"fmt"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/Shadman554/telegram-bot/core/logger"
	"github.com/Shadman554/telegram-bot/core/telegram/callbacks"
	tghelpers "github.com/Shadman554/telegram-bot/core/telegram/helpers"
	"github.com/Shadman554/telegram-bot/internal/flow"
)

// handleMenuCallback dispatches top-level menu buttons. Menu presses always
// preempt whatever flow was in flight.
func (b *Bot) handleMenuCallback(c tele.Context) error {
	userID := c.Sender().ID
	ctx := tghelpers.BuildContext(c)
	action := callbacks.CallbackPayload(c)

	switch action {
	case menuBack:
		return b.edit(c, b.machine.Menu(userID))
	case menuAdd, menuView, menuEdit, menuDelete, menuSearch:
		reply, err := b.machine.Begin(userID, action)
		if err != nil {
			return b.unknownAction(c, action)
		}
		return b.edit(c, reply)
	case menuStats:
		b.machine.Reset(userID)
		return tghelpers.EditMD(c, b.statsText(ctx), backMenu())
	case menuCollections:
		b.machine.Reset(userID)
		return b.edit(c, flow.Reply{Text: b.collectionsText(ctx, true), Keyboard: flow.KeyboardBack})
	default:
		return b.unknownAction(c, action)
	}
}

// handlePickCallback handles a collection choice from the picker keyboard.
func (b *Bot) handlePickCallback(c tele.Context) error {
	parts, err := callbacks.PayloadParts(c, "|")
	if err != nil || len(parts) != 2 {
		return b.unknownAction(c, callbacks.CallbackPayload(c))
	}
	action, collectionKey := parts[0], parts[1]

	ctx := tghelpers.BuildContext(c)
	reply, err := b.machine.Pick(ctx, c.Sender().ID, action, collectionKey)
	if errors.Is(err, flow.ErrUnknownAction) {
		return b.unknownAction(c, action)
	}
	if sendErr := b.edit(c, reply); sendErr != nil {
		return sendErr
	}
	return err
}

// unknownAction reports a token outside the menu vocabulary without touching
// session state.
func (b *Bot) unknownAction(c tele.Context, token string) error {
	ctx := tghelpers.BuildContext(c)
	logger.Warn(ctx, "tg", "callback.unknown_action",
		slog.String("status", "fail"),
		slog.String("payload", logger.SanitizeLimit(token, 64)),
	)
	text := fmt.Sprintf("⚠️ Unknown action: %s\n\nPlease use the menu buttons", logger.SanitizeLimit(token, 64))
	return tghelpers.SendText(c, text, &tele.SendOptions{ReplyMarkup: backMenu()})
}
