// Package bot wires the conversational admin surface: commands, menu
// callbacks, and free-text routing into the flow state machine.
package bot

import (
	tele "gopkg.in/telebot.v4"

	tg "github.com/Shadman554/telegram-bot/core/telegram"
	"github.com/Shadman554/telegram-bot/core/telegram/commands"
	tghelpers "github.com/Shadman554/telegram-bot/core/telegram/helpers"
	"github.com/Shadman554/telegram-bot/core/telegram/router"
	"github.com/Shadman554/telegram-bot/internal/catalog"
	"github.com/Shadman554/telegram-bot/internal/flow"
	"github.com/Shadman554/telegram-bot/internal/records"
)

// Bot binds the flow machine and record operations to the Telegram surface.
type Bot struct {
	machine *flow.Machine
	records *records.Service
	catalog *catalog.Registry
}

// New builds the bot surface over the given machine and services.
func New(machine *flow.Machine, svc *records.Service) *Bot {
	return &Bot{
		machine: machine,
		records: svc,
		catalog: svc.Registry(),
	}
}

// Register adds every command, callback, and fallback to the registry.
func (b *Bot) Register(reg *tg.Registry) error {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     b.handleStart,
		Description: "Start the bot",
	})
	reg.RegisterCommand("/menu", commands.Command{
		Handler:     b.handleMenu,
		Description: "Show main menu",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     b.handleHelp,
		Description: "Show help message",
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     b.handleStats,
		Description: "View statistics",
	})
	reg.RegisterCommand("/collections", commands.Command{
		Handler:     b.handleCollections,
		Description: "List all collections",
	})

	if err := reg.RegisterCallback(cbMenu, b.handleMenuCallback); err != nil {
		return err
	}
	if err := reg.RegisterCallback(cbPick, b.handlePickCallback); err != nil {
		return err
	}

	reg.SetCallbackNotFound(b.UnknownCallback())
	reg.SetTextFallback(b.UnknownText())
	return nil
}

// Routes assembles the full route table: commands, the callback router, and
// the text router feeding the flow machine.
func (b *Bot) Routes(reg *tg.Registry, adminID int64) []tg.Route {
	routes := router.CommandRoutes(reg, router.CommandRouteOptions{AdminID: adminID})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{NotFound: b.UnknownCallback()}))
	routes = append(routes, router.TextRoutes(b, reg, router.TextOptions{
		UnknownDocument: b.UnknownDocument(),
	})...)
	return routes
}

// InProgress implements router.FSM.
func (b *Bot) InProgress(userID int64) bool {
	return b.machine.InProgress(userID)
}

// ManagerHandler implements router.FSM: it feeds in-flow text messages to the
// state machine and renders the resulting reply.
func (b *Bot) ManagerHandler(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	reply, err := b.machine.HandleText(ctx, c.Sender().ID, c.Text())
	if sendErr := b.send(c, reply); sendErr != nil {
		return sendErr
	}
	return err
}

// send delivers a machine reply as a fresh message.
func (b *Bot) send(c tele.Context, reply flow.Reply) error {
	if reply.Text == "" {
		return nil
	}
	opts := &tele.SendOptions{ReplyMarkup: b.markupFor(reply)}
	return tghelpers.SendText(c, reply.Text, opts)
}

// edit delivers a machine reply by editing the callback's message, falling
// back to a send when editing is impossible.
func (b *Bot) edit(c tele.Context, reply flow.Reply) error {
	if reply.Text == "" {
		return nil
	}
	return c.EditOrSend(reply.Text, &tele.SendOptions{ReplyMarkup: b.markupFor(reply)})
}
