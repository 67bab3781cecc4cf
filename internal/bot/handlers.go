package bot

import (
	"context"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/Shadman554/telegram-bot/core/telegram/format"
	tghelpers "github.com/Shadman554/telegram-bot/core/telegram/helpers"
)

const welcomeText = "🐾 Welcome to Veterinary Dictionary Admin Bot!\n\n" +
	"This bot provides the same functionality as the website:\n" +
	"📚 Books, 📖 Dictionary, 🦠 Diseases, 💊 Drugs\n" +
	"🎥 Videos, 👥 Staff, ❓ Questions, 📱 Notifications\n" +
	"👤 Users, 📊 Normal Ranges, 🔗 App Links\n\n" +
	"All collections and fields match the website exactly!"

const helpText = "📋 Available Commands:\n\n" +
	"/start - Start the bot\n" +
	"/menu - Show main menu\n" +
	"/stats - View statistics\n" +
	"/collections - List all collections\n" +
	"/help - Show this help message"

func (b *Bot) handleStart(c tele.Context) error {
	b.machine.Reset(c.Sender().ID)
	return tghelpers.SendText(c, welcomeText, &tele.SendOptions{ReplyMarkup: mainMenu()})
}

func (b *Bot) handleMenu(c tele.Context) error {
	return tghelpers.SendText(c, "Select an option:", &tele.SendOptions{ReplyMarkup: mainMenu()})
}

func (b *Bot) handleHelp(c tele.Context) error {
	return tghelpers.SendText(c, helpText)
}

func (b *Bot) handleStats(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	return tghelpers.SendMD(c, b.statsText(ctx), backMenu())
}

func (b *Bot) handleCollections(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	return tghelpers.SendText(c, b.collectionsText(ctx, false))
}

// statsText renders per-collection counts plus a grand total. Counts are
// best-effort; a failing collection shows as zero.
func (b *Bot) statsText(ctx context.Context) string {
	var sb strings.Builder
	sb.WriteString("📊 *Veterinary Dictionary Statistics*\n\n")
	total := 0
	for _, desc := range b.catalog.All() {
		count := b.records.Count(ctx, desc.Key)
		total += count
		fmt.Fprintf(&sb, "%s %s: %d\n", desc.Icon, mdEscape(desc.Name), count)
	}
	fmt.Fprintf(&sb, "\nTotal Records: %d", total)
	return sb.String()
}

// collectionsText lists every collection with its count and description;
// withFields additionally shows the field list of each collection.
func (b *Bot) collectionsText(ctx context.Context, withFields bool) string {
	var sb strings.Builder
	sb.WriteString("📋 Available Collections:\n\n")
	for _, desc := range b.catalog.All() {
		count := b.records.Count(ctx, desc.Key)
		fmt.Fprintf(&sb, "%s %s (%d items)\n", desc.Icon, desc.Name, count)
		fmt.Fprintf(&sb, "   %s\n", desc.Description)
		if withFields {
			fmt.Fprintf(&sb, "   Fields: %s\n", strings.Join(desc.Fields, ", "))
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func mdEscape(s string) string {
	escaped, err := format.EscapeMarkdown(s, format.MarkdownV1, "")
	if err != nil {
		return s
	}
	return escaped
}
