package bot

import (
	"context"
	"strings"
	"testing"

	"github.com/Shadman554/telegram-bot/internal/flow"
	"github.com/Shadman554/telegram-bot/internal/records"
	"github.com/Shadman554/telegram-bot/internal/store"
)

func newTestBot(t *testing.T) (*Bot, *records.Service) {
	t.Helper()
	svc := records.NewService(records.Options{Store: store.NewMemory()})
	machine := flow.NewMachine(flow.NewSessions(), svc.Registry(), svc)
	return New(machine, svc), svc
}

func TestStatsTextCountsAndTotal(t *testing.T) {
	b, svc := newTestBot(t)
	ctx := context.Background()

	for _, name := range []string{"fever", "wound"} {
		if _, err := svc.Create(ctx, "words", map[string]string{
			"name": name, "kurdish": "k", "arabic": "a", "description": "d",
		}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	if _, err := svc.Create(ctx, "appLinks", map[string]string{"url": "https://example.com"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	text := b.statsText(ctx)
	if !strings.HasPrefix(text, "📊 *Veterinary Dictionary Statistics*") {
		t.Fatalf("header missing: %q", text)
	}
	for _, want := range []string{
		"📖 Dictionary: 2",
		"🔗 App Links: 1",
		"📚 Books: 0",
		"Total Records: 3",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("stats missing %q:\n%s", want, text)
		}
	}
}

func TestCollectionsTextFieldsToggle(t *testing.T) {
	b, _ := newTestBot(t)
	ctx := context.Background()

	plain := b.collectionsText(ctx, false)
	if !strings.Contains(plain, "📚 Books (0 items)") {
		t.Fatalf("collections missing books: %q", plain)
	}
	if !strings.Contains(plain, "Manage veterinary books and publications") {
		t.Fatalf("description missing: %q", plain)
	}
	if strings.Contains(plain, "Fields:") {
		t.Fatalf("field list leaked into plain listing: %q", plain)
	}

	detailed := b.collectionsText(ctx, true)
	if !strings.Contains(detailed, "Fields: title, description, category, coverImageUrl, pdfUrl") {
		t.Fatalf("field list missing: %q", detailed)
	}
}

func TestMDEscape(t *testing.T) {
	if got := mdEscape("a_b*c"); got != `a\_b\*c` {
		t.Fatalf("mdEscape = %q", got)
	}
	if got := mdEscape("plain"); got != "plain" {
		t.Fatalf("mdEscape = %q", got)
	}
}

func TestMainMenuLayout(t *testing.T) {
	markup := mainMenu()
	if len(markup.InlineKeyboard) != 7 {
		t.Fatalf("rows = %d, want 7", len(markup.InlineKeyboard))
	}
	for i, row := range markup.InlineKeyboard {
		if len(row) != 1 {
			t.Fatalf("row %d has %d buttons, want 1", i, len(row))
		}
	}
	first := markup.InlineKeyboard[0][0]
	if first.Text != "➕ Add Content" {
		t.Fatalf("first button = %q", first.Text)
	}
	if !strings.Contains(first.Data, "add") {
		t.Fatalf("first button data = %q", first.Data)
	}
}

func TestCollectionPickerLayout(t *testing.T) {
	b, _ := newTestBot(t)
	markup := collectionPicker(b.catalog, "edit")

	// 11 collections two per row plus the back row.
	if len(markup.InlineKeyboard) != 7 {
		t.Fatalf("rows = %d, want 7", len(markup.InlineKeyboard))
	}
	first := markup.InlineKeyboard[0][0]
	if first.Text != "📚 Books" {
		t.Fatalf("first button = %q", first.Text)
	}
	if !strings.Contains(first.Data, "edit|books") {
		t.Fatalf("first button data = %q", first.Data)
	}

	last := markup.InlineKeyboard[len(markup.InlineKeyboard)-1]
	if len(last) != 1 || last[0].Text != backButtonText {
		t.Fatalf("back row = %+v", last)
	}
}

func TestMarkupForKeyboardKinds(t *testing.T) {
	b, _ := newTestBot(t)

	if m := b.markupFor(flow.Reply{Keyboard: flow.KeyboardNone}); m != nil {
		t.Fatal("KeyboardNone produced a markup")
	}
	if m := b.markupFor(flow.Reply{Keyboard: flow.KeyboardMainMenu}); m == nil || len(m.InlineKeyboard) != 7 {
		t.Fatalf("main menu markup = %+v", m)
	}
	if m := b.markupFor(flow.Reply{Keyboard: flow.KeyboardCollections, PickerAction: "add"}); m == nil {
		t.Fatal("collections markup missing")
	}
	if m := b.markupFor(flow.Reply{Keyboard: flow.KeyboardBack}); m == nil || len(m.InlineKeyboard) != 1 {
		t.Fatalf("back markup = %+v", m)
	}
}
