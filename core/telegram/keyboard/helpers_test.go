package keyboard

import "testing"

func TestInlineButtonsNPerRow(t *testing.T) {
	buttons := []InlineBtn{
		{Text: "a", Unique: "u", Data: "1"},
		{Text: "b", Unique: "u", Data: "2"},
		{Text: "c", Unique: "u", Data: "3"},
		{Text: "d", Unique: "u", Data: "4"},
		{Text: "e", Unique: "u", Data: "5"},
	}

	markup := InlineButtonsNPerRow(buttons, 2)
	if len(markup.InlineKeyboard) != 3 {
		t.Fatalf("rows = %d, want 3", len(markup.InlineKeyboard))
	}
	if len(markup.InlineKeyboard[0]) != 2 || len(markup.InlineKeyboard[2]) != 1 {
		t.Fatalf("row sizes = %d/%d, want 2/1",
			len(markup.InlineKeyboard[0]), len(markup.InlineKeyboard[2]))
	}
	if markup.InlineKeyboard[2][0].Text != "e" {
		t.Fatalf("last button = %q, want e", markup.InlineKeyboard[2][0].Text)
	}

	// n <= 1 degrades to one button per row.
	markup = InlineButtonsNPerRow(buttons, 1)
	if len(markup.InlineKeyboard) != 5 {
		t.Fatalf("rows = %d, want 5", len(markup.InlineKeyboard))
	}
}

func TestAppendInlineRow(t *testing.T) {
	markup := InlineButtonsNPerRow([]InlineBtn{
		{Text: "a", Unique: "u", Data: "1"},
		{Text: "b", Unique: "u", Data: "2"},
	}, 2)

	markup = AppendInlineRow(markup, InlineBtn{Text: "back", Unique: "nav", Data: "menu"})
	if len(markup.InlineKeyboard) != 2 {
		t.Fatalf("rows = %d, want 2", len(markup.InlineKeyboard))
	}
	last := markup.InlineKeyboard[len(markup.InlineKeyboard)-1]
	if len(last) != 1 || last[0].Text != "back" {
		t.Fatalf("appended row = %+v", last)
	}
	if last[0].Unique != "nav" {
		t.Fatalf("appended unique = %q, want nav", last[0].Unique)
	}
}
