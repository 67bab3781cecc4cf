package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Shadman554/telegram-bot/internal/catalog"
	"github.com/Shadman554/telegram-bot/internal/records"
	"github.com/Shadman554/telegram-bot/internal/store"
)

const testUser int64 = 100

func newTestMachine(t *testing.T) (*Machine, *records.Service) {
	t.Helper()
	svc := records.NewService(records.Options{Store: store.NewMemory()})
	return NewMachine(NewSessions(), svc.Registry(), svc), svc
}

func newUnavailableMachine(t *testing.T) *Machine {
	t.Helper()
	svc := records.NewService(records.Options{})
	return NewMachine(NewSessions(), svc.Registry(), svc)
}

func TestIdleTextPointsToMenu(t *testing.T) {
	m, _ := newTestMachine(t)
	reply, err := m.HandleText(context.Background(), testUser, "hello")
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if reply.Text != msgUseMenu {
		t.Fatalf("text = %q", reply.Text)
	}
	if reply.Keyboard != KeyboardMainMenu {
		t.Fatalf("keyboard = %v", reply.Keyboard)
	}
	if m.InProgress(testUser) {
		t.Fatal("idle text must not start a flow")
	}
}

func TestBeginUnknownAction(t *testing.T) {
	m, _ := newTestMachine(t)
	if _, err := m.Begin(testUser, "explode"); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("err = %v, want ErrUnknownAction", err)
	}
}

func TestBeginDiscardsInFlightFlow(t *testing.T) {
	m, _ := newTestMachine(t)
	ctx := context.Background()

	if _, err := m.Pick(ctx, testUser, ActionAdd, "words"); err != nil {
		t.Fatalf("pick: %v", err)
	}
	if !m.InProgress(testUser) {
		t.Fatal("add flow not started")
	}

	reply, err := m.Begin(testUser, ActionView)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if reply.PickerAction != ActionView || reply.Keyboard != KeyboardCollections {
		t.Fatalf("reply = %+v", reply)
	}
	if m.InProgress(testUser) {
		t.Fatal("menu action must discard the in-flight flow")
	}
}

func TestPickUnknownCollection(t *testing.T) {
	m, _ := newTestMachine(t)
	reply, err := m.Pick(context.Background(), testUser, ActionAdd, "recipes")
	if !errors.Is(err, catalog.ErrUnknownCollection) {
		t.Fatalf("err = %v, want ErrUnknownCollection", err)
	}
	if reply.Text != msgRestartHint {
		t.Fatalf("text = %q", reply.Text)
	}
}

func TestAddFlowWalksFieldsInOrder(t *testing.T) {
	m, svc := newTestMachine(t)
	ctx := context.Background()

	reply, err := m.Pick(ctx, testUser, ActionAdd, "words")
	if err != nil {
		t.Fatalf("pick: %v", err)
	}
	if !strings.Contains(reply.Text, "Adding new Dictionary.") {
		t.Fatalf("intro = %q", reply.Text)
	}
	if !strings.Contains(reply.Text, "Please send me the name:") {
		t.Fatalf("intro = %q", reply.Text)
	}

	steps := []struct {
		input string
		want  string
	}{
		{"fever", "Now send me the kurdish:\n(3 fields remaining)"},
		{"ta", "Now send me the arabic:\n(2 fields remaining)"},
		{"huma", "Now send me the description:\n(1 fields remaining)"},
	}
	for _, step := range steps {
		reply, err = m.HandleText(ctx, testUser, step.input)
		if err != nil {
			t.Fatalf("handle %q: %v", step.input, err)
		}
		if !strings.Contains(reply.Text, step.want) {
			t.Fatalf("reply = %q, want fragment %q", reply.Text, step.want)
		}
	}

	reply, err = m.HandleText(ctx, testUser, "elevated body temperature")
	if err != nil {
		t.Fatalf("final field: %v", err)
	}
	if !strings.Contains(reply.Text, "✅ Dictionary added!") || !strings.Contains(reply.Text, "ID: 1") {
		t.Fatalf("save reply = %q", reply.Text)
	}
	if reply.Keyboard != KeyboardMainMenu {
		t.Fatalf("keyboard = %v", reply.Keyboard)
	}
	if m.InProgress(testUser) {
		t.Fatal("session must be idle after save")
	}

	rec, err := svc.LookupByID(ctx, "words", 1)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if rec.Fields["description"] != "elevated body temperature" {
		t.Fatalf("stored description = %v", rec.Fields["description"])
	}
}

func TestAddValidationRestartsCollection(t *testing.T) {
	m, svc := newTestMachine(t)
	ctx := context.Background()

	if _, err := m.Pick(ctx, testUser, ActionAdd, "normalRanges"); err != nil {
		t.Fatalf("pick: %v", err)
	}
	// minValue >= maxValue is rejected at the terminal save.
	inputs := []string{"Heart rate", "bpm", "120", "60", "bovine", "cardiac"}
	var reply Reply
	var err error
	for _, in := range inputs {
		reply, err = m.HandleText(ctx, testUser, in)
		if err != nil {
			t.Fatalf("handle %q: %v", in, err)
		}
	}
	if !strings.Contains(reply.Text, "minValue must be less than maxValue.") {
		t.Fatalf("reply = %q", reply.Text)
	}
	if !strings.Contains(reply.Text, "Let's try again.") {
		t.Fatalf("reply = %q", reply.Text)
	}
	if !m.InProgress(testUser) {
		t.Fatal("validation failure must keep the flow alive")
	}

	// Collection restarts from the first field.
	inputs = []string{"Heart rate", "bpm", "60", "120", "bovine", "cardiac"}
	for _, in := range inputs {
		reply, err = m.HandleText(ctx, testUser, in)
		if err != nil {
			t.Fatalf("retry %q: %v", in, err)
		}
	}
	if !strings.Contains(reply.Text, "✅ Normal Ranges added!") {
		t.Fatalf("reply = %q", reply.Text)
	}
	if _, err := svc.LookupByID(ctx, "normalRanges", 1); err != nil {
		t.Fatalf("record not saved after retry: %v", err)
	}
}

func TestEditFlow(t *testing.T) {
	m, svc := newTestMachine(t)
	ctx := context.Background()

	rec, err := svc.Create(ctx, "drugs", map[string]string{"name": "Ivermectin", "usage": "antiparasitic"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	reply, err := m.Pick(ctx, testUser, ActionEdit, "drugs")
	if err != nil {
		t.Fatalf("pick: %v", err)
	}
	if !strings.Contains(reply.Text, "ID of the drugs you want to edit") {
		t.Fatalf("prompt = %q", reply.Text)
	}

	// Garbage ids re-prompt without dropping the flow.
	reply, err = m.HandleText(ctx, testUser, "abc")
	if err != nil {
		t.Fatalf("invalid id: %v", err)
	}
	if reply.Text != msgInvalidID {
		t.Fatalf("reply = %q", reply.Text)
	}
	if !m.InProgress(testUser) {
		t.Fatal("invalid id must not clear the flow")
	}

	reply, err = m.HandleText(ctx, testUser, fmt.Sprintf("%d", rec.ID))
	if err != nil {
		t.Fatalf("resolve id: %v", err)
	}
	if !strings.Contains(reply.Text, fmt.Sprintf("Editing Drugs (ID: %d)", rec.ID)) {
		t.Fatalf("reply = %q", reply.Text)
	}
	if !strings.Contains(reply.Text, "• name: Ivermectin") {
		t.Fatalf("current data missing: %q", reply.Text)
	}

	inputs := []string{"Ivermectin", "broad antiparasitic", "dizziness", "-", "macrocyclic lactone"}
	for _, in := range inputs {
		reply, err = m.HandleText(ctx, testUser, in)
		if err != nil {
			t.Fatalf("handle %q: %v", in, err)
		}
	}
	if !strings.Contains(reply.Text, "✅ Drugs updated!") {
		t.Fatalf("reply = %q", reply.Text)
	}
	if m.InProgress(testUser) {
		t.Fatal("session must be idle after update")
	}

	updated, err := svc.LookupByID(ctx, "drugs", rec.ID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if updated.Fields["usage"] != "broad antiparasitic" {
		t.Fatalf("usage = %v", updated.Fields["usage"])
	}
}

func TestEditUnknownIDEndsFlow(t *testing.T) {
	m, _ := newTestMachine(t)
	ctx := context.Background()

	if _, err := m.Pick(ctx, testUser, ActionEdit, "drugs"); err != nil {
		t.Fatalf("pick: %v", err)
	}
	reply, err := m.HandleText(ctx, testUser, "999")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(reply.Text, "Item with ID 999 not found.") {
		t.Fatalf("reply = %q", reply.Text)
	}
	if m.InProgress(testUser) {
		t.Fatal("unknown id must end the flow")
	}
}

func TestDeleteFlow(t *testing.T) {
	m, svc := newTestMachine(t)
	ctx := context.Background()

	rec, err := svc.Create(ctx, "books", map[string]string{
		"title": "Bovine Medicine", "description": "textbook", "category": "medicine",
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := m.Pick(ctx, testUser, ActionDelete, "books"); err != nil {
		t.Fatalf("pick: %v", err)
	}
	reply, err := m.HandleText(ctx, testUser, fmt.Sprintf(" %d ", rec.ID))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(reply.Text, fmt.Sprintf("✅ Books with ID %d deleted successfully!", rec.ID)) {
		t.Fatalf("reply = %q", reply.Text)
	}
	if m.InProgress(testUser) {
		t.Fatal("session must be idle after delete")
	}
	if _, err := svc.LookupByID(ctx, "books", rec.ID); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("record still present: %v", err)
	}

	// A second delete of the same id reports not found.
	if _, err := m.Pick(ctx, testUser, ActionDelete, "books"); err != nil {
		t.Fatalf("pick: %v", err)
	}
	reply, err = m.HandleText(ctx, testUser, fmt.Sprintf("%d", rec.ID))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(reply.Text, "not found") {
		t.Fatalf("reply = %q", reply.Text)
	}
}

func TestSearchFlowIsTerminal(t *testing.T) {
	m, svc := newTestMachine(t)
	ctx := context.Background()

	for _, name := range []string{"Foot rot", "Bloat", "Footpad injury"} {
		if _, err := svc.Create(ctx, "diseases", map[string]string{
			"name": name, "kurdish": "k", "symptoms": "s",
		}); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}

	reply, err := m.Pick(ctx, testUser, ActionSearch, "diseases")
	if err != nil {
		t.Fatalf("pick: %v", err)
	}
	if !strings.Contains(reply.Text, "text to search for in Diseases") {
		t.Fatalf("prompt = %q", reply.Text)
	}

	reply, err = m.HandleText(ctx, testUser, "foot")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(reply.Text, "2 matches for \"foot\"") {
		t.Fatalf("reply = %q", reply.Text)
	}
	if !strings.Contains(reply.Text, "• Foot rot (ID: 1)") {
		t.Fatalf("reply = %q", reply.Text)
	}
	if m.InProgress(testUser) {
		t.Fatal("search must clear the session")
	}

	// No matches is also terminal.
	if _, err := m.Pick(ctx, testUser, ActionSearch, "diseases"); err != nil {
		t.Fatalf("pick: %v", err)
	}
	reply, err = m.HandleText(ctx, testUser, "zebra")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(reply.Text, "No matches for \"zebra\"") {
		t.Fatalf("reply = %q", reply.Text)
	}
	if m.InProgress(testUser) {
		t.Fatal("empty search must clear the session")
	}
}

func TestViewNeverEntersFlow(t *testing.T) {
	m, svc := newTestMachine(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		if _, err := svc.Create(ctx, "words", map[string]string{
			"name": fmt.Sprintf("term-%d", i), "kurdish": "k", "arabic": "a", "description": "d",
		}); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	reply, err := m.Pick(ctx, testUser, ActionView, "words")
	if err != nil {
		t.Fatalf("pick: %v", err)
	}
	if !strings.Contains(reply.Text, "📋 Dictionary (7 total):") {
		t.Fatalf("reply = %q", reply.Text)
	}
	if !strings.Contains(reply.Text, "... and 2 more items") {
		t.Fatalf("reply = %q", reply.Text)
	}
	if m.InProgress(testUser) {
		t.Fatal("view must not start a flow")
	}
}

func TestViewEmptyCollection(t *testing.T) {
	m, _ := newTestMachine(t)
	reply, err := m.Pick(context.Background(), testUser, ActionView, "books")
	if err != nil {
		t.Fatalf("pick: %v", err)
	}
	if reply.Text != "No books found." {
		t.Fatalf("reply = %q", reply.Text)
	}
}

func TestStoreUnavailableEndsFlowsGracefully(t *testing.T) {
	m := newUnavailableMachine(t)
	ctx := context.Background()

	reply, err := m.Pick(ctx, testUser, ActionView, "words")
	if !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("view err = %v, want ErrUnavailable", err)
	}
	if reply.Text != msgStoreUnavail {
		t.Fatalf("reply = %q", reply.Text)
	}

	if _, err := m.Pick(ctx, testUser, ActionAdd, "appLinks"); err != nil {
		t.Fatalf("pick: %v", err)
	}
	reply, err = m.HandleText(ctx, testUser, "https://example.com")
	if !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("save err = %v, want ErrUnavailable", err)
	}
	if reply.Text != msgStoreUnavail {
		t.Fatalf("reply = %q", reply.Text)
	}
	if m.InProgress(testUser) {
		t.Fatal("failed save must clear the session")
	}
}

func TestMenuResetsSession(t *testing.T) {
	m, _ := newTestMachine(t)
	ctx := context.Background()

	if _, err := m.Pick(ctx, testUser, ActionAdd, "words"); err != nil {
		t.Fatalf("pick: %v", err)
	}
	reply := m.Menu(testUser)
	if reply.Text != msgSelectOption || reply.Keyboard != KeyboardMainMenu {
		t.Fatalf("reply = %+v", reply)
	}
	if m.InProgress(testUser) {
		t.Fatal("menu must reset the session")
	}
}

func TestFlowsAreIndependentPerUser(t *testing.T) {
	m, _ := newTestMachine(t)
	ctx := context.Background()

	const other int64 = 200
	if _, err := m.Pick(ctx, testUser, ActionAdd, "words"); err != nil {
		t.Fatalf("pick: %v", err)
	}
	if m.InProgress(other) {
		t.Fatal("second user inherited a session")
	}

	reply, err := m.HandleText(ctx, other, "hello")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if reply.Text != msgUseMenu {
		t.Fatalf("reply = %q", reply.Text)
	}
	if !m.InProgress(testUser) {
		t.Fatal("first user's flow was disturbed")
	}
}
