package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Shadman554/telegram-bot/core/logger"
	"github.com/Shadman554/telegram-bot/internal/catalog"
	"github.com/Shadman554/telegram-bot/internal/records"
	"github.com/Shadman554/telegram-bot/internal/store"
)

// Action tokens accepted from the main menu.
const (
	ActionAdd    = "add"
	ActionView   = "view"
	ActionEdit   = "edit"
	ActionDelete = "delete"
	ActionSearch = "search"
)

const (
	previewLimit      = 5
	searchResultLimit = 10
)

// ErrUnknownAction reports a menu or picker token outside the vocabulary.
var ErrUnknownAction = errors.New("flow: unknown action")

const (
	msgRestartHint    = "An error occurred. Please use /start to restart."
	msgUseMenu        = "Please use /start to get the menu first!"
	msgInvalidID      = "❌ Please provide a valid numeric ID."
	msgStoreUnavail   = "❌ Document store is not configured. Record operations are unavailable."
	msgSelectOption   = "Select an option:"
	msgSelectToAdd    = "Select a collection to add:"
	msgSelectToView   = "Select a collection to view:"
	msgSelectToEdit   = "Select a collection to edit:"
	msgSelectToDelete = "Select a collection to delete:"
	msgSelectToSearch = "Select a collection to search:"
)

// Machine advances per-user sessions through the guided flows and invokes
// record operations at terminal transitions.
type Machine struct {
	sessions *Sessions
	catalog  *catalog.Registry
	records  *records.Service
}

// NewMachine wires a Machine over the given session repository and services.
func NewMachine(sessions *Sessions, registry *catalog.Registry, svc *records.Service) *Machine {
	return &Machine{sessions: sessions, catalog: registry, records: svc}
}

// Sessions exposes the underlying session repository.
func (m *Machine) Sessions() *Sessions {
	return m.sessions
}

// InProgress reports whether the user currently has an active flow.
func (m *Machine) InProgress(userID int64) bool {
	sess := m.sessions.Get(userID)
	return sess.Active()
}

// Reset unconditionally clears the user's session.
func (m *Machine) Reset(userID int64) {
	m.sessions.Clear(userID)
}

// Menu resets the session and returns the main menu prompt. Starting over is
// always allowed, whatever was in flight.
func (m *Machine) Menu(userID int64) Reply {
	m.sessions.Clear(userID)
	return Reply{Text: msgSelectOption, Keyboard: KeyboardMainMenu}
}

// Begin handles a top-level menu action, discarding any in-flight flow and
// presenting the collection picker for the chosen action.
func (m *Machine) Begin(userID int64, action string) (Reply, error) {
	var prompt string
	switch action {
	case ActionAdd:
		prompt = msgSelectToAdd
	case ActionView:
		prompt = msgSelectToView
	case ActionEdit:
		prompt = msgSelectToEdit
	case ActionDelete:
		prompt = msgSelectToDelete
	case ActionSearch:
		prompt = msgSelectToSearch
	default:
		return Reply{}, fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}

	// The picker keyboard carries the action; session state is not needed
	// until a collection is actually chosen.
	m.sessions.Clear(userID)
	return Reply{Text: prompt, Keyboard: KeyboardCollections, PickerAction: action}, nil
}

// Pick handles a collection choice for the given action. "view" short
// circuits into a read-only listing; the other actions start their flow.
func (m *Machine) Pick(ctx context.Context, userID int64, action, collectionKey string) (Reply, error) {
	desc, err := m.catalog.Describe(collectionKey)
	if err != nil {
		m.sessions.Clear(userID)
		return Reply{Text: msgRestartHint, Keyboard: KeyboardMainMenu}, err
	}

	if action == ActionView {
		return m.viewCollection(ctx, userID, desc)
	}

	var reply Reply
	err = m.sessions.With(userID, func(sess *Session) error {
		sess.Reset()
		switch action {
		case ActionAdd:
			sess.Flow = FlowAdd
			sess.Collection = desc.Key
			sess.Cursor = 0
			sess.Awaiting = AwaitingFieldData
			reply = Reply{Text: addIntro(desc)}
		case ActionEdit:
			sess.Flow = FlowEdit
			sess.Collection = desc.Key
			sess.Awaiting = AwaitingID
			reply = Reply{Text: idPrompt(desc, "edit")}
		case ActionDelete:
			sess.Flow = FlowDelete
			sess.Collection = desc.Key
			sess.Awaiting = AwaitingID
			reply = Reply{Text: idPrompt(desc, "delete")}
		case ActionSearch:
			sess.Flow = FlowSearch
			sess.Collection = desc.Key
			sess.Awaiting = AwaitingSearchQuery
			reply = Reply{Text: fmt.Sprintf("Please send me the text to search for in %s:", desc.Name)}
		default:
			reply = Reply{Text: msgRestartHint, Keyboard: KeyboardMainMenu}
			return fmt.Errorf("%w: %s", ErrUnknownAction, action)
		}
		return nil
	})
	if err != nil {
		return reply, err
	}

	logger.Debug(ctx, "service.flow", "flow.begin",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("flow", action),
		slog.String("collection", collectionKey),
	)
	return reply, nil
}

// HandleText consumes one free-text message according to the session state.
func (m *Machine) HandleText(ctx context.Context, userID int64, text string) (Reply, error) {
	var reply Reply
	err := m.sessions.With(userID, func(sess *Session) error {
		switch sess.Flow {
		case FlowNone:
			reply = Reply{Text: msgUseMenu, Keyboard: KeyboardMainMenu}
			return nil
		case FlowAdd:
			return m.collectField(ctx, sess, text, &reply)
		case FlowEdit:
			switch sess.Awaiting {
			case AwaitingID:
				return m.resolveEditID(ctx, sess, text, &reply)
			case AwaitingFieldData:
				return m.collectField(ctx, sess, text, &reply)
			default:
				sess.Reset()
				reply = Reply{Text: msgRestartHint, Keyboard: KeyboardMainMenu}
				return nil
			}
		case FlowDelete:
			return m.resolveDeleteID(ctx, sess, text, &reply)
		case FlowSearch:
			return m.runSearch(ctx, sess, text, &reply)
		default:
			sess.Reset()
			reply = Reply{Text: msgRestartHint, Keyboard: KeyboardMainMenu}
			return nil
		}
	})
	return reply, err
}

// collectField stores the value for the field at Cursor and either advances
// the prompt or fires the terminal save. Shared by add and edit: once an edit
// target is resolved, field collection is the same sub-machine.
func (m *Machine) collectField(ctx context.Context, sess *Session, text string, reply *Reply) error {
	desc, err := m.catalog.Describe(sess.Collection)
	if err != nil {
		sess.Reset()
		*reply = Reply{Text: msgRestartHint, Keyboard: KeyboardMainMenu}
		return err
	}

	field := desc.Fields[sess.Cursor]
	sess.Data[field] = text

	if sess.Cursor+1 < len(desc.Fields) {
		sess.Cursor++
		next := desc.Fields[sess.Cursor]
		remaining := len(desc.Fields) - sess.Cursor
		*reply = Reply{Text: fmt.Sprintf("✅ %s: %s\n\nNow send me the %s:\n(%d fields remaining)",
			field, text, next, remaining)}
		return nil
	}

	return m.saveCollected(ctx, sess, desc, reply)
}

func (m *Machine) saveCollected(ctx context.Context, sess *Session, desc catalog.Descriptor, reply *Reply) error {
	var (
		rec records.Record
		err error
	)
	switch sess.Flow {
	case FlowEdit:
		rec, err = m.records.Update(ctx, desc.Key, sess.StorageKey, sess.Data)
	default:
		rec, err = m.records.Create(ctx, desc.Key, sess.Data)
	}

	switch {
	case err == nil:
		verb := "added"
		if sess.Flow == FlowEdit {
			verb = "updated"
		}
		*reply = Reply{
			Text:     fmt.Sprintf("✅ %s %s!\n\nID: %d\n%s", desc.Name, verb, rec.ID, fieldLines(desc, rec.Fields)),
			Keyboard: KeyboardMainMenu,
		}
		sess.Reset()
		return nil
	case isValidationErr(err):
		// Re-collect from the first field; a bad value can only be fixed
		// by filling the form again.
		sess.Cursor = 0
		sess.Data = make(map[string]string)
		intro := addIntro(desc)
		if sess.Flow == FlowEdit {
			intro = fmt.Sprintf("Please send me the new %s:", desc.Fields[0])
		}
		*reply = Reply{Text: fmt.Sprintf("❌ %s\n\nLet's try again. %s", validationMessage(err), intro)}
		return nil
	case errors.Is(err, store.ErrUnavailable):
		sess.Reset()
		*reply = Reply{Text: msgStoreUnavail, Keyboard: KeyboardMainMenu}
		return err
	case errors.Is(err, records.ErrNotFound):
		id := sess.TargetID
		sess.Reset()
		*reply = Reply{Text: fmt.Sprintf("❌ Item with ID %d not found.", id), Keyboard: KeyboardMainMenu}
		return nil
	default:
		sess.Reset()
		*reply = Reply{Text: fmt.Sprintf("❌ Failed to save %s. Please try again later.", strings.ToLower(desc.Name)), Keyboard: KeyboardMainMenu}
		return err
	}
}

func (m *Machine) resolveEditID(ctx context.Context, sess *Session, text string, reply *Reply) error {
	desc, err := m.catalog.Describe(sess.Collection)
	if err != nil {
		sess.Reset()
		*reply = Reply{Text: msgRestartHint, Keyboard: KeyboardMainMenu}
		return err
	}

	id, ok := parseID(text)
	if !ok {
		// Non-fatal: re-prompt, session unchanged.
		*reply = Reply{Text: msgInvalidID}
		return nil
	}

	rec, err := m.records.LookupByID(ctx, desc.Key, id)
	switch {
	case errors.Is(err, records.ErrNotFound):
		sess.Reset()
		*reply = Reply{Text: fmt.Sprintf("❌ Item with ID %d not found.", id), Keyboard: KeyboardMainMenu}
		return nil
	case errors.Is(err, store.ErrUnavailable):
		sess.Reset()
		*reply = Reply{Text: msgStoreUnavail, Keyboard: KeyboardMainMenu}
		return err
	case err != nil:
		sess.Reset()
		*reply = Reply{Text: msgRestartHint, Keyboard: KeyboardMainMenu}
		return err
	}

	sess.Awaiting = AwaitingFieldData
	sess.Cursor = 0
	sess.Data = make(map[string]string)
	sess.TargetID = id
	sess.StorageKey = rec.StorageKey

	*reply = Reply{Text: fmt.Sprintf("Editing %s (ID: %d)\n\nCurrent data:\n%s\n\nPlease send me the new %s:",
		desc.Name, id, fieldLines(desc, rec.Fields), desc.Fields[0])}
	return nil
}

func (m *Machine) resolveDeleteID(ctx context.Context, sess *Session, text string, reply *Reply) error {
	desc, err := m.catalog.Describe(sess.Collection)
	if err != nil {
		sess.Reset()
		*reply = Reply{Text: msgRestartHint, Keyboard: KeyboardMainMenu}
		return err
	}

	id, ok := parseID(text)
	if !ok {
		*reply = Reply{Text: msgInvalidID}
		return nil
	}

	rec, err := m.records.LookupByID(ctx, desc.Key, id)
	if err == nil {
		err = m.records.Delete(ctx, desc.Key, rec.StorageKey)
	}

	switch {
	case err == nil:
		sess.Reset()
		*reply = Reply{Text: fmt.Sprintf("✅ %s with ID %d deleted successfully!", desc.Name, id), Keyboard: KeyboardMainMenu}
		return nil
	case errors.Is(err, records.ErrNotFound):
		sess.Reset()
		*reply = Reply{Text: fmt.Sprintf("❌ Item with ID %d not found.", id), Keyboard: KeyboardMainMenu}
		return nil
	case errors.Is(err, store.ErrUnavailable):
		sess.Reset()
		*reply = Reply{Text: msgStoreUnavail, Keyboard: KeyboardMainMenu}
		return err
	default:
		sess.Reset()
		*reply = Reply{Text: msgRestartHint, Keyboard: KeyboardMainMenu}
		return err
	}
}

// runSearch executes one substring query. Search is always terminal: the
// session is cleared whatever the outcome.
func (m *Machine) runSearch(ctx context.Context, sess *Session, term string, reply *Reply) error {
	desc, err := m.catalog.Describe(sess.Collection)
	if err != nil {
		sess.Reset()
		*reply = Reply{Text: msgRestartHint, Keyboard: KeyboardMainMenu}
		return err
	}
	defer sess.Reset()

	matches, err := m.records.Search(ctx, desc.Key, term)
	switch {
	case errors.Is(err, store.ErrUnavailable):
		*reply = Reply{Text: msgStoreUnavail, Keyboard: KeyboardMainMenu}
		return err
	case err != nil:
		*reply = Reply{Text: msgRestartHint, Keyboard: KeyboardMainMenu}
		return err
	}

	if len(matches) == 0 {
		*reply = Reply{Text: fmt.Sprintf("No matches for %q in %s.", term, strings.ToLower(desc.Name)), Keyboard: KeyboardBack}
		return nil
	}

	shown := matches
	if len(shown) > searchResultLimit {
		shown = shown[:searchResultLimit]
	}
	lines := make([]string, 0, len(shown))
	for _, rec := range shown {
		lines = append(lines, fmt.Sprintf("• %s (ID: %d)", desc.DisplayName(rec.Fields), rec.ID))
	}
	text := fmt.Sprintf("🔍 %s: %d matches for %q:\n\n%s", desc.Name, len(matches), term, strings.Join(lines, "\n"))
	if len(matches) > len(shown) {
		text += fmt.Sprintf("\n\n... and %d more matches", len(matches)-len(shown))
	}
	*reply = Reply{Text: text, Keyboard: KeyboardBack}
	return nil
}

// viewCollection renders the read-only listing; it never enters a flow.
func (m *Machine) viewCollection(ctx context.Context, userID int64, desc catalog.Descriptor) (Reply, error) {
	m.sessions.Clear(userID)

	recs, total, err := m.records.ListPreview(ctx, desc.Key, previewLimit)
	switch {
	case errors.Is(err, store.ErrUnavailable):
		return Reply{Text: msgStoreUnavail, Keyboard: KeyboardBack}, err
	case err != nil:
		return Reply{Text: "❌ Error loading data.", Keyboard: KeyboardBack}, err
	}

	if total == 0 {
		return Reply{Text: fmt.Sprintf("No %s found.", strings.ToLower(desc.Name)), Keyboard: KeyboardBack}, nil
	}

	lines := make([]string, 0, len(recs))
	for _, rec := range recs {
		lines = append(lines, fmt.Sprintf("• %s (ID: %d)", desc.DisplayName(rec.Fields), rec.ID))
	}
	text := fmt.Sprintf("📋 %s (%d total):\n\n%s", desc.Name, total, strings.Join(lines, "\n"))
	if total > len(recs) {
		text += fmt.Sprintf("\n\n... and %d more items", total-len(recs))
	}
	return Reply{Text: text, Keyboard: KeyboardBack}, nil
}

func parseID(text string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	return id, err == nil
}

func addIntro(desc catalog.Descriptor) string {
	return fmt.Sprintf("Adding new %s.\n\nFields to fill: %s\n\nPlease send me the %s:",
		desc.Name, strings.Join(desc.Fields, ", "), desc.Fields[0])
}

func idPrompt(desc catalog.Descriptor, verb string) string {
	return fmt.Sprintf("Please send me the ID of the %s you want to %s:", strings.ToLower(desc.Name), verb)
}

// fieldLines renders declared fields in declaration order, skipping the
// bookkeeping id/createdAt entries.
func fieldLines(desc catalog.Descriptor, fields map[string]any) string {
	lines := make([]string, 0, len(desc.Fields))
	for _, f := range desc.Fields {
		v, ok := fields[f]
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("• %s: %v", f, v))
	}
	return strings.Join(lines, "\n")
}

func isValidationErr(err error) bool {
	var missing *catalog.MissingFieldError
	return errors.As(err, &missing) ||
		errors.Is(err, catalog.ErrInvalidNumber) ||
		errors.Is(err, catalog.ErrInvalidRange)
}

func validationMessage(err error) string {
	var missing *catalog.MissingFieldError
	switch {
	case errors.As(err, &missing):
		return fmt.Sprintf("The %s field is required.", missing.Field)
	case errors.Is(err, catalog.ErrInvalidNumber):
		return "minValue and maxValue must be numbers."
	case errors.Is(err, catalog.ErrInvalidRange):
		return "minValue must be less than maxValue."
	default:
		return "The entered data is not valid."
	}
}
