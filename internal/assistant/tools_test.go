package assistant

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/skema-app/skema/internal/store"
)

func newTestRegistry(t *testing.T) (*Registry, *Dependencies) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "skema.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	clock := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	deps := &Dependencies{
		Store: st,
		Now:   func() time.Time { return clock },
	}
	reg := NewRegistry()
	RegisterAll(reg, deps)
	return reg, deps
}

func invoke(t *testing.T, reg *Registry, name string, args map[string]any) ToolResult {
	t.Helper()
	return reg.Invoke(context.Background(), name, args, Actor{UserID: "u1", DisplayName: "Ada"})
}

func TestRegisterAllToolCatalog(t *testing.T) {
	reg, _ := newTestRegistry(t)

	want := []string{
		"create_quest", "edit_quest", "complete_quest", "delete_quest", "list_quests",
		"create_calendar_event", "edit_calendar_event", "delete_calendar_event", "list_calendar_events",
		"create_journal_entry", "edit_journal_entry", "delete_journal_entry",
		"create_board", "get_boards", "create_card",
		"search_web",
	}
	names := reg.Names()
	if len(names) != len(want) {
		t.Fatalf("expected %d tools, got %d: %v", len(want), len(names), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestCreateQuestDefaultsToToday(t *testing.T) {
	reg, deps := newTestRegistry(t)

	res := invoke(t, reg, "create_quest", map[string]any{"content": "buy milk"})
	if !res.Success {
		t.Fatalf("create failed: %+v", res)
	}
	if res.Message != "Created quest: buy milk" {
		t.Errorf("unexpected message: %q", res.Message)
	}

	quests, _ := deps.Store.ListQuests("u1", "2026-08-26")
	if len(quests) != 1 {
		t.Fatalf("quest not placed on today: %+v", quests)
	}
}

func TestCreateQuestRequiresContent(t *testing.T) {
	reg, _ := newTestRegistry(t)

	res := invoke(t, reg, "create_quest", map[string]any{})
	if res.Success {
		t.Error("expected failure without content")
	}
	res = invoke(t, reg, "create_quest", map[string]any{"content": "x", "date": "not-a-date"})
	if res.Success {
		t.Error("expected failure on malformed date")
	}
}

func TestCompleteQuestByFragment(t *testing.T) {
	reg, _ := newTestRegistry(t)

	invoke(t, reg, "create_quest", map[string]any{"content": "Buy groceries at the market"})
	res := invoke(t, reg, "complete_quest", map[string]any{"quest_content": "groceries"})
	if !res.Success {
		t.Fatalf("complete failed: %+v", res)
	}
	if !strings.HasPrefix(res.Message, "Completed quest:") {
		t.Errorf("unexpected message: %q", res.Message)
	}
}

func TestQuestFragmentMostRecentWins(t *testing.T) {
	reg, deps := newTestRegistry(t)

	invoke(t, reg, "create_quest", map[string]any{"content": "call mom"})
	invoke(t, reg, "create_quest", map[string]any{"content": "call dentist"})

	res := invoke(t, reg, "edit_quest", map[string]any{
		"quest_content": "call",
		"new_content":   "call dentist at 3pm",
	})
	if !res.Success {
		t.Fatalf("edit failed: %+v", res)
	}

	quests, _ := deps.Store.ListQuests("u1", "2026-08-26")
	contents := map[string]bool{}
	for _, q := range quests {
		contents[q.Content] = true
	}
	if !contents["call mom"] || !contents["call dentist at 3pm"] {
		t.Errorf("wrong quest edited: %v", contents)
	}
}

func TestQuestNotFoundMessage(t *testing.T) {
	reg, _ := newTestRegistry(t)

	res := invoke(t, reg, "delete_quest", map[string]any{"quest_content": "gym"})
	if res.Success {
		t.Fatal("expected not-found failure")
	}
	if res.Message != "No quest found matching 'gym' for 2026-08-26" {
		t.Errorf("unexpected message: %q", res.Message)
	}
}

func TestListQuests(t *testing.T) {
	reg, _ := newTestRegistry(t)

	invoke(t, reg, "create_quest", map[string]any{"content": "one"})
	invoke(t, reg, "create_quest", map[string]any{"content": "two", "date": "2026-08-27"})

	res := invoke(t, reg, "list_quests", map[string]any{})
	if !res.Success || res.Message != "Found 1 quests for 2026-08-26" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestCreateEventDefaultsEndToOneHour(t *testing.T) {
	reg, deps := newTestRegistry(t)

	res := invoke(t, reg, "create_calendar_event", map[string]any{
		"title":          "Standup",
		"start_datetime": "2026-08-27T14:00:00Z",
	})
	if !res.Success {
		t.Fatalf("create failed: %+v", res)
	}

	events, _ := deps.Store.FindEventsByTitle("u1", "standup")
	if len(events) != 1 {
		t.Fatalf("event not created: %+v", events)
	}
	if got := events[0].End.Sub(events[0].Start); got != time.Hour {
		t.Errorf("default duration = %s, want 1h", got)
	}
}

func TestEditEventMovingStartKeepsDuration(t *testing.T) {
	reg, deps := newTestRegistry(t)

	invoke(t, reg, "create_calendar_event", map[string]any{
		"title":          "Workshop",
		"start_datetime": "2026-08-27T14:00:00Z",
		"end_datetime":   "2026-08-27T16:00:00Z",
	})
	res := invoke(t, reg, "edit_calendar_event", map[string]any{
		"event_title":    "workshop",
		"start_datetime": "2026-08-28T09:00:00Z",
	})
	if !res.Success {
		t.Fatalf("edit failed: %+v", res)
	}

	events, _ := deps.Store.FindEventsByTitle("u1", "workshop")
	if got := events[0].End.Sub(events[0].Start); got != 2*time.Hour {
		t.Errorf("duration after move = %s, want 2h", got)
	}
	if events[0].Start.Day() != 28 {
		t.Errorf("start not moved: %s", events[0].Start)
	}
}

func TestListEventsDefaultWeekWindow(t *testing.T) {
	reg, _ := newTestRegistry(t)

	invoke(t, reg, "create_calendar_event", map[string]any{
		"title":          "This week",
		"start_datetime": "2026-08-28T10:00:00Z",
	})
	invoke(t, reg, "create_calendar_event", map[string]any{
		"title":          "Next month",
		"start_datetime": "2026-09-20T10:00:00Z",
	})

	res := invoke(t, reg, "list_calendar_events", map[string]any{})
	if !res.Success || res.Message != "Found 1 events" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestEventNotFound(t *testing.T) {
	reg, _ := newTestRegistry(t)

	res := invoke(t, reg, "delete_calendar_event", map[string]any{"event_title": "party"})
	if res.Success {
		t.Fatal("expected not-found failure")
	}
	if res.Message != "No calendar event found matching 'party'" {
		t.Errorf("unexpected message: %q", res.Message)
	}
}

func TestCreateJournalEntryDefaults(t *testing.T) {
	reg, deps := newTestRegistry(t)

	res := invoke(t, reg, "create_journal_entry", map[string]any{
		"title":   "Good day",
		"content": "shipped the feature",
	})
	if !res.Success {
		t.Fatalf("create failed: %+v", res)
	}

	entries, _ := deps.Store.FindJournalEntriesByTitle("u1", "good day")
	if len(entries) != 1 {
		t.Fatalf("entry not created: %+v", entries)
	}
	if entries[0].Mood != "okay" {
		t.Errorf("default mood = %q, want okay", entries[0].Mood)
	}
	if entries[0].EntryDate != "2026-08-26" {
		t.Errorf("default entry date = %q", entries[0].EntryDate)
	}
}

func TestEditJournalEntryByContentFragment(t *testing.T) {
	reg, deps := newTestRegistry(t)

	invoke(t, reg, "create_journal_entry", map[string]any{
		"title":   "Morning",
		"content": "long run in the park",
	})
	res := invoke(t, reg, "edit_journal_entry", map[string]any{
		"entry_title": "park",
		"mood":        "great",
	})
	if !res.Success {
		t.Fatalf("edit failed: %+v", res)
	}

	entries, _ := deps.Store.FindJournalEntriesByTitle("u1", "morning")
	if entries[0].Mood != "great" {
		t.Errorf("mood not updated: %q", entries[0].Mood)
	}
}

func TestCreateCardChecksBoardOwnership(t *testing.T) {
	reg, deps := newTestRegistry(t)

	res := invoke(t, reg, "create_board", map[string]any{"title": "Project X"})
	if !res.Success {
		t.Fatalf("create board failed: %+v", res)
	}
	boards, _ := deps.Store.ListBoards("u1", 1)
	boardID := boards[0].ID

	res = invoke(t, reg, "create_card", map[string]any{"board_id": boardID, "title": "Write docs"})
	if !res.Success {
		t.Fatalf("create card failed: %+v", res)
	}

	// Another user's card on this board must be refused.
	other := reg.Invoke(context.Background(), "create_card",
		map[string]any{"board_id": boardID, "title": "sneaky"}, Actor{UserID: "u2"})
	if other.Success {
		t.Error("card creation on a foreign board must fail")
	}

	res = invoke(t, reg, "create_card", map[string]any{"board_id": "bogus", "title": "x"})
	if res.Success {
		t.Error("card creation on a missing board must fail")
	}
}

func TestGetBoardsLimit(t *testing.T) {
	reg, _ := newTestRegistry(t)

	for i := 0; i < 4; i++ {
		invoke(t, reg, "create_board", map[string]any{"title": "board"})
	}
	res := invoke(t, reg, "get_boards", map[string]any{"limit": float64(2)})
	if !res.Success {
		t.Fatalf("get_boards failed: %+v", res)
	}
	payload, ok := res.Result.(map[string]any)
	if !ok {
		t.Fatalf("unexpected result payload: %T", res.Result)
	}
	if payload["total"] != 2 {
		t.Errorf("total = %v, want 2", payload["total"])
	}
}

func TestSearchWebUnconfigured(t *testing.T) {
	reg, _ := newTestRegistry(t)

	res := invoke(t, reg, "search_web", map[string]any{"query": "go generics"})
	if res.Success {
		t.Fatal("search without an API key must fail")
	}
	if res.Message != "Web search is not available" {
		t.Errorf("unexpected message: %q", res.Message)
	}
}
