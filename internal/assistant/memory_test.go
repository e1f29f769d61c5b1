package assistant

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/skema-app/skema/internal/openai"
)

func userMsg(content string) openai.Message {
	return openai.Message{Role: openai.RoleUser, Content: content}
}

func assistantMsg(content string) openai.Message {
	return openai.Message{Role: openai.RoleAssistant, Content: content}
}

func toolCallMsg(callIDs ...string) openai.Message {
	msg := openai.Message{Role: openai.RoleAssistant}
	for _, id := range callIDs {
		msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
			ID:       id,
			Type:     "function",
			Function: openai.FunctionCall{Name: "create_quest", Arguments: "{}"},
		})
	}
	return msg
}

func toolResultMsg(callID string) openai.Message {
	return openai.Message{Role: openai.RoleTool, ToolCallID: callID, Content: "{}"}
}

func TestMemoryAppendAndHistory(t *testing.T) {
	m := NewConversationMemory(10, time.Hour, time.Minute)

	m.Append("u1", userMsg("hello"))
	m.Append("u1", assistantMsg("hi"))

	history := m.History("u1")
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	if history[0].Content != "hello" || history[1].Content != "hi" {
		t.Errorf("history out of order: %+v", history)
	}

	if got := m.History("stranger"); got != nil {
		t.Errorf("unknown user should have nil history, got %+v", got)
	}
}

func TestMemoryCapBound(t *testing.T) {
	m := NewConversationMemory(4, time.Hour, time.Minute)

	for i := 0; i < 20; i++ {
		m.Append("u1", userMsg(fmt.Sprintf("msg %d", i)))
	}

	history := m.History("u1")
	if len(history) != 4 {
		t.Fatalf("expected history capped at 4, got %d", len(history))
	}
	// Newest messages survive.
	if history[3].Content != "msg 19" || history[0].Content != "msg 16" {
		t.Errorf("wrong window kept: %+v", history)
	}
}

func TestMemoryTrimRemovesToolGroupAtomically(t *testing.T) {
	m := NewConversationMemory(4, time.Hour, time.Minute)

	// A full tool turn plus enough follow-up to push the tool group out.
	m.AppendAll("u1",
		userMsg("add a task"),
		toolCallMsg("call_1"),
		toolResultMsg("call_1"),
		assistantMsg("done"),
	)
	m.AppendAll("u1", userMsg("thanks"), assistantMsg("anytime"))

	history := m.History("u1")
	if len(history) > 4 {
		t.Fatalf("cap violated: %d messages", len(history))
	}
	for _, msg := range history {
		if msg.Role == openai.RoleTool {
			// Its parent assistant message must still be present.
			found := false
			for _, other := range history {
				for _, tc := range other.ToolCalls {
					if tc.ID == msg.ToolCallID {
						found = true
					}
				}
			}
			if !found {
				t.Errorf("orphaned tool message for call %q", msg.ToolCallID)
			}
		}
	}
}

func TestMemoryTrimNeverOrphansToolMessages(t *testing.T) {
	m := NewConversationMemory(3, time.Hour, time.Minute)

	// With cap 3 the 4-message turn cannot fit whole; trimming the
	// assistant head must take both of its tool replies with it.
	m.AppendAll("u1",
		userMsg("plan my day"),
		toolCallMsg("call_a", "call_b"),
		toolResultMsg("call_a"),
		toolResultMsg("call_b"),
		assistantMsg("planned"),
	)

	history := m.History("u1")
	if len(history) > 3 {
		t.Fatalf("cap violated: %d messages", len(history))
	}
	for _, msg := range history {
		if msg.Role == openai.RoleTool {
			t.Errorf("tool message survived without its parent: %+v", msg)
		}
	}
}

func TestMemoryClear(t *testing.T) {
	m := NewConversationMemory(10, time.Hour, time.Minute)

	m.Append("u1", userMsg("hello"))
	m.Clear("u1")

	if got := m.History("u1"); got != nil {
		t.Errorf("expected empty history after clear, got %+v", got)
	}
	if _, ok := m.Stats("u1"); ok {
		t.Error("expected no stats after clear")
	}

	// Clearing an absent user is harmless.
	m.Clear("nobody")
}

func TestMemoryStats(t *testing.T) {
	m := NewConversationMemory(10, time.Hour, time.Minute)

	if _, ok := m.Stats("u1"); ok {
		t.Error("expected no stats before any append")
	}

	m.Append("u1", userMsg("hello"))
	stats, ok := m.Stats("u1")
	if !ok {
		t.Fatal("expected stats after append")
	}
	if stats.MessageCount != 1 || !stats.HasContext {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.LastActivity.IsZero() {
		t.Error("last activity not recorded")
	}
}

func TestMemorySweepEvictsOnlyStaleUsers(t *testing.T) {
	m := NewConversationMemory(10, time.Hour, time.Minute)

	clock := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	m.SetClock(func() time.Time { return clock })

	m.Append("stale", userMsg("old"))

	clock = clock.Add(2 * time.Hour)
	m.Append("fresh", userMsg("new"))

	if evicted := m.Sweep(); evicted != 1 {
		t.Fatalf("expected 1 eviction, got %d", evicted)
	}
	if got := m.History("stale"); got != nil {
		t.Error("stale user should be evicted")
	}
	if got := m.History("fresh"); len(got) != 1 {
		t.Errorf("fresh user should survive, got %+v", got)
	}

	// Second sweep right after finds nothing to do.
	if evicted := m.Sweep(); evicted != 0 {
		t.Errorf("expected idempotent sweep, evicted %d", evicted)
	}
}

func TestMemorySweepNeverDropsFreshAppend(t *testing.T) {
	m := NewConversationMemory(10, time.Hour, time.Minute)

	var mu sync.Mutex
	clock := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	m.SetClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return clock
	})

	// Sweepers spin while the main goroutine repeatedly lets the user go
	// stale and then appends. An append stamps lastActivity to the current
	// clock, so once it commits the user can never be evicted until the
	// clock moves again.
	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					m.Sweep()
				}
			}
		}()
	}

	for i := 0; i < 2000; i++ {
		mu.Lock()
		clock = clock.Add(2 * time.Hour)
		mu.Unlock()

		m.Append("u1", userMsg("ping"))
		stats, ok := m.Stats("u1")
		if !ok || stats.MessageCount == 0 {
			close(stop)
			wg.Wait()
			t.Fatalf("iteration %d: committed append was lost to a sweep", i)
		}
	}
	close(stop)
	wg.Wait()
}

func TestAppendToolResult(t *testing.T) {
	m := NewConversationMemory(10, time.Hour, time.Minute)

	m.Append("u1", toolCallMsg("call_1"))
	m.AppendToolResult("u1", "call_1", `{"success":true}`)

	history := m.History("u1")
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	got := history[1]
	if got.Role != openai.RoleTool || got.ToolCallID != "call_1" {
		t.Errorf("unexpected tool message: %+v", got)
	}
	if got.Content != `{"success":true}` {
		t.Errorf("content = %q", got.Content)
	}
}

func TestMemoryConcurrentUsers(t *testing.T) {
	m := NewConversationMemory(20, time.Hour, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			user := fmt.Sprintf("u%d", id)
			for j := 0; j < 50; j++ {
				m.Append(user, userMsg(fmt.Sprintf("msg %d", j)))
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		history := m.History(fmt.Sprintf("u%d", i))
		if len(history) != 20 {
			t.Errorf("user u%d: expected 20 messages, got %d", i, len(history))
		}
	}
}

func TestMemoryStartStop(t *testing.T) {
	m := NewConversationMemory(10, time.Hour, 10*time.Millisecond)
	m.Start()
	m.Stop()
	m.Stop() // second stop must not panic
}
