package assistant

import (
	"sync"
	"time"

	"github.com/skema-app/skema/internal/logging"
	"github.com/skema-app/skema/internal/openai"
)

// ConversationMemory holds bounded per-user conversation history. Each user's
// sequence is guarded by its own mutex so users never contend with each
// other; the outer map is guarded separately. A background sweep evicts
// users idle beyond the staleness window.
type ConversationMemory struct {
	mu    sync.RWMutex
	users map[string]*userConversation

	cap        int
	staleness  time.Duration
	sweepEvery time.Duration

	stopChan chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

type userConversation struct {
	mu           sync.Mutex
	messages     []openai.Message
	lastActivity time.Time
}

// ConversationStats is the administrative view of one user's memory.
type ConversationStats struct {
	MessageCount int       `json:"message_count"`
	LastActivity time.Time `json:"last_activity"`
	HasContext   bool      `json:"has_context"`
}

// NewConversationMemory creates a memory store. cap is the per-user message
// limit; staleness is how long a user may be idle before the sweep evicts
// them; sweepEvery is the sweep interval.
func NewConversationMemory(cap int, staleness, sweepEvery time.Duration) *ConversationMemory {
	return &ConversationMemory{
		users:      make(map[string]*userConversation),
		cap:        cap,
		staleness:  staleness,
		sweepEvery: sweepEvery,
		stopChan:   make(chan struct{}),
		now:        time.Now,
	}
}

// Start launches the background sweep loop.
func (m *ConversationMemory) Start() {
	go m.sweepLoop()
	logging.Info("memory", "Started (cap=%d, staleness=%s, sweep=%s)", m.cap, m.staleness, m.sweepEvery)
}

// Stop halts the sweep loop. Safe to call more than once.
func (m *ConversationMemory) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}

func (m *ConversationMemory) sweepLoop() {
	ticker := time.NewTicker(m.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.runSweep()
		}
	}
}

// runSweep wraps Sweep so a misbehaving sweep can never kill the loop.
func (m *ConversationMemory) runSweep() {
	defer func() {
		if rec := recover(); rec != nil {
			logging.Error("memory", "sweep panicked: %v", rec)
		}
	}()
	if evicted := m.Sweep(); evicted > 0 {
		logging.Info("memory", "Swept %d stale conversations", evicted)
	}
}

// Sweep evicts every user whose last activity predates the staleness window
// and returns how many were evicted. Running it twice back to back is a
// no-op the second time.
func (m *ConversationMemory) Sweep() int {
	cutoff := m.now().Add(-m.staleness)

	m.mu.RLock()
	ids := make([]string, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	evicted := 0
	for _, id := range ids {
		m.mu.RLock()
		u := m.users[id]
		m.mu.RUnlock()
		if u == nil {
			continue
		}

		// Hold the user's lock across both the staleness check and the map
		// delete. An append stamps lastActivity under the same lock, so it
		// either lands before the check (and the user stays) or retries
		// against the fresh entry after the delete; it is never lost in
		// between. Lock order is u.mu then m.mu, matching AppendAll.
		u.mu.Lock()
		if u.lastActivity.Before(cutoff) {
			m.mu.Lock()
			if m.users[id] == u {
				delete(m.users, id)
				evicted++
			}
			m.mu.Unlock()
		}
		u.mu.Unlock()
	}
	return evicted
}

func (m *ConversationMemory) user(id string) *userConversation {
	m.mu.RLock()
	u := m.users[id]
	m.mu.RUnlock()
	if u != nil {
		return u
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if u = m.users[id]; u == nil {
		u = &userConversation{}
		m.users[id] = u
	}
	return u
}

// Append adds one message to the user's history, then trims.
func (m *ConversationMemory) Append(userID string, msg openai.Message) {
	m.AppendAll(userID, msg)
}

// AppendAll adds a whole turn's messages in one critical section, preserving
// their order, then trims once. Callers append either everything a turn
// produced or nothing.
func (m *ConversationMemory) AppendAll(userID string, msgs ...openai.Message) {
	if len(msgs) == 0 {
		return
	}
	for {
		u := m.user(userID)
		u.mu.Lock()
		m.mu.RLock()
		live := m.users[userID] == u
		m.mu.RUnlock()
		if !live {
			// Swept between the lookup and the lock; retry against the
			// entry user() recreates.
			u.mu.Unlock()
			continue
		}
		u.messages = append(u.messages, msgs...)
		u.lastActivity = m.now()
		u.trim(m.cap)
		u.mu.Unlock()
		return
	}
}

// toolMessage builds the tool-role message answering one tool call.
func toolMessage(callID, content string) openai.Message {
	return openai.Message{
		Role:       openai.RoleTool,
		ToolCallID: callID,
		Content:    content,
	}
}

// AppendToolResult appends a tool-role message for the given call id.
func (m *ConversationMemory) AppendToolResult(userID, callID, content string) {
	m.Append(userID, toolMessage(callID, content))
}

// trim removes oldest messages until the sequence fits the cap. Removing an
// assistant message that carries tool calls also removes every tool message
// answering those calls, wherever it sits, so a tool message never outlives
// its parent. Must be called with u.mu held.
func (u *userConversation) trim(cap int) {
	for len(u.messages) > cap {
		head := u.messages[0]

		if head.Role == openai.RoleAssistant && len(head.ToolCalls) > 0 {
			group := make(map[string]bool, len(head.ToolCalls))
			for _, tc := range head.ToolCalls {
				group[tc.ID] = true
			}
			kept := u.messages[:0]
			for _, msg := range u.messages[1:] {
				if msg.Role == openai.RoleTool && group[msg.ToolCallID] {
					continue
				}
				kept = append(kept, msg)
			}
			u.messages = kept
			continue
		}

		u.messages = u.messages[1:]
	}
}

// History returns a snapshot copy of the user's messages in append order.
func (m *ConversationMemory) History(userID string) []openai.Message {
	m.mu.RLock()
	u := m.users[userID]
	m.mu.RUnlock()
	if u == nil {
		return nil
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]openai.Message, len(u.messages))
	copy(out, u.messages)
	return out
}

// Clear drops the user's conversation entirely.
func (m *ConversationMemory) Clear(userID string) {
	m.mu.Lock()
	delete(m.users, userID)
	m.mu.Unlock()
}

// Stats reports the user's memory state. ok is false when the user has no
// conversation.
func (m *ConversationMemory) Stats(userID string) (ConversationStats, bool) {
	m.mu.RLock()
	u := m.users[userID]
	m.mu.RUnlock()
	if u == nil {
		return ConversationStats{}, false
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	return ConversationStats{
		MessageCount: len(u.messages),
		LastActivity: u.lastActivity,
		HasContext:   len(u.messages) > 0,
	}, true
}

// SetClock overrides the time source. Test hook.
func (m *ConversationMemory) SetClock(now func() time.Time) {
	m.now = now
}
