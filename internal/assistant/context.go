package assistant

import (
	"fmt"
	"strings"
	"time"

	"github.com/tsawler/prose/v3"
)

// taskKeywords are the lowercase tokens that mark a message as task-related
// and worth augmenting with the user's current schedule.
var taskKeywords = map[string]bool{
	"task": true, "tasks": true, "todo": true, "todos": true,
	"quest": true, "quests": true, "remind": true, "reminder": true,
	"reminders": true, "schedule": true, "scheduled": true,
	"meeting": true, "meetings": true, "event": true, "events": true,
	"calendar": true, "deadline": true, "deadlines": true, "due": true,
	"plan": true, "plans": true, "agenda": true, "busy": true,
	"board": true, "boards": true, "card": true, "cards": true,
}

// isTaskRelated reports whether the message mentions tasks or scheduling.
// Tokenization uses prose; if the tokenizer fails we fall back to a plain
// whitespace split.
func isTaskRelated(message string) bool {
	tokens := tokenize(message)
	for _, tok := range tokens {
		if taskKeywords[strings.ToLower(tok)] {
			return true
		}
	}
	return false
}

func tokenize(message string) []string {
	doc, err := prose.NewDocument(message,
		prose.WithTagging(false),
		prose.WithExtraction(false),
		prose.WithSegmentation(false))
	if err != nil {
		return strings.Fields(message)
	}
	toks := doc.Tokens()
	out := make([]string, 0, len(toks))
	for _, t := range toks {
		out = append(out, t.Text)
	}
	return out
}

// buildUserContext assembles a read-only summary of the user's open quests
// today and events in the next 24 hours. Returns "" when there is nothing
// to show; lookup errors are treated the same way because augmentation is
// best-effort and must never fail the turn.
func buildUserContext(deps *Dependencies, userID string) string {
	now := deps.now().UTC()
	var sections []string

	if quests, err := deps.Store.ListQuests(userID, deps.today()); err == nil {
		var open []string
		for _, q := range quests {
			if !q.IsComplete {
				open = append(open, q.Content)
			}
		}
		if len(open) > 0 {
			sections = append(sections, "Open quests today: "+strings.Join(open, "; "))
		}
	}

	if events, err := deps.Store.ListEvents(userID, now, now.Add(24*time.Hour)); err == nil && len(events) > 0 {
		var lines []string
		for _, e := range events {
			lines = append(lines, fmt.Sprintf("%s at %s", e.Title, e.Start.Format("15:04")))
		}
		sections = append(sections, "Upcoming events: "+strings.Join(lines, "; "))
	}

	if len(sections) == 0 {
		return ""
	}
	return strings.Join(sections, "\n")
}

// augmentMessage appends the user's current context to a task-related
// message. The returned string is what goes to the model (and conversation
// memory); the literal message is what the audit log keeps.
func augmentMessage(deps *Dependencies, userID, message string) string {
	if !isTaskRelated(message) {
		return message
	}
	ctx := buildUserContext(deps, userID)
	if ctx == "" {
		return message
	}
	return message + "\n\n[Current context]\n" + ctx
}
