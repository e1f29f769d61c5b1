package assistant

import (
	"fmt"
	"time"

	"github.com/skema-app/skema/internal/search"
	"github.com/skema-app/skema/internal/store"
)

// Dependencies holds the collaborators tools need. Search may be nil.
type Dependencies struct {
	Store  *store.Store
	Search *search.Client

	// Now is the clock tools use to resolve "today". Defaults to time.Now.
	Now func() time.Time
}

func (d *Dependencies) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Dependencies) today() string {
	return store.DateOnly(d.now())
}

// RegisterAll registers every domain tool with the registry.
func RegisterAll(reg *Registry, deps *Dependencies) {
	registerQuestTools(reg, deps)
	registerCalendarTools(reg, deps)
	registerJournalTools(reg, deps)
	registerBoardTools(reg, deps)
	registerSearchTools(reg, deps)
}

// --- argument decoding helpers ---

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func boolArg(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}

// intArg handles JSON numbers, which decode as float64.
func intArg(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

// parseDate accepts YYYY-MM-DD.
func parseDate(s string) (string, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return store.DateOnly(t), nil
}

// parseDateTime accepts RFC 3339 datetimes, with or without offset.
func parseDateTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime %q (expected ISO 8601)", s)
}

func failure(err error, message string) ToolResult {
	return ToolResult{Success: false, Error: err.Error(), Message: message}
}

func notFound(entity, fragment, scope string) ToolResult {
	msg := fmt.Sprintf("No %s found matching '%s'", entity, fragment)
	if scope != "" {
		msg += " for " + scope
	}
	return ToolResult{Success: false, Message: msg}
}
