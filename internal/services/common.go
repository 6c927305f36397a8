package services

import (
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/unicode/norm"

	"github.com/xevon/studio-backend/internal/feed"
)

// Publisher receives every row change the services make.
type Publisher interface {
	Publish(ev feed.Event)
}

// AdminNotifier pushes a notification to the studio admin's device. It
// must not block and must not fail the caller.
type AdminNotifier interface {
	Dispatch(title, body string)
}

type nopPublisher struct{}

func (nopPublisher) Publish(feed.Event) {}

type nopNotifier struct{}

func (nopNotifier) Dispatch(string, string) {}

func publisherOrNop(p Publisher) Publisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

func notifierOrNop(n AdminNotifier) AdminNotifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

// publish emits a change event. Encoding failures are logged and dropped;
// the write they describe has already committed.
func publish(p Publisher, table string, typ feed.EventType, partition string, row any) {
	ev, err := feed.NewEvent(table, typ, partition, row)
	if err != nil {
		log.Error().Err(err).Str("table", table).Msg("change event not published")
		return
	}
	publisherOrNop(p).Publish(ev)
}

// normalizeText applies NFC, unifies line endings and trims surrounding
// whitespace.
func normalizeText(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimSpace(s)
}

// normalizeLine is normalizeText for single-line fields: inner whitespace
// runs collapse to one space.
func normalizeLine(s string) string {
	return strings.Join(strings.Fields(normalizeText(s)), " ")
}

// preview returns the first n runes of s.
func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func tooLong(s string, limit int) bool {
	return limit > 0 && utf8.RuneCountInString(s) > limit
}

// validClientID accepts ids a client may choose for its own records:
// 1..32 characters from [A-Za-z0-9_-].
func validClientID(id string) bool {
	if id == "" || len(id) > 32 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
