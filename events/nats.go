package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"
)

// DefaultSubjectPrefix is the subject prefix NATS events are published under.
const DefaultSubjectPrefix = "registry.events"

// NATSSink publishes registry events to a NATS server as JSON messages.
// Each event is published to <prefix>.<kind>, e.g. registry.events.registered.
//
// Publishing is best-effort: a failed publish is logged and dropped so that
// the registry operation it describes is not affected. Consumers needing
// stronger delivery should layer JetStream on the subject space.
type NATSSink struct {
	conn    *nats.Conn
	prefix  string
	log     *slog.Logger
	ownConn bool
}

// NewNATSSink connects to the NATS server at url and returns a sink
// publishing under DefaultSubjectPrefix.
func NewNATSSink(url string, log *slog.Logger) (*NATSSink, error) {
	conn, err := nats.Connect(url,
		nats.Name("dapp-registry"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSSink{conn: conn, prefix: DefaultSubjectPrefix, log: log, ownConn: true}, nil
}

// NewNATSSinkWithConn wraps an existing connection. The caller retains
// ownership of the connection; Close will not drain it.
func NewNATSSinkWithConn(conn *nats.Conn, prefix string, log *slog.Logger) *NATSSink {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATSSink{conn: conn, prefix: prefix, log: log}
}

// Emit publishes the event. Failures are logged and dropped.
func (s *NATSSink) Emit(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		s.log.Error("Failed to marshal registry event", "err", err, "kind", string(event.Kind))
		return
	}

	subject := s.subjectFor(event.Kind)
	if err := s.conn.Publish(subject, payload); err != nil {
		s.log.Error("Failed to publish registry event",
			"err", err,
			slog.String("subject", subject),
			slog.String("kind", string(event.Kind)))
	}
}

// Close drains the underlying connection if the sink created it.
func (s *NATSSink) Close() {
	if s.ownConn {
		s.conn.Close()
	}
}

func (s *NATSSink) subjectFor(kind Kind) string {
	return s.prefix + "." + strings.ToLower(string(kind))
}
