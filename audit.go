/*
Copyright © 2026 Fishbowlhq <dev@fishbowlhq.dev>
*/

package main

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// auditSink streams room events to one kafka topic per room when a
// broker is configured. A nil sink, or a room whose topic could not be
// created, degrades to a no-op; game play never depends on the broker.
type auditSink struct {
	broker string
}

func newAuditSink(broker string) *auditSink {
	if broker == "" {
		return nil
	}
	return &auditSink{broker: broker}
}

// openTopic creates the room's topic (the broker is expected to allow
// auto topic creation) and returns a writer for it, or nil on failure.
func (a *auditSink) openTopic(cfg *Config, room string) *kafka.Writer {
	if a == nil {
		return nil
	}

	conn, err := kafka.DialLeader(context.Background(), "tcp", a.broker, room, 0)
	if err != nil {
		logf(cfg, "AUDIT: failed to create topic %q: %v", room, err)
		return nil
	}
	conn.Close()

	return &kafka.Writer{
		Addr:         kafka.TCP(a.broker),
		Topic:        room,
		RequiredAcks: kafka.RequireAll,
		Async:        true,
		BatchSize:    1,
	}
}

func (a *auditSink) record(w *kafka.Writer, message string) {
	if a == nil || w == nil {
		return
	}

	_ = w.WriteMessages(context.Background(), kafka.Message{
		Value: []byte(message),
	})
}

func (a *auditSink) closeTopic(cfg *Config, room string, w *kafka.Writer) {
	if a == nil {
		return
	}
	if w != nil {
		_ = w.Close()
	}

	conn, err := kafka.Dial("tcp", a.broker)
	if err != nil {
		logf(cfg, "AUDIT: failed to dial to remove topic %q: %v", room, err)
		return
	}
	defer conn.Close()

	_ = conn.DeleteTopics(room)
}
