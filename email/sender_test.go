package email

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"bookstore/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogSenderWhenHostMissing(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := NewSender(config.EmailOptions{}, zap.New(core))

	err := s.Send(context.Background(), Message{To: "reader@example.com", Subject: "Hi", Body: "Your new password is: s3cret"})
	require.NoError(t, err)

	entries := logs.FilterMessage("Email (not sent)").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "reader@example.com", fields["to"])
	assert.Equal(t, "Hi", fields["subject"])
	assert.NotContains(t, fields, "body")
	for _, v := range fields {
		assert.NotContains(t, fmt.Sprint(v), "s3cret")
	}
}

func TestSMTPSenderHonoursCancelledContext(t *testing.T) {
	s := NewSender(config.EmailOptions{Host: "127.0.0.1", Port: 1}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Send(ctx, Message{To: "a@example.com"}), context.Canceled)
}

func TestBuildMessage(t *testing.T) {
	m := buildMessage("store@example.com", Message{To: "reader@example.com", Subject: "Welcome", Body: "Thanks"})

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "From: store@example.com")
	assert.Contains(t, out, "To: reader@example.com")
	assert.Contains(t, out, "Subject: Welcome")
	assert.Contains(t, out, "Thanks")
}
