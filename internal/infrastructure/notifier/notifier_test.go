package notifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogDispatcher_Notify(t *testing.T) {
	d := NewLogDispatcher()
	assert.NoError(t, d.Notify(context.Background(), "12345", "cycle settled"))
}

func TestTelegramDispatcher_InvalidChatID(t *testing.T) {
	d := NewTelegramDispatcherWithBot(nil)
	assert.Error(t, d.Notify(context.Background(), "not-a-number", "hello"))
}
