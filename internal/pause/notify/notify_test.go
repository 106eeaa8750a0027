package notify_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowguard/internal/pause/models"
	"flowguard/internal/pause/notify"
	id "flowguard/pkg/domain"
)

type stubNotifier struct {
	calls int
	err   error
}

func (s *stubNotifier) Notify(ctx context.Context, clientID id.ClientID, channels []models.Channel, message string) error {
	s.calls++
	return s.err
}

func TestFallbackNotifierPrefersPrimary(t *testing.T) {
	primary := &stubNotifier{}
	fallback := &stubNotifier{}
	n := notify.WithFallback(primary, fallback, slog.Default())

	err := n.Notify(context.Background(), id.NewClientID(), []models.Channel{models.ChannelEmail}, "hello")
	require.NoError(t, err)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, fallback.calls)
}

func TestFallbackNotifierFallsBackOnFailure(t *testing.T) {
	primary := &stubNotifier{err: errors.New("delivery service down")}
	fallback := &stubNotifier{}
	n := notify.WithFallback(primary, fallback, slog.Default())

	clientID := id.NewClientID()
	for i := 0; i < 5; i++ {
		err := n.Notify(context.Background(), clientID, []models.Channel{models.ChannelPush}, "hello")
		require.NoError(t, err, "fallback absorbs primary failures")
	}
	assert.Equal(t, 5, primary.calls)
	assert.Equal(t, 5, fallback.calls)

	// Primary recovery routes deliveries back without touching the fallback.
	primary.err = nil
	err := n.Notify(context.Background(), clientID, []models.Channel{models.ChannelPush}, "hello")
	require.NoError(t, err)
	assert.Equal(t, 5, fallback.calls)
}

func TestFallbackNotifierSurfacesDoubleFailure(t *testing.T) {
	primary := &stubNotifier{err: errors.New("primary down")}
	fallback := &stubNotifier{err: errors.New("fallback down")}
	n := notify.WithFallback(primary, fallback, slog.Default())

	err := n.Notify(context.Background(), id.NewClientID(), []models.Channel{models.ChannelSMS}, "hello")
	require.Error(t, err)
}
