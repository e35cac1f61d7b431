package notifier_test

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/KasumiMercury/primind-health-remind/internal/domain"
	"github.com/KasumiMercury/primind-health-remind/internal/infra/notifier"
	"github.com/KasumiMercury/primind-health-remind/internal/infra/pubsub"
)

func TestLogChannelSuccess(t *testing.T) {
	ch := notifier.NewLogChannel()

	assert.Equal(t, "log", ch.Name())
	assert.NoError(t, ch.Notify(context.Background(), createNotification(t)))
}

func TestInAppChannelSuccess(t *testing.T) {
	b := notifier.NewBroadcaster(1)
	ch := notifier.NewInAppChannel(b)
	n := createNotification(t)

	banners, cancel := b.Subscribe()
	defer cancel()

	require.NoError(t, ch.Notify(context.Background(), n))

	select {
	case banner := <-banners:
		assert.Equal(t, n.ReminderID.String(), banner.ReminderID)
		assert.Equal(t, "Metformin", banner.Title)
		assert.Equal(t, "daily", banner.Repeat)
	case <-time.After(time.Second):
		t.Fatal("banner not received")
	}
}

func TestBroadcasterDropsWhenFull(t *testing.T) {
	b := notifier.NewBroadcaster(1)
	n := createNotification(t)

	_, cancel := b.Subscribe()
	defer cancel()

	assert.Equal(t, 1, b.Broadcast(notifier.NewBanner(n)))
	assert.Equal(t, 0, b.Broadcast(notifier.NewBanner(n)))
}

func TestBroadcasterCancel(t *testing.T) {
	b := notifier.NewBroadcaster(1)

	banners, cancel := b.Subscribe()
	assert.Equal(t, 1, b.Subscribers())

	cancel()
	cancel()

	assert.Equal(t, 0, b.Subscribers())

	_, open := <-banners
	assert.False(t, open)
	assert.Equal(t, 0, b.Broadcast(notifier.Banner{}))
}

func TestPubSubChannelSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	publisher := pubsub.NewMockPublisher(ctrl)
	n := createNotification(t)

	publisher.EXPECT().
		PublishReminderDue(gomock.Any(), pubsub.NewReminderDueEvent(n)).
		Return(nil)

	ch := notifier.NewPubSubChannel(publisher)

	assert.NoError(t, ch.Notify(context.Background(), n))
}

func TestPubSubChannelError(t *testing.T) {
	ctrl := gomock.NewController(t)
	publisher := pubsub.NewMockPublisher(ctrl)

	publisher.EXPECT().
		PublishReminderDue(gomock.Any(), gomock.Any()).
		Return(errors.New("nats: no servers available"))

	ch := notifier.NewPubSubChannel(publisher)

	assert.Error(t, ch.Notify(context.Background(), createNotification(t)))
}

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (s *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.sent = append(s.sent, c)

	return tgbotapi.Message{}, s.err
}

func TestTelegramChannelSuccess(t *testing.T) {
	sender := &fakeSender{}
	ch := notifier.NewTelegramChannelWithSender(sender, 42)

	require.NoError(t, ch.Notify(context.Background(), createNotification(t)))
	require.Len(t, sender.sent, 1)

	msg, ok := sender.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Contains(t, msg.Text, "Metformin")
}

func TestTelegramChannelError(t *testing.T) {
	sender := &fakeSender{err: errors.New("Unauthorized")}
	ch := notifier.NewTelegramChannelWithSender(sender, 42)

	assert.Error(t, ch.Notify(context.Background(), createNotification(t)))
}

func TestFormatTelegramText(t *testing.T) {
	n := createNotification(t)

	text := notifier.FormatTelegramText(n)

	assert.Contains(t, text, "Metformin")
	assert.Contains(t, text, "medication at 2024-01-10 09:00")
	assert.Contains(t, text, "with water")
	assert.Contains(t, text, "every day")

	n.Recurrence = domain.RecurrenceWeekly
	assert.Contains(t, notifier.FormatTelegramText(n), "every Wednesday")
}
