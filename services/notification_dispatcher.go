package services

import (
	"context"
	"log"
	"sync"
	"time"

	"athleteMindAPI/internal/notification"
)

type PushNotificationProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error
}

// NotificationDispatcher pushes stored notifications to devices off the
// request path through a small worker pool.
type NotificationDispatcher struct {
	service      *NotificationService
	pushProvider PushNotificationProvider
	jobQueue     chan *notification.Notification
	stopChan     chan struct{}
	wg           sync.WaitGroup
}

const dispatcherWorkers = 3

func NewNotificationDispatcher(service *NotificationService) *NotificationDispatcher {
	d := &NotificationDispatcher{
		service:  service,
		jobQueue: make(chan *notification.Notification, 100),
		stopChan: make(chan struct{}),
	}

	for i := 0; i < dispatcherWorkers; i++ {
		d.wg.Add(1)
		go d.worker()
	}

	return d
}

func (d *NotificationDispatcher) SetPushProvider(provider PushNotificationProvider) {
	d.pushProvider = provider
}

func (d *NotificationDispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case notif := <-d.jobQueue:
			d.process(notif)
		case <-d.stopChan:
			return
		}
	}
}

func (d *NotificationDispatcher) process(notif *notification.Notification) {
	if d.pushProvider == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tokens, err := d.service.deviceTokens(ctx, notif.UserID)
	if err != nil {
		log.Printf("Push skipped for notification %s: %v", notif.ID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	if err := d.pushProvider.SendPush(ctx, tokens, notif.Title, notif.Message, notif.Data); err != nil {
		// In-app row already exists; a failed push is not retried.
		log.Printf("Push failed for user %s: %v", notif.UserID, err)
	}
}

// Dispatch queues a notification for push delivery. Dropping on a full queue
// is acceptable: the in-app notification is already persisted.
func (d *NotificationDispatcher) Dispatch(notif *notification.Notification) {
	select {
	case d.jobQueue <- notif:
	default:
		log.Printf("Push queue full, dropping push for notification %s", notif.ID)
	}
}

// Stop drains the workers. Called on shutdown.
func (d *NotificationDispatcher) Stop() {
	close(d.stopChan)
	d.wg.Wait()
}

// MockPushProvider logs instead of calling FCM. Used in tests and local dev.
type MockPushProvider struct{}

func (m *MockPushProvider) SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error {
	log.Printf("MOCK PUSH: sending to %d devices: %s - %s", len(tokens), title, body)
	return nil
}
