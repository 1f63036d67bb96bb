package mqtt

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/trailtracker/trailtracker/internal/logger"
)

// ScanEvent is the payload published when a scan is logged.
type ScanEvent struct {
	Username string `json:"username"`
	FilePath string `json:"filepath"`
	CameraID string `json:"camera_id"`
	Animal   string `json:"animal"`
	Date     string `json:"date"`
	Time     string `json:"time"`
}

// Publisher announces logged scans. Implementations never fail the caller.
type Publisher interface {
	PublishScan(ctx context.Context, event ScanEvent)
}

// UploadsTopic returns <base>/<username>/uploads.
func UploadsTopic(base, username string) string {
	return strings.TrimSuffix(base, "/") + "/" + username + "/uploads"
}

// NoopPublisher discards every event. It is used when MQTT is disabled.
type NoopPublisher struct{}

// PublishScan does nothing.
func (NoopPublisher) PublishScan(context.Context, ScanEvent) {}

// EventPublisher publishes scan events through a Client.
type EventPublisher struct {
	client Client
	topic  string
	log    logger.Logger
}

// NewEventPublisher creates a publisher that writes below baseTopic.
func NewEventPublisher(client Client, baseTopic string, log logger.Logger) *EventPublisher {
	return &EventPublisher{client: client, topic: baseTopic, log: log}
}

// PublishScan publishes the event. Failures are logged and otherwise ignored.
func (p *EventPublisher) PublishScan(ctx context.Context, event ScanEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.log.Error("failed to encode scan event", logger.Error(err))
		return
	}

	topic := UploadsTopic(p.topic, event.Username)
	if err := p.client.Publish(ctx, topic, payload); err != nil {
		p.log.Warn("failed to publish scan event",
			logger.String("topic", topic),
			logger.String("filepath", event.FilePath),
			logger.Error(err))
	}
}
