package mqtt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/trailtracker/trailtracker/internal/logger"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) Connect(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockClient) Publish(ctx context.Context, topic string, payload []byte) error {
	return m.Called(ctx, topic, payload).Error(0)
}

func (m *mockClient) IsConnected() bool {
	return m.Called().Bool(0)
}

func (m *mockClient) Disconnect() {
	m.Called()
}

func TestUploadsTopic(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "trailtracker/alice/uploads", UploadsTopic("trailtracker", "alice"))
	assert.Equal(t, "home/cams/alice/uploads", UploadsTopic("home/cams/", "alice"))
}

func TestEventPublisher_PublishScan(t *testing.T) {
	t.Parallel()

	event := ScanEvent{
		Username: "alice",
		FilePath: "2024/a.jpg",
		CameraID: "cam-1",
		Animal:   "deer",
		Date:     "2024-06-01",
		Time:     "06:15",
	}

	client := &mockClient{}
	client.On("Publish", mock.Anything, "cams/alice/uploads", mock.MatchedBy(func(payload []byte) bool {
		var decoded map[string]string
		if err := json.Unmarshal(payload, &decoded); err != nil {
			return false
		}
		return decoded["username"] == "alice" &&
			decoded["filepath"] == "2024/a.jpg" &&
			decoded["camera_id"] == "cam-1" &&
			decoded["animal"] == "deer" &&
			decoded["date"] == "2024-06-01" &&
			decoded["time"] == "06:15"
	})).Return(nil).Once()

	p := NewEventPublisher(client, "cams", logger.NewSlogLogger(&bytes.Buffer{}, logger.LogLevelDebug, time.UTC))
	p.PublishScan(context.Background(), event)

	client.AssertExpectations(t)
}

func TestEventPublisher_FailureIsLogged(t *testing.T) {
	t.Parallel()

	client := &mockClient{}
	client.On("Publish", mock.Anything, "cams/bob/uploads", mock.Anything).Return(fmt.Errorf("not connected")).Once()

	var buf bytes.Buffer
	p := NewEventPublisher(client, "cams", logger.NewSlogLogger(&buf, logger.LogLevelDebug, time.UTC))

	require.NotPanics(t, func() {
		p.PublishScan(context.Background(), ScanEvent{Username: "bob", FilePath: "x.jpg"})
	})

	client.AssertExpectations(t)
	assert.Contains(t, buf.String(), "failed to publish scan event")
	assert.Contains(t, buf.String(), "not connected")
}

func TestNoopPublisher(t *testing.T) {
	t.Parallel()

	var p Publisher = NoopPublisher{}
	require.NotPanics(t, func() { p.PublishScan(context.Background(), ScanEvent{}) })
}
