package pubsub_test

import (
	"context"
	"testing"

	"clip-and-ship/domain/model"
	"clip-and-ship/infrastructure/pubsub"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPubSub_RequiresProject(t *testing.T) {
	client, err := pubsub.NewPubSub(context.Background(), "")
	require.Error(t, err)
	assert.Nil(t, client)
}

func TestEventPublisher_NilClient(t *testing.T) {
	p := pubsub.NewEventPublisher(nil, "video-lifecycle")
	err := p.Publish(context.Background(), model.VideoIdeaEvent{Type: model.EventUpdate, ID: "idea-1"})
	require.Error(t, err)
}
