package servicebus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"clip-and-ship/domain/model"
	"clip-and-ship/infrastructure/logger"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
)

// NewServiceBus creates a Service Bus client for the fully qualified namespace
// using the default Azure credential chain.
func NewServiceBus(ctx context.Context, namespace string) (*azservicebus.Client, error) {
	if namespace == "" {
		return nil, errors.New("service bus namespace not configured")
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}
	client, err := azservicebus.NewClient(namespace, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("service bus client: %w", err)
	}
	return client, nil
}

// EventPublisher sends video lifecycle events to a queue.
type EventPublisher struct {
	client *azservicebus.Client
	queue  string
}

func NewEventPublisher(client *azservicebus.Client, queue string) *EventPublisher {
	return &EventPublisher{client: client, queue: queue}
}

func (p *EventPublisher) Publish(ctx context.Context, evt model.VideoIdeaEvent) error {
	if p.client == nil {
		return errors.New("service bus client not initialised")
	}
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	sender, err := p.client.NewSender(p.queue, nil)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while making new sender service bus.")
		return err
	}
	defer func(sender *azservicebus.Sender, ctx context.Context) {
		if err := sender.Close(ctx); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while closing sender.")
		}
	}(sender, context.Background())

	contentType := "application/json"
	subject := evt.Type
	msg := &azservicebus.Message{
		Body:                  body,
		ContentType:           &contentType,
		Subject:               &subject,
		ApplicationProperties: map[string]any{"user_id": evt.UserID, "video_idea_id": evt.ID},
	}
	if err := sender.SendMessage(ctx, msg, nil); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while sending message.")
		return err
	}
	return nil
}
