// Package chat sends room messages through the offline service and exposes
// the per-room view of messages still waiting for delivery.
package chat

import (
	"context"
	"fmt"
	"time"

	"eduplanner/studysync/internal/domain"
	"eduplanner/studysync/internal/queue"
	"eduplanner/studysync/internal/services/offline"
	"eduplanner/studysync/internal/util"

	"github.com/google/uuid"
)

// TempIDPrefix marks client-generated message ids.
const TempIDPrefix = "temp-"

// Sent is returned by Send as soon as the message is delivered or queued.
type Sent struct {
	// TempID identifies the message locally until the server assigns an
	// id. The server receives it so it can reconcile the two.
	TempID  string
	Outcome offline.Outcome
	Action  domain.Action
	Err     error
}

// PendingMessage is a queued message for optimistic rendering.
type PendingMessage struct {
	TempID     string
	ActionID   string
	Content    string
	CreatedAt  time.Time
	RetryCount int
	// NextAttemptAt is zero when the message may be sent on the next pass.
	// A message behind an earlier one that is backing off reports the
	// earlier message's time.
	NextAttemptAt time.Time
}

// Queue sends chat messages.
type Queue struct {
	service *offline.Service
	queue   *queue.Manager
}

// New returns a Queue.
func New(service *offline.Service, q *queue.Manager) *Queue {
	return &Queue{service: service, queue: q}
}

// Send delivers content to roomID, or queues it when that is not possible
// right now.
func (q *Queue) Send(ctx context.Context, roomID, content string) (Sent, error) {
	if err := util.ValidateMessage(content); err != nil {
		return Sent{}, fmt.Errorf("chat: %w", err)
	}

	tempID := TempIDPrefix + uuid.NewString()
	res, err := q.service.Submit(ctx, domain.ActionSendMessage, roomID, domain.Payload{
		"content": content,
		"temp_id": tempID,
	})
	if err != nil {
		return Sent{}, fmt.Errorf("chat: %w", err)
	}
	return Sent{
		TempID:  tempID,
		Outcome: res.Outcome,
		Action:  res.Action,
		Err:     res.Err,
	}, nil
}

// Pending returns the queued messages for roomID in send order.
func (q *Queue) Pending(ctx context.Context, roomID string) ([]PendingMessage, error) {
	actions, err := q.queue.Pending(ctx, queue.Filter{Type: domain.ActionSendMessage, ResourceID: roomID})
	if err != nil {
		return nil, fmt.Errorf("chat: %w", err)
	}

	inOrder := q.queue.Lane(domain.ActionSendMessage).HeadOfLine

	var heldUntil time.Time
	messages := make([]PendingMessage, 0, len(actions))
	for _, a := range actions {
		next := q.queue.NextAttempt(a)
		if inOrder {
			if heldUntil.After(next) {
				next = heldUntil
			}
			heldUntil = next
		}
		messages = append(messages, PendingMessage{
			TempID:        a.Payload.String("temp_id"),
			ActionID:      a.ID,
			Content:       a.Payload.String("content"),
			CreatedAt:     a.CreatedAt,
			RetryCount:    a.RetryCount,
			NextAttemptAt: next,
		})
	}
	return messages, nil
}
