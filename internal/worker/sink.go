package worker

import (
	"context"

	"parodybot/internal/queue"
)

// EventSink forwards published parodies to a queue producer.
type EventSink struct {
	producer queue.Producer
}

func NewEventSink(p queue.Producer) *EventSink {
	return &EventSink{producer: p}
}

func (s *EventSink) Notify(ctx context.Context, res Result) error {
	return s.producer.Emit(ctx, queue.Event{
		Account:     res.Account,
		PostID:      res.Post.ID,
		Permalink:   res.Post.Permalink(),
		PublishedID: res.PublishedID,
		Text:        res.Parody.Text,
		Attempts:    res.Parody.Attempts,
		PublishedAt: res.At,
	})
}
