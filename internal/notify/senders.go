package notify

import (
	"context"

	"github.com/divyanshu-1/RoadX/internal/domain"
)

//go:generate mockgen -source=senders.go -destination=mocks/mock.go

// PushSender delivers one structured push notification to one device token.
type PushSender interface {
	Send(ctx context.Context, msg domain.PushMessage) error
}

// SMSSender delivers one plain-text message to one phone number.
type SMSSender interface {
	Send(ctx context.Context, to, body string) error
}
