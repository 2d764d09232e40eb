package bot

import (
	"context"

	"github.com/BrandonDHaskell/powerwatch/internal/powerwatch/types"
)

// Endpoint is the chat transport the dispatcher talks through.
type Endpoint interface {
	// Updates streams inbound messages until ctx is cancelled, then closes
	// the channel.
	Updates(ctx context.Context) <-chan types.Message

	// Reply answers msg in its chat, quoting it.
	Reply(ctx context.Context, msg types.Message, text string) error

	// SendTo posts text to chatID.
	SendTo(ctx context.Context, chatID int64, text string) error
}
