package notify

import "context"

type TelegramNotifier interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}
