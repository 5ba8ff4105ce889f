package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// slogBotLogger routes the library's own logging into slog at debug level.
type slogBotLogger struct {
	log *slog.Logger
}

var _ tgbotapi.BotLogger = slogBotLogger{}

func (l slogBotLogger) Println(v ...interface{}) {
	l.log.Log(context.Background(), slog.LevelDebug, strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func (l slogBotLogger) Printf(format string, v ...interface{}) {
	l.log.Log(context.Background(), slog.LevelDebug, fmt.Sprintf(format, v...))
}
