package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/c2h5oh/datasize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/adityagautam-dev/aws-telegram-bot/lib/replies"
)

// ErrUploadTooLarge is returned for images and files above the upload limit.
var ErrUploadTooLarge = errors.New("upload too large")

const chartFileName = "cpu.png"

// sender is the part of *tgbotapi.BotAPI that delivers messages.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// chatSink replies to one chat, threading under the triggering message.
// Documents are uploaded from memory and never touch disk.
type chatSink struct {
	bot       sender
	chatID    int64
	replyTo   int
	maxUpload datasize.ByteSize
}

var _ replies.Sink = (*chatSink)(nil)

func (s *chatSink) SendText(_ context.Context, text string) error {
	msg := tgbotapi.NewMessage(s.chatID, text)
	msg.ReplyToMessageID = s.replyTo
	_, err := s.bot.Send(msg)
	return err
}

func (s *chatSink) SendImage(_ context.Context, png []byte, caption string) error {
	if err := s.checkSize(len(png)); err != nil {
		return err
	}
	photo := tgbotapi.NewPhoto(s.chatID, tgbotapi.FileBytes{Name: chartFileName, Bytes: png})
	photo.Caption = caption
	photo.ReplyToMessageID = s.replyTo
	_, err := s.bot.Send(photo)
	return err
}

func (s *chatSink) SendFile(_ context.Context, name string, data []byte, caption string) error {
	if err := s.checkSize(len(data)); err != nil {
		return err
	}
	doc := tgbotapi.NewDocument(s.chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption
	doc.ReplyToMessageID = s.replyTo
	_, err := s.bot.Send(doc)
	return err
}

func (s *chatSink) checkSize(n int) error {
	if s.maxUpload > 0 && datasize.ByteSize(n) > s.maxUpload {
		return fmt.Errorf("%w: %s exceeds %s", ErrUploadTooLarge,
			datasize.ByteSize(n).HumanReadable(), s.maxUpload.HumanReadable())
	}
	return nil
}
