package api

import (
	"context"
	"sync"

	"github.com/adityagautam-dev/aws-telegram-bot/lib/replies"
)

// Reply is the JSON form of one delivered reply. Data is base64 encoded.
type Reply struct {
	Kind    replies.Kind `json:"kind"`
	Text    string       `json:"text,omitempty"`
	Caption string       `json:"caption,omitempty"`
	Name    string       `json:"name,omitempty"`
	Data    []byte       `json:"data,omitempty"`
}

// collectingSink buffers replies for the HTTP response. Payloads are copied
// because the dispatcher releases them once delivery returns.
type collectingSink struct {
	mu      sync.Mutex
	replies []Reply
}

var _ replies.Sink = (*collectingSink)(nil)

func (s *collectingSink) SendText(_ context.Context, text string) error {
	s.add(Reply{Kind: replies.KindText, Text: text})
	return nil
}

func (s *collectingSink) SendImage(_ context.Context, png []byte, caption string) error {
	s.add(Reply{Kind: replies.KindImage, Caption: caption, Data: append([]byte(nil), png...)})
	return nil
}

func (s *collectingSink) SendFile(_ context.Context, name string, data []byte, caption string) error {
	s.add(Reply{Kind: replies.KindFile, Name: name, Caption: caption, Data: append([]byte(nil), data...)})
	return nil
}

func (s *collectingSink) add(r Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, r)
}

func (s *collectingSink) collected() []Reply {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.replies == nil {
		return []Reply{}
	}
	return append([]Reply(nil), s.replies...)
}
