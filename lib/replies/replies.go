// Package replies defines what a command sends back to the chat and the sink
// contract transports implement to deliver it.
package replies

import (
	"context"
	"fmt"
)

// Kind tags a Reply variant.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindFile  Kind = "file"
)

// Reply is one of Text, Image or File.
type Reply interface {
	Kind() Kind
}

// Text is a plain message.
type Text struct {
	Body string
}

// Image is a PNG with a caption.
type Image struct {
	PNG     []byte
	Caption string
}

// File is a downloadable document. Data is released by Release once the
// reply has been handed to a sink, whether or not delivery succeeded.
type File struct {
	Name    string
	Data    Payload
	Caption string
}

func (Text) Kind() Kind  { return KindText }
func (Image) Kind() Kind { return KindImage }
func (File) Kind() Kind  { return KindFile }

// Payload is the content of a File. secret.Buffer satisfies it.
type Payload interface {
	Bytes() []byte
	Len() int
	Close() error
}

// Bytes adapts a plain byte slice to Payload.
type Bytes []byte

func (b Bytes) Bytes() []byte { return b }
func (b Bytes) Len() int      { return len(b) }
func (Bytes) Close() error    { return nil }

// Sink delivers replies to the originating chat or caller.
type Sink interface {
	SendText(ctx context.Context, text string) error
	SendImage(ctx context.Context, png []byte, caption string) error
	SendFile(ctx context.Context, name string, data []byte, caption string) error
}

// Deliver sends one reply to sink.
func Deliver(ctx context.Context, sink Sink, reply Reply) error {
	switch r := reply.(type) {
	case Text:
		return sink.SendText(ctx, r.Body)
	case Image:
		return sink.SendImage(ctx, r.PNG, r.Caption)
	case File:
		if r.Data == nil {
			return fmt.Errorf("file %q has no payload", r.Name)
		}
		return sink.SendFile(ctx, r.Name, r.Data.Bytes(), r.Caption)
	default:
		return fmt.Errorf("unsupported reply type %T", reply)
	}
}

// Release frees any payload the reply owns.
func Release(reply Reply) error {
	if f, ok := reply.(File); ok && f.Data != nil {
		return f.Data.Close()
	}
	return nil
}
