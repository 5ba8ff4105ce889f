package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/adityagautam-dev/aws-telegram-bot/lib/replies"
)

var errBinaryToTerminal = errors.New("refusing to write binary output to a terminal, use --output-dir")

// cliSink prints text and writes images and files either into dir or, when
// dir is empty, raw to out.
type cliSink struct {
	out      io.Writer
	dir      string
	terminal bool
	now      func() time.Time
}

var _ replies.Sink = (*cliSink)(nil)

func (s *cliSink) SendText(_ context.Context, text string) error {
	_, err := fmt.Fprintln(s.out, text)
	return err
}

func (s *cliSink) SendImage(_ context.Context, png []byte, caption string) error {
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	name := fmt.Sprintf("cpu-%s.png", now().UTC().Format("20060102T150405Z"))
	return s.write(name, png, caption)
}

func (s *cliSink) SendFile(_ context.Context, name string, data []byte, caption string) error {
	return s.write(name, data, caption)
}

func (s *cliSink) write(name string, data []byte, caption string) error {
	if s.dir == "" {
		if s.terminal {
			return errBinaryToTerminal
		}
		_, err := s.out.Write(data)
		return err
	}

	// name comes from chat arguments; keep it inside dir.
	path, err := securejoin.SecureJoin(s.dir, name)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	if caption != "" {
		_, err = fmt.Fprintf(s.out, "%s: %s\n", caption, path)
	} else {
		_, err = fmt.Fprintf(s.out, "wrote %s\n", path)
	}
	return err
}
