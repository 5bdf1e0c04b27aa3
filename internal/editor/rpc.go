package editor

import (
	"bytes"
	"fmt"
	"time"

	"github.com/neovim/go-client/nvim"
)

// Level mirrors vim.log.levels.
type Level int

const (
	LevelDebug Level = 1
	LevelInfo  Level = 2
	LevelWarn  Level = 3
	LevelError Level = 4
)

// RPC manages the Neovim RPC connection.
type RPC struct {
	client *nvim.Nvim
}

// ConnectRPC dials the Neovim socket.
// It retries briefly since Neovim may not have the socket ready immediately.
func ConnectRPC(socketPath string) (*RPC, error) {
	if socketPath == "" {
		return nil, fmt.Errorf("connect to nvim: no socket (is $NVIM set?)")
	}

	var client *nvim.Nvim
	var err error

	for i := 0; i < 20; i++ {
		client, err = nvim.Dial(socketPath)
		if err == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to nvim socket: %w", err)
	}

	return &RPC{client: client}, nil
}

// CurrentFile returns the current buffer's file path.
func (r *RPC) CurrentFile() (string, error) {
	buf, err := r.client.CurrentBuffer()
	if err != nil {
		return "", err
	}
	return r.client.BufferName(buf)
}

// BufferContent returns the current buffer, including unsaved edits.
func (r *RPC) BufferContent() ([]byte, error) {
	buf, err := r.client.CurrentBuffer()
	if err != nil {
		return nil, err
	}
	lines, err := r.client.BufferLines(buf, 0, -1, false)
	if err != nil {
		return nil, err
	}
	return joinLines(lines), nil
}

// SetBufferName sets the name of the current buffer.
func (r *RPC) SetBufferName(name string) error {
	buf, err := r.client.CurrentBuffer()
	if err != nil {
		return err
	}
	return r.client.SetBufferName(buf, name)
}

// WriteBuffer writes the current buffer to disk.
func (r *RPC) WriteBuffer() error {
	return r.client.Command("w!")
}

// Notify shows msg through vim.notify.
func (r *RPC) Notify(msg string, level Level) error {
	return r.client.ExecLua("vim.notify(...)", nil, msg, int(level))
}

// Close closes the RPC connection.
func (r *RPC) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

func joinLines(lines [][]byte) []byte {
	if len(lines) == 0 {
		return nil
	}
	out := bytes.Join(lines, []byte("\n"))
	return append(out, '\n')
}
