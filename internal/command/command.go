// Package command carries page switches and settings saves from the button
// and the configuration server to the single dispatch loop.
package command

import (
	"context"
	"fmt"

	"github.com/photonicat/feed_display/internal/settings"
)

// Command is one self-contained instruction for the dispatch loop.
type Command interface {
	Kind() string
	command()
}

type SwitchPage struct{}

type SavePersonalConfig struct{ Data settings.Personal }

type SaveWifiConfig struct{ Data settings.Wifi }

type SaveRssConfig struct{ Data settings.Rss }

type SaveStockConfig struct{ Data settings.Stock }

func (SwitchPage) Kind() string         { return "switch_page" }
func (SavePersonalConfig) Kind() string { return "save_personal" }
func (SaveWifiConfig) Kind() string     { return "save_wifi" }
func (SaveRssConfig) Kind() string      { return "save_rss" }
func (SaveStockConfig) Kind() string    { return "save_stock" }

func (SwitchPage) command()         {}
func (SavePersonalConfig) command() {}
func (SaveWifiConfig) command()     {}
func (SaveRssConfig) command()      {}
func (SaveStockConfig) command()    {}

// FromRecord wraps a settings record in its save command.
func FromRecord(r settings.Record) (Command, error) {
	switch v := r.(type) {
	case settings.Personal:
		return SavePersonalConfig{Data: v}, nil
	case settings.Wifi:
		return SaveWifiConfig{Data: v}, nil
	case settings.Rss:
		return SaveRssConfig{Data: v}, nil
	case settings.Stock:
		return SaveStockConfig{Data: v}, nil
	default:
		return nil, fmt.Errorf("no command for settings record %T", r)
	}
}

// DefaultBusSize is the number of commands that can queue before senders block.
const DefaultBusSize = 16

// Bus is a multi-producer, single-consumer command queue.
type Bus struct {
	ch chan Command
}

func NewBus(size int) *Bus {
	if size <= 0 {
		size = DefaultBusSize
	}
	return &Bus{ch: make(chan Command, size)}
}

// Sender returns a producer handle; it cannot receive.
func (b *Bus) Sender() Sender {
	return Sender{ch: b.ch}
}

type Sender struct {
	ch chan<- Command
}

// Send queues cmd, waiting for space until ctx is done.
func (s Sender) Send(ctx context.Context, cmd Command) error {
	select {
	case s.ch <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
