package local

import (
	"context"

	"github.com/dshills/holonet/internal/host"
)

// DialogRecord is a dialog the host opened.
type DialogRecord struct {
	Name string
	Data any
}

// Notice is a notification the host showed.
type Notice struct {
	Level   host.NoticeLevel
	Message string
}

// Post implements host.Chat.
func (h *Host) Post(ctx context.Context, msg *host.Message) error {
	h.recMu.Lock()
	defer h.recMu.Unlock()
	h.chat = append(h.chat, msg)
	return nil
}

// Open implements host.Dialogs.
func (h *Host) Open(ctx context.Context, name string, data any) error {
	h.recMu.Lock()
	defer h.recMu.Unlock()
	h.dialogs = append(h.dialogs, DialogRecord{Name: name, Data: data})
	return nil
}

// Play implements host.Media.
func (h *Host) Play(ctx context.Context, opts host.PlayOptions) error {
	h.recMu.Lock()
	defer h.recMu.Unlock()
	h.media = append(h.media, opts)
	return nil
}

// Notify implements host.Notifier.
func (h *Host) Notify(level host.NoticeLevel, msg string) {
	h.log.Info("notify %s: %s", level, msg)
	h.recMu.Lock()
	defer h.recMu.Unlock()
	h.notices = append(h.notices, Notice{Level: level, Message: msg})
}

// ChatLog returns posted messages in order.
func (h *Host) ChatLog() []*host.Message {
	h.recMu.Lock()
	defer h.recMu.Unlock()
	return append([]*host.Message(nil), h.chat...)
}

// Dialogs returns opened dialogs in order.
func (h *Host) Dialogs() []DialogRecord {
	h.recMu.Lock()
	defer h.recMu.Unlock()
	return append([]DialogRecord(nil), h.dialogs...)
}

// Played returns played animations in order.
func (h *Host) Played() []host.PlayOptions {
	h.recMu.Lock()
	defer h.recMu.Unlock()
	return append([]host.PlayOptions(nil), h.media...)
}

// Notices returns shown notifications in order.
func (h *Host) Notices() []Notice {
	h.recMu.Lock()
	defer h.recMu.Unlock()
	return append([]Notice(nil), h.notices...)
}
