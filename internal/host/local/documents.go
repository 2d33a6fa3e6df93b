package local

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dshills/holonet/internal/host"
)

// Create implements host.Documents. An empty ID gets a fresh one.
func (h *Host) Create(ctx context.Context, doc *host.Document) (*host.Document, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", ErrBadArguments)
	}
	stored := doc.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.Data == nil {
		stored.Data = make(map[string]any)
	}
	if stored.Flags == nil {
		stored.Flags = make(map[string]any)
	}

	h.docsMu.Lock()
	defer h.docsMu.Unlock()
	if _, exists := h.docs[stored.ID]; exists {
		return nil, fmt.Errorf("%w: duplicate id %s", ErrBadArguments, stored.ID)
	}
	h.docs[stored.ID] = stored
	h.order = append(h.order, stored.ID)
	return stored.Clone(), nil
}

// Get implements host.Documents.
func (h *Host) Get(ctx context.Context, id string) (*host.Document, error) {
	h.docsMu.RLock()
	defer h.docsMu.RUnlock()
	doc, ok := h.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return doc.Clone(), nil
}

// Update implements host.Documents. fn edits a copy; the copy is stored
// only when fn succeeds.
func (h *Host) Update(ctx context.Context, id string, fn func(*host.Document) error) (*host.Document, error) {
	h.docsMu.Lock()
	defer h.docsMu.Unlock()
	doc, ok := h.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	edit := doc.Clone()
	if err := fn(edit); err != nil {
		return nil, err
	}
	edit.ID = id
	h.docs[id] = edit
	return edit.Clone(), nil
}

// List implements host.Documents, in creation order.
func (h *Host) List(ctx context.Context, kind host.Kind) ([]*host.Document, error) {
	h.docsMu.RLock()
	defer h.docsMu.RUnlock()
	var out []*host.Document
	for _, id := range h.order {
		if doc := h.docs[id]; doc.Kind == kind {
			out = append(out, doc.Clone())
		}
	}
	return out, nil
}
