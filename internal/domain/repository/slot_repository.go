package repository

import (
	"context"
	"errors"
)

// ErrSlotNotFound is returned by SlotRepository.Read when nothing was stored under the key
var ErrSlotNotFound = errors.New("state slot not found")

// SlotRepository stores opaque payloads under named durable slots.
// Write replaces the previous payload atomically: a failed write leaves the old value readable.
type SlotRepository interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, payload []byte) error
	Delete(ctx context.Context, key string) error
}
