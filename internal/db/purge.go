package db

import "context"

// DefaultDelChunk bounds the number of keys per DEL command.
const DefaultDelChunk = 500

// Deleter removes keys.
type Deleter interface {
	Del(ctx context.Context, keys ...string) error
}

// DelChunked deletes keys in batches of at most size keys.
func DelChunked(ctx context.Context, d Deleter, keys []string, size int) error {
	if size <= 0 {
		size = DefaultDelChunk
	}
	for start := 0; start < len(keys); start += size {
		end := min(start+size, len(keys))
		if err := d.Del(ctx, keys[start:end]...); err != nil {
			return err
		}
	}
	return nil
}
