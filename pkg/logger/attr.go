package logger

import (
	"log/slog"
	"time"
)

// Error records err under the key "error". A nil err yields an empty Attr,
// which slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Action records the editor action under the key "action".
func Action(name string) slog.Attr {
	return slog.String("action", name)
}

// Kind records the upload kind under the key "kind".
func Kind[T ~string](kind T) slog.Attr {
	return slog.String("kind", string(kind))
}

// Key records a storage key under the key "key".
func Key(key string) slog.Attr {
	return slog.String("key", key)
}

// State records a result state code under the key "state".
func State[T ~string](code T) slog.Attr {
	return slog.String("state", string(code))
}

// Source records a remote source URL under the key "source".
func Source(url string) slog.Attr {
	return slog.String("source", url)
}

// BatchID records the identifier shared by one batch of remote fetches.
func BatchID(id string) slog.Attr {
	return slog.String("batch_id", id)
}

// Size records a byte count under the key "size".
func Size(n int64) slog.Attr {
	return slog.Int64("size", n)
}

// Duration records d in milliseconds under the key "duration_ms".
func Duration(d time.Duration) slog.Attr {
	return slog.Float64("duration_ms", float64(d)/float64(time.Millisecond))
}
