package domain

import (
	"fmt"
	"unicode/utf8"
)

// Default size limits.
const (
	DefaultMaxKeyBytes   = 1024
	DefaultMaxValueBytes = 64 * 1024
)

// Limits bounds the size of keys and values accepted by the store. Zero
// fields select the defaults.
type Limits struct {
	MaxKeyBytes   int `koanf:"max_key_bytes"`
	MaxValueBytes int `koanf:"max_value_bytes"`
}

// DefaultLimits returns the default limits.
func DefaultLimits() Limits {
	return Limits{MaxKeyBytes: DefaultMaxKeyBytes, MaxValueBytes: DefaultMaxValueBytes}
}

func (l Limits) normalized() Limits {
	if l.MaxKeyBytes <= 0 {
		l.MaxKeyBytes = DefaultMaxKeyBytes
	}
	if l.MaxValueBytes <= 0 {
		l.MaxValueBytes = DefaultMaxValueBytes
	}
	return l
}

// Entry is a key/value pair as exchanged with clients.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ValidateKey checks key against l.
func (l Limits) ValidateKey(key string) error {
	l = l.normalized()
	switch {
	case key == "":
		return ErrKeyRequired
	case len(key) > l.MaxKeyBytes:
		return ErrKeyTooLong.WithDetails(fmt.Sprintf("%d bytes, limit %d", len(key), l.MaxKeyBytes))
	case !utf8.ValidString(key):
		return ErrBadRequest.WithDetails("key is not valid UTF-8")
	}
	return nil
}

// ValidateValue checks value against l.
func (l Limits) ValidateValue(value string) error {
	l = l.normalized()
	if len(value) > l.MaxValueBytes {
		return ErrValueTooLarge.WithDetails(fmt.Sprintf("%d bytes, limit %d", len(value), l.MaxValueBytes))
	}
	return nil
}

// Validate checks both halves of e.
func (l Limits) Validate(e Entry) error {
	if err := l.ValidateKey(e.Key); err != nil {
		return err
	}
	return l.ValidateValue(e.Value)
}
