// Package storage holds small per-visitor key-value state such as the last
// seen invite code. Drivers range from request cookies to shared stores.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("storage closed")

// KV is the key-value view a single visitor sees.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Store is a shared server-side KV that outlives requests.
type Store interface {
	KV
	io.Closer
}

// Scope namespaces every key of store under visitor so visitors never see each other's values.
func Scope(store KV, visitor string) KV {
	return &scoped{store: store, prefix: "visitor:" + visitor + ":"}
}

type scoped struct {
	store  KV
	prefix string
}

func (s *scoped) Get(ctx context.Context, key string) (string, bool, error) {
	return s.store.Get(ctx, s.prefix+key)
}

func (s *scoped) Set(ctx context.Context, key, value string) error {
	return s.store.Set(ctx, s.prefix+key, value)
}

// Options selects and configures a server-side driver.
type Options struct {
	Driver        string
	Path          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open returns the shared store for opts.Driver. The cookie driver keeps
// state in the browser and has no shared store, so Open returns nil for it.
func Open(ctx context.Context, opts Options) (Store, error) {
	var (
		store Store
		err   error
	)
	switch strings.ToLower(opts.Driver) {
	case "cookie", "":
		return nil, nil
	case "memory":
		return NewMemory(), nil
	case "file":
		store, err = NewFileStore(opts.Path)
	case "sqlite":
		store, err = NewSQLite(ctx, opts.Path)
	case "redis":
		store, err = NewRedis(ctx, RedisOptions{Addr: opts.RedisAddr, Password: opts.RedisPassword, DB: opts.RedisDB})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}
