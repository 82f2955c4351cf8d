package cli

import (
	"fmt"
	"io"

	"github.com/aretw0/wayfinder/internal/config"
	"github.com/aretw0/wayfinder/pkg/adapters/file"
	"github.com/aretw0/wayfinder/pkg/adapters/memory"
	"github.com/aretw0/wayfinder/pkg/adapters/redis"
	"github.com/aretw0/wayfinder/pkg/persistence/middleware"
	"github.com/aretw0/wayfinder/pkg/ports"
)

// Persistence bundles the run store selected by configuration.
type Persistence struct {
	Store  ports.StateStore
	Locker ports.DistributedLocker // nil unless the backend is shared
	closer io.Closer
}

// Close releases backend connections.
func (p *Persistence) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}

// OpenPersistence selects the session backend, sealing it when an
// encryption key is configured.
func OpenPersistence(cfg config.SessionConfig) (*Persistence, error) {
	p, err := openBackend(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.EncryptionKey == "" {
		return p, nil
	}
	mw, err := encryption(cfg)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	p.Store = middleware.Chain(p.Store, mw)
	return p, nil
}

func encryption(cfg config.SessionConfig) (middleware.Middleware, error) {
	active, err := middleware.ParseKey(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("session.encryption_key: %w", err)
	}
	enc := middleware.EncryptionConfig{ActiveKey: active}
	for i, s := range cfg.FallbackKeys {
		key, err := middleware.ParseKey(s)
		if err != nil {
			return nil, fmt.Errorf("session.fallback_keys[%d]: %w", i, err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	return middleware.NewEncryptionMiddleware(enc)
}

func openBackend(cfg config.SessionConfig) (*Persistence, error) {
	switch cfg.Backend {
	case "", "file":
		return &Persistence{Store: file.NewStore(cfg.Dir)}, nil
	case "memory":
		return &Persistence{Store: memory.NewStore()}, nil
	case "redis":
		var opts []redis.Option
		if cfg.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Prefix))
		}
		if cfg.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.TTL))
		}
		store, err := redis.NewFromURL(cfg.RedisURL, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return &Persistence{
			Store:  store,
			Locker: redis.NewLocker(store.Client(), store.Prefix()),
			closer: store,
		}, nil
	}
	return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
}
