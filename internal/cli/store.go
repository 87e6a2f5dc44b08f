package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/screengraph/internal/config"
	"github.com/aretw0/screengraph/pkg/adapters/file"
	"github.com/aretw0/screengraph/pkg/adapters/memory"
	"github.com/aretw0/screengraph/pkg/adapters/redis"
	"github.com/aretw0/screengraph/pkg/persistence/middleware"
	"github.com/aretw0/screengraph/pkg/ports"
)

// Persistence bundles the configured snapshot store with its optional locker.
type Persistence struct {
	Store  ports.SnapshotStore
	Locker ports.DistributedLocker
	close  func() error
}

// Close releases the backend connection, if any.
func (p *Persistence) Close() error {
	if p.close == nil {
		return nil
	}
	return p.close()
}

// OpenStore builds the store selected by cfg. The redis backend also provides
// a distributed locker. Masking and encryption wrap the backend when
// configured, masking first so that masked values are what gets sealed.
func OpenStore(cfg *config.Config, logger *slog.Logger) (*Persistence, error) {
	p := &Persistence{}
	switch cfg.Store {
	case config.StoreMemory:
		p.Store = memory.NewStore()
	case config.StoreFile:
		p.Store = file.New(cfg.StoreDir)
	case config.StoreRedis:
		rs := redis.New(cfg.RedisAddr, "", 0, redis.WithTTL(cfg.RedisTTL))
		p.Store = rs
		p.Locker = redis.NewLocker(rs.Client(), redis.DefaultPrefix)
		p.close = rs.Close
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}

	var mws []middleware.Middleware
	if len(cfg.MaskFields) > 0 {
		mw, err := middleware.NewPIIMiddleware(cfg.MaskFields)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	if cfg.EncryptionKey != "" {
		key, err := cfg.Key()
		if err != nil {
			return nil, err
		}
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	p.Store = middleware.Chain(p.Store, mws...)

	logger.Debug("store opened", "backend", cfg.Store, "locking", p.Locker != nil, "middlewares", len(mws))
	return p, nil
}
