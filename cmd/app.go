package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	contractx "github.com/tanpawarit/hitl-purchase-agent/agent/contract"
	statex "github.com/tanpawarit/hitl-purchase-agent/agent/state"
	"github.com/tanpawarit/hitl-purchase-agent/agent/state/memory"
	"github.com/tanpawarit/hitl-purchase-agent/agent/state/postgres"
	configx "github.com/tanpawarit/hitl-purchase-agent/pkg/config"
	seedx "github.com/tanpawarit/hitl-purchase-agent/pkg/seed"
)

const (
	storeDriverPostgres = "postgres"
	storeDriverMemory   = "memory"

	transcriptDriverStore   = "store"
	transcriptDriverUpstash = "upstash"
)

type AppConfig struct {
	HTTPAddr         string        `envconfig:"HTTP_ADDR" default:":8080"`
	StoreDriver      string        `envconfig:"STORE_DRIVER" default:"postgres"`
	TranscriptDriver string        `envconfig:"TRANSCRIPT_DRIVER" default:"store"`
	ShutdownTimeout  time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	// SeedProducts random products are loaded at startup when the store is in memory.
	SeedProducts int `envconfig:"SEED_PRODUCTS" default:"50"`
}

type recordStore interface {
	contractx.Gateway
	contractx.TranscriptRecorder
}

// backend is the process-wide set of storage handles, built once and passed
// into the services.
type backend struct {
	store      recordStore
	transcript contractx.TranscriptRecorder
	db         *bun.DB
}

func (b *backend) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

func openBackend(ctx context.Context, app AppConfig) (*backend, error) {
	b := &backend{}

	switch app.StoreDriver {
	case storeDriverPostgres:
		pgCfg, err := configx.New[postgres.Config]("POSTGRES")
		if err != nil {
			return nil, err
		}
		db, err := postgres.Open(ctx, *pgCfg)
		if err != nil {
			return nil, err
		}
		b.db = db
		b.store = postgres.NewStore(db)
	case storeDriverMemory:
		b.store = memory.New()
	default:
		return nil, fmt.Errorf("%w: unsupported STORE_DRIVER=%q", contractx.ErrValidation, app.StoreDriver)
	}

	switch app.TranscriptDriver {
	case transcriptDriverStore:
		b.transcript = b.store
	case transcriptDriverUpstash:
		redisCfg, err := configx.New[statex.UpstashRedisConfig]("UPSTASH_REDIS")
		if err != nil {
			b.Close()
			return nil, err
		}
		transcript, err := statex.NewUpstashTranscript(*redisCfg)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.transcript = transcript
	default:
		b.Close()
		return nil, fmt.Errorf("%w: unsupported TRANSCRIPT_DRIVER=%q", contractx.ErrValidation, app.TranscriptDriver)
	}

	return b, nil
}

// requirePersistentStore guards commands whose writes must outlive the process.
func requirePersistentStore(app AppConfig) error {
	if app.StoreDriver == storeDriverMemory {
		return fmt.Errorf(
			"%w: STORE_DRIVER=memory keeps data only inside one process; use postgres, or SEED_PRODUCTS with serve",
			contractx.ErrValidation,
		)
	}
	return nil
}

// seedMemoryCatalog fills an in-memory catalog and returns how many products
// it inserted. Other drivers are left alone.
func seedMemoryCatalog(ctx context.Context, app AppConfig, b *backend) (int, error) {
	if app.StoreDriver != storeDriverMemory || app.SeedProducts <= 0 {
		return 0, nil
	}
	if err := seedx.New(b.store, nil).Products(ctx, app.SeedProducts); err != nil {
		return 0, fmt.Errorf("seed memory catalog: %w", err)
	}
	return app.SeedProducts, nil
}
