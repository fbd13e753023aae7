package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"brightroots/internal/backend"
	"brightroots/internal/channel"
	"brightroots/internal/config"
	"brightroots/internal/directory"
	"brightroots/internal/locate"
	"brightroots/internal/models"
	"brightroots/internal/reconcile"
	"brightroots/internal/signal"
	"brightroots/internal/storage"
	"brightroots/pkg/graceful"
	"brightroots/pkg/kafkaclient"
	"brightroots/pkg/location"
)

// app holds everything a command needs, built from cfg.
type app struct {
	cfg        *config.Config
	persistent channel.Channel
	address    *channel.Address
	bus        signal.Bus
	store      *reconcile.Store
	profile    *locate.Profile
	backend    directory.Backend
	postgres   *backend.Postgres
	closers    graceful.Stack
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	persistent, err := a.openPersistent(ctx)
	if err != nil {
		a.close()
		return nil, err
	}
	a.persistent = persistent

	a.address, err = channel.NewAddress(cfg.Address, cfg.AddressCapacity)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("shared-state address: %w", err)
	}

	a.bus = a.openBus(ctx)
	a.store = reconcile.NewStore(reconcile.Channels{
		Persistent: persistent,
		Session:    channel.NewMemory(),
		Shared:     a.address,
	}, reconcile.WithNotifier(a.bus))
	a.profile = locate.NewProfile(persistent)

	if cfg.DatabaseURL != "" {
		pg, err := backend.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			a.close()
			return nil, err
		}
		a.closers.Defer("database", func() error { pg.Close(); return nil })
		a.postgres = pg
		a.backend = pg
	} else {
		log.Println("No database configured, using the built-in sample directory")
		a.backend = backend.NewStatic(sampleProviders(time.Now()))
	}
	return a, nil
}

func (a *app) openPersistent(ctx context.Context) (channel.Channel, error) {
	switch a.cfg.Persistent {
	case config.BackendMemory:
		return channel.NewMemory(), nil
	case config.BackendMinIO:
		s3, err := storage.NewS3Channel(storage.S3Config{
			Endpoint:  a.cfg.MinIOEndpoint,
			AccessKey: a.cfg.MinIOAccessKey,
			SecretKey: a.cfg.MinIOSecretKey,
			UseSSL:    a.cfg.MinIOUseSSL,
			Region:    a.cfg.MinIORegion,
			Bucket:    a.cfg.MinIOBucket,
			Namespace: a.cfg.Namespace,
		})
		if err != nil {
			return nil, err
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			log.Printf("Bucket not ready, will retry on first write: %v", err)
		}
		return s3, nil
	default:
		db, err := storage.OpenSQLiteChannel(a.cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers.Defer("sqlite", db.Close)
		return db, nil
	}
}

// openBus returns a Kafka-backed bus when a broker is configured and an
// in-process hub otherwise.
func (a *app) openBus(ctx context.Context) signal.Bus {
	if a.cfg.KafkaBroker == "" {
		return signal.NewHub()
	}

	consumer, err := kafkaclient.NewKafkaConsumer(a.cfg.KafkaTopic, a.cfg.KafkaGroup, a.cfg.KafkaBroker)
	if err != nil {
		log.Printf("Kafka unavailable, change signals stay in-process: %v", err)
		return signal.NewHub()
	}
	producer := kafkaclient.NewKafkaProducer(a.cfg.KafkaTopic, a.cfg.KafkaBroker)
	log.Printf("Connecting to Kafka broker: %s on topic: %s with group ID: %s",
		a.cfg.KafkaBroker, a.cfg.KafkaTopic, a.cfg.KafkaGroup)

	bus := signal.NewKafkaBus(producer, consumer, a.cfg.Origin)
	consumer.StartConsuming(ctx)
	go bus.Run(ctx)

	a.closers.Defer("kafka producer", producer.Close)
	a.closers.Defer("kafka consumer", func() error { consumer.Stop(); return nil })
	return bus
}

// resolver builds the location chain. A non-nil fix stands in for both the
// saved location and the device position.
func (a *app) resolver(fix *models.Coordinates, remember bool) *locate.Resolver {
	if fix != nil {
		return locate.NewResolver(nil, location.Static{Coordinates: *fix})
	}
	opts := locate.DiscoveryOptions
	opts.Timeout = a.cfg.DiscoveryTimeout
	opts.MaxAge = a.cfg.DiscoveryMaxAge

	positions := location.NewIPLocator(a.cfg.GeolocationURL, location.Permission(a.cfg.GeolocationPermission))
	return locate.NewResolver(a.profile, positions,
		locate.WithOptions(opts),
		locate.WithFallback(a.cfg.Default),
		locate.WithRemember(remember),
	)
}

func (a *app) close() {
	_ = a.closers.Close()
}
