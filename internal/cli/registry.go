package cli

import (
	"context"

	"github.com/fustilio/glost/pkg/annotators"
	"github.com/fustilio/glost/pkg/cache"
	"github.com/fustilio/glost/pkg/extension"
	"github.com/fustilio/glost/pkg/provider"
)

// buildRegistry assembles the extension registry from config: dictionary
// and frequency providers (JSON file, http(s) URL, or mongo), wrapped
// with the configured cache backend. The returned cleanup closes provider
// connections and the cache; it is safe to call on a nil error path only.
func buildRegistry(ctx context.Context, cfg *Config) (*extension.Registry, func(), error) {
	logger := loggerFromContext(ctx)

	c, err := buildCache(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	var closers []func()
	closers = append(closers, func() { _ = c.Close() })
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	dict, dictClose, err := buildProvider(ctx, "dictionary", cfg.Dictionary)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if dictClose != nil {
		closers = append(closers, dictClose)
	}

	freq, freqClose, err := buildProvider(ctx, "frequency", cfg.Frequency)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if freqClose != nil {
		closers = append(closers, freqClose)
	}

	keyer := cache.NewDefaultKeyer()
	if dict != nil {
		dict = provider.NewCached(dict, c, keyer, cache.TTLProvider)
	} else {
		logger.Debug("no dictionary source configured, transcription extensions disabled")
	}
	if freq != nil {
		freq = provider.NewCached(freq, c, keyer, cache.TTLProvider)
	} else {
		logger.Debug("no frequency source configured, frequency extension disabled")
	}

	return annotators.Default(dict, freq), cleanup, nil
}

// buildCache selects the cache backend from config.
func buildCache(ctx context.Context, cfg *Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case "", "none":
		return cache.NewNullCache(), nil
	case "memory":
		return cache.NewMemoryCache(), nil
	case "file":
		dir, err := cfg.Cache.cacheDir()
		if err != nil {
			return nil, err
		}
		return cache.NewFileCache(dir)
	case "redis":
		return cache.NewRedisCache(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
	}
	// validate() rejects unknown backends before we get here.
	return cache.NewNullCache(), nil
}

// buildProvider constructs a dictionary provider from a DictConfig.
// Returns a nil provider when no source is configured.
func buildProvider(ctx context.Context, name string, cfg DictConfig) (provider.Provider, func(), error) {
	switch {
	case cfg.Path != "":
		p, err := provider.LoadStaticDict(name, cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return p, nil, nil
	case cfg.URL != "":
		spinner := newSpinnerWithContext(ctx, "Downloading "+name+"...")
		spinner.Start()
		p, err := provider.LoadStaticDictURL(ctx, name, cfg.URL)
		if err != nil {
			spinner.StopWithError("Could not download the " + name)
			return nil, nil, err
		}
		spinner.Stop()
		return p, nil, nil
	case cfg.MongoURI != "":
		// Connect verifies the server with a ping, which can stall on
		// an unreachable host until the driver times out.
		spinner := newSpinnerWithContext(ctx, "Connecting to "+name+" store...")
		spinner.Start()
		p, disconnect, err := provider.NewMongoDict(ctx, provider.MongoDictConfig{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
			Name:       name,
		})
		if err != nil {
			spinner.StopWithError("Could not connect to the " + name + " store")
			return nil, nil, err
		}
		spinner.Stop()
		return p, func() { _ = disconnect(context.Background()) }, nil
	default:
		return nil, nil, nil
	}
}
