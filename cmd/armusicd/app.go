package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/Ariyanaktar101/ar-music-sub000/internal/audio"
	"github.com/Ariyanaktar101/ar-music-sub000/internal/config"
	"github.com/Ariyanaktar101/ar-music-sub000/internal/httpapi"
	"github.com/Ariyanaktar101/ar-music-sub000/internal/ipc"
	"github.com/Ariyanaktar101/ar-music-sub000/internal/library"
	"github.com/Ariyanaktar101/ar-music-sub000/internal/lyrics"
	"github.com/Ariyanaktar101/ar-music-sub000/internal/media"
	"github.com/Ariyanaktar101/ar-music-sub000/internal/player"
	"github.com/Ariyanaktar101/ar-music-sub000/internal/playlist"
	"github.com/Ariyanaktar101/ar-music-sub000/internal/provider"
	"github.com/Ariyanaktar101/ar-music-sub000/internal/queue"
	"github.com/Ariyanaktar101/ar-music-sub000/internal/radio"
	"github.com/Ariyanaktar101/ar-music-sub000/internal/store"
	"github.com/Ariyanaktar101/ar-music-sub000/internal/types"
)

// AppOptions is the daemon's dependency graph
func AppOptions(opts Options) fx.Option {
	return fx.Options(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		fx.Supply(opts),
		fx.Provide(
			newLogger,
			newConfig,
			newKV,
			newAdapter,
			newProviders,
			newTransport,
			newMediaSession,
			queue.NewManager,
			queue.NewStore,
			library.New,
			playlist.NewManager,
			radio.NewEngine,
			lyrics.NewEngine,
			newController,
			newDispatcher,
			newIPCServer,
			newHTTPServer,
		),
		fx.Invoke(registerHooks),
	)
}

// newLogger creates the root logger. Verbose switches to a development logger.
func newLogger(opts Options) (*zap.Logger, error) {
	if opts.Verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newConfig(opts Options, logger *zap.Logger) (*config.Config, error) {
	mgr := config.NewManager(opts.ConfigDir, logger)
	if err := mgr.Load(); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return mgr.Get(), nil
}

// newKV opens the configured durable store
func newKV(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (store.KV, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		logger.Warn("Using in-memory store, state will not survive a restart")
		return store.NewMemoryKV(), nil
	case config.BackendRedis:
		kv, err := store.NewRedisKVFromURL(cfg.Store.RedisURL, cfg.Store.RedisPrefix)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := kv.Ping(ctx); err != nil {
					return fmt.Errorf("redis store unreachable: %w", err)
				}
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return kv.Close()
			},
		})
		return kv, nil
	default:
		logger.Info("Using file store", zap.String("dir", cfg.DataDir))
		return store.NewFileKV(cfg.DataDir), nil
	}
}

// newAdapter wraps the store. Pending writes are flushed on stop.
func newAdapter(lc fx.Lifecycle, kv store.KV, logger *zap.Logger) *store.Adapter {
	adapter := store.NewAdapter(kv, logger)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return adapter.Close()
		},
	})
	return adapter
}

type providers struct {
	fx.Out

	Search  provider.Searcher
	Suggest provider.Suggester
	Lyrics  provider.LyricsSource
	Art     provider.ArtGenerator
}

// newProviders builds HTTP clients for every configured endpoint; the rest are no-ops
func newProviders(cfg *config.Config, logger *zap.Logger) providers {
	hc := provider.NewHTTPClient(logger, cfg.Providers.Timeout())
	noop := provider.Noop{}
	p := providers{Search: noop, Suggest: noop, Lyrics: noop, Art: noop}

	if u := cfg.Providers.SearchURL; u != "" {
		p.Search = provider.NewSearchClient(hc, u)
	}
	if u := cfg.Providers.SuggestURL; u != "" {
		p.Suggest = provider.NewSuggestClient(hc, u)
	}
	if u := cfg.Providers.LyricsURL; u != "" {
		p.Lyrics = provider.NewLyricsClient(hc, u)
	}
	if u := cfg.Providers.ArtURL; u != "" {
		p.Art = provider.NewArtClient(hc, u)
	}
	return p
}

func newTransport(cfg *config.Config, logger *zap.Logger) audio.Transport {
	return audio.NewClock(cfg.Playback.Tick(), logger)
}

// newMediaSession registers with the OS media session, falling back to a no-op
func newMediaSession(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) media.Session {
	if !cfg.Media.Enabled {
		return media.NewNoOpSession()
	}
	session, err := media.NewSession(logger)
	if err != nil {
		logger.Warn("Continuing without OS media integration", zap.Error(err))
		return media.NewNoOpSession()
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return session.Close()
		},
	})
	return session
}

type controllerParams struct {
	fx.In

	Config     *config.Config
	Queue      *queue.Manager
	QueueStore *queue.Store
	Radio      *radio.Engine
	Lyrics     *lyrics.Engine
	Library    *library.Library
	Transport  audio.Transport
	Session    media.Session
	Adapter    *store.Adapter
	Logger     *zap.Logger
}

func newController(p controllerParams) *player.Controller {
	return player.New(player.Deps{
		Queue:      p.Queue,
		QueueStore: p.QueueStore,
		Radio:      p.Radio,
		Lyrics:     p.Lyrics,
		Library:    p.Library,
		Transport:  p.Transport,
		Session:    p.Session,
		Adapter:    p.Adapter,
		Logger:     p.Logger,
		Volume:     p.Config.Playback.DefaultVolume,
	})
}

func newDispatcher(p *player.Controller, lib *library.Library, playlists *playlist.Manager, logger *zap.Logger) ipc.Handler {
	return ipc.NewDispatcher(p, lib, playlists, logger)
}

func newIPCServer(opts Options, h ipc.Handler, logger *zap.Logger) *ipc.Server {
	return ipc.NewServer(opts.SocketPath, h, logger)
}

// newHTTPServer returns nil when the HTTP API is disabled
func newHTTPServer(cfg *config.Config, h ipc.Handler, logger *zap.Logger) *httpapi.Server {
	if !cfg.HTTP.Enabled {
		return nil
	}
	return httpapi.NewServer(cfg.HTTP.Addr, h, logger)
}

type hookParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Logger    *zap.Logger
	Player    *player.Controller
	Playlists *playlist.Manager
	IPC       *ipc.Server
	HTTP      *httpapi.Server
}

// registerHooks starts the servers and shuts the session down in order:
// servers first, then playback and background work, then the store (its own hook).
func registerHooks(p hookParams) {
	var (
		cancel context.CancelFunc
		served chan error
	)

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Player.SetOnNotice(func(n types.Notice) {
				p.IPC.Broadcast(ipc.PushNotice, n)
			})

			if err := p.IPC.Listen(); err != nil {
				return err
			}
			var serveCtx context.Context
			serveCtx, cancel = context.WithCancel(context.Background())
			served = make(chan error, 1)
			go func() { served <- p.IPC.Serve(serveCtx) }()

			if p.HTTP != nil {
				if err := p.HTTP.Start(); err != nil {
					cancel()
					<-served
					return err
				}
			}

			p.Logger.Info("armusicd started", zap.String("version", Version), zap.String("socket", p.IPC.SocketPath()))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Logger.Info("Shutting down")

			var errs []error
			if p.HTTP != nil {
				errs = append(errs, p.HTTP.Shutdown(ctx))
			}
			cancel()
			select {
			case err := <-served:
				errs = append(errs, err)
			case <-ctx.Done():
				errs = append(errs, ctx.Err())
			}

			p.Player.Close()
			done := make(chan struct{})
			go func() {
				p.Player.Wait()
				p.Playlists.Wait()
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(5 * time.Second):
				p.Logger.Warn("Background work still running at shutdown")
			case <-ctx.Done():
			}

			_ = p.Logger.Sync()
			return errors.Join(errs...)
		},
	})
}
