package service

import (
	"context"
	"sort"

	"minecraft-store/internal/cache"
	"minecraft-store/internal/catalog"
	"minecraft-store/internal/client"
	"minecraft-store/internal/model"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// StoreServer is one game server with its own webstore token.
type StoreServer struct {
	Type  model.ServerType
	Token string
}

// ServersFromConfig keeps the servers that have a category table, in a
// stable order. With nothing configured every known server is served
// from mock data.
func ServersFromConfig(tokens map[string]string, logger *zap.Logger) []StoreServer {
	var servers []StoreServer
	for name, token := range tokens {
		st := model.ServerType(name)
		if _, ok := catalog.TableFor(st); !ok {
			logger.Warn("ignoring server without category table", zap.String("server", name))
			continue
		}
		servers = append(servers, StoreServer{Type: st, Token: token})
	}
	if len(servers) == 0 {
		servers = []StoreServer{{Type: model.ServerFactions}, {Type: model.ServerPrison}}
	}
	sort.Slice(servers, func(i, j int) bool { return servers[i].Type < servers[j].Type })
	return servers
}

type CatalogService interface {
	// Catalog never fails: fresh data, then stale data, then mock data.
	Catalog(ctx context.Context) model.Catalog
	Storefront(ctx context.Context, server model.ServerType) (*model.Storefront, bool)
	FindPackage(ctx context.Context, packageID int) (*model.Package, bool)
	Invalidate()
}

type catalogServiceImpl struct {
	tebex   client.TebexClient
	servers []StoreServer
	cache   *cache.TTL[model.Catalog]
	group   singleflight.Group
	logger  *zap.Logger
}

func NewCatalogService(
	tebex client.TebexClient,
	servers []StoreServer,
	catalogCache *cache.TTL[model.Catalog],
	logger *zap.Logger,
) CatalogService {
	return &catalogServiceImpl{
		tebex:   tebex,
		servers: servers,
		cache:   catalogCache,
		logger:  logger,
	}
}

func (s *catalogServiceImpl) Catalog(ctx context.Context) model.Catalog {
	if c, ok := s.cache.Get(); ok {
		return c
	}

	// Concurrent misses share one refresh. The refresh outlives a caller
	// that hangs up so the others still get their answer.
	v, _, _ := s.group.Do("catalog", func() (any, error) {
		if c, ok := s.cache.Get(); ok {
			return c, nil
		}
		return s.refresh(context.WithoutCancel(ctx)), nil
	})
	return v.(model.Catalog)
}

func (s *catalogServiceImpl) refresh(ctx context.Context) model.Catalog {
	stale, _ := s.cache.Stale()
	fresh := make(model.Catalog, len(s.servers))
	fetched := 0

	for _, srv := range s.servers {
		sf, err := s.fetch(ctx, srv)
		if err == nil {
			fresh[srv.Type] = sf
			fetched++
			continue
		}

		if old, ok := stale[srv.Type]; ok {
			s.logger.Warn("catalog fetch failed, serving stale data",
				zap.String("server", string(srv.Type)), zap.Error(err))
			fresh[srv.Type] = old
			continue
		}
		s.logger.Warn("catalog fetch failed, serving mock data",
			zap.String("server", string(srv.Type)), zap.Error(err))
		fresh[srv.Type] = catalog.Mock(srv.Type)
	}

	// Total failure leaves the cache as it was so the next read tries again.
	if fetched > 0 {
		s.cache.Set(fresh)
	}
	return fresh
}

func (s *catalogServiceImpl) fetch(ctx context.Context, srv StoreServer) (*model.Storefront, error) {
	if srv.Token == "" {
		return nil, errNoToken
	}
	packages, err := s.tebex.ListPackages(ctx, srv.Token)
	if err != nil {
		return nil, err
	}
	return catalog.Build(srv.Type, packages)
}

func (s *catalogServiceImpl) Storefront(ctx context.Context, server model.ServerType) (*model.Storefront, bool) {
	sf, ok := s.Catalog(ctx)[server]
	return sf, ok
}

func (s *catalogServiceImpl) FindPackage(ctx context.Context, packageID int) (*model.Package, bool) {
	return s.Catalog(ctx).FindPackage(packageID)
}

func (s *catalogServiceImpl) Invalidate() {
	s.cache.Invalidate()
}
