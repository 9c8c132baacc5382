package projection

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Store keeps projection files for many sites in one directory and caches
// open readers. Tables are built and persisted on first use.
//
// Readers returned by a store are owned by it: callers must not close them.
// Each Equirect or Mercator call restarts a reader's expiry, and a reader
// the store has not handed out for its TTL is closed. Lookups in flight
// finish before the file is unmapped; later ones return ErrClosed.
type Store struct {
	dir    string
	opts   []Option
	logger *slog.Logger

	mu    sync.Mutex
	cache *cache.Cache
}

// NewStore creates a store rooted at dir, creating the directory if needed.
func NewStore(dir string, ttl time.Duration, opts ...Option) (*Store, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("%w: cache ttl %v", ErrOutOfRange, ttl)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating projection dir: %w", ErrResource, err)
	}

	s := &Store{
		dir:    dir,
		opts:   opts,
		logger: applyOptions(opts).logger,
		cache:  cache.New(ttl, ttl),
	}
	s.cache.OnEvicted(func(key string, v interface{}) {
		if r, ok := v.(*Reader); ok {
			r.Close()
			s.logger.Debug("evicted projection", "key", key)
		}
	})
	return s, nil
}

// Equirect returns the equirectangular table for a site, loading or
// building it as needed.
func (s *Store) Equirect(site Site, params EquirectParams) (*Reader, error) {
	key := siteKey(KindEquirect, site) + "_" + strconv.FormatFloat(params.Scale, 'g', -1, 64)
	return s.get(key, func() (*Projection, error) {
		return BuildEquirect(site, params, s.opts...)
	})
}

// Mercator returns the Web Mercator table for a site, loading or building
// it as needed.
func (s *Store) Mercator(site Site, params MercatorParams) (*Reader, error) {
	key := siteKey(KindMercator, site) + "_z" + strconv.Itoa(ClampZoom(params.Zoom))
	return s.get(key, func() (*Projection, error) {
		return BuildMercator(site, params, s.opts...)
	})
}

// Path returns the file a key is persisted under.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, key+".proj")
}

func siteKey(kind Kind, site Site) string {
	return fmt.Sprintf("%s_%d_%d_%dx%d", kind,
		microdegrees(site.Lat), microdegrees(site.Lon), site.Rangebins, site.RangebinMeters)
}

func (s *Store) get(key string, build func() (*Projection, error)) (*Reader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.cache.Get(key); ok {
		// restart the idle timer
		s.cache.Set(key, v, cache.DefaultExpiration)
		return v.(*Reader), nil
	}
	// drop an expired entry the janitor has not collected yet
	s.cache.Delete(key)

	path := s.Path(key)
	r, err := Open(path, s.opts...)
	if errors.Is(err, fs.ErrNotExist) {
		var p *Projection
		p, err = build()
		if err != nil {
			return nil, err
		}
		if err = p.WriteFile(path); err != nil {
			return nil, err
		}
		s.logger.Info("persisted projection", "path", path)
		r, err = Open(path, s.opts...)
	}
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, r, cache.DefaultExpiration)
	return r, nil
}

// Len returns the number of cached readers.
func (s *Store) Len() int {
	return s.cache.ItemCount()
}

// Close closes every cached reader and empties the cache.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for key, item := range s.cache.Items() {
		if r, ok := item.Object.(*Reader); ok {
			errs = append(errs, r.Close())
		}
		s.cache.Delete(key)
	}
	return errors.Join(errs...)
}
