// Package storage is the document gateway for the betting pool. Documents are
// named JSON blobs; a Google Cloud Storage bucket is tried first when
// configured and every operation transparently falls back to a local file
// mirror. Remote failures are logged and swallowed - callers only ever see an
// error when the local mirror itself fails.
package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/padraicbc/betapi/config"
	"github.com/padraicbc/betapi/models"
)

const (
	remoteTimeout  = 15 * time.Second
	remoteAttempts = 3
	retryDelay     = 100 * time.Millisecond
)

// errRemoteNotFound marks a clean remote miss, as opposed to an outage.
var errRemoteNotFound = errors.New("object not found")

// remote is the minimal object-store surface the gateway needs. The GCS
// implementation lives in gcs.go; tests inject fakes.
type remote interface {
	download(ctx context.Context, name string) ([]byte, error)
	upload(ctx context.Context, name string, data []byte) error
	delete(ctx context.Context, name string) error
}

// Gateway loads and saves named JSON documents. Keys are extensionless
// relative paths ("race_days/2025-03-08"); both backends append ".json".
type Gateway struct {
	remote  remote // nil when no bucket is configured
	dataDir string
	log     *zap.Logger
}

// Setup builds a Gateway from config. A missing bucket name is not an error,
// only a signal to run against the local mirror exclusively.
func Setup(cfg *config.Config, log *zap.Logger) (*Gateway, error) {
	g := &Gateway{dataDir: cfg.DataDir, log: log}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, models.Storagef("create data dir %s: %v", cfg.DataDir, err)
	}

	if cfg.BucketName == "" {
		log.Info("storage: no bucket configured, using local mirror only",
			zap.String("dataDir", cfg.DataDir))
		return g, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
	defer cancel()

	gcs, err := newGCSStore(ctx, cfg.BucketName, cfg.ProjectID, cfg.CredentialsPath)
	if err != nil {
		// Treat a broken remote exactly like an absent one.
		log.Warn("storage: cloud storage unavailable, using local mirror only",
			zap.String("bucket", cfg.BucketName), zap.Error(err))
		return g, nil
	}

	g.remote = gcs
	log.Info("storage: cloud storage initialized", zap.String("bucket", cfg.BucketName))
	return g, nil
}

// Load returns the document stored under key. The remote store is consulted
// first; any remote trouble falls through to the local mirror. A document
// absent from both stores is a NotFound domain error.
func (g *Gateway) Load(ctx context.Context, key string) ([]byte, error) {
	if g.remote != nil {
		data, err := g.loadRemote(ctx, key)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, errRemoteNotFound) {
			g.log.Warn("storage: remote load failed, falling back to local",
				zap.String("key", key), zap.Error(err))
		}
	}

	data, err := os.ReadFile(g.localPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, models.NotFoundf("document %s not found", key)
		}
		return nil, models.Storagef("read %s: %v", key, err)
	}
	return data, nil
}

// Save writes the document under key. The local mirror is written first and
// its failure is fatal; the remote upload is best effort.
func (g *Gateway) Save(ctx context.Context, key string, data []byte) error {
	path := g.localPath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return models.Storagef("create dir for %s: %v", key, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return models.Storagef("write %s: %v", key, err)
	}

	if g.remote != nil {
		if err := g.saveRemote(ctx, key, data); err != nil {
			g.log.Warn("storage: remote save failed, local mirror holds the document",
				zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}

// Exists reports whether a document is stored under key in either backend.
func (g *Gateway) Exists(ctx context.Context, key string) bool {
	_, err := g.Load(ctx, key)
	return err == nil
}

// Delete removes the document from both backends. Missing documents are not
// an error.
func (g *Gateway) Delete(ctx context.Context, key string) error {
	if g.remote != nil {
		rctx, cancel := context.WithTimeout(ctx, remoteTimeout)
		if err := g.remote.delete(rctx, g.objectName(key)); err != nil && !errors.Is(err, errRemoteNotFound) {
			g.log.Warn("storage: remote delete failed", zap.String("key", key), zap.Error(err))
		}
		cancel()
	}
	if err := os.Remove(g.localPath(key)); err != nil && !os.IsNotExist(err) {
		return models.Storagef("delete %s: %v", key, err)
	}
	return nil
}

func (g *Gateway) loadRemote(ctx context.Context, key string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < remoteAttempts; attempt++ {
		rctx, cancel := context.WithTimeout(ctx, remoteTimeout)
		data, err := g.remote.download(rctx, g.objectName(key))
		cancel()
		if err == nil {
			return data, nil
		}
		if errors.Is(err, errRemoteNotFound) {
			return nil, err
		}
		lastErr = err
		time.Sleep(retryDelay)
	}
	return nil, lastErr
}

func (g *Gateway) saveRemote(ctx context.Context, key string, data []byte) error {
	var lastErr error
	for attempt := 0; attempt < remoteAttempts; attempt++ {
		rctx, cancel := context.WithTimeout(ctx, remoteTimeout)
		err := g.remote.upload(rctx, g.objectName(key), data)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		time.Sleep(retryDelay)
	}
	return lastErr
}

func (g *Gateway) objectName(key string) string {
	return key + ".json"
}

func (g *Gateway) localPath(key string) string {
	return filepath.Join(g.dataDir, filepath.FromSlash(strings.TrimPrefix(key, "/"))+".json")
}
