package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/padraicbc/betapi/config"
	"github.com/padraicbc/betapi/models"
)

type fakeRemote struct {
	objects map[string][]byte
	fail    bool
}

func (f *fakeRemote) download(_ context.Context, name string) ([]byte, error) {
	if f.fail {
		return nil, errors.New("remote unreachable")
	}
	data, ok := f.objects[name]
	if !ok {
		return nil, errRemoteNotFound
	}
	return data, nil
}

func (f *fakeRemote) upload(_ context.Context, name string, data []byte) error {
	if f.fail {
		return errors.New("remote unreachable")
	}
	f.objects[name] = data
	return nil
}

func (f *fakeRemote) delete(_ context.Context, name string) error {
	if f.fail {
		return errors.New("remote unreachable")
	}
	delete(f.objects, name)
	return nil
}

func TestLocalOnlyRoundTrip(t *testing.T) {
	gw, err := Setup(&config.Config{DataDir: t.TempDir()}, zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	doc := []byte(`{"users":[],"version":1}`)

	require.NoError(t, gw.Save(ctx, "users", doc))
	got, err := gw.Load(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestNestedKeysCreateDirectories(t *testing.T) {
	gw, err := Setup(&config.Config{DataDir: t.TempDir()}, zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, gw.Save(ctx, "race_days/2025-03-08", []byte(`{}`)))

	got, err := gw.Load(ctx, "race_days/2025-03-08")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{}`), got)
}

func TestLoadMissingIsNotFound(t *testing.T) {
	gw, err := Setup(&config.Config{DataDir: t.TempDir()}, zap.NewNop())
	require.NoError(t, err)

	_, err = gw.Load(context.Background(), "no-such-doc")
	require.Error(t, err)
	assert.Equal(t, models.KindNotFound, models.KindOf(err))
}

func TestUnreachableRemoteFallsBackToLocal(t *testing.T) {
	gw := &Gateway{
		remote:  &fakeRemote{fail: true},
		dataDir: t.TempDir(),
		log:     zap.NewNop(),
	}

	ctx := context.Background()
	doc := []byte(`{"users":[{"id":"1","name":"Alice","totalScore":0}],"version":1}`)

	// Remote save fails silently; the local mirror holds the document.
	require.NoError(t, gw.Save(ctx, "users", doc))

	got, err := gw.Load(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestRemotePreferredWhenHealthy(t *testing.T) {
	remote := &fakeRemote{objects: map[string][]byte{
		"users.json": []byte(`{"from":"remote"}`),
	}}
	gw := &Gateway{remote: remote, dataDir: t.TempDir(), log: zap.NewNop()}

	ctx := context.Background()
	got, err := gw.Load(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"from":"remote"}`), got)
}

func TestSaveMirrorsToBothStores(t *testing.T) {
	remote := &fakeRemote{objects: map[string][]byte{}}
	gw := &Gateway{remote: remote, dataDir: t.TempDir(), log: zap.NewNop()}

	ctx := context.Background()
	require.NoError(t, gw.Save(ctx, "current/bets", []byte(`{"bets":[]}`)))

	assert.Contains(t, remote.objects, "current/bets.json")

	// Remote dies afterwards; the mirror still answers.
	remote.fail = true
	got, err := gw.Load(ctx, "current/bets")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"bets":[]}`), got)
}

func TestDelete(t *testing.T) {
	gw, err := Setup(&config.Config{DataDir: t.TempDir()}, zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, gw.Save(ctx, "users", []byte(`{}`)))
	require.NoError(t, gw.Delete(ctx, "users"))
	assert.False(t, gw.Exists(ctx, "users"))

	// Deleting a missing document is not an error.
	require.NoError(t, gw.Delete(ctx, "users"))
}
