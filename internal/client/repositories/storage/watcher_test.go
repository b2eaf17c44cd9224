package storage

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/nyayguru/internal/client/client"
	"github.com/dmitrijs2005/nyayguru/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_RepublishesForeignWrites(t *testing.T) {
	ctx := context.Background()
	db1, path := openStore(t)
	db2, err := client.InitDatabase(ctx, path)
	require.NoError(t, err)
	defer db2.Close()

	w := NewWatcher(db1, "proc-a", time.Hour, logging.Discard())
	sub := w.Subscribe("proc-a", "authToken")
	defer sub.Cancel()

	published, err := w.Poll(ctx)
	require.NoError(t, err)
	require.False(t, published, "first poll is a baseline")

	other := NewSQLiteRepository(db2, "proc-b", nil)
	require.NoError(t, other.SetMany(ctx, map[string][]byte{"authToken": []byte("t1")}))

	published, err = w.Poll(ctx)
	require.NoError(t, err)
	require.True(t, published)

	c := <-sub.C
	assert.Equal(t, "proc-b", c.Origin)
	assert.Equal(t, []string{"authToken"}, c.Keys)

	published, err = w.Poll(ctx)
	require.NoError(t, err)
	require.False(t, published, "no new revision")
}

func TestWatcher_IgnoresSingleOwnWrite(t *testing.T) {
	ctx := context.Background()
	db, _ := openStore(t)

	w := NewWatcher(db, "proc-a", time.Hour, logging.Discard())
	repo := NewSQLiteRepository(db, "proc-a", w)
	sub := w.Subscribe("proc-a")
	defer sub.Cancel()

	_, err := w.Poll(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.SetMany(ctx, map[string][]byte{"user": []byte("{}")}))
	published, err := w.Poll(ctx)
	require.NoError(t, err)
	require.False(t, published)
	require.Len(t, sub.C, 0)
}

func TestWatcher_OwnOriginGapIsReportedAsUnknown(t *testing.T) {
	ctx := context.Background()
	db1, path := openStore(t)
	db2, err := client.InitDatabase(ctx, path)
	require.NoError(t, err)
	defer db2.Close()

	w := NewWatcher(db1, "proc-a", time.Hour, logging.Discard())
	sub := w.Subscribe("proc-a", "authToken")
	defer sub.Cancel()
	_, err = w.Poll(ctx)
	require.NoError(t, err)

	// чужая запись, затем своя: последняя запись в строке изменений наша
	other := NewSQLiteRepository(db2, "proc-b", nil)
	own := NewSQLiteRepository(db1, "proc-a", nil)
	require.NoError(t, other.SetMany(ctx, map[string][]byte{"authToken": []byte("t1")}))
	require.NoError(t, own.SetMany(ctx, map[string][]byte{"user": []byte("{}")}))

	published, err := w.Poll(ctx)
	require.NoError(t, err)
	require.True(t, published)

	c := <-sub.C
	assert.Empty(t, c.Origin)
	assert.Nil(t, c.Keys)
}

func TestWatcher_RunStopsOnCancel(t *testing.T) {
	db, _ := openStore(t)
	w := NewWatcher(db, "proc-a", 10*time.Millisecond, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
