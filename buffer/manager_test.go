package buffer

import (
	"os"
	"testing"
	"time"

	"coredb/file"
	"coredb/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, numBuffers int) (*Manager, *file.Manager) {
	t.Helper()
	dir, err := os.MkdirTemp("", "buffermgr_test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	fm, err := file.NewManager(dir, 400)
	require.NoError(t, err)
	lm, err := log.NewManager(fm, "testlog")
	require.NoError(t, err)

	return NewManager(fm, lm, numBuffers), fm
}

func TestManager_AvailableTracksPinState(t *testing.T) {
	bm, fm := newTestManager(t, 3)
	assert.Equal(t, 3, bm.Available())

	blk, err := fm.Append("testfile")
	require.NoError(t, err)
	buf, err := bm.Pin(blk)
	require.NoError(t, err)
	assert.Equal(t, 2, bm.Available())

	bm.Unpin(buf)
	assert.Equal(t, 3, bm.Available())
}

func TestManager_PinSameBlockTwiceReusesBuffer(t *testing.T) {
	bm, fm := newTestManager(t, 3)
	blk, err := fm.Append("testfile")
	require.NoError(t, err)

	buf1, err := bm.Pin(blk)
	require.NoError(t, err)
	buf2, err := bm.Pin(blk)
	require.NoError(t, err)

	assert.Same(t, buf1, buf2, "pinning a resident block twice must return the same buffer")
	assert.Equal(t, 2, bm.Available(), "one buffer pinned twice still counts as one unavailable buffer")
}

func TestManager_PinTimesOutWhenPoolExhausted(t *testing.T) {
	bm, fm := newTestManager(t, 1)
	blk0, err := fm.Append("testfile")
	require.NoError(t, err)
	_, err = bm.Pin(blk0)
	require.NoError(t, err)

	blk1, err := fm.Append("testfile")
	require.NoError(t, err)

	start := time.Now()
	_, err = bm.Pin(blk1)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoAvailableBuffer)
	assert.Less(t, elapsed, 2*maxWaitTime, "Pin must not block indefinitely")
}

func TestManager_UnpinWakesWaitingPin(t *testing.T) {
	bm, fm := newTestManager(t, 1)
	blk0, err := fm.Append("testfile")
	require.NoError(t, err)
	buf0, err := bm.Pin(blk0)
	require.NoError(t, err)

	blk1, err := fm.Append("testfile")
	require.NoError(t, err)

	result := make(chan error, 1)
	go func() {
		_, err := bm.Pin(blk1)
		result <- err
	}()

	time.Sleep(50 * time.Millisecond)
	bm.Unpin(buf0)

	select {
	case err := <-result:
		assert.NoError(t, err)
	case <-time.After(maxWaitTime):
		t.Fatal("Pin did not unblock after Unpin freed a buffer")
	}
}

func TestManager_FlushAllOnlyFlushesMatchingTxn(t *testing.T) {
	bm, fm := newTestManager(t, 2)

	blkA, err := fm.Append("testfile")
	require.NoError(t, err)
	blkB, err := fm.Append("testfile")
	require.NoError(t, err)

	bufA, err := bm.Pin(blkA)
	require.NoError(t, err)
	bufB, err := bm.Pin(blkB)
	require.NoError(t, err)

	bufA.Contents().SetInt(0, 1)
	bufA.SetModified(1, -1)
	bufB.Contents().SetInt(0, 2)
	bufB.SetModified(2, -1)

	require.NoError(t, bm.FlushAll(1))
	assert.Equal(t, int64(-1), bufA.modifyingTxn())
	assert.Equal(t, int64(2), bufB.modifyingTxn(), "FlushAll(1) must not touch a buffer modified by txn 2")
}
