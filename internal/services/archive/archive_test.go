package archive

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
	block   chan struct{}
	err     error
}

func (u *memUploader) Upload(_ context.Context, key string, data []byte) error {
	if u.block != nil {
		<-u.block
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.err != nil {
		return u.err
	}
	if u.objects == nil {
		u.objects = map[string][]byte{}
	}
	u.objects[key] = data
	return nil
}

func (u *memUploader) keys() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]string, 0, len(u.objects))
	for k := range u.objects {
		out = append(out, k)
	}
	return out
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "2025-03-14/motion_20250314_093000_burst1_Da_L120.0.jpg",
		ObjectKey("motion_20250314_093000_burst1_Da_L120.0.jpg"))
	assert.Equal(t, "2024-12-31/corner_20241231_235959_Ni_L2.0.jpg",
		ObjectKey("corner_20241231_235959_Ni_L2.0.jpg"))
	assert.Equal(t, "undated/snapshot.jpg", ObjectKey("snapshot.jpg"))
}

func TestMirror_UploadsAndFlushesOnStop(t *testing.T) {
	up := &memUploader{}
	m := NewMirror(up, 4, zerolog.Nop())
	m.Start()

	m.Enqueue("motion_20250314_093000_burst1_Da_L120.0.jpg", []byte{1})
	m.Enqueue("corner_20250314_093001_Da_L120.0.jpg", []byte{2})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.Stop(ctx))

	assert.ElementsMatch(t, []string{
		"2025-03-14/motion_20250314_093000_burst1_Da_L120.0.jpg",
		"2025-03-14/corner_20250314_093001_Da_L120.0.jpg",
	}, up.keys())
}

func TestMirror_FullQueueDoesNotBlock(t *testing.T) {
	up := &memUploader{block: make(chan struct{})}
	m := NewMirror(up, 1, zerolog.Nop())
	m.Start()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			m.Enqueue("motion_20250314_093000_burst1_Da_L120.0.jpg", []byte{byte(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}

	close(up.block)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.Stop(ctx))
}

func TestMirror_UploadErrorIsLogged(t *testing.T) {
	up := &memUploader{err: errors.New("bucket missing")}
	m := NewMirror(up, 2, zerolog.Nop())
	m.Start()
	m.Enqueue("corner_20250314_093001_Da_L120.0.jpg", []byte{2})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.Stop(ctx))
	assert.Empty(t, up.keys())
}
