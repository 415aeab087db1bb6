package archive

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"cornerwatch-go/internal/config"
)

// Uploader stores one object
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte) error
}

// Client wraps the MinIO client for a single bucket
type Client struct {
	client *minio.Client
	bucket string
}

func NewMinioClient(cfg *config.Config) (*Client, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &Client{client: client, bucket: cfg.MinioBucket}, nil
}

func (c *Client) EnsureBucketExists(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return c.client.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{})
	}
	return nil
}

func (c *Client) Upload(ctx context.Context, key string, data []byte) error {
	_, err := c.client.PutObject(
		ctx,
		c.bucket,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{
			ContentType: "image/jpeg",
		},
	)
	if err != nil {
		return fmt.Errorf("upload error: %w", err)
	}
	return nil
}

// ObjectKey prefixes a still name with the capture date, e.g.
// motion_20250314_093000_burst1_Da_L120.0.jpg -> 2025-03-14/motion_...jpg.
// Names without a parsable date go under "undated/".
func ObjectKey(name string) string {
	parts := strings.SplitN(name, "_", 3)
	if len(parts) >= 2 {
		if d, err := time.Parse("20060102", parts[1]); err == nil {
			return d.Format("2006-01-02") + "/" + name
		}
	}
	return "undated/" + name
}

type job struct {
	name string
	data []byte
}

// Mirror copies persisted stills to object storage in the background.
// Enqueue never blocks the detection loop: when the queue is full the still is
// skipped and the local copy remains the only one.
type Mirror struct {
	up      Uploader
	queue   chan job
	timeout time.Duration
	logger  zerolog.Logger

	wg       sync.WaitGroup
	stopOnce sync.Once
	done     chan struct{}
}

func NewMirror(up Uploader, queueSize int, logger zerolog.Logger) *Mirror {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Mirror{
		up:      up,
		queue:   make(chan job, queueSize),
		timeout: 30 * time.Second,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Start launches the upload worker
func (m *Mirror) Start() {
	m.wg.Add(1)
	go m.run()
}

func (m *Mirror) Enqueue(name string, data []byte) {
	select {
	case <-m.done:
		return
	default:
	}

	select {
	case m.queue <- job{name: name, data: data}:
	default:
		m.logger.Warn().Str("file", name).Msg("Mirror queue full, skipping upload")
	}
}

func (m *Mirror) run() {
	defer m.wg.Done()
	for {
		select {
		case j := <-m.queue:
			m.upload(j)
		case <-m.done:
			// flush what is already queued
			for {
				select {
				case j := <-m.queue:
					m.upload(j)
				default:
					return
				}
			}
		}
	}
}

func (m *Mirror) upload(j job) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error().Interface("panic", r).Str("file", j.name).Msg("Mirror upload panic recovered")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	key := ObjectKey(j.name)
	if err := m.up.Upload(ctx, key, j.data); err != nil {
		m.logger.Warn().Err(err).Str("key", key).Msg("Mirror upload failed")
		return
	}
	m.logger.Debug().Str("key", key).Msg("Still mirrored")
}

// Stop flushes queued uploads and waits for the worker, bounded by ctx
func (m *Mirror) Stop(ctx context.Context) error {
	m.stopOnce.Do(func() { close(m.done) })

	finished := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
