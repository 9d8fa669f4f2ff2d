package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/kjk/jsonstore/log"
)

// Config describes an S3-compatible destination for snapshots
type Config struct {
	Access   string
	Secret   string
	Bucket   string
	Endpoint string
	Region   string
	// remote directory for snapshots, e.g. "backups/notes"
	Prefix string
}

type Client struct {
	Client *minio.Client
	config *Config
	Bucket string
}

func ctx() context.Context {
	return context.Background()
}

func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, errors.New("must provide config")
	}
	c := config
	if c.Access == "" || c.Secret == "" || c.Bucket == "" || c.Endpoint == "" {
		return nil, errors.New("must provide all fields in config")
	}

	mc, err := minio.New(c.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.Access, c.Secret, ""),
		Region: c.Region,
		Secure: true,
	})
	if err != nil {
		return nil, err
	}
	found, err := mc.BucketExists(ctx(), c.Bucket)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("bucket '%s' doesn't exist", c.Bucket)
	}

	return &Client{
		Client: mc,
		config: config,
		Bucket: config.Bucket,
	}, nil
}

func (c *Client) Exists(remotePath string) bool {
	_, err := c.Client.StatObject(ctx(), c.Bucket, remotePath, minio.StatObjectOptions{})
	return err == nil
}

func (c *Client) UploadData(remotePath string, data []byte) (minio.UploadInfo, error) {
	contentType := mime.TypeByExtension(filepath.Ext(remotePath))
	opts := minio.PutObjectOptions{
		ContentType: contentType,
	}
	r := bytes.NewBuffer(data)
	return c.Client.PutObject(ctx(), c.Bucket, remotePath, r, int64(len(data)), opts)
}

func (c *Client) UploadFile(remotePath string, localPath string) (minio.UploadInfo, error) {
	contentType := mime.TypeByExtension(filepath.Ext(remotePath))
	opts := minio.PutObjectOptions{
		ContentType: contentType,
	}
	return c.Client.FPutObject(ctx(), c.Bucket, remotePath, localPath, opts)
}

// ListSnapshots returns remote snapshot objects under the configured prefix
func (c *Client) ListSnapshots() <-chan minio.ObjectInfo {
	opts := minio.ListObjectsOptions{
		Prefix:    c.config.Prefix,
		Recursive: true,
	}
	return c.Client.ListObjects(ctx(), c.Bucket, opts)
}

// Upload takes a compressed snapshot of srcPath and uploads it under
// the configured prefix. Returns the remote path.
func (c *Client) Upload(srcPath string, compression string) (string, error) {
	d, err := os.ReadFile(srcPath)
	if err != nil {
		return "", fmt.Errorf("backup: failed to read '%s': %w", srcPath, err)
	}
	d, err = compressData(d, compression)
	if err != nil {
		return "", err
	}
	name, err := SnapshotName(srcPath, time.Now(), compression)
	if err != nil {
		return "", err
	}
	remotePath := path.Join(c.config.Prefix, name)
	if _, err = c.UploadData(remotePath, d); err != nil {
		return "", err
	}
	log.Verbosef("backup: uploaded '%s' to bucket '%s'\n", remotePath, c.Bucket)
	return remotePath, nil
}
