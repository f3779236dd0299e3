// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

// Publisher stores a built bundle under name and returns its public URL.
type Publisher interface {
	Publish(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// LocalPublisher writes bundles below Dir, served under BaseURL.
type LocalPublisher struct {
	Dir     string
	BaseURL string
}

// Publish implements Publisher. Existing files are kept since bundle names
// are content hashes.
func (p *LocalPublisher) Publish(_ context.Context, name, _ string, data []byte) (string, error) {
	url := strings.TrimRight(p.BaseURL, "/") + "/" + name
	dest := filepath.Join(p.Dir, filepath.FromSlash(name))

	if _, err := os.Stat(dest); err == nil {
		return url, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("stat bundle: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("create bundle dir: %w", err)
	}
	if err := atomic.WriteFile(dest, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("write bundle: %w", err)
	}
	return url, nil
}

// ObjectStore is the part of the object storage client S3Publisher needs.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Exists(ctx context.Context, key string) (bool, error)
	FileURL(key string) string
}

// S3Publisher uploads bundles to object storage under Prefix.
type S3Publisher struct {
	Store  ObjectStore
	Prefix string
}

// Publish implements Publisher.
func (p *S3Publisher) Publish(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := path.Join(p.Prefix, name)

	exists, err := p.Store.Exists(ctx, key)
	if err != nil {
		return "", err
	}
	if !exists {
		if err := p.Store.Upload(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
			return "", err
		}
	}
	return p.Store.FileURL(key), nil
}
