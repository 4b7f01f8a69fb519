package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nmrhose/nmrhose/internal/infrastructure/storage/minio"
	"github.com/nmrhose/nmrhose/pkg/errors"
)

// ChunkLoader fetches one chunk's raw content by index. Implementations do
// no caching of their own — that is the Store's job, layered on top.
type ChunkLoader interface {
	LoadChunk(ctx context.Context, idx int) (Chunk, error)
}

// MinIOLoader loads chunk artifacts from an object-storage bucket.
type MinIOLoader struct {
	repo   minio.ObjectRepository
	bucket string
}

func NewMinIOLoader(repo minio.ObjectRepository, bucket string) *MinIOLoader {
	return &MinIOLoader{repo: repo, bucket: bucket}
}

func (l *MinIOLoader) LoadChunk(ctx context.Context, idx int) (Chunk, error) {
	key := minio.BuildChunkObjectKey(idx)
	res, err := l.repo.Download(ctx, l.bucket, key)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeChunkLoadFailed, fmt.Sprintf("loading chunk %d from %s/%s", idx, l.bucket, key))
	}
	var chunk Chunk
	if err := json.Unmarshal(res.Data, &chunk); err != nil {
		return nil, errors.Wrap(err, errors.CodeChunkDecodeFailed, fmt.Sprintf("decoding chunk %d", idx))
	}
	return chunk, nil
}

// FileLoader loads chunk artifacts from a directory on disk, one JSON file
// per chunk, named the same way MinIOLoader names its objects.
type FileLoader struct {
	root string
}

func NewFileLoader(root string) *FileLoader {
	return &FileLoader{root: root}
}

func (l *FileLoader) LoadChunk(ctx context.Context, idx int) (Chunk, error) {
	path := filepath.Join(l.root, minio.BuildChunkObjectKey(idx))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeChunkLoadFailed, fmt.Sprintf("loading chunk %d from %s", idx, path))
	}
	var chunk Chunk
	if err := json.Unmarshal(data, &chunk); err != nil {
		return nil, errors.Wrap(err, errors.CodeChunkDecodeFailed, fmt.Sprintf("decoding chunk %d", idx))
	}
	return chunk, nil
}
