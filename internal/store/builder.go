package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/nmrhose/nmrhose/internal/infrastructure/storage/minio"
	"github.com/nmrhose/nmrhose/pkg/errors"
)

// Builder partitions a flat HOSE-key→Entry dataset into the 256 chunk_NNN
// artifacts the Store's loaders expect. It is the only place chunk
// artifacts are produced, and runs offline — never from the lookup or
// estimate request path.
type Builder struct {
	repo   minio.ObjectRepository // nil when writing to disk only
	bucket string
}

// NewMinIOBuilder builds chunk artifacts and uploads each directly to an
// object-storage bucket.
func NewMinIOBuilder(repo minio.ObjectRepository, bucket string) *Builder {
	return &Builder{repo: repo, bucket: bucket}
}

// NewFileBuilder returns a Builder with no object-storage repository, for
// use with BuildToFiles, which writes each chunk as a JSON file under the
// root it is given.
func NewFileBuilder() *Builder {
	return &Builder{}
}

// Partition groups a flat dataset by ChunkIndex, returning one Chunk per
// populated index.
func Partition(dataset map[string]Entry) map[int]Chunk {
	chunks := make(map[int]Chunk)
	for key, entry := range dataset {
		idx := ChunkIndex(key)
		c, ok := chunks[idx]
		if !ok {
			c = make(Chunk)
			chunks[idx] = c
		}
		c[key] = entry
	}
	return chunks
}

// BuildToMinIO partitions dataset and uploads every resulting chunk
// (including indices the dataset does not populate, as an empty object —
// keeping the chunk-index space total per the store's chunk assignment
// invariant).
func (b *Builder) BuildToMinIO(ctx context.Context, dataset map[string]Entry) error {
	if b.repo == nil {
		return errors.New(errors.CodeConflict, "builder has no object repository configured")
	}
	chunks := Partition(dataset)
	for idx := 0; idx < NumChunks; idx++ {
		c, ok := chunks[idx]
		if !ok {
			c = make(Chunk)
		}
		data, err := json.Marshal(c)
		if err != nil {
			return errors.Wrap(err, errors.CodeSerialization, "marshaling chunk")
		}
		_, err = b.repo.Upload(ctx, &minio.UploadRequest{
			Bucket:      b.bucket,
			ObjectKey:   minio.BuildChunkObjectKey(idx),
			Data:        data,
			ContentType: "application/json",
		})
		if err != nil {
			return errors.Wrap(err, errors.CodeChunkLoadFailed, "uploading chunk")
		}
	}
	return nil
}

// BuildToFiles partitions dataset and writes every chunk as a JSON file
// under root, one per chunk index.
func (b *Builder) BuildToFiles(root string, dataset map[string]Entry) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return errors.Wrap(err, errors.CodeStorageError, "creating chunk output directory")
	}
	chunks := Partition(dataset)
	for idx := 0; idx < NumChunks; idx++ {
		c, ok := chunks[idx]
		if !ok {
			c = make(Chunk)
		}
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return errors.Wrap(err, errors.CodeSerialization, "marshaling chunk")
		}
		path := filepath.Join(root, minio.BuildChunkObjectKey(idx))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return errors.Wrap(err, errors.CodeStorageError, "writing chunk file")
		}
	}
	return nil
}
