// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Package corpus owns the on-disk corpus layout (§6.2): reading the seed
// directory at startup, and mirroring each CorpusDelta the scheduler
// produces onto <out_corpus>/<sub-pool>/<cplx>--<hash>.<ext> files with
// atomic renames, deleting files named in a delta's remove list.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/loiclec/fuzzcheck-go/pkg/pool"
	"github.com/loiclec/fuzzcheck-go/pkg/serialize"
)

// Hash returns the short non-cryptographic digest §6.2 uses in corpus and
// artifact file names.
func Hash(data []byte) string {
	return fmt.Sprintf("%08x", xxhash.Sum64(data))
}

// FileName formats the "<cplx:.4>--<hash>.<ext>" name §6.2 specifies.
func FileName(cplx float64, hash, ext string) string {
	return fmt.Sprintf("%.4f--%s.%s", cplx, hash, ext)
}

// ArtifactDir formats "<artifacts>/<failure_id>/<cplx:.4>" from §6.2.
func ArtifactDir(artifactsRoot, failureID string, cplx float64) string {
	return filepath.Join(artifactsRoot, failureID, fmt.Sprintf("%.4f", cplx))
}

func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Writer mirrors one pool's CorpusDelta stream onto a sub-directory of the
// out_corpus, tracking which file backs each still-live Index so that a
// later Remove can delete the right one.
type Writer[T any] struct {
	dir        string
	serializer serialize.Serializer[T]
	paths      map[pool.Index]string
}

// NewWriter creates the sub-pool directory dir (if absent) and returns a
// Writer that serializes values with serializer.
func NewWriter[T any](dir string, serializer serialize.Serializer[T]) (*Writer[T], error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Writer[T]{dir: dir, serializer: serializer, paths: map[pool.Index]string{}}, nil
}

// Apply mirrors one CorpusDelta onto disk: writes the admitted value (if
// any) under its complexity-and-hash name, and removes the files backing
// every evicted Index. Write errors abort only this flush (§7.3); remove
// errors are ignored (the file may already be gone).
func (w *Writer[T]) Apply(delta pool.CorpusDelta[T], cplx float64) error {
	for _, idx := range delta.Remove {
		if p, ok := w.paths[idx]; ok {
			os.Remove(p)
			delete(w.paths, idx)
		}
	}
	if delta.Add == nil {
		return nil
	}
	data := w.serializer.ToData(delta.Add.Value)
	path := filepath.Join(w.dir, FileName(cplx, Hash(data), w.serializer.Extension()))
	if err := atomicWrite(path, data); err != nil {
		return err
	}
	w.paths[delta.Add.Index] = path
	return nil
}

// LoadDir decodes every regular file under dir with serializer, skipping
// (not failing on) files that fail to deserialize (§7.4) — a missing
// directory is treated as an empty corpus, not an error. Files are read
// and decoded concurrently, one goroutine per file, since a seed corpus
// can hold thousands of entries and decoding is independent per file.
func LoadDir[T any](dir string, serializer serialize.Serializer[T]) ([]T, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}

	decoded := make([]T, len(names))
	valid := make([]bool, len(names))
	var g errgroup.Group
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			data, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				return nil
			}
			if v, ok := serializer.FromData(data); ok {
				decoded[i] = v
				valid[i] = true
			}
			return nil
		})
	}
	g.Wait() // worker funcs above never return a non-nil error

	values := make([]T, 0, len(names))
	for i, v := range decoded {
		if valid[i] {
			values = append(values, v)
		}
	}
	return values, nil
}

// WriteArtifact writes a failing input under <artifacts>/<failure_id>/<cplx>/<hash>.<ext>.
func WriteArtifact[T any](artifactsRoot, failureID string, cplx float64, serializer serialize.Serializer[T], value T) (string, error) {
	dir := ArtifactDir(artifactsRoot, failureID, cplx)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	data := serializer.ToData(value)
	path := filepath.Join(dir, Hash(data)+"."+serializer.Extension())
	if err := atomicWrite(path, data); err != nil {
		return "", err
	}
	return path, nil
}
