// Package docstore persists whole documents (read everything, mutate, write everything back).
//
// The on-disk format follows the file extension:
//   - .json: sonic, indented
//   - .yaml, .yml: goccy/go-yaml
//   - .toml: go-toml/v2, the value stored under an "items" table
//
// Saves go through a temp file and rename so concurrent readers never observe a torn
// document. Read-modify-write cycles of one Document are serialized in process.
package docstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// Document is a durable value of type T stored in one file
type Document[T any] struct {
	path  string
	seed  func() T
	codec codec[T]
	mu    sync.Mutex
}

// Open binds a document to path. seed produces the value written when the file is missing.
func Open[T any](path string, seed func() T) (*Document[T], error) {
	c, err := codecFor[T](path)
	if err != nil {
		return nil, err
	}
	return &Document[T]{path: path, seed: seed, codec: c}, nil
}

// Path returns the backing file path
func (d *Document[T]) Path() string {
	return d.path
}

// Load reads the whole document. A missing file is seeded and persisted.
func (d *Document[T]) Load() (T, error) {
	v, err := d.read()
	if !errors.Is(err, fs.ErrNotExist) {
		return v, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loadOrSeedLocked()
}

// Save replaces the whole document
func (d *Document[T]) Save(v T) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.write(v)
}

// Update runs a read-modify-write cycle. fn reports whether it changed the value;
// unchanged values are not written back.
func (d *Document[T]) Update(fn func(v *T) (bool, error)) (T, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	v, err := d.loadOrSeedLocked()
	if err != nil {
		return v, err
	}

	changed, err := fn(&v)
	if err != nil || !changed {
		return v, err
	}
	return v, d.write(v)
}

func (d *Document[T]) loadOrSeedLocked() (T, error) {
	v, err := d.read()
	if !errors.Is(err, fs.ErrNotExist) {
		return v, err
	}

	v = d.seed()
	if err := d.write(v); err != nil {
		return v, err
	}
	return v, nil
}

func (d *Document[T]) read() (T, error) {
	var v T
	data, err := os.ReadFile(d.path)
	if err != nil {
		return v, err
	}
	if err := d.codec.decode(data, &v); err != nil {
		return v, fmt.Errorf("decode %s: %w", d.path, err)
	}
	return v, nil
}

func (d *Document[T]) write(v T) error {
	data, err := d.codec.encode(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", d.path, err)
	}

	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(d.path)+".*")
	if err != nil {
		return fmt.Errorf("write %s: %w", d.path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", d.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", d.path, err)
	}
	if err := os.Rename(tmp.Name(), d.path); err != nil {
		return fmt.Errorf("write %s: %w", d.path, err)
	}
	return nil
}

type codec[T any] struct {
	encode func(v T) ([]byte, error)
	decode func(data []byte, v *T) error
}

type tomlEnvelope[T any] struct {
	Items T `toml:"items"`
}

func codecFor[T any](path string) (codec[T], error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return codec[T]{
			encode: func(v T) ([]byte, error) { return sonic.ConfigStd.MarshalIndent(v, "", "  ") },
			decode: func(data []byte, v *T) error { return sonic.ConfigStd.Unmarshal(data, v) },
		}, nil
	case ".yaml", ".yml":
		return codec[T]{
			encode: func(v T) ([]byte, error) { return yaml.Marshal(v) },
			decode: func(data []byte, v *T) error { return yaml.Unmarshal(data, v) },
		}, nil
	case ".toml":
		return codec[T]{
			encode: func(v T) ([]byte, error) { return toml.Marshal(tomlEnvelope[T]{Items: v}) },
			decode: func(data []byte, v *T) error {
				var env tomlEnvelope[T]
				if err := toml.Unmarshal(data, &env); err != nil {
					return err
				}
				*v = env.Items
				return nil
			},
		}, nil
	default:
		return codec[T]{}, fmt.Errorf("unsupported document format: %s", path)
	}
}
