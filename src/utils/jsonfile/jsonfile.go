package jsonfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"

	"github.com/yugabyte/chameleon/src/utils"
)

var ErrEmptyFile = errors.New("empty json file")

// JsonFile is a JSON document of type T on disk, such as a run report. Writes
// replace the whole file at once, so a reader or an interrupted run never
// sees half a document.
type JsonFile[T any] struct {
	sync.Mutex
	FilePath string
}

func NewJsonFile[T any](filePath string) *JsonFile[T] {
	return &JsonFile[T]{FilePath: filePath}
}

// Create writes obj, creating parent directories as needed.
func (j *JsonFile[T]) Create(obj *T) error {
	j.Lock()
	defer j.Unlock()
	if err := utils.EnsureDir(filepath.Dir(j.FilePath)); err != nil {
		return err
	}
	return j.write(obj)
}

func (j *JsonFile[T]) Read() (*T, error) {
	j.Lock()
	defer j.Unlock()
	return j.read()
}

func (j *JsonFile[T]) read() (*T, error) {
	bs, err := os.ReadFile(j.FilePath)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", j.FilePath, err)
	}
	if len(bs) == 0 {
		return nil, fmt.Errorf("%s: %w", j.FilePath, ErrEmptyFile)
	}
	obj := new(T)
	err = json.Unmarshal(bs, obj)
	if err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", j.FilePath, err)
	}
	return obj, nil
}

// Update applies fn to the stored document, or to a zero T if there is none
// yet, and writes the result back.
func (j *JsonFile[T]) Update(fn func(*T)) error {
	j.Lock()
	defer j.Unlock()
	obj := new(T)
	if utils.FileOrFolderExists(j.FilePath) {
		var err error
		obj, err = j.read()
		if err != nil {
			return err
		}
	}
	fn(obj)
	return j.write(obj)
}

func (j *JsonFile[T]) write(obj *T) error {
	bs, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(j.FilePath), "."+filepath.Base(j.FilePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write file %s: %w", j.FilePath, err)
	}
	_, err = tmp.Write(append(bs, '\n'))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmp.Name(), 0644)
	}
	if err == nil {
		err = os.Rename(tmp.Name(), j.FilePath)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write file %s: %w", j.FilePath, err)
	}
	return nil
}

func (j *JsonFile[T]) Delete() error {
	j.Lock()
	defer j.Unlock()
	return os.Remove(j.FilePath)
}
