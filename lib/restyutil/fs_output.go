package restyutil

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

// FilesystemOutput writes response bodies to a directory so a run's raw
// source payloads can be inspected afterwards.
type FilesystemOutput struct {
	directory string
	counter   *uint64
}

// NewFilesystemOutput clears and recreates dir.
func NewFilesystemOutput(dir string) (*FilesystemOutput, error) {
	err := os.RemoveAll(dir)
	if err != nil {
		return nil, err
	}
	err = os.MkdirAll(dir, 0777)
	if err != nil {
		return nil, err
	}
	var counter uint64
	return &FilesystemOutput{directory: dir, counter: &counter}, nil
}

func (o *FilesystemOutput) Write(id string, contents []byte) {
	err := os.WriteFile(filepath.Join(o.directory, id), contents, 0600)
	if err != nil {
		slog.Warn("failed to write response dump", "id", id, "err", err)
	}
}

func (o *FilesystemOutput) onAfterResponse(name string) resty.ResponseMiddleware {
	return func(_ *resty.Client, res *resty.Response) error {
		n := atomic.AddUint64(o.counter, 1)
		base := path.Base(res.Request.RawRequest.URL.Path)
		o.Write(fmt.Sprintf("%03d-%s-%s", n, name, base), res.Body())
		return nil
	}
}
