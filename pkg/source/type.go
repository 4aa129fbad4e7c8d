package source

import (
	"context"
	"errors"

	"github.com/NotCoffee418/ignyte_sensor/pkg/types"
)

var (
	ErrDeviceNotFound = errors.New("device not found in export")
	ErrUnexpectedBody = errors.New("unexpected response body")
)

// Loader produces the current raw snapshot for the pipeline.
// Implementations may block on I/O and must honour ctx.
type Loader interface {
	Load(ctx context.Context) (types.RawSnapshot, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) (types.RawSnapshot, error)

func (f LoaderFunc) Load(ctx context.Context) (types.RawSnapshot, error) {
	return f(ctx)
}

// firebaseExport is the layout of a full database export.
type firebaseExport struct {
	Devices map[string]struct {
		Readings types.RawSnapshot `json:"readings"`
	} `json:"devices"`
}
