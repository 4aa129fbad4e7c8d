package serialreader

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/NotCoffee418/ignyte_sensor/pkg/types"
)

var (
	ErrMalformedFrame = errors.New("malformed frame")
	ErrInvalidCRC     = errors.New("invalid frame crc")
	ErrNotConnected   = errors.New("serial port not connected")
)

// Reader consumes reading frames printed by the ESP32 over USB serial.
type Reader struct {
	port          string
	baudrate      uint
	serialPort    io.ReadWriteCloser
	latestReading *types.RawReading
	readingMutex  sync.RWMutex
	stopSignal    atomic.Bool
}
