package serialreader

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/NotCoffee418/ignyte_sensor/pkg/types"
	"github.com/jacobsa/go-serial/serial"
	"github.com/sigurn/crc16"
	log "github.com/sirupsen/logrus"
)

// CRC16/ARC over the JSON text and the trailing '!'
var crcTable = crc16.MakeTable(crc16.CRC16_ARC)

// Initialize a new serial Reader client.
func NewReader(port string, baudrate uint) *Reader {
	return &Reader{
		port:     port,
		baudrate: baudrate,
	}
}

// Start listening for frames. The firmware prints one per sample.
// Runs in goroutine. handleReading() is called from the reading goroutine.
func (p *Reader) StartReading(
	handleReading func(reading *types.RawReading),
	handleError func(error),
) {
	p.stopSignal.Store(false)

	go func() {
		// Tolerance before we report error.
		consecutiveErrors := 0
		maxErrors := 10
		var lastError error

		// Initialize the connection
		if err := p.connect(); err != nil {
			handleError(err)
			return
		}

		lines := bufio.NewReader(p.serialPort)
		for consecutiveErrors < maxErrors {
			// Check for Stop command
			if p.stopSignal.Load() {
				log.Println("Stop signal received, disconnecting")
				p.disconnect()
				return
			}

			reading, err := p.readFrame(lines)
			if err != nil {
				consecutiveErrors++
				lastError = err
				log.WithFields(log.Fields{"port": p.port}).
					Warnf("Error reading frame (%d/%d): %v", consecutiveErrors, maxErrors, err)
				if err == io.EOF {
					time.Sleep(time.Second)
				}
				continue
			}

			p.readingMutex.Lock()
			p.latestReading = reading
			p.readingMutex.Unlock()

			handleReading(reading)
			consecutiveErrors = 0
		}

		log.Printf("Too many consecutive errors (%d), stopping reader: %v", maxErrors, lastError)
		handleError(lastError)
		p.disconnect()
	}()
}

func (p *Reader) StopReading() {
	p.stopSignal.Store(true)
}

func (p *Reader) GetLatestReading() *types.RawReading {
	p.readingMutex.RLock()
	defer p.readingMutex.RUnlock()
	return p.latestReading
}

// Open the connection to the serial port.
func (p *Reader) connect() error {
	options := serial.OpenOptions{
		PortName:        p.port,
		BaudRate:        p.baudrate,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
	}

	port, err := serial.Open(options)
	if err != nil {
		return fmt.Errorf("failed to open serial port: %w", err)
	}

	p.serialPort = port
	log.Printf("Connected to ESP32 on %s", p.port)
	return nil
}

func (p *Reader) disconnect() {
	if p.serialPort != nil {
		p.serialPort.Close()
		log.Println("Disconnected from serial port")
	}
}

// readFrame skips firmware log lines until it finds a frame.
func (p *Reader) readFrame(r *bufio.Reader) (*types.RawReading, error) {
	if p.serialPort == nil {
		return nil, ErrNotConnected
	}

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}

		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "{") {
			continue
		}
		return ParseFrame(line)
	}
}

// ParseFrame decodes a `<json>!<crc>` line into a reading.
func ParseFrame(line string) (*types.RawReading, error) {
	line = strings.TrimSpace(line)
	sep := strings.LastIndexByte(line, '!')
	if sep < 0 || len(line)-sep-1 != 4 {
		return nil, ErrMalformedFrame
	}

	if !ValidateCRC(line) {
		return nil, ErrInvalidCRC
	}

	reading, err := types.RawReadingFromJsonBytes([]byte(line[:sep]))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	return reading, nil
}

func ValidateCRC(line string) bool {
	sep := strings.LastIndexByte(line, '!')
	if sep < 0 || len(line)-sep-1 < 4 {
		return false
	}

	data := line[:sep+1]
	givenCRC := line[sep+1 : sep+5]
	return strings.ToUpper(givenCRC) == Checksum(data)
}

// Checksum returns the frame CRC as four upper case hex digits.
func Checksum(data string) string {
	return fmt.Sprintf("%04X", crc16.Checksum([]byte(data), crcTable))
}

// Frame renders a reading as the firmware would print it.
func Frame(reading types.RawReading) string {
	data := string(reading.ToJsonBytes()) + "!"
	return data + Checksum(data)
}
