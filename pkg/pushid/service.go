package pushid

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"
)

// Decode returns the instant encoded in the first 8 characters of id.
// The prefix is a big-endian base-64 millisecond epoch; the rest of id is ignored.
func Decode(id string) (time.Time, error) {
	ms, err := DecodeMillis(id)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}

// DecodeMillis is Decode without the conversion to time.Time.
func DecodeMillis(id string) (int64, error) {
	if len(id) < TimestampLength {
		return 0, &DecodeError{ID: id, Position: -1, Err: ErrTooShort}
	}

	var ms int64
	for i := 0; i < TimestampLength; i++ {
		idx := strings.IndexByte(Alphabet, id[i])
		if idx < 0 {
			return 0, &DecodeError{ID: id, Position: i}
		}
		ms = ms*64 + int64(idx)
	}
	return ms, nil
}

// EncodeTimestamp renders t as the 8 character push-id prefix.
func EncodeTimestamp(t time.Time) string {
	ms := t.UnixMilli()
	var buf [TimestampLength]byte
	for i := TimestampLength - 1; i >= 0; i-- {
		buf[i] = Alphabet[ms%64]
		ms /= 64
	}
	return string(buf[:])
}

// Generator produces strictly increasing push ids.
// Ids minted within the same millisecond reuse the previous random
// suffix incremented by one, so sort order follows creation order.
type Generator struct {
	mu       sync.Mutex
	lastMs   int64
	lastRand [RandomLength]int
	now      func() time.Time
}

func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// New returns the next push id.
func (g *Generator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	t := g.now()
	ms := t.UnixMilli()
	if ms == g.lastMs {
		// Carry the increment through the suffix
		i := RandomLength - 1
		for ; i >= 0 && g.lastRand[i] == 63; i-- {
			g.lastRand[i] = 0
		}
		if i >= 0 {
			g.lastRand[i]++
		}
	} else {
		g.lastMs = ms
		var b [RandomLength]byte
		if _, err := rand.Read(b[:]); err != nil {
			panic(err)
		}
		for i := range b {
			g.lastRand[i] = int(b[i] % 64)
		}
	}

	var sb strings.Builder
	sb.Grow(TimestampLength + RandomLength)
	sb.WriteString(EncodeTimestamp(t))
	for _, r := range g.lastRand {
		sb.WriteByte(Alphabet[r])
	}
	return sb.String()
}
