package coap

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// IDSource generates fresh tokens and message IDs for transactions.
type IDSource interface {
	NextToken() Token
	NextMessageID() uint16
}

// RandomIDs generates random tokens and sequential message IDs starting
// from a random value.
type RandomIDs struct {
	lock  sync.Mutex
	msgID uint16
}

// NewRandomIDs creates a RandomIDs.
func NewRandomIDs() *RandomIDs {
	var seed [2]byte
	fillRandom(seed[:])
	return &RandomIDs{msgID: binary.BigEndian.Uint16(seed[:])}
}

// NextToken implements IDSource.
func (s *RandomIDs) NextToken() (t Token) {
	fillRandom(t[:])
	return
}

// NextMessageID implements IDSource.
func (s *RandomIDs) NextMessageID() uint16 {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.msgID++
	return s.msgID
}

func fillRandom(b []byte) {
	if _, err := rand.Read(b); err != nil {
		n := uint64(time.Now().UnixNano())
		for i := range b {
			b[i] = byte(n >> (uint(i%8) * 8))
		}
	}
}
