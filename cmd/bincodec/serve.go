package main

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net"
	"time"

	"github.com/benjamin-larsen/bincodec/codec"
)

// OverflowPolicy decides what a Server does with a frame larger than
// MaxMessageSize.
type OverflowPolicy int

const (
	OverflowDiscard OverflowPolicy = iota
	OverflowTerminate
)

var (
	errFrameTooLarge = errors.New("bincodec: frame exceeds MaxMessageSize")
	errShortFrame    = errors.New("bincodec: short frame read")
)

// Server is a thin length-prefixed framing demo around a single Codec:
// each frame is a 4-byte little-endian length prefix followed by exactly
// that many encoded bytes, which the server decodes and logs. There is
// no message-type routing and no streaming decode — the whole frame is
// buffered before Codec.Decode runs, per the codec's single-buffer
// contract.
type Server struct {
	Codec          *codec.Codec
	MaxMessageSize uint32
	OverflowPolicy OverflowPolicy
	listener       net.Listener
}

// ListenAndServe accepts connections until the listener is closed.
func (s *Server) ListenAndServe(network, address string) error {
	listener, err := net.Listen(network, address)
	if err != nil {
		return err
	}
	s.listener = listener
	defer listener.Close()

	log.Printf("bincodec serve: listening on %s", address)

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				break
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				log.Printf("bincodec serve: temporary accept error: %v", err)
				time.Sleep(3 * time.Second)
				continue
			}
			log.Printf("bincodec serve: permanent accept error: %v", err)
			return err
		}
		go s.handleConn(conn)
	}

	log.Print("bincodec serve: shutting down")
	return nil
}

func (s *Server) handleConn(netConn net.Conn) {
	log.Printf("bincodec serve: connection from %s", netConn.RemoteAddr())
	defer netConn.Close()

	for {
		if err := s.nextFrame(netConn); err != nil {
			if !errors.Is(err, io.EOF) {
				log.Printf("bincodec serve: %v", err)
			}
			break
		}
	}

	log.Printf("bincodec serve: connection closed %s", netConn.RemoteAddr())
}

func (s *Server) nextFrame(conn net.Conn) error {
	var lenBuf [4]byte
	if _, err := io.ReadFull(conn, lenBuf[:]); err != nil {
		return err
	}
	frameLen := binary.LittleEndian.Uint32(lenBuf[:])

	if frameLen > s.MaxMessageSize {
		switch s.OverflowPolicy {
		case OverflowDiscard:
			_, err := io.CopyN(io.Discard, conn, int64(frameLen))
			return err
		default:
			return errFrameTooLarge
		}
	}

	payload := make([]byte, frameLen)
	n, err := io.ReadFull(conn, payload)
	if err != nil {
		return err
	}
	if uint32(n) != frameLen {
		return errShortFrame
	}

	doc, err := s.Codec.Decode(payload)
	if err != nil {
		log.Printf("bincodec serve: decode error: %v", err)
		return nil
	}

	pretty, err := json.Marshal(doc)
	if err != nil {
		log.Printf("bincodec serve: marshal error: %v", err)
		return nil
	}
	log.Printf("bincodec serve: decoded frame: %s", pretty)
	return nil
}
