// Package retroarch captures GBA memory snapshots over RetroArch's UDP
// network command interface. The core has no "dump save state" command, so
// a snapshot is assembled from chunked READ_CORE_MEMORY reads of the two
// work-RAM banks, IWRAM first then EWRAM to match the serializer layout the
// locator's full scan expects.
package retroarch

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"StateScope/emulator"
)

const (
	iwramBus  = 0x03000000
	iwramSize = 0x8000
	ewramBus  = 0x02000000
	ewramSize = 0x40000

	// Bytes per READ_CORE_MEMORY request. Responses are hex tokens, so the
	// wire size is roughly 3x this plus the echoed command; 1024 keeps a
	// response comfortably inside one datagram.
	chunkSize = 1024
)

type Client struct {
	log  zerolog.Logger
	m    sync.Mutex
	conn *net.UDPConn
	addr *net.UDPAddr

	status emulator.ConnectionStatus
	seq    uint64

	respBuf []byte
	cmdBuf  []byte
}

func NewClient(logger zerolog.Logger, host, port string) *Client {
	addr, _ := net.ResolveUDPAddr("udp", host+":"+port)
	return &Client{
		log:     logger.With().Str("component", "retroarch").Logger(),
		addr:    addr,
		respBuf: make([]byte, 8192),
		cmdBuf:  make([]byte, 0, 64),
	}
}

func (c *Client) Connect() emulator.ConnectionStatus {
	conn, err := net.DialUDP("udp", nil, c.addr)
	if err != nil {
		c.log.Warn().Err(err).Msg("dial failed")
		return emulator.Disconnected
	}
	c.conn = conn

	if _, err := c.conn.Write([]byte("VERSION")); err != nil {
		c.log.Warn().Err(err).Msg("version probe failed")
		return emulator.Disconnected
	}
	_ = c.conn.SetReadDeadline(time.Now().Add(time.Second))
	n, err := c.conn.Read(c.respBuf)
	_ = c.conn.SetReadDeadline(time.Time{})
	if err != nil || n == 0 {
		c.log.Warn().Err(err).Msg("no version reply")
		return emulator.Disconnected
	}

	c.status = emulator.Connected
	return emulator.Connected
}

func (c *Client) Status() emulator.ConnectionStatus {
	return c.status
}

func (c *Client) Close() error {
	c.status = emulator.Disconnected
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// CaptureSnapshot dumps both work-RAM banks into a fresh buffer. Every
// capture gets a new sequence number; the UDP interface gives no way to
// tell whether memory changed between reads.
func (c *Client) CaptureSnapshot(ctx context.Context) (emulator.Snapshot, error) {
	c.m.Lock()
	defer c.m.Unlock()

	c.drainStale()

	buf := make([]byte, iwramSize+ewramSize)
	if err := c.readRegion(ctx, iwramBus, buf[:iwramSize]); err != nil {
		return emulator.Snapshot{}, err
	}
	if err := c.readRegion(ctx, ewramBus, buf[iwramSize:]); err != nil {
		return emulator.Snapshot{}, err
	}

	c.seq++
	return emulator.Snapshot{Seq: c.seq, Data: buf}, nil
}

// drainStale discards datagrams left over from an interrupted capture so
// chunk replies don't pair with the wrong request.
func (c *Client) drainStale() {
	_ = c.conn.SetReadDeadline(time.Now())
	for {
		if _, err := c.conn.Read(c.respBuf); err != nil {
			break
		}
	}
	_ = c.conn.SetReadDeadline(time.Time{})
}

func (c *Client) readRegion(ctx context.Context, bus uint32, dst []byte) error {
	for off := 0; off < len(dst); off += chunkSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		n := chunkSize
		if rem := len(dst) - off; rem < n {
			n = rem
		}

		msg := c.buildReadCoreMemoryCmd(bus+uint32(off), n)
		if _, err := c.conn.Write(msg); err != nil {
			c.status = emulator.Reconnecting
			return err
		}

		_ = c.conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
		rn, err := c.conn.Read(c.respBuf)
		if err != nil {
			c.status = emulator.Reconnecting
			return err
		}

		if err := decodeReadCoreMemory(c.respBuf[:rn], dst[off:off+n]); err != nil {
			if errors.Is(err, emulator.ErrGameNotLoaded) {
				c.status = emulator.WaitingForGame
			}
			return err
		}
	}
	c.status = emulator.Connected
	return nil
}

func (c *Client) buildReadCoreMemoryCmd(address uint32, size int) []byte {
	c.cmdBuf = c.cmdBuf[:0]
	c.cmdBuf = append(c.cmdBuf, "READ_CORE_MEMORY "...)
	c.cmdBuf = appendHexUpper(c.cmdBuf, uint64(address))
	c.cmdBuf = append(c.cmdBuf, ' ')
	c.cmdBuf = strconv.AppendInt(c.cmdBuf, int64(size), 10)
	return c.cmdBuf
}
