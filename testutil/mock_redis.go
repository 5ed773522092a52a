// Package testutil provides an in-process Redis stand-in speaking RESP over
// net.Pipe. It understands the commands the lock store issues and lets tests
// inject failures at the wire level.
package testutil

import (
	"bufio"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MockRedis is a simple in-memory Redis mock for testing
type MockRedis struct {
	mu      sync.Mutex
	data    map[string]mockValue
	scripts map[string]string
	calls   map[string]int

	// failReply, when set, is returned verbatim as an error reply to every command
	failReply string
}

type mockValue struct {
	value     string
	expiresAt time.Time
}

func (v mockValue) expired(now time.Time) bool {
	return !v.expiresAt.IsZero() && !now.Before(v.expiresAt)
}

// NewMockRedis creates a new mock Redis instance
func NewMockRedis() *MockRedis {
	return &MockRedis{
		data:    make(map[string]mockValue),
		scripts: make(map[string]string),
		calls:   make(map[string]int),
	}
}

// NewMockRedisClient creates a Redis client that uses the mock
func NewMockRedisClient() (*redis.Client, *MockRedis) {
	mock := NewMockRedis()
	client := redis.NewClient(&redis.Options{
		Addr:       "mock",
		Dialer:     mock.dialer,
		MaxRetries: -1,
	})
	return client, mock
}

// SetShouldFail makes every command fail with a generic error reply
func (m *MockRedis) SetShouldFail(fail bool) {
	if fail {
		m.SetFailReply("ERR mock redis failure")
		return
	}
	m.SetFailReply("")
}

// SetFailReply makes every command fail with reply, e.g. "WRONGPASS invalid password".
// An empty reply restores normal operation.
func (m *MockRedis) SetFailReply(reply string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failReply = reply
}

// Calls returns how many times cmd was received
func (m *MockRedis) Calls(cmd string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[strings.ToUpper(cmd)]
}

// Get returns the live value of key
func (m *MockRedis) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.lookup(key)
	return v.value, ok
}

// Dialer returns a function that can be used as client.Config.Dialer for testing.
func (m *MockRedis) Dialer() func(context.Context, string, string) (net.Conn, error) {
	return m.dialer
}

func (m *MockRedis) dialer(_ context.Context, _, _ string) (net.Conn, error) {
	clientConn, serverConn := net.Pipe()
	go m.serveConn(serverConn)
	return clientConn, nil
}

func (m *MockRedis) serveConn(conn net.Conn) {
	defer func() { _ = conn.Close() }()

	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)
	for {
		args, err := readCommand(reader)
		if err != nil {
			return
		}
		if err := m.handleCommand(args, writer); err != nil {
			_ = writer.Flush()
			return
		}
		if err := writer.Flush(); err != nil {
			return
		}
	}
}

func (m *MockRedis) handleCommand(args []string, w *bufio.Writer) error {
	if len(args) == 0 {
		return writeError(w, "ERR empty command")
	}
	cmd := strings.ToUpper(args[0])

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls[cmd]++
	if m.failReply != "" {
		return writeError(w, m.failReply)
	}

	switch cmd {
	case "PING":
		return writeSimpleString(w, "PONG")
	case "SET":
		return m.handleSet(args, w)
	case "GET":
		return m.handleGet(args, w)
	case "DEL":
		return m.handleDel(args, w)
	case "EVAL":
		if len(args) < 2 {
			return writeError(w, "ERR wrong number of arguments for 'eval' command")
		}
		m.scripts[scriptSHA(args[1])] = args[1]
		return m.handleEval(args[1], args[2:], w)
	case "EVALSHA":
		if len(args) < 2 {
			return writeError(w, "ERR wrong number of arguments for 'evalsha' command")
		}
		script, ok := m.scripts[strings.ToLower(args[1])]
		if !ok {
			return writeError(w, "NOSCRIPT No matching script. Please use EVAL.")
		}
		return m.handleEval(script, args[2:], w)
	case "FLUSHDB":
		m.data = make(map[string]mockValue)
		return writeSimpleString(w, "OK")
	default:
		return writeError(w, fmt.Sprintf("ERR unknown command '%s'", args[0]))
	}
}

// lookup must be called with mu held
func (m *MockRedis) lookup(key string) (mockValue, bool) {
	v, ok := m.data[key]
	if !ok {
		return mockValue{}, false
	}
	if v.expired(time.Now()) {
		delete(m.data, key)
		return mockValue{}, false
	}
	return v, true
}

// handleSet supports SET key value [EX seconds|PX milliseconds] [NX]
func (m *MockRedis) handleSet(args []string, w *bufio.Writer) error {
	if len(args) < 3 {
		return writeError(w, "ERR wrong number of arguments for 'set' command")
	}

	key, value := args[1], args[2]
	var ttl time.Duration
	nx := false

	for i := 3; i < len(args); i++ {
		switch opt := strings.ToUpper(args[i]); {
		case (opt == "EX" || opt == "PX") && i+1 < len(args):
			n, err := strconv.ParseInt(args[i+1], 10, 64)
			if err != nil || n <= 0 {
				return writeError(w, "ERR invalid expire time in 'set' command")
			}
			if opt == "EX" {
				ttl = time.Duration(n) * time.Second
			} else {
				ttl = time.Duration(n) * time.Millisecond
			}
			i++
		case opt == "NX":
			nx = true
		default:
			return writeError(w, "ERR syntax error")
		}
	}

	if _, exists := m.lookup(key); exists && nx {
		return writeNil(w)
	}

	v := mockValue{value: value}
	if ttl > 0 {
		v.expiresAt = time.Now().Add(ttl)
	}
	m.data[key] = v
	return writeSimpleString(w, "OK")
}

func (m *MockRedis) handleGet(args []string, w *bufio.Writer) error {
	if len(args) != 2 {
		return writeError(w, "ERR wrong number of arguments for 'get' command")
	}
	v, ok := m.lookup(args[1])
	if !ok {
		return writeNil(w)
	}
	return writeBulkString(w, v.value)
}

func (m *MockRedis) handleDel(args []string, w *bufio.Writer) error {
	if len(args) < 2 {
		return writeError(w, "ERR wrong number of arguments for 'del' command")
	}
	var count int64
	for _, key := range args[1:] {
		if _, ok := m.lookup(key); ok {
			delete(m.data, key)
			count++
		}
	}
	return writeInt(w, count)
}

// handleEval only understands the compare-and-delete release script.
// rest is "numkeys key... arg...".
func (m *MockRedis) handleEval(script string, rest []string, w *bufio.Writer) error {
	if len(rest) < 1 {
		return writeError(w, "ERR wrong number of arguments")
	}
	numKeys, err := strconv.Atoi(rest[0])
	if err != nil || numKeys < 0 || len(rest) < 1+numKeys {
		return writeError(w, "ERR invalid numkeys")
	}
	keys := rest[1 : 1+numKeys]
	argv := rest[1+numKeys:]

	lower := strings.ToLower(script)
	if !strings.Contains(lower, `"get"`) || !strings.Contains(lower, `"del"`) {
		return writeError(w, "ERR unsupported script")
	}
	if len(keys) != 1 || len(argv) != 1 {
		return writeError(w, "ERR release script expects one key and one argument")
	}

	v, ok := m.lookup(keys[0])
	if !ok || v.value != argv[0] {
		return writeInt(w, 0)
	}
	delete(m.data, keys[0])
	return writeInt(w, 1)
}

func scriptSHA(script string) string {
	sum := sha1.Sum([]byte(script))
	return hex.EncodeToString(sum[:])
}

// Helper functions for RESP protocol

func readCommand(r *bufio.Reader) ([]string, error) {
	prefix, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if prefix != '*' {
		return nil, errors.New("unexpected RESP prefix")
	}

	line, err := readLine(r)
	if err != nil {
		return nil, err
	}
	count, err := strconv.Atoi(line)
	if err != nil {
		return nil, err
	}

	args := make([]string, 0, count)
	for i := 0; i < count; i++ {
		bulkPrefix, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if bulkPrefix != '$' {
			return nil, errors.New("unexpected bulk prefix")
		}
		lenLine, err := readLine(r)
		if err != nil {
			return nil, err
		}
		size, err := strconv.Atoi(lenLine)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, size+2)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		args = append(args, string(buf[:size]))
	}

	return args, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r"), nil
}

func writeSimpleString(w *bufio.Writer, msg string) error {
	_, err := w.WriteString("+" + msg + "\r\n")
	return err
}

// writeError writes msg as-is, so callers choose the error prefix
func writeError(w *bufio.Writer, msg string) error {
	_, err := w.WriteString("-" + msg + "\r\n")
	return err
}

func writeInt(w *bufio.Writer, value int64) error {
	_, err := w.WriteString(":" + strconv.FormatInt(value, 10) + "\r\n")
	return err
}

func writeBulkString(w *bufio.Writer, value string) error {
	_, err := w.WriteString("$" + strconv.Itoa(len(value)) + "\r\n" + value + "\r\n")
	return err
}

func writeNil(w *bufio.Writer) error {
	_, err := w.WriteString("$-1\r\n")
	return err
}
