package queue

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeBeanstalkd speaks just enough of the beanstalkd text protocol to
// drive the Beanstalk adapter.
type fakeBeanstalkd struct {
	ln net.Listener

	mu             sync.Mutex
	commands       []string
	ready          [][]byte
	reserveReplies []string
	deleteReply    string
	buryReply      string
	nextID         uint64
}

func newFakeBeanstalkd(t *testing.T) *fakeBeanstalkd {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	f := &fakeBeanstalkd{ln: ln, nextID: 100}
	go f.accept()
	t.Cleanup(func() { _ = ln.Close() })
	return f
}

func (f *fakeBeanstalkd) addr() string { return f.ln.Addr().String() }

func (f *fakeBeanstalkd) enqueue(body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ready = append(f.ready, []byte(body))
}

func (f *fakeBeanstalkd) log() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.commands...)
}

func (f *fakeBeanstalkd) accept() {
	for {
		conn, err := f.ln.Accept()
		if err != nil {
			return
		}
		go f.serve(conn)
	}
}

func (f *fakeBeanstalkd) serve(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		f.mu.Lock()
		f.commands = append(f.commands, line)
		var reply string
		switch fields[0] {
		case "use":
			reply = "USING " + fields[1] + "\r\n"
		case "watch":
			reply = "WATCHING 2\r\n"
		case "ignore":
			reply = "WATCHING 1\r\n"
		case "reserve-with-timeout":
			switch {
			case len(f.reserveReplies) > 0:
				reply = f.reserveReplies[0] + "\r\n"
				f.reserveReplies = f.reserveReplies[1:]
			case len(f.ready) > 0:
				body := f.ready[0]
				f.ready = f.ready[1:]
				f.nextID++
				reply = fmt.Sprintf("RESERVED %d %d\r\n%s\r\n", f.nextID, len(body), body)
			default:
				reply = "TIMED_OUT\r\n"
			}
		case "put":
			n, _ := strconv.Atoi(fields[len(fields)-1])
			buf := make([]byte, n+2)
			f.mu.Unlock()
			if _, err := io.ReadFull(r, buf); err != nil {
				return
			}
			f.mu.Lock()
			f.commands[len(f.commands)-1] = line + " " + string(buf[:n])
			f.nextID++
			reply = fmt.Sprintf("INSERTED %d\r\n", f.nextID)
		case "delete":
			reply = "DELETED\r\n"
			if f.deleteReply != "" {
				reply = f.deleteReply + "\r\n"
			}
		case "bury":
			reply = "BURIED\r\n"
			if f.buryReply != "" {
				reply = f.buryReply + "\r\n"
			}
		default:
			reply = "UNKNOWN_COMMAND\r\n"
		}
		f.mu.Unlock()

		if _, err := io.WriteString(conn, reply); err != nil {
			return
		}
	}
}
