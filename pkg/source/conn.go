package source

import (
	"io"
	"net"
	"time"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"
)

type deadlineReadCloser interface {
	io.ReadCloser
	SetReadDeadline(time.Time) error
}

// deadlineReader arms a read deadline before every Read, so a silent peer
// surfaces as a timeout error like a serial port.
type deadlineReader struct {
	conn    deadlineReadCloser
	timeout time.Duration
}

func (r *deadlineReader) Read(p []byte) (int, error) {
	if r.timeout > 0 {
		if err := r.conn.SetReadDeadline(time.Now().Add(r.timeout)); err != nil {
			return 0, err
		}
	}
	return r.conn.Read(p)
}

func (r *deadlineReader) Close() error {
	return r.conn.Close()
}

func openTCP(addr string, timeout time.Duration) (io.ReadCloser, error) {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return nil, err
	}
	glog.Infof("connected to %s", conn.RemoteAddr())
	return &deadlineReader{conn: conn, timeout: timeout}, nil
}

func openWebSocket(wsURL string, timeout time.Duration) (io.ReadCloser, error) {
	conn, err := websocket.Dial(wsURL, "", "http://localhost/")
	if err != nil {
		return nil, err
	}
	conn.PayloadType = websocket.BinaryFrame
	glog.Infof("connected to %s", wsURL)
	return &deadlineReader{conn: conn, timeout: timeout}, nil
}

// pipeReader pumps a reader that can't be interrupted, like a terminal,
// through an io.Pipe. Close fails the pending Read with io.ErrClosedPipe
// right away; the pump goroutine stays blocked until the next input.
type pipeReader struct {
	pr *io.PipeReader
}

func newPipeReader(r io.Reader) *pipeReader {
	pr, pw := io.Pipe()
	go func() {
		_, err := io.Copy(pw, r)
		pw.CloseWithError(err)
	}()
	return &pipeReader{pr: pr}
}

func (r *pipeReader) Read(p []byte) (int, error) {
	return r.pr.Read(p)
}

func (r *pipeReader) Close() error {
	return r.pr.Close()
}
