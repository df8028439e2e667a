// Package source opens the byte streams frames are read from.
//
// A source is named by a URL:
//
//	/dev/ttyUSB0, COM6, serial:///dev/ttyUSB0?baud=115200
//	tcp://host:port
//	ws://host:port/path, wss://...
//	file:///path/to/capture.bin, - (stdin)
//
// Serial, TCP and websocket sources give up on a read after the configured
// timeout so the frame reader can detect incomplete frames. Closing the
// stdin source unblocks a pending read without closing os.Stdin.
package source

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Defaults of a serial link.
const (
	DefaultBaud    = 115200
	DefaultTimeout = time.Second
)

// Kind is the type of a source.
type Kind string

// Source kinds.
const (
	KindSerial    Kind = "serial"
	KindTCP       Kind = "tcp"
	KindWebSocket Kind = "ws"
	KindFile      Kind = "file"
	KindStdin     Kind = "stdin"
)

// ErrUnsupportedScheme indicates the URL scheme is not a known source.
var ErrUnsupportedScheme = errors.New("unsupported source scheme")

// Options configures opening a source.
type Options struct {
	// Baud applies to serial sources.
	Baud int
	// Timeout is the read timeout, it doesn't apply to file sources.
	Timeout time.Duration
}

// DefaultOptions returns the options of the capture firmware link.
func DefaultOptions() Options {
	return Options{Baud: DefaultBaud, Timeout: DefaultTimeout}
}

// Target is a parsed source URL.
type Target struct {
	Kind    Kind
	Address string
	Baud    int
	Timeout time.Duration
}

// String formats the target for display.
func (t Target) String() string {
	switch t.Kind {
	case KindSerial:
		return fmt.Sprintf("%s@%d", t.Address, t.Baud)
	case KindStdin:
		return "stdin"
	}
	return t.Address
}

var comPortRe = regexp.MustCompile(`(?i)^com\d+$`)

// ParseURL parses a source URL. Query parameters baud and timeout
// override the values in opts.
func ParseURL(rawURL string, opts Options) (*Target, error) {
	if opts.Baud <= 0 {
		opts.Baud = DefaultBaud
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	t := &Target{Baud: opts.Baud, Timeout: opts.Timeout}
	if rawURL == "-" {
		t.Kind, t.Address = KindStdin, "-"
		return t, nil
	}
	if !strings.Contains(rawURL, "://") {
		if rawURL == "" {
			return nil, fmt.Errorf("empty source")
		}
		t.Kind, t.Address = KindSerial, rawURL
		return t, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	query := u.Query()
	if val := query.Get("baud"); val != "" {
		baud, err := strconv.Atoi(val)
		if err != nil || baud <= 0 {
			return nil, fmt.Errorf("invalid baud %q", val)
		}
		t.Baud = baud
	}
	if val := query.Get("timeout"); val != "" {
		timeout, err := time.ParseDuration(val)
		if err != nil || timeout <= 0 {
			return nil, fmt.Errorf("invalid timeout %q", val)
		}
		t.Timeout = timeout
	}

	switch strings.ToLower(u.Scheme) {
	case "serial":
		t.Kind = KindSerial
		t.Address = u.Host + u.Path
		if comPortRe.MatchString(u.Host) && u.Path == "" {
			t.Address = strings.ToUpper(u.Host)
		}
	case "tcp":
		t.Kind, t.Address = KindTCP, u.Host
	case "ws", "wss":
		t.Kind = KindWebSocket
		query.Del("baud")
		query.Del("timeout")
		u.RawQuery = query.Encode()
		t.Address = u.String()
	case "file":
		t.Kind, t.Address = KindFile, u.Host+u.Path
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	if t.Address == "" {
		return nil, fmt.Errorf("missing address in %q", rawURL)
	}
	return t, nil
}

// Open parses rawURL and opens the source.
func Open(rawURL string, opts Options) (io.ReadCloser, error) {
	t, err := ParseURL(rawURL, opts)
	if err != nil {
		return nil, err
	}
	return t.Open()
}

// Open opens the source.
func (t *Target) Open() (io.ReadCloser, error) {
	switch t.Kind {
	case KindSerial:
		return openSerial(t.Address, t.Baud, t.Timeout)
	case KindTCP:
		return openTCP(t.Address, t.Timeout)
	case KindWebSocket:
		return openWebSocket(t.Address, t.Timeout)
	case KindFile:
		f, err := os.Open(t.Address)
		if err != nil {
			return nil, err
		}
		return f, nil
	case KindStdin:
		return newPipeReader(os.Stdin), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, t.Kind)
}
