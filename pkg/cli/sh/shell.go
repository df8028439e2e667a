// Package sh provides an interactive shell to open sources and watch
// captured controller states.
package sh

import (
	"encoding/json"
	"flag"
	"fmt"
	"strconv"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/tebeka/atexit"

	"github.com/robotalks/procon.go/pkg/config"
	"github.com/robotalks/procon.go/pkg/console"
	"github.com/robotalks/procon.go/pkg/source"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoOpen    bool

	Shell   *ishell.Shell
	Config  *config.Config
	Session *Session

	tap eventTap
}

const (
	shellKey     = "$shell"
	closedPrompt = "[closed] > "

	defaultWatchCount = 10
	watchIdleTimeout  = 5 * time.Second
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&PortsCmd,
		&OpenCmd,
		&CloseCmd,
		&WatchCmd,
		&StatsCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds adds more commands, must be called before New.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *config.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(closedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeOpen wraps command func requires an opened source.
func MustBeOpen(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Session == nil {
			c.Err(fmt.Errorf("no source opened"))
			return
		}
		fn(c)
	}
}

// WithAutoOpen sets AutoOpen.
func (s *Shell) WithAutoOpen(en bool) *Shell {
	s.AutoOpen = en
	return s
}

// SelectPort lists serial ports and asks for a choice.
func (s *Shell) SelectPort() (string, error) {
	ports, err := source.ListPorts()
	if err != nil {
		return "", err
	}
	switch {
	case len(ports) == 0:
		return "", fmt.Errorf("no serial ports found")
	case len(ports) == 1:
		return ports[0].Name, nil
	case !s.Interactive:
		return "", fmt.Errorf("more than 1 serial ports found in non-interactive mode")
	}
	items := make([]string, len(ports))
	for n, port := range ports {
		items[n] = port.String()
	}
	index := s.Shell.MultiChoice(items, "Which port to open?")
	if index < 0 {
		return "", fmt.Errorf("no port selected")
	}
	return ports[index].Name, nil
}

// Open opens a source and starts capturing, replacing the current one.
func (s *Shell) Open(rawURL string) error {
	session, err := OpenSession(rawURL, s.Config.SourceOptions(), &s.tap)
	if err != nil {
		return err
	}
	s.Close()
	s.Session = session
	s.Shell.SetPrompt(fmt.Sprintf("[%s] > ", session.Target))
	return nil
}

// Close stops the current capture.
func (s *Shell) Close() {
	if s.Session != nil {
		s.Session.Close()
		s.Session = nil
		s.Shell.SetPrompt(closedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	defer s.Close()
	if s.AutoOpen && s.Config.Source != "" {
		if s.Interactive {
			s.Shell.Printf("Opening %s ...\n", s.Config.Source)
		}
		if err := s.Open(s.Config.Source); err != nil {
			atexit.Fatalf("open %q failed: %v", s.Config.Source, err)
		}
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			atexit.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	atexit.Fatalln("command expected")
}

func (s *Shell) printJSON(c *ishell.Context, v interface{}) {
	out, err := json.Marshal(v)
	if err != nil {
		c.Err(err)
		return
	}
	c.Println(string(out))
}

var (
	// PortsCmd lists serial ports.
	PortsCmd = ishell.Cmd{
		Name:    "ports",
		Aliases: []string{"list", "l"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			ports, err := source.ListPorts()
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				if ports == nil {
					ports = []source.PortInfo{}
				}
				s.printJSON(c, ports)
				return
			}
			if len(ports) == 0 {
				c.Println("No serial ports found")
				return
			}
			for _, port := range ports {
				c.Println(port.String())
			}
		},
	}

	// OpenCmd opens a source.
	OpenCmd = ishell.Cmd{
		Name:    "open",
		Aliases: []string{"o"},
		Help:    "[URL]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			var target string
			if len(c.Args) > 0 {
				target = c.Args[0]
			} else {
				var err error
				if target, err = s.SelectPort(); err != nil {
					c.Err(err)
					return
				}
			}
			if err := s.Open(target); err != nil {
				c.Err(err)
			}
		},
	}

	// CloseCmd closes the current source.
	CloseCmd = ishell.Cmd{
		Name:    "close",
		Aliases: []string{"c"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Close()
		},
	}

	// WatchCmd prints decoded frames.
	WatchCmd = ishell.Cmd{
		Name:    "watch",
		Aliases: []string{"w"},
		Help:    "[COUNT]",
		Func: MustBeOpen(func(c *ishell.Context) {
			s := ShellFrom(c)
			count := defaultWatchCount
			if len(c.Args) > 0 {
				n, err := strconv.Atoi(c.Args[0])
				if err != nil || n <= 0 {
					c.Err(fmt.Errorf("invalid count %q", c.Args[0]))
					return
				}
				count = n
			}
			events := s.tap.attach(count)
			defer s.tap.detach()
			mode := s.Config.OutputMode()
			for i := 0; i < count; i++ {
				select {
				case event := <-events:
					if s.OutputJSON {
						s.printJSON(c, event.Decoded)
					} else {
						c.Println(console.FormatLine(event, mode))
					}
				case <-s.Session.Done():
					c.Err(fmt.Errorf("capture stopped: %v", s.Session.Err()))
					return
				case <-time.After(watchIdleTimeout):
					c.Err(fmt.Errorf("no frame received in %s", watchIdleTimeout))
					return
				}
			}
		}),
	}

	// StatsCmd prints capture counters.
	StatsCmd = ishell.Cmd{
		Name:    "stats",
		Aliases: []string{"s"},
		Help:    "",
		Func: MustBeOpen(func(c *ishell.Context) {
			s := ShellFrom(c)
			stats := s.Session.Capture.Stats()
			metrics := s.Session.Capture.Tracker.Sample()
			if s.OutputJSON {
				s.printJSON(c, map[string]interface{}{
					"source": s.Session.Target.String(),
					"fps":    metrics.FramesPerSecond,
					"uptime": metrics.Uptime(),
					"stats":  stats,
				})
				return
			}
			c.Printf("Source %s Freq %d Hz %s\n", s.Session.Target, metrics.FramesPerSecond, metrics.Uptime())
			c.Printf("frames %d, skipped bytes %d\n", stats.Frames, stats.SkippedBytes)
			c.Printf("length timeouts %d, payload timeouts %d, mismatches %d, short payloads %d\n",
				stats.LengthTimeouts, stats.PayloadTimeouts, stats.Mismatches, stats.DecodeErrors)
		}),
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	config.SetupFlags()
	flag.Parse()
	conf, err := config.NewConfig()
	if err != nil {
		atexit.Fatalln(err)
	}
	New(conf).WithAutoOpen(true).Run(flag.Args()...)
}
