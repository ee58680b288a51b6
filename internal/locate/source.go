package locate

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// Source opens a stream of NMEA sentences
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	String() string
}

// NetworkSource reads NMEA from a TCP endpoint such as `gpspipe -r` behind a socket
// or a phone GPS-forwarding app. addr is "host:port", e.g. "192.168.1.20:10110".
type NetworkSource struct {
	Addr        string
	DialTimeout time.Duration
}

// Open dials the endpoint
func (s *NetworkSource) Open(ctx context.Context) (io.ReadCloser, error) {
	timeout := s.DialTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", s.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", s.Addr, err)
	}
	return conn, nil
}

func (s *NetworkSource) String() string {
	return "tcp://" + s.Addr
}

// ReplaySource plays back a recorded NMEA log, one sentence per Interval
type ReplaySource struct {
	Path     string
	Interval time.Duration
	Loop     bool
}

// Open starts playback. The returned reader ends when the log ends (unless Loop is
// set), when ctx is cancelled or when it is closed.
func (s *ReplaySource) Open(ctx context.Context) (io.ReadCloser, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open replay %s: %w", s.Path, err)
	}

	interval := s.Interval
	if interval <= 0 {
		interval = time.Second
	}

	pr, pw := io.Pipe()
	go func() {
		defer f.Close()
		pw.CloseWithError(s.play(ctx, f, pw, interval))
	}()

	return pr, nil
}

// play writes the log to w line by line. Writes fail once the reader is closed.
func (s *ReplaySource) play(ctx context.Context, f *os.File, w io.Writer, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		scanner := bufio.NewScanner(f)
		lines := 0
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				continue
			}
			if _, err := io.WriteString(w, line+"\n"); err != nil {
				return err
			}
			lines++

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
		if err := scanner.Err(); err != nil {
			return err
		}

		if !s.Loop || lines == 0 {
			return nil
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return err
		}
	}
}

func (s *ReplaySource) String() string {
	return "replay:" + s.Path
}

// CommandSource runs a local program that prints NMEA on stdout, e.g. `gpspipe -r`
type CommandSource struct {
	Name string
	Args []string
}

// Open starts the program. Closing the reader kills it.
func (s *CommandSource) Open(ctx context.Context) (io.ReadCloser, error) {
	cmd := exec.CommandContext(ctx, s.Name, s.Args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", s.Name, err)
	}

	return &commandReader{ReadCloser: stdout, cmd: cmd}, nil
}

func (s *CommandSource) String() string {
	return "exec:" + strings.Join(append([]string{s.Name}, s.Args...), " ")
}

// ParseCommand splits a command line such as "gpspipe -r" into a CommandSource
func ParseCommand(line string) (*CommandSource, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty GPS command")
	}
	return &CommandSource{Name: fields[0], Args: fields[1:]}, nil
}

// commandReader is closed from the read loop, the cancel hook and the acquisition
// timer, possibly at once; only the first Close kills and reaps the program.
type commandReader struct {
	io.ReadCloser
	cmd       *exec.Cmd
	closeOnce sync.Once
}

// Close stops the program and reaps it
func (r *commandReader) Close() error {
	r.closeOnce.Do(func() {
		if r.cmd.Process != nil {
			r.cmd.Process.Kill()
		}
		r.ReadCloser.Close()
		r.cmd.Wait()
	})
	return nil
}
