package debug

import (
	"fmt"
	"io"
	"sync"
	"time"
)

var (
	mu     sync.Mutex
	writer io.Writer = io.Discard
)

// SetOutput sets the debug output destination
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	writer = w
}

// Log writes a timestamped debug message. Safe for use from request goroutines.
func Log(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if writer == io.Discard {
		return
	}
	fmt.Fprintf(writer, "%s "+format+"\n", append([]interface{}{time.Now().Format("15:04:05.000")}, args...)...)
}

// Enabled returns true if debug logging is enabled
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return writer != io.Discard
}
