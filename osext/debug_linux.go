//go:build linux

package osext

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// statusPath is a variable so tests can point it at a fixture.
var statusPath = "/proc/self/status" //nolint:gochecknoglobals

func tracerPID() (int, error) {
	f, err := os.Open(statusPath)
	if err != nil {
		return 0, fmt.Errorf("opening process status: %w", err)
	}
	defer func() { _ = f.Close() }()

	return parseTracerPID(bufio.NewScanner(f))
}

func parseTracerPID(sc *bufio.Scanner) (int, error) {
	for sc.Scan() {
		k, v, ok := strings.Cut(sc.Text(), ":")
		if !ok || k != "TracerPid" {
			continue
		}
		pid, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("parsing TracerPid: %w", err)
		}
		return pid, nil
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("reading process status: %w", err)
	}
	return 0, nil
}
