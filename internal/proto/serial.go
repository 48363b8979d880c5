package proto

import (
	"bufio"
	"bytes"
	"context"
	"io"

	"github.com/cjeanneret/RotGo/internal/debug"
	"github.com/cjeanneret/RotGo/internal/logic/engine"
	"github.com/tarm/serial"
)

// OpenSerial opens the rotator control port. N1MM+ insists on 9600
// baud; everything else follows the config.
func OpenSerial(name string, baud int) (io.ReadWriteCloser, error) {
	return serial.OpenPort(&serial.Config{Name: name, Baud: baud})
}

// Serve reads CR-terminated commands from rw and queues each one for
// the driver loop, which executes it and writes any reply back. Serve
// returns when the port closes or ctx is cancelled.
func Serve(ctx context.Context, rw io.ReadWriter, requests chan<- engine.Request) error {
	h := NewHandler(rw)
	scanner := bufio.NewScanner(rw)
	scanner.Split(splitCommands)
	for scanner.Scan() {
		line := scanner.Text()
		req := func(e *engine.Engine) {
			h.Execute(line, e)
		}
		select {
		case requests <- req:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		debug.Error(err)
		return err
	}
	return nil
}

// splitCommands tokenizes on carriage return, the protocol's
// terminator, but also accepts bare newlines so a telnet/socat bench
// session works.
func splitCommands(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}
