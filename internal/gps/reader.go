// Package gps resolves the current position from a serial NMEA feed.
package gps

import (
	"bufio"
	log "log/slog"
	"time"

	"go.bug.st/serial"
)

const baudRate = 9600

// Reader owns one serial connection to a GNSS receiver. Not safe for
// concurrent use; the voice loop is the only caller.
type Reader struct {
	portName string
	port     serial.Port
}

func NewReader(portName string) *Reader {
	return &Reader{portName: portName}
}

func (r *Reader) open() (serial.Port, error) {
	if r.port != nil {
		return r.port, nil
	}

	port, err := serial.Open(r.portName, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, err
	}
	if err := port.SetReadTimeout(time.Second); err != nil {
		port.Close()
		return nil, err
	}

	r.port = port
	return port, nil
}

// GetFix scans up to maxLines sentences for a valid RMC fix. Timeouts,
// port errors and malformed lines all come back as an invalid Fix,
// never as an error.
func (r *Reader) GetFix(maxLines int) Fix {
	port, err := r.open()
	if err != nil {
		log.Warn("gps port unavailable", "port", r.portName, "err", err)
		return Fix{}
	}

	scanner := bufio.NewScanner(port)

	for i := 0; i < maxLines && scanner.Scan(); i++ {
		fix, isRMC := parseRMC(scanner.Text())
		if isRMC && fix.Valid {
			return fix
		}
	}

	if err := scanner.Err(); err != nil {
		log.Warn("gps read failed", "err", err)
		r.Close()
	}

	return Fix{}
}

func (r *Reader) Close() {
	if r.port != nil {
		r.port.Close()
		r.port = nil
	}
}
