package gps

import (
	"errors"
	"strconv"
	"strings"
)

// Fix is one validated position reading. Valid is false when no
// fix-bearing sentence with status A was seen.
type Fix struct {
	Lat   float64
	Lon   float64
	Valid bool
}

// DecimalDegrees converts an NMEA DDMM.MMMM / DDDMM.MMMM field to
// decimal degrees. The integer-degree prefix is everything before the
// decimal point minus the two leading minute digits; the rest is
// minutes. South and West negate the result.
func DecimalDegrees(raw string, hemi byte) (float64, error) {
	dot := strings.IndexByte(raw, '.')
	if dot < 3 {
		return 0, errors.New("malformed coordinate field")
	}

	degLen := dot - 2

	deg, err := strconv.Atoi(raw[:degLen])
	if err != nil {
		return 0, err
	}

	minutes, err := strconv.ParseFloat(raw[degLen:], 64)
	if err != nil {
		return 0, err
	}

	dec := float64(deg) + minutes/60

	if hemi == 'S' || hemi == 'W' {
		dec = -dec
	}

	return dec, nil
}

// parseRMC decodes one RMC sentence. ok is false for non-RMC lines;
// a void (status V) or malformed RMC yields an invalid Fix with ok true,
// so the caller keeps scanning.
func parseRMC(line string) (Fix, bool) {
	line = strings.TrimSpace(line)

	if !strings.HasPrefix(line, "$GPRMC") && !strings.HasPrefix(line, "$GNRMC") {
		return Fix{}, false
	}

	// $xxRMC,time,status,lat,N/S,lon,E/W,...
	fields := strings.Split(line, ",")
	if len(fields) < 7 {
		return Fix{}, true
	}

	if fields[2] != "A" {
		return Fix{}, true
	}

	if len(fields[4]) == 0 || len(fields[6]) == 0 {
		return Fix{}, true
	}

	lat, err := DecimalDegrees(fields[3], fields[4][0])
	if err != nil {
		return Fix{}, true
	}

	lon, err := DecimalDegrees(fields[5], fields[6][0])
	if err != nil {
		return Fix{}, true
	}

	return Fix{Lat: lat, Lon: lon, Valid: true}, true
}
