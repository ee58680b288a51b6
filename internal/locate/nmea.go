package locate

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"safemap/internal/geo"
)

const (
	// hdopMeters converts horizontal dilution of precision to an accuracy radius
	hdopMeters = 5.0
	// defaultAccuracy is used when a sentence carries no HDOP
	defaultAccuracy = 25.0
)

// Fix is a single position report
type Fix struct {
	Position geo.LatLon
	Accuracy float64 // meters
	Time     time.Time
}

// NMEAParser parses NMEA 0183 GGA and RMC sentences
type NMEAParser struct {
	now func() time.Time
}

// NewNMEAParser creates a new NMEA parser
func NewNMEAParser() *NMEAParser {
	return &NMEAParser{now: time.Now}
}

// Parse parses one sentence. It returns nil without error for sentence types it does
// not handle and for sentences that report no fix.
// Example: $GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47
func (p *NMEAParser) Parse(line string) (*Fix, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}
	if line[0] != '$' {
		return nil, fmt.Errorf("not an NMEA sentence")
	}

	body, err := verifyChecksum(line[1:])
	if err != nil {
		return nil, err
	}

	fields := strings.Split(body, ",")
	if len(fields[0]) < 5 {
		return nil, fmt.Errorf("bad sentence id %q", fields[0])
	}

	// Talker prefix (GP, GN, GL...) is ignored
	switch fields[0][len(fields[0])-3:] {
	case "GGA":
		return p.parseGGA(fields)
	case "RMC":
		return p.parseRMC(fields)
	default:
		return nil, nil
	}
}

// parseGGA handles $--GGA,time,lat,N,lon,E,quality,sats,hdop,...
func (p *NMEAParser) parseGGA(fields []string) (*Fix, error) {
	if len(fields) < 9 {
		return nil, fmt.Errorf("insufficient GGA fields: %d", len(fields))
	}

	// Quality 0 means no fix
	if fields[6] == "" || fields[6] == "0" {
		return nil, nil
	}

	pos, err := parsePosition(fields[2], fields[3], fields[4], fields[5])
	if err != nil {
		return nil, err
	}

	accuracy := defaultAccuracy
	if hdop, err := strconv.ParseFloat(fields[8], 64); err == nil && hdop > 0 {
		accuracy = hdop * hdopMeters
	}

	return &Fix{Position: pos, Accuracy: accuracy, Time: p.now()}, nil
}

// parseRMC handles $--RMC,time,status,lat,N,lon,E,speed,course,date,...
func (p *NMEAParser) parseRMC(fields []string) (*Fix, error) {
	if len(fields) < 10 {
		return nil, fmt.Errorf("insufficient RMC fields: %d", len(fields))
	}

	// Status V means the receiver has no valid fix
	if fields[2] != "A" {
		return nil, nil
	}

	pos, err := parsePosition(fields[3], fields[4], fields[5], fields[6])
	if err != nil {
		return nil, err
	}

	ts, err := time.Parse("020106 150405", fields[9]+" "+truncateSeconds(fields[1]))
	if err != nil {
		ts = p.now()
	}

	return &Fix{Position: pos, Accuracy: defaultAccuracy, Time: ts}, nil
}

// verifyChecksum strips and checks the optional *hh suffix
func verifyChecksum(s string) (string, error) {
	star := strings.LastIndexByte(s, '*')
	if star < 0 {
		return s, nil
	}

	body, sum := s[:star], s[star+1:]
	want, err := strconv.ParseUint(sum, 16, 8)
	if err != nil {
		return "", fmt.Errorf("bad checksum %q", sum)
	}

	var got byte
	for i := 0; i < len(body); i++ {
		got ^= body[i]
	}
	if got != byte(want) {
		return "", fmt.Errorf("checksum mismatch: got %02X, want %02X", got, want)
	}

	return body, nil
}

// parsePosition converts ddmm.mmmm/dddmm.mmmm with hemisphere letters to degrees
func parsePosition(lat, ns, lon, ew string) (geo.LatLon, error) {
	la, err := parseDegrees(lat, 2)
	if err != nil {
		return geo.LatLon{}, fmt.Errorf("bad latitude %q: %w", lat, err)
	}
	lo, err := parseDegrees(lon, 3)
	if err != nil {
		return geo.LatLon{}, fmt.Errorf("bad longitude %q: %w", lon, err)
	}

	if ns == "S" {
		la = -la
	}
	if ew == "W" {
		lo = -lo
	}

	pos := geo.LatLon{Lat: la, Lon: lo}
	if !pos.Valid() {
		return geo.LatLon{}, fmt.Errorf("position out of range: %v", pos)
	}
	return pos, nil
}

func parseDegrees(s string, degDigits int) (float64, error) {
	if len(s) < degDigits+2 {
		return 0, fmt.Errorf("too short")
	}

	deg, err := strconv.Atoi(s[:degDigits])
	if err != nil {
		return 0, err
	}
	minutes, err := strconv.ParseFloat(s[degDigits:], 64)
	if err != nil {
		return 0, err
	}
	if minutes >= 60 {
		return 0, fmt.Errorf("minutes out of range")
	}

	return float64(deg) + minutes/60, nil
}

func truncateSeconds(hhmmss string) string {
	if i := strings.IndexByte(hhmmss, '.'); i >= 0 {
		return hhmmss[:i]
	}
	return hhmmss
}
