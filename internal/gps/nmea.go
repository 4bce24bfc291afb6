package gps

import (
	"fmt"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
)

// DefaultUERE is the user equivalent range error, in metres, used to turn
// HDOP into a horizontal accuracy estimate.
const DefaultUERE = 5.0

// Parser accumulates NMEA sentences into fixes. RMC sentences produce a
// fix; GGA sentences update the quality figures attached to the next one.
type Parser struct {
	UERE float64

	hdop       float64
	satellites int64
	haveGGA    bool
}

// NewParser returns a parser using uere metres per unit of HDOP. A
// non-positive uere selects DefaultUERE.
func NewParser(uere float64) *Parser {
	if uere <= 0 {
		uere = DefaultUERE
	}
	return &Parser{UERE: uere}
}

// Feed parses one line. It returns ok=true when the line completed a fix.
// Lines that are not NMEA sentences are skipped without error.
func (p *Parser) Feed(line string) (Fix, bool, error) {
	line = strings.TrimSpace(line)
	if line == "" || !strings.HasPrefix(line, "$") {
		return Fix{}, false, nil
	}

	sentence, err := nmea.Parse(line)
	if err != nil {
		return Fix{}, false, fmt.Errorf("nmea parse: %w", err)
	}

	switch sentence.DataType() {
	case nmea.TypeGGA:
		m := sentence.(nmea.GGA)
		p.hdop = m.HDOP
		p.satellites = m.NumSatellites
		p.haveGGA = m.FixQuality != nmea.Invalid
		return Fix{}, false, nil

	case nmea.TypeRMC:
		m := sentence.(nmea.RMC)
		return p.fromRMC(m), true, nil

	default:
		// GSA, GSV, VTG and friends carry nothing the speed filter needs
		return Fix{}, false, nil
	}
}

func (p *Parser) fromRMC(m nmea.RMC) Fix {
	f := Fix{
		Time:       m.Time.String(),
		Date:       m.Date.String(),
		Latitude:   m.Latitude,
		Longitude:  m.Longitude,
		SpeedKnots: m.Speed,
		CourseDeg:  m.Course,
		Validity:   m.Validity,
	}
	if !f.Valid() {
		return f
	}

	mps := m.Speed * KnotsToMPS
	f.SpeedMPS = &mps

	if p.haveGGA && p.hdop > 0 {
		acc := p.hdop * p.UERE
		f.HDOP = p.hdop
		f.Satellites = p.satellites
		f.AccuracyM = &acc
	}
	return f
}
