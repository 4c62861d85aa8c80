package conn

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
)

// Port is a periph SPI connection together with the port closer.
type Port struct {
	spi.Conn
	closer spi.PortCloser
}

// OpenPort opens the named periph SPI port (empty for the first one) in mode 0 with 8 bit
// words. With lsbFirst the controller is asked to shift out the least significant bit first.
func OpenPort(name string, hz int64, lsbFirst bool) (*Port, error) {
	p, err := spireg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("conn: open SPI port %q: %w", name, err)
	}

	mode := spi.Mode0
	if lsbFirst {
		mode |= spi.LSBFirst
	}
	c, err := p.Connect(physic.Frequency(hz)*physic.Hertz, mode, 8)
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("conn: connect SPI port %q: %w", name, err)
	}
	return &Port{Conn: c, closer: p}, nil
}

func (p *Port) Close() error {
	return p.closer.Close()
}
