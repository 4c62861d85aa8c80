// Package conn has the Linux spidev transport for displays on hosts without a periph SPI driver.
package conn

import (
	"fmt"
	"os"

	"github.com/BeatGlow/vfd/internal/ioctl"
)

// Definitions from <spi/spidev.h>
const (
	spiCPHA = 0x01
	spiCPOL = 0x02
)

type SPIMode uint8

const (
	SPIMode0 SPIMode = (0 | 0)             //nolint:staticcheck
	SPIMode1 SPIMode = (0 | spiCPHA)       //nolint:staticcheck
	SPIMode2 SPIMode = (spiCPOL | 0)       //nolint:staticcheck
	SPIMode3 SPIMode = (spiCPOL | spiCPHA) //nolint:staticcheck
)

const (
	spiIOCMode        = 0x6b01
	spiIOCLSBFirst    = 0x6b02
	spiIOCBitsPerWord = 0x6b03
	spiIOCMaxSpeedHz  = 0x6b04
)

var spiDevPath = "/dev/spidev"

// SPI implements the spidev interface.
type SPI struct {
	f           *os.File
	fd          uintptr
	name        string
	mode        SPIMode
	lsbFirst    bool
	bitsPerWord uint8
	maxSpeedHz  uint32
}

// OpenSPI opens the numbered spi bus with the numbered device. The device often corresponds to the CS pin for that bus.
func OpenSPI(bus, device int) (*SPI, error) {
	name := fmt.Sprintf("%s%d.%d", spiDevPath, bus, device)
	f, err := os.OpenFile(name, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}

	c := &SPI{
		f:    f,
		fd:   f.Fd(),
		name: name,
	}
	if c.mode, err = ioctl.Get[SPIMode](c.fd, spiIOCMode); err != nil {
		_ = f.Close()
		return nil, err
	}
	var lsb uint8
	if lsb, err = ioctl.Get[uint8](c.fd, spiIOCLSBFirst); err != nil {
		_ = f.Close()
		return nil, err
	}
	c.lsbFirst = lsb != 0
	if c.bitsPerWord, err = ioctl.Get[uint8](c.fd, spiIOCBitsPerWord); err != nil {
		_ = f.Close()
		return nil, err
	}
	if c.maxSpeedHz, err = ioctl.Get[uint32](c.fd, spiIOCMaxSpeedHz); err != nil {
		_ = f.Close()
		return nil, err
	}

	return c, nil
}

func (c *SPI) Close() error {
	return c.f.Close()
}

func (c *SPI) String() string {
	return fmt.Sprintf("%s mode=%d lsb first=%t bits per word=%d max speed=%dHz", c.name, c.mode, c.lsbFirst, c.bitsPerWord, c.maxSpeedHz)
}

func (c *SPI) Mode() SPIMode {
	return c.mode
}

func (c *SPI) SetMode(mode SPIMode) error {
	mode &= 0x0f

	if err := ioctl.Set(c.fd, spiIOCMode, mode); err != nil {
		return err
	}

	test, err := ioctl.Get[SPIMode](c.fd, spiIOCMode)
	if err != nil {
		return err
	}
	if test != mode {
		return fmt.Errorf("conn: SPI attempted to set mode %#02x, but mode %#02x is in use", mode, test)
	}

	c.mode = mode
	return nil
}

// LSBFirst reports if the controller shifts out the least significant bit first.
func (c *SPI) LSBFirst() bool {
	return c.lsbFirst
}

// SetLSBFirst selects the bit order in the controller. Not all controllers support LSB first;
// use software bit reversal in the bus when this fails.
func (c *SPI) SetLSBFirst(lsb bool) error {
	if c.lsbFirst == lsb {
		return nil
	}
	var v uint8
	if lsb {
		v = 1
	}
	if err := ioctl.Set(c.fd, spiIOCLSBFirst, v); err != nil {
		return err
	}
	c.lsbFirst = lsb
	return nil
}

func (c *SPI) BitsPerWord() uint8 {
	return c.bitsPerWord
}

func (c *SPI) SetBitsPerWord(bits uint8) error {
	if bits < 8 || bits > 32 {
		return fmt.Errorf("conn: SPI bits per word need to be 8 or more and 32 or less, got %d", bits)
	}

	if c.bitsPerWord != bits {
		if err := ioctl.Set(c.fd, spiIOCBitsPerWord, bits); err != nil {
			return err
		}
		c.bitsPerWord = bits
	}

	return nil
}

func (c *SPI) MaxSpeed() int {
	return int(c.maxSpeedHz)
}

func (c *SPI) SetMaxSpeed(v int) error {
	if v <= 0 {
		return nil
	}

	u := uint32(v)
	if c.maxSpeedHz != u {
		if err := ioctl.Set(c.fd, spiIOCMaxSpeedHz, u); err != nil {
			return err
		}
		c.maxSpeedHz = u
	}

	return nil
}

// Tx writes w, then reads into r if it is not empty. spidev runs a plain write as one
// transfer with the device select asserted.
func (c *SPI) Tx(w, r []byte) error {
	if len(w) > 0 {
		if _, err := c.f.Write(w); err != nil {
			return err
		}
	}
	if len(r) > 0 {
		if _, err := c.f.Read(r); err != nil {
			return err
		}
	}
	return nil
}
