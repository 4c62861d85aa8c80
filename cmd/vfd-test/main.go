package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/BeatGlow/vfd"
	"github.com/BeatGlow/vfd/conn"
	"github.com/BeatGlow/vfd/glyph"
)

func main() {
	portFlag := flag.String("port", "", "periph SPI port name (default: use first available)")
	spiBusFlag := flag.Int("spi-bus", 0, "spidev bus")
	spiDeviceFlag := flag.Int("spi-dev", 0, "spidev device")
	speedFlag := flag.Int64("speed", 500_000, "SPI clock in Hz")
	lsbFlag := flag.Bool("lsb", true, "Shift LSB first")
	swapFlag := flag.Bool("swap", false, "Reverse bit order in software")
	csPinFlag := flag.String("cs", "", "Chip select GPIO pin (default: driven by the port)")
	resetPinFlag := flag.String("reset", "", "Reset GPIO pin")
	cellsFlag := flag.Int("cells", 0, "Number of cells (default: driver default)")
	modeFlag := flag.Uint("mode", uint(vfd.PT6315Grid7Seg21), "PT6315 grid mode")
	brightnessFlag := flag.Uint("brightness", 2, "Brightness level (0-7)")
	dotFlag := flag.Bool("dot", false, "Merge '.' into the previous cell")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <spi|spidev> <pt6315|8md06inkm>\n", os.Args[0])
		os.Exit(1)
	}

	if _, err := host.Init(); err != nil {
		fatal(err)
	}

	var (
		port vfd.Port
		err  error
	)
	switch busType := flag.Arg(0); busType {
	case "spi":
		var p *conn.Port
		if p, err = conn.OpenPort(*portFlag, *speedFlag, *lsbFlag && !*swapFlag); err == nil {
			defer p.Close()
			port = p
		}
	case "spidev":
		var c *conn.SPI
		if c, err = conn.OpenSPI(*spiBusFlag, *spiDeviceFlag); err == nil {
			defer c.Close()
			if err = c.SetMaxSpeed(int(*speedFlag)); err == nil {
				err = c.SetLSBFirst(*lsbFlag && !*swapFlag)
			}
			port = c
		}
	default:
		err = fmt.Errorf("unsupported bus type %q", busType)
	}
	if err != nil {
		fatal(err)
	}
	fmt.Printf("using connection: %s\n", port)

	bus, err := vfd.NewBus(port, &vfd.BusConfig{
		CS:        pinByName(*csPinFlag),
		LSBFirst:  *lsbFlag && *swapFlag,
		BatchSize: vfd.DefaultBusConfig.BatchSize,
	})
	if err != nil {
		fatal(err)
	}

	var (
		config = &vfd.Config{
			Cells:      *cellsFlag,
			Mode:       uint8(*modeFlag),
			Brightness: uint8(*brightnessFlag),
			Reset:      pinByName(*resetPinFlag),
		}
		dev vfd.Device
	)
	switch driver := strings.ToLower(flag.Arg(1)); driver {
	case "pt6315":
		dev, err = vfd.PT6315(bus, config)
	case "8md06inkm", "md06inkm":
		dev, err = vfd.MD06INKM(bus, config)
	default:
		err = fmt.Errorf("unsupported driver %q", driver)
	}
	if err != nil {
		fatal(err)
	}
	fmt.Printf("using driver: %s\n", dev)

	term := vfd.NewTerminal(dev)
	term.SetDot(*dotFlag)
	if err = dev.Reset(); err != nil {
		fatal(err)
	}
	if err = term.Begin(); err != nil {
		fatal(err)
	}
	if err = term.SetPower(true); err != nil {
		fatal(err)
	}
	if err = term.Clear(true); err != nil {
		fatal(err)
	}

	var (
		ticker  = time.NewTicker(250 * time.Millisecond)
		overlay = vfd.NewStatusOverlay(term, vfd.PT6315StatusAddr)
		icons   = []uint16{vfd.IconPlay, vfd.IconEject, vfd.IconStop, vfd.IconNone}
		flags   = []vfd.Status{vfd.StatusWifi, vfd.StatusWeather, vfd.StatusClock, vfd.StatusRecord}
		charset strings.Builder
	)
	defer ticker.Stop()

	for r := rune(0x20); r < 0x80; r++ {
		if glyph.Supported(r) {
			charset.WriteRune(r)
		}
	}
	charset.WriteString("12.5" + string(glyph.DegreeSign) + "C ")
	text := []rune(charset.String())

	fmt.Println("hit control-c to stop...")
	for offset := 0; ; offset++ {
		// Scroll the character set through the display
		term.PutChar(text[offset%len(text)])
		if err = term.Flush(); err != nil {
			fatal(err)
		}

		if offset%len(text) == len(text)-1 {
			// Sweep the brightness levels
			for level := uint8(0); level <= vfd.MaxBrightness; level++ {
				if err = term.SetBrightness(level); err != nil {
					fatal(err)
				}
				<-ticker.C
			}
			if err = term.SetBrightness(uint8(*brightnessFlag)); err != nil {
				fatal(err)
			}
		}

		if err = overlay.SetIcon(icons[offset/8%len(icons)]); err != nil {
			fatal(err)
		}
		bit := flags[offset%len(flags)]
		if err = overlay.Set(bit, !overlay.Is(bit)); err != nil {
			fatal(err)
		}

		<-ticker.C
	}
}

func pinByName(name string) gpio.PinOut {
	if name == "" {
		return nil
	}
	p := gpioreg.ByName(name)
	if p == nil {
		fatal(fmt.Errorf("unknown GPIO pin %q", name))
	}
	return p
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "fatal: "+err.Error())
	os.Exit(1)
}
