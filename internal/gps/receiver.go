package gps

import (
	"bufio"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"
)

// Receiver consumes NMEA sentences from the GPS serial port on a
// background reader and caches the most recent valid fix. Callers poll
// LatestFix, which never blocks and never synthesizes a position: if no
// valid GGA solution has been decoded, there is no fix.
type Receiver struct {
	minQuality    int
	minSatellites int64

	mu   sync.RWMutex
	fix  Fix
	have bool

	closer io.Closer
	done   chan struct{}
}

// Options configures fix acceptance.
type Options struct {
	MinQuality    int   // minimum GGA fix quality, typically 1
	MinSatellites int64 // minimum satellites used in the solution
}

// Open opens the GPS serial port and starts the background reader.
func Open(portName string, baudRate uint, opts Options) (*Receiver, error) {
	port, err := serial.Open(serial.OpenOptions{
		PortName:        portName,
		BaudRate:        baudRate,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
		ParityMode:      serial.PARITY_NONE,
	})
	if err != nil {
		return nil, err
	}
	log.Printf("gps: serial port opened on %s at %d baud", portName, baudRate)

	r := newReceiver(opts)
	r.closer = port
	go r.run(port)
	return r, nil
}

// NewFromReader builds a receiver over an arbitrary sentence stream.
func NewFromReader(src io.Reader, opts Options) *Receiver {
	r := newReceiver(opts)
	go r.run(src)
	return r
}

func newReceiver(opts Options) *Receiver {
	return &Receiver{
		minQuality:    opts.MinQuality,
		minSatellites: opts.MinSatellites,
		done:          make(chan struct{}),
	}
}

func (r *Receiver) run(src io.Reader) {
	defer close(r.done)
	reader := bufio.NewReader(src)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			r.handleLine(strings.TrimSpace(line))
		}
		if err != nil {
			if err != io.EOF {
				log.Printf("gps: read error: %v", err)
			}
			return
		}
	}
}

// handleLine parses one NMEA sentence and updates the cached fix. GGA is
// authoritative for fix validity; RMC enriches an existing fix with speed
// and course over ground.
func (r *Receiver) handleLine(line string) {
	if !strings.HasPrefix(line, "$") {
		return
	}

	sentence, err := nmea.Parse(line)
	if err != nil {
		// Partial sentences and checksum failures are routine on a
		// noisy UART; drop them silently.
		return
	}

	switch sentence.DataType() {
	case nmea.TypeGGA:
		gga := sentence.(nmea.GGA)
		quality, err := strconv.Atoi(gga.FixQuality)
		if err != nil || quality < r.minQuality {
			return
		}
		if gga.NumSatellites < r.minSatellites {
			return
		}
		r.mu.Lock()
		r.fix.Time = time.Now()
		r.fix.Latitude = gga.Latitude
		r.fix.Longitude = gga.Longitude
		r.fix.Altitude = gga.Altitude
		r.fix.Satellites = gga.NumSatellites
		r.fix.Quality = quality
		r.have = true
		r.mu.Unlock()

	case nmea.TypeRMC:
		rmc := sentence.(nmea.RMC)
		if rmc.Validity != "A" {
			return
		}
		r.mu.Lock()
		if r.have {
			r.fix.SpeedKnots = rmc.Speed
			r.fix.CourseDeg = rmc.Course
		}
		r.mu.Unlock()
	}
}

// LatestFix returns the most recent valid fix, if any has been decoded.
// The caller is responsible for judging staleness from Fix.Time.
func (r *Receiver) LatestFix() (Fix, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fix, r.have
}

// Close stops the background reader and releases the port.
func (r *Receiver) Close() error {
	var err error
	if r.closer != nil {
		err = r.closer.Close()
	}
	<-r.done
	return err
}
