package orientation

import (
	"bufio"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/stereo_rig/internal/imu"
	"github.com/relabs-tech/stereo_rig/internal/vmath"
)

// serialSource reads IMU sample lines from a microcontroller bridge
// over a serial port. Line format, one sample per line:
//
//	IMU,qx,qy,qz,qw,gx,gy,gz,ax,ay,az
//
// with the quaternion unitless, gyro in deg/s, accel in m/s². A reader
// goroutine caches the most recent sample; Next is a non-blocking poll.
type serialSource struct {
	mu      sync.Mutex
	latest  imu.Sample
	have    bool
	fresh   bool
	enabled bool
}

// NewSerialSource opens the serial port and starts reading samples.
func NewSerialSource(portName string, baudRate uint) (imu.Source, error) {
	opts := serial.OpenOptions{
		PortName:        portName,
		BaudRate:        baudRate,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
		ParityMode:      serial.PARITY_NONE,
	}

	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("serial IMU: open %s: %w", portName, err)
	}
	log.Printf("serial IMU: port opened on %s at %d baud", portName, baudRate)

	s := &serialSource{enabled: true}

	go func() {
		defer port.Close()
		reader := bufio.NewReader(port)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				log.Printf("serial IMU: read error: %v", err)
				return
			}
			sample, err := parseSampleLine(strings.TrimSpace(line))
			if err != nil {
				// Partial or garbled line; keep reading.
				continue
			}
			s.mu.Lock()
			s.latest = sample
			s.have = true
			s.fresh = true
			s.mu.Unlock()
		}
	}()

	return s, nil
}

func (s *serialSource) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled
}

func (s *serialSource) HasGyro() bool { return true }

func (s *serialSource) Next() (imu.Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled || !s.have || !s.fresh {
		return imu.Sample{}, imu.ErrNoSample
	}
	s.fresh = false
	return s.latest, nil
}

func parseSampleLine(line string) (imu.Sample, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 11 || fields[0] != "IMU" {
		return imu.Sample{}, fmt.Errorf("serial IMU: malformed line %q", line)
	}

	var v [10]float64
	for i := range v {
		f, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return imu.Sample{}, fmt.Errorf("serial IMU: field %d: %w", i+1, err)
		}
		v[i] = f
	}

	return imu.Sample{
		Attitude:     vmath.Quat{X: v[0], Y: v[1], Z: v[2], W: v[3]}.Normalize(),
		AngularRate:  vmath.Vec3{X: v[4], Y: v[5], Z: v[6]},
		Acceleration: vmath.Vec3{X: v[7], Y: v[8], Z: v[9]},
		Time:         time.Now(),
	}, nil
}
