// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"fmt"
	"log"
	"time"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/stereo_rig/internal/imu"
	"github.com/relabs-tech/stereo_rig/internal/vmath"
)

// MPU9250 scale factors at the ranges configured below (±2g, ±500°/s).
const (
	accelLSBPerG   = 16384.0
	gyroLSBPerDegS = 65.5
)

type imuSource struct {
	dev     *mpu9250.MPU9250
	name    string
	enabled bool

	// attitude is integrated from the gyro between reads; the MPU9250
	// has no onboard attitude output.
	attitude vmath.Quat
	lastRead time.Time
}

// NewIMUSource initializes an MPU9250 over SPI and returns an
// imu.Source that integrates the gyro into an attitude quaternion.
func NewIMUSource(name, spiDev, csPin string) (imu.Source, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%s IMU: periph host init: %w", name, err)
	}

	cs := gpioreg.ByName(csPin)
	if cs == nil {
		return nil, fmt.Errorf("%s IMU: CS pin %q not found", name, csPin)
	}

	tr, err := mpu9250.NewSpiTransport(spiDev, cs)
	if err != nil {
		return nil, fmt.Errorf("%s IMU: SPI transport (%s): %w", name, spiDev, err)
	}

	dev, err := mpu9250.New(tr)
	if err != nil {
		return nil, fmt.Errorf("%s IMU: device creation: %w", name, err)
	}

	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("%s IMU: initialization: %w", name, err)
	}

	if err := dev.SetAccelRange(0); err != nil {
		return nil, fmt.Errorf("%s IMU: set accel range: %w", name, err)
	}
	if err := dev.SetGyroRange(1); err != nil {
		return nil, fmt.Errorf("%s IMU: set gyro range: %w", name, err)
	}
	log.Printf("%s IMU: accel ±2g, gyro ±500°/s", name)

	if err := dev.Calibrate(); err != nil {
		log.Printf("Warning: %s IMU calibration failed: %v", name, err)
	} else {
		log.Printf("%s IMU calibration complete", name)
	}

	return &imuSource{
		dev:      dev,
		name:     name,
		enabled:  true,
		attitude: vmath.QuatIdentity(),
	}, nil
}

func (s *imuSource) SetEnabled(enabled bool) { s.enabled = enabled }

func (s *imuSource) HasGyro() bool { return true }

func (s *imuSource) Next() (imu.Sample, error) {
	if !s.enabled {
		return imu.Sample{}, imu.ErrNoSample
	}

	ax, err := s.dev.GetAccelerationX()
	if err != nil {
		return imu.Sample{}, fmt.Errorf("%s IMU accel X: %w", s.name, err)
	}
	ay, err := s.dev.GetAccelerationY()
	if err != nil {
		return imu.Sample{}, fmt.Errorf("%s IMU accel Y: %w", s.name, err)
	}
	az, err := s.dev.GetAccelerationZ()
	if err != nil {
		return imu.Sample{}, fmt.Errorf("%s IMU accel Z: %w", s.name, err)
	}

	gx, err := s.dev.GetRotationX()
	if err != nil {
		return imu.Sample{}, fmt.Errorf("%s IMU gyro X: %w", s.name, err)
	}
	gy, err := s.dev.GetRotationY()
	if err != nil {
		return imu.Sample{}, fmt.Errorf("%s IMU gyro Y: %w", s.name, err)
	}
	gz, err := s.dev.GetRotationZ()
	if err != nil {
		return imu.Sample{}, fmt.Errorf("%s IMU gyro Z: %w", s.name, err)
	}

	now := time.Now()
	rate := vmath.Vec3{
		X: float64(gx) / gyroLSBPerDegS,
		Y: float64(gy) / gyroLSBPerDegS,
		Z: float64(gz) / gyroLSBPerDegS,
	}

	// Integrate the body-frame rate into the attitude.
	if !s.lastRead.IsZero() {
		dt := now.Sub(s.lastRead).Seconds()
		mag := rate.Len()
		if mag > 1e-9 && dt > 0 {
			step := vmath.QuatFromAxisAngle(rate.Normalize(), mag*degToRad*dt)
			s.attitude = s.attitude.Mul(step).Normalize()
		}
	}
	s.lastRead = now

	accel := vmath.Vec3{
		X: float64(ax) / accelLSBPerG * gravityMS2,
		Y: float64(ay) / accelLSBPerG * gravityMS2,
		Z: float64(az) / accelLSBPerG * gravityMS2,
	}

	return imu.Sample{
		Attitude:     s.attitude,
		AngularRate:  rate,
		Acceleration: accel,
		Time:         now,
	}, nil
}
