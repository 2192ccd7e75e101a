package config

import "time"

const (
	// Timer clock shared by all three timers (SMCLK, Hz)
	TimerClockHz = 1048576

	// Trigger timer
	TriggerPeriodTicks = 61680 // 17 pulses per second
	TriggerPulseTicks  = 20    // ~20 µs trigger width

	// Capture timer
	CapturePeriodTicks = 12582 // 12 ms window, (1048576 x 0.012) - 1
	CaptureWindowSec   = 0.012 // Seconds covered by CapturePeriodTicks
	EchoRisingChannel  = 1     // Capture channel latching the rising edge
	EchoFallingChannel = 2     // Capture channel latching the falling edge

	// RTT to distance
	SpeedOfSound     = 340.0              // m/s
	HalfSpeedOfSound = SpeedOfSound / 2.0 // One-way share of the round trip
	CmPerMeter       = 100.0

	// Proximity zones (cm)
	FarAboveCm   = 50.0
	MediumFromCm = 30.0
	NearFromCm   = 10.0
	MaxDisplayCm = 70.0 // Right edge of the scope

	// Audio feedback
	ToneCutoffCm     = 50.0 // Silent at or beyond this distance
	ToneDivisorBase  = 5000
	ToneDivisorSlope = 100

	// Display
	TargetFPS      = 30
	HistoryLen     = 120 // Readings kept for the sparkline
	PingTrail      = 250 * time.Millisecond
	SnapshotPeriod = time.Second / TargetFPS

	// Demo mode
	DemoMinCm       = 4.0
	DemoMaxCm       = 65.0
	DemoSweepPeriod = 12 * time.Second // One closer-and-back cycle
	DemoJitterCm    = 0.4              // Peak noise on the echo
	DemoStepCm      = 1.0              // Keyboard nudge

	// App
	AppName    = "SONAR-PROX"
	AppVersion = "1.0"
)
