//go:build tinygo && rp2040

// Command sonar-pico runs the proximity controller on a Raspberry Pi Pico.
package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"sonar-prox.klederson.com/internal/config"
	"sonar-prox.klederson.com/internal/hw"
	"sonar-prox.klederson.com/internal/sonar"
)

func main() {
	// Give the USB serial console a moment to attach.
	time.Sleep(2 * time.Second)

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetLevel(logrus.InfoLevel)

	board := hw.NewPicoBoard(config.TimerClockHz)
	ctrl := sonar.NewController(board, sonar.Options{Log: log})
	if err := ctrl.Start(); err != nil {
		log.WithError(err).Error("start")
		for {
			time.Sleep(time.Second)
		}
	}
	if err := ctrl.Run(context.Background()); err != nil {
		log.WithError(err).Error("run")
	}
}
