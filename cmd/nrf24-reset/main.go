// nrf24-reset recovers CrazyRadio dongles: it stops any carrier left on by
// an interrupted tone test and then resets the USB port
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/gousb"

	"github.com/herlein/nrf24tools/pkg/crazyradio"
	"github.com/herlein/nrf24tools/pkg/logging"
)

var (
	selector    = flag.String("device", "", "Only reset this dongle (default: every dongle)\n"+crazyradio.DeviceFlagUsage())
	carrierOnly = flag.Bool("carrier-only", false, "Stop the carrier but skip the USB port reset")
	attempts    = flag.Int("attempts", 3, "Enumeration attempts before giving up")
	wait        = flag.Duration("wait", time.Second, "Pause between enumeration attempts")
	verbose     = flag.Bool("v", false, "Enable verbose output")
)

func main() {
	flag.Parse()

	logger, closer, err := logging.New(logging.Options{Verbose: *verbose})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	ctx := gousb.NewContext()
	defer ctx.Close()

	devices, err := openDongles(ctx, logger)
	if err != nil {
		logger.Error("no dongle to reset", "attempts", *attempts, "error", err)
		os.Exit(1)
	}

	failed := 0
	for _, d := range devices {
		if err := recoverDongle(d, logger); err != nil {
			logger.Error("reset failed", "serial", d.Serial, "error", err)
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// openDongles retries enumeration; a dongle that was just reset can take a
// moment to come back on the bus
func openDongles(ctx *gousb.Context, logger *slog.Logger) ([]*crazyradio.Device, error) {
	err := errors.New("no CrazyRadio dongles found")
	for attempt := 1; attempt <= *attempts; attempt++ {
		var devices []*crazyradio.Device
		if *selector != "" {
			var d *crazyradio.Device
			if d, err = crazyradio.SelectDevice(ctx, crazyradio.DeviceSelector(*selector)); err == nil {
				devices = append(devices, d)
			}
		} else {
			devices, err = crazyradio.FindAllDevices(ctx)
			if err == nil && len(devices) == 0 {
				err = errors.New("no CrazyRadio dongles found")
			}
		}
		if err == nil {
			return devices, nil
		}

		logger.Debug("enumeration failed", "attempt", attempt, "error", err)
		if attempt < *attempts {
			time.Sleep(*wait)
		}
	}
	return nil, err
}

func recoverDongle(d *crazyradio.Device, logger *slog.Logger) error {
	log := logger.With("serial", d.Serial, "bus", d.Bus, "address", d.Address)

	// Promiscuous mode with an empty prefix also ends a tone test
	carrierErr := d.EnterPromiscuousMode(nil)
	if carrierErr != nil {
		log.Warn("could not stop carrier", "error", carrierErr)
	} else {
		log.Info("carrier off")
	}

	var resetErr error
	if !*carrierOnly {
		if resetErr = d.Reset(); resetErr == nil {
			log.Info("USB reset OK")
		}
	}

	return errors.Join(resetErr, d.Close())
}
