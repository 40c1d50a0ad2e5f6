// nrf24-scanner sweeps channels in promiscuous mode and prints every ESB
// frame it can decode
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/herlein/nrf24tools/pkg/cli"
	"github.com/herlein/nrf24tools/pkg/esb"
	"github.com/herlein/nrf24tools/pkg/report"
	"github.com/herlein/nrf24tools/pkg/tools"
)

var (
	common  = cli.Register(flag.CommandLine)
	prefix  = flag.String("p", "", "Promiscuous mode address prefix")
	dwell   = flag.Float64("d", 100, "Dwell time per channel, in milliseconds")
	pcapOut = flag.String("pcap", "", "Also record packets to this pcap file")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Pseudo-promiscuous nRF24 ESB scanner\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                      # All of 2-83, 100ms per channel\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -p A1:B2 -d 500       # Only addresses starting A1:B2\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -pcap esb.pcap        # Record to pcap as well\n", os.Args[0])
	}
	flag.Parse()

	if err := run(); err != nil {
		cli.Fatal(err)
	}
}

func run() error {
	file, err := common.Load()
	if err != nil {
		return err
	}
	if common.IsSet("p") {
		file.Scanner.Prefix = *prefix
	}
	if common.IsSet("d") {
		file.Scanner.DwellMs = *dwell
	}
	if common.IsSet("pcap") {
		file.Scanner.Pcap = *pcapOut
	}

	config, err := file.ScannerConfig()
	if err != nil {
		return err
	}

	session, err := cli.Open(file)
	if err != nil {
		return err
	}
	defer session.Close()

	output, err := cli.PacketSink(os.Stdout, file.Scanner.Pcap, session.PacketLogger())
	if err != nil {
		return err
	}
	tracker := report.NewTracker(func(d report.DeviceInfo) {
		session.Logger.Debug("new address", "address", esb.FormatHex(d.Address), "channel", d.Channels[0])
	})
	sink := report.Multi(output, tracker)
	defer sink.Close()

	config.Logger = session.Logger
	config.OnPacket = report.Callback(sink, session.Logger)

	ctx, stop := cli.SignalContext()
	defer stop()

	if err := tools.Run(ctx, session.Radio, tools.Scanner{Config: config}, file.Device.LNA); err != nil {
		return err
	}
	return report.PrintDevices(os.Stdout, tracker.Devices())
}
