// nrf24-sniffer follows one ESB address as it hops channels and prints
// every valid frame it receives
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
	common      = cli.Register(flag.CommandLine)
	address     = flag.String("a", "", "Address to sniff, following as it changes channels (required)")
	timeout     = flag.Float64("t", 100, "Channel timeout, in milliseconds")
	ackTimeout  = flag.Int("k", esb.DefaultAckTimeoutMicros, "ACK timeout in microseconds, accepts [250,4000], step 250")
	retries     = flag.Int("r", esb.DefaultRetries, "Auto retry limit, accepts [0,15]")
	pingPayload = flag.String("p", esb.DefaultPingPayload, "Ping payload, ex 0F:0F:0F:0F")
	pcapOut     = flag.String("pcap", "", "Also record packets to this pcap file")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -a ADDRESS [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Follow an nRF24 ESB device across channels and log its packets\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -a E7:E7:E7:E7:01              # Follow across channels 2-83\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -a E7:E7:E7:E7:01 -c 5,10,40 -l # Three channels, LNA on\n", os.Args[0])
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
	if common.IsSet("a") {
		file.Sniffer.Address = *address
	}
	if common.IsSet("t") {
		file.Sniffer.TimeoutMs = *timeout
	}
	if common.IsSet("k") {
		file.Sniffer.AckTimeoutUs = *ackTimeout
	}
	if common.IsSet("r") {
		file.Sniffer.Retries = *retries
	}
	if common.IsSet("p") {
		file.Sniffer.PingPayload = *pingPayload
	}
	if common.IsSet("pcap") {
		file.Sniffer.Pcap = *pcapOut
	}

	config, err := file.SnifferConfig()
	if err != nil {
		return err
	}

	session, err := cli.Open(file)
	if err != nil {
		return err
	}
	defer session.Close()

	sink, err := cli.PacketSink(os.Stdout, file.Sniffer.Pcap, session.PacketLogger())
	if err != nil {
		return err
	}
	defer sink.Close()

	config.Logger = session.Logger
	config.OnPacket = report.Callback(sink, session.Logger)

	ctx, stop := cli.SignalContext()
	defer stop()

	return tools.Run(ctx, session.Radio, tools.Sniffer{Config: config}, file.Device.LNA)
}
