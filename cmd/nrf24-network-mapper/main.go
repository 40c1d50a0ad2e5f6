// nrf24-network-mapper finds devices sharing an address prefix by pinging
// every value of the address's least significant byte on every channel
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
	address     = flag.String("a", "", "Known address; its last displayed byte is probed 00-FF (required)")
	passes      = flag.Int("n", 2, "Number of passes over the address space")
	ackTimeout  = flag.Int("k", esb.DefaultAckTimeoutMicros, "ACK timeout in microseconds, accepts [250,4000], step 250")
	retries     = flag.Int("r", esb.DefaultRetries, "Auto retry limit, accepts [0,15]")
	pingPayload = flag.String("p", esb.DefaultPingPayload, "Ping payload, ex 0F:0F:0F:0F")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -a ADDRESS [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Map the nRF24 ESB devices around a known address\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
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
		file.Mapper.Address = *address
	}
	if common.IsSet("n") {
		file.Mapper.Passes = *passes
	}
	if common.IsSet("k") {
		file.Mapper.AckTimeoutUs = *ackTimeout
	}
	if common.IsSet("r") {
		file.Mapper.Retries = *retries
	}
	if common.IsSet("p") {
		file.Mapper.PingPayload = *pingPayload
	}

	config, err := file.MapperConfig()
	if err != nil {
		return err
	}

	session, err := cli.Open(file)
	if err != nil {
		return err
	}
	defer session.Close()

	config.Logger = session.Logger

	ctx, stop := cli.SignalContext()
	defer stop()

	tool := tools.Mapper{
		Config: config,
		OnReport: func(addresses []esb.Address) {
			for _, a := range addresses {
				session.Logger.Info("found address", "address", a.String())
			}
			if err := report.PrintAddresses(os.Stdout, addresses); err != nil {
				session.Logger.Warn("failed to print report", "error", err)
			}
		},
	}
	return tools.Run(ctx, session.Radio, tool, file.Device.LNA)
}
