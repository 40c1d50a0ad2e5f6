// nrf24-continuous-tone-test transmits an unmodulated carrier until
// interrupted
package main

import (
	"flag"
	"fmt"

	"github.com/herlein/nrf24tools/pkg/cli"
	"github.com/herlein/nrf24tools/pkg/tools"
)

var common = cli.Register(flag.CommandLine)

func main() {
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

	// -c picks the carrier channel over the config file's tone_test entry
	if common.IsSet("c") {
		file.ToneTest.Channel = nil
	}

	tool, err := file.ToneTestConfig()
	if err != nil {
		return err
	}

	session, err := cli.Open(file)
	if err != nil {
		return err
	}
	defer session.Close()

	ctx, stop := cli.SignalContext()
	defer stop()

	fmt.Printf("Transmitting carrier on channel %d, Ctrl-C to stop\n", tool.Channel)
	return tools.Run(ctx, session.Radio, tool, file.Device.LNA)
}
