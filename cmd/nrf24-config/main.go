// nrf24-config: Write or show the nRF24 tools configuration file
//
// With -o the defaults (or the file given with -config) are written in the
// format implied by the output extension. Without it the effective
// configuration is printed to stdout as TOML.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/herlein/nrf24tools/pkg/config"
)

func main() {
	outputFile := flag.String("o", "", "Output file path (.toml, .yaml, .yml or .json)")
	inputFile := flag.String("config", "", "Existing config file to convert or check")
	check := flag.Bool("check", false, "Validate every tool section and report problems")
	flag.Parse()

	configuration, err := config.Load(*inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *check {
		if !validate(configuration) {
			os.Exit(1)
		}
		return
	}

	if *outputFile == "" {
		if err := toml.NewEncoder(os.Stdout).Encode(configuration); err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to encode configuration: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := config.Save(configuration, *outputFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to save configuration: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Configuration saved to: %s\n", *outputFile)
}

// validate prints one line per section; sections without an address are
// reported but only fail when an address is present and wrong
func validate(configuration *config.File) bool {
	ok := true
	report := func(section string, err error) {
		if err != nil {
			ok = false
			fmt.Printf("  %-10s %v\n", section, err)
			return
		}
		fmt.Printf("  %-10s OK\n", section)
	}

	_, err := configuration.ChannelSet()
	report("channels", err)

	_, err = configuration.ScannerConfig()
	report("scanner", err)

	_, err = configuration.ToneTestConfig()
	report("tone_test", err)

	if configuration.Sniffer.Address != "" {
		_, err = configuration.SnifferConfig()
		report("sniffer", err)
	} else {
		fmt.Printf("  %-10s no address set\n", "sniffer")
	}

	if configuration.Mapper.Address != "" {
		_, err = configuration.MapperConfig()
		report("mapper", err)
	} else {
		fmt.Printf("  %-10s no address set\n", "mapper")
	}

	return ok
}
