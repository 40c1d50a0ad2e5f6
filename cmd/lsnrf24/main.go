// lsnrf24: List all connected CrazyRadio dongles
//
// This tool enumerates all CrazyRadio dongles connected to the system and
// displays their serial numbers and USB locations.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/gousb"
	"github.com/herlein/nrf24tools/pkg/crazyradio"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose output (show additional device details)")
	flag.Parse()

	// Create USB context
	context := gousb.NewContext()
	defer context.Close()

	devices, err := crazyradio.FindAllDevices(context)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to enumerate devices: %v\n", err)
		os.Exit(1)
	}

	if len(devices) == 0 {
		fmt.Println("No CrazyRadio dongles found")
		os.Exit(0)
	}

	fmt.Printf("Found %d CrazyRadio dongle(s):\n", len(devices))
	fmt.Println()

	for i, device := range devices {
		defer device.Close()

		if !*verbose {
			fmt.Printf("  #%d  %s  %d:%d\n", i, device.Serial, device.Bus, device.Address)
			continue
		}

		fmt.Printf("Dongle #%d:\n", i)
		fmt.Printf("  Serial:       %s\n", device.Serial)
		fmt.Printf("  Bus:Address:  %d:%d\n", device.Bus, device.Address)
		fmt.Printf("  Manufacturer: %s\n", device.Manufacturer)
		fmt.Printf("  Product:      %s\n", device.Product)

		// Only the research firmware answers GET_CHANNEL
		channel, err := device.GetChannel()
		if err == nil {
			fmt.Printf("  Channel:      %d\n", channel)
		} else {
			fmt.Printf("  Channel:      (error: %v)\n", err)
		}
		fmt.Println()
	}

	if !*verbose {
		fmt.Println()
		fmt.Println("Use -i or -device with the other tools to select a dongle:")
		fmt.Println("  -i 1              Select by index")
		fmt.Println("  -device \"1:10\"    Select by bus:address")
		fmt.Println("  -device \"009a\"    Select by serial (if unique)")
	}
}
