// Command awarenode runs a simulated energy-aware sensing node.
//
// The node samples a synthetic waveform, drains a simulated battery and
// either loops its payload back or publishes it to an MQTT broker. Node
// state and alarm counters can be exported for Prometheus.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
