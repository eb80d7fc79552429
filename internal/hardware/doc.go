// Package hardware drives physical devices for Hearth.
//
// Two backends are supported:
//
//   - kasa: TP-Link smart plugs and bulbs over their native TCP protocol
//     (port 9999, length-prefixed XOR-obfuscated JSON commands)
//   - gpio: locally wired relays and strike plates on the Pi's BCM pins,
//     referenced by symbolic name through a configured pin table
//
// The Manager fronts both: the registry hands it a device and a desired
// state, and it routes to the driver registered for the device's
// backend. Every control attempt is bounded by its driver's timeouts and
// reports one of the package's sentinel errors on failure; a failure
// never carries any retry or rollback semantics.
//
// # Usage
//
//	manager := hardware.NewManager()
//	manager.Register(device.BackendKasa, hardware.NewKasaDriver(0, dialTO, cmdTO))
//
//	gpio := hardware.NewGPIODriver(cfg.Hardware.GPIO.Pins)
//	if err := gpio.Open(); err == nil {
//		manager.Register(device.BackendGPIO, gpio)
//		defer gpio.Close()
//	}
package hardware
