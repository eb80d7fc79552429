// Package interpreter resolves free-form spoken or typed commands into
// concrete device state changes.
//
// Resolution is deliberately loose: polarity is read from whole word
// tokens ("on", "off", "unlock", "lock") and devices are selected by
// substring match on their room or type name, so "turn the kitchen light
// on", "kitchen light on" and "on light kitchen please" all resolve the
// same way. A command naming only a type ("lights off") broadcasts to
// every device of that type.
package interpreter
