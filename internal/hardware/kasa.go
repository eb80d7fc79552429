package hardware

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/betnix/hearth/internal/device"
)

// kasaCipherKey is the initial key for the autokey XOR stream the TP-Link
// smart home protocol obfuscates its JSON payloads with.
const kasaCipherKey = 171

// DefaultKasaPort is the TCP port TP-Link smart home devices listen on.
const DefaultKasaPort = 9999

// DialFunc dials a TCP connection. Overridable for tests.
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// KasaDriver controls TP-Link kasa smart plugs and bulbs over their
// native TCP protocol: a 4-byte big-endian length prefix followed by an
// XOR-obfuscated JSON command.
//
// Devices of type "light" receive a bulb transition command; every
// other device type is treated as a relay (plug). Each Apply is a fresh
// connection bounded by the configured dial and command timeouts.
type KasaDriver struct {
	port           int
	connectTimeout time.Duration
	commandTimeout time.Duration
	dial           DialFunc
}

// NewKasaDriver creates a kasa driver with the given timeouts. A zero
// port falls back to DefaultKasaPort.
func NewKasaDriver(port int, connectTimeout, commandTimeout time.Duration) *KasaDriver {
	if port == 0 {
		port = DefaultKasaPort
	}
	d := &KasaDriver{
		port:           port,
		connectTimeout: connectTimeout,
		commandTimeout: commandTimeout,
	}
	d.dial = func(ctx context.Context, network, addr string) (net.Conn, error) {
		dialer := &net.Dialer{Timeout: d.connectTimeout}
		return dialer.DialContext(ctx, network, addr)
	}
	return d
}

// SetDial overrides the connection dialer. Used by tests.
func (d *KasaDriver) SetDial(dial DialFunc) {
	d.dial = dial
}

// Apply sets the device's relay or light state.
//
// Returns ErrUnreachable when the device cannot be contacted and
// ErrCommandFailed when it responds with a non-zero error code or a
// malformed frame.
func (d *KasaDriver) Apply(ctx context.Context, dev device.Device, on bool) error {
	if dev.Address == "" {
		return fmt.Errorf("%w: %s has no address", ErrCommandFailed, dev.Name())
	}
	addr := dev.Address
	if !strings.Contains(addr, ":") {
		addr = fmt.Sprintf("%s:%d", addr, d.port)
	}

	conn, err := d.dial(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnreachable, addr, err)
	}
	defer conn.Close()

	if d.commandTimeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(d.commandTimeout)); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrCommandFailed, addr, err)
		}
	}

	payload := kasaCommand(dev.Type, on)
	if err := writeKasaFrame(conn, payload); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnreachable, addr, err)
	}

	response, err := readKasaFrame(conn)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnreachable, addr, err)
	}

	if err := checkKasaResponse(response); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCommandFailed, addr, err)
	}
	return nil
}

// kasaCommand builds the JSON command for the device type. The "light"
// type speaks the bulb lighting service; everything else is a relay.
func kasaCommand(deviceType string, on bool) []byte {
	state := 0
	if on {
		state = 1
	}
	if strings.EqualFold(deviceType, "light") {
		return []byte(fmt.Sprintf(
			`{"smartlife.iot.smartbulb.lightingservice":{"transition_light_state":{"on_off":%d}}}`,
			state,
		))
	}
	return []byte(fmt.Sprintf(`{"system":{"set_relay_state":{"state":%d}}}`, state))
}

// checkKasaResponse decodes the reply and verifies every err_code is zero.
func checkKasaResponse(payload []byte) error {
	var reply map[string]map[string]struct {
		ErrCode int    `json:"err_code"`
		ErrMsg  string `json:"err_msg"`
	}
	if err := json.Unmarshal(payload, &reply); err != nil {
		return fmt.Errorf("decoding response: %v", err)
	}
	if len(reply) == 0 {
		return fmt.Errorf("empty response")
	}
	for service, commands := range reply {
		for command, result := range commands {
			if result.ErrCode != 0 {
				return fmt.Errorf("%s.%s returned err_code %d %s",
					service, command, result.ErrCode, result.ErrMsg)
			}
		}
	}
	return nil
}

// writeKasaFrame obfuscates the payload and writes it with a 4-byte
// big-endian length prefix.
func writeKasaFrame(w io.Writer, payload []byte) error {
	frame := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(frame, uint32(len(payload)))

	key := byte(kasaCipherKey)
	for i, b := range payload {
		key = key ^ b
		frame[4+i] = key
	}

	_, err := w.Write(frame)
	return err
}

// readKasaFrame reads one length-prefixed frame and deobfuscates it.
func readKasaFrame(r io.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("reading frame header: %v", err)
	}
	length := binary.BigEndian.Uint32(header[:])
	if length == 0 || length > 1<<20 {
		return nil, fmt.Errorf("implausible frame length %d", length)
	}

	ciphered := make([]byte, length)
	if _, err := io.ReadFull(r, ciphered); err != nil {
		return nil, fmt.Errorf("reading frame body: %v", err)
	}

	payload := make([]byte, length)
	key := byte(kasaCipherKey)
	for i, b := range ciphered {
		payload[i] = key ^ b
		key = b
	}
	return payload, nil
}
