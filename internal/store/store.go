package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/betnix/hearth/internal/device"
	"github.com/betnix/hearth/internal/notify"
)

// deviceRecord is the on-disk shape of one device entry. The backend tag
// historically lived under the "type" key; both keys are accepted on load
// and the legacy key is preserved on save so older tooling keeps working.
type deviceRecord struct {
	Type    string `json:"type,omitempty"`
	Backend string `json:"backend,omitempty"`
	IP      string `json:"ip,omitempty"`
	Pin     string `json:"pin,omitempty"`
	State   bool   `json:"state"`
}

// deviceFile is the full devices.json document: room name to device type
// to entry.
type deviceFile map[string]map[string]deviceRecord

// DeviceStore persists the device collection as a nested JSON document
// keyed by room then device type.
//
// A missing file reads as an empty collection; a file that exists but
// cannot be parsed returns ErrCorruptStore so the caller can decide how
// to degrade. Saves are atomic: the document is written to a temporary
// file in the same directory and renamed into place, so a crash mid-save
// never leaves a truncated store.
type DeviceStore struct {
	path string
}

// NewDeviceStore creates a device store backed by the given file path.
func NewDeviceStore(path string) *DeviceStore {
	return &DeviceStore{path: path}
}

// LoadDevices reads the persisted device collection.
//
// Returns:
//   - []device.Device: The collection, empty when the file does not exist
//   - error: ErrCorruptStore (wrapped) when the file cannot be parsed; an
//     entry with an unusable backend tag additionally wraps
//     device.ErrInvalidDevice
func (s *DeviceStore) LoadDevices() ([]device.Device, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading device store %s: %w", s.path, err)
	}

	var doc deviceFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptStore, s.path, err)
	}

	var devices []device.Device
	for room, entries := range doc {
		for deviceType, rec := range entries {
			tag := rec.Backend
			if tag == "" {
				tag = rec.Type
			}
			backend, err := device.ParseBackend(tag)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w: %s/%s: %v",
					ErrCorruptStore, s.path, device.ErrInvalidDevice, room, deviceType, err)
			}
			devices = append(devices, device.Device{
				Room:    room,
				Type:    deviceType,
				Backend: backend,
				Address: rec.IP,
				Pin:     rec.Pin,
				State:   rec.State,
			})
		}
	}

	sort.Slice(devices, func(i, j int) bool {
		if devices[i].Room != devices[j].Room {
			return devices[i].Room < devices[j].Room
		}
		return devices[i].Type < devices[j].Type
	})
	return devices, nil
}

// SaveDevices atomically overwrites the persisted collection.
func (s *DeviceStore) SaveDevices(devices []device.Device) error {
	doc := make(deviceFile)
	for _, d := range devices {
		entries, ok := doc[d.Room]
		if !ok {
			entries = make(map[string]deviceRecord)
			doc[d.Room] = entries
		}
		entries[d.Type] = deviceRecord{
			Type:  string(d.Backend),
			IP:    d.Address,
			Pin:   d.Pin,
			State: d.State,
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding device store: %w", err)
	}
	return writeFileAtomic(s.path, data)
}

// UserStore reads the notification recipient list from a JSON array of
// email/password records.
type UserStore struct {
	path string
}

// NewUserStore creates a user store backed by the given file path.
func NewUserStore(path string) *UserStore {
	return &UserStore{path: path}
}

// LoadUsers reads the persisted user list. A missing file reads as an
// empty list; an unparsable file returns ErrCorruptStore.
func (s *UserStore) LoadUsers() ([]notify.User, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading user store %s: %w", s.path, err)
	}

	var users []notify.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptStore, s.path, err)
	}
	return users, nil
}

// writeFileAtomic writes data to path via a temporary file and rename.
// Store files carry credentials, so they are created owner-only.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temporary store file: %w", err)
	}
	tmpName := tmp.Name()

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("setting store file permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing store file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing store file: %w", err)
	}
	return nil
}
