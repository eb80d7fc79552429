package mqtt

import "testing"

func TestTopics(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"device state", topics.DeviceState("kitchen", "light"), "hearth/core/device/kitchen/light/state"},
		{"event", topics.Event("device_state_changed"), "hearth/core/event/device_state_changed"},
		{"system status", topics.SystemStatus(), "hearth/system/status"},
		{"all device states", topics.AllDeviceStates(), "hearth/core/device/+/+/state"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestPublish_Validation(t *testing.T) {
	c := &Client{}

	if err := c.Publish("", []byte("{}"), 1, false); err != ErrInvalidTopic {
		t.Errorf("empty topic error = %v, want ErrInvalidTopic", err)
	}
	if err := c.Publish("hearth/system/status", []byte("{}"), 3, false); err != ErrInvalidQoS {
		t.Errorf("qos 3 error = %v, want ErrInvalidQoS", err)
	}
}
