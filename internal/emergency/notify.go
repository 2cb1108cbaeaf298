package emergency

import (
	"encoding/json"

	"github.com/quietroom/lockcore/internal/infrastructure/mqtt"
)

// Publisher is the slice of the MQTT client the notifier needs.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// MQTTNotifier broadcasts emergency activations on the emergency topic
// tree so panels and monitoring pick them up immediately.
type MQTTNotifier struct {
	pub    Publisher
	qos    byte
	logger Logger
}

// NewMQTTNotifier wraps a publisher. A nil logger is replaced with a
// no-op one.
func NewMQTTNotifier(pub Publisher, qos byte, logger Logger) *MQTTNotifier {
	if logger == nil {
		logger = noopLogger{}
	}
	return &MQTTNotifier{pub: pub, qos: qos, logger: logger}
}

// emergencyMessage is the wire shape published per activation.
type emergencyMessage struct {
	Record
	Contacts []Contact `json:"contacts_notified,omitempty"`
}

// NotifyEmergency publishes the activation record. Publish failures are
// logged, not propagated: emergency handling never depends on the
// broker being up.
func (n *MQTTNotifier) NotifyEmergency(rec Record, contacts []Contact) {
	msg := emergencyMessage{Record: rec, Contacts: contacts}
	payload, err := json.Marshal(msg)
	if err != nil {
		n.logger.Error("failed to encode emergency notification", "error", err)
		return
	}

	topic := mqtt.Topics{}.Emergency(string(rec.Type))
	if err := n.pub.Publish(topic, payload, n.qos, false); err != nil {
		n.logger.Error("failed to publish emergency notification",
			"topic", topic, "error", err)
	}
}
