package mqtt

import "fmt"

// Topic prefixes for the gateway <-> modem-bridge MQTT contract.
//
// The modem bridge subscribes to outbound send commands and publishes
// delivery reports and inbound messages:
//
//	smsbridge/outbound/{correlation_id}  gateway -> bridge send command
//	smsbridge/report/{correlation_id}    bridge -> gateway delivery report
//	smsbridge/inbound                    bridge -> gateway received SMS
//	smsbridge/system/status              retained presence (gateway LWT)
const (
	// TopicPrefix is the base for all gateway topics.
	TopicPrefix = "smsbridge"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "smsbridge/system"
)

// Topics provides builders for gateway MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
type Topics struct{}

// Outbound returns the topic for an outbound send command.
//
// Example: smsbridge/outbound/sms_1755000000000_0042
func (Topics) Outbound(correlationID string) string {
	return fmt.Sprintf("%s/outbound/%s", TopicPrefix, correlationID)
}

// Report returns the topic for a delivery report.
//
// Example: smsbridge/report/sms_1755000000000_0042
func (Topics) Report(correlationID string) string {
	return fmt.Sprintf("%s/report/%s", TopicPrefix, correlationID)
}

// Inbound returns the topic for received messages from the modem bridge.
//
// Example: smsbridge/inbound
func (Topics) Inbound() string {
	return fmt.Sprintf("%s/inbound", TopicPrefix)
}

// SystemStatus returns the gateway presence topic.
//
// Example: smsbridge/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllReports returns a pattern matching all delivery reports.
//
// Pattern: smsbridge/report/+
func (Topics) AllReports() string {
	return fmt.Sprintf("%s/report/+", TopicPrefix)
}

// AllTopics returns a pattern matching all gateway topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: smsbridge/#
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}
