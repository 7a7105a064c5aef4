// Package transport connects the gateway to an external modem bridge
// over MQTT. Outbound sends are published as commands and resolved by
// per-correlation-id delivery reports; inbound messages arrive on a
// shared topic and are handed to a registered callback.
package transport
