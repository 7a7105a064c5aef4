// Package mqtt provides MQTT client connectivity for the SMS bridge gateway.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// The gateway uses MQTT as the link to the modem bridge, the process with
// direct access to the device's SMS capability:
//
//	Gateway ↔ MQTT Broker ↔ Modem Bridge
//
// Outbound sends are published as commands; the bridge answers with
// per-correlation-id delivery reports and pushes received messages on the
// inbound topic.
//
// # Security Considerations
//
//   - TLS is recommended for non-local brokers (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.Inbound(), 1, handleInbound)
package mqtt
