// Package influxdb provides optional telemetry for the SMS bridge gateway.
//
// When enabled, the gateway records send outcomes, inbound message counts,
// and event hub fan-out sizes as InfluxDB measurements. Writes are batched
// and non-blocking; telemetry failures never affect message handling.
//
// The client is optional throughout the codebase: callers hold a nil
// *Client when telemetry is disabled and guard every write accordingly.
package influxdb
