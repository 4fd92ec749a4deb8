// Package infra contains the technical adapters of evrace: result sinks,
// the MQTT publisher, logging and error reporting. These packages depend
// only on the interfaces defined in the core packages.
package infra
