// Package infra holds technical adapters: the MQTT counts feed, metric
// exporters and the structured logger. These packages depend only on
// interfaces defined under core.
package infra
