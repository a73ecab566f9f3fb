/*
Package observability turns engine lifecycle events and gateway resolutions into
structured logs and Prometheus metrics.
*/
package observability
