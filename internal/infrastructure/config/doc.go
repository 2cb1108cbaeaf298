// Package config loads and validates lockcore configuration.
//
// Values resolve in three layers: hardcoded defaults, the YAML file,
// then LOCKCORE_* environment variables. Secrets (broker passwords,
// the InfluxDB token, the JWT signing key) belong in the environment,
// not in the file. Validation runs once at load; a config that fails
// it never reaches the rest of the system.
package config
