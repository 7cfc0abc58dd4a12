// Package config handles loading and validating Bluehood Core configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// Process-level settings (paths, intervals, endpoints) live here. Runtime
// notification settings (which alerts fire, to which topic) live in the
// settings table and are managed through the control plane instead, so
// clients can change them without restarting the daemon.
//
// Security Considerations:
//   - Sensitive values (broker passwords, tokens) should be set via
//     environment variables rather than the config file
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Socket.Path)
package config
