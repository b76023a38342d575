// Package config handles loading and validating the timedata service configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with GRAYLOGIC_TIMEDATA_* environment variables
//   - Validation of required fields, collecting every problem at once
//   - Default value handling
//
// Security Considerations:
//   - The InfluxDB token and MQTT password should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/timedata.yaml")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.InfluxDB.AvgBucket())
package config
