package app

import "errors"

var errUnhealthy = errors.New("one or more backends are down")

// Defaults returns the values used for keys missing from the config file and
// environment.
func Defaults() map[string]any {
	return map[string]any{
		"app.name":                                    "otpgate",
		"app.tz":                                      "UTC",
		"app.node_id":                                 1,
		"app.startup.ping_retries":                    5,
		"app.server.max_goroutine":                    100,
		"app.server.http.address":                     ":5000",
		"app.server.http.read_timeout_seconds":        10,
		"app.server.http.read_header_timeout_seconds": 5,
		"app.server.http.write_timeout_seconds":       10,
		"app.server.http.idle_timeout_seconds":        60,
		"instrument.enabled":                          false,
		"instrument.service_name":                     "otpgate",
		"instrument.log_level":                        "info",
		"instrument.log_mask_fields":                  "password,otp,code,token,authorization",
		"hash.password.algorithm":                     "bcrypt",
		"hash.bcrypt.cost":                            10,
		"jwt.issuer":                                  "otpgate",
		"jwt.ttl_minutes":                             1440,
		"storage.directory":                           "memory",
		"storage.challenge":                           "memory",
		"database.migrate":                            true,
		"mail.driver":                                 "log",
		"messaging.driver":                            "none",
		"messaging.kafka.write_timeout_seconds":       10,
		"messaging.nats.max_reconnects":               10,
		"messaging.nats.reconnect_wait_seconds":       2,
		"modules.auth.enabled":                        true,
		"modules.auth.challenge.ttl_minutes":          15,
		"modules.auth.challenge.code_digits":          6,
		"modules.auth.challenge.max_attempts":         0,
		"modules.auth.challenge.retention_minutes":    1440,
		"modules.auth.events.enabled":                 false,
	}
}
