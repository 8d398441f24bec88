package config

// Sanitize returns a copy of cfg safe for logging. TLS key paths are
// reduced to a presence marker; everything else in ServerConfig is
// operational and kept.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg
	sanitized.Security.AdminAllowlist = append([]string(nil), cfg.Security.AdminAllowlist...)
	if sanitized.Server.HTTP.TLSKeyFile != "" {
		sanitized.Server.HTTP.TLSKeyFile = maskSecret(sanitized.Server.HTTP.TLSKeyFile)
	}
	return &sanitized
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + "****" + s[len(s)-2:]
}
