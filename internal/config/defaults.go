package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Scan.Extensions == nil {
		cfg.Scan.Extensions = []string{".htm"}
	}
	if cfg.Scan.Jobs <= 0 {
		cfg.Scan.Jobs = 1
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/sanskan/data/db/runs.db"
	}
	if cfg.Watch.DebounceMS <= 0 {
		cfg.Watch.DebounceMS = 400
	}
	// Recursive defaults to true when unset (nil).
	if cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
