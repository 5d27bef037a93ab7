package scan

import (
	"github.com/hyperjump/sanskan/internal/config"
	"github.com/hyperjump/sanskan/internal/extract"
)

// ConfigOptions translates the scan section of the application config into scanner options.
func ConfigOptions(cfg config.ScanConfig) []ScannerOption {
	opts := []ScannerOption{
		WithJobs(cfg.Jobs),
		WithSkipUnreadable(cfg.SkipUnreadable),
	}
	if len(cfg.Extensions) > 0 {
		opts = append(opts, WithExtensions(cfg.Extensions))
	}
	if cfg.LenientUTF8 {
		opts = append(opts, WithExtractor(extract.NewExtractor(extract.WithLenientUTF8())))
	}
	return opts
}
