package config

const (
	defaultConfigPath          = "~/.config/slidecap/config.toml"
	defaultLogDir              = "~/.local/share/slidecap/logs"
	defaultStateDir            = "~/.local/share/slidecap"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultLogRetentionDays    = 30
	defaultScanInterval        = 1.0
	defaultScanMode            = "combined"
	defaultSimilarityThreshold = 0.95
	defaultHashThreshold       = 10
	defaultOCRLanguages        = "chi_sim+eng"
	defaultOCRTimeoutSeconds   = 30
)

// Modes lists the accepted scan.mode values.
var Modes = []string{"text", "image", "combined"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		Scan: Scan{
			Interval:            defaultScanInterval,
			Mode:                defaultScanMode,
			SimilarityThreshold: defaultSimilarityThreshold,
			HashThreshold:       defaultHashThreshold,
		},
		OCR: OCR{
			Languages:      defaultOCRLanguages,
			TimeoutSeconds: defaultOCRTimeoutSeconds,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
