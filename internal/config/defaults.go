package config

const (
	defaultStateDir            = "~/.local/share/sweeparr"
	defaultStoreName           = "sweeparr"
	defaultStallThresholdHours = 168
	defaultGracePeriodHours    = 168
	defaultNtfyRequestTimeout  = 10
	defaultLogLevel            = "info"
	defaultLogFormat           = "console"
	defaultArrKind             = "sonarr"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Arr: Arr{
			Kind: defaultArrKind,
		},
		Store: Store{
			Name:     defaultStoreName,
			StateDir: defaultStateDir,
		},
		Rules: Rules{
			StallThresholdHours: defaultStallThresholdHours,
			GracePeriodHours:    defaultGracePeriodHours,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyRequestTimeout,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
