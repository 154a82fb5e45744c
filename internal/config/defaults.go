package config

const (
	defaultDataDir        = "~/.local/share/switchlog"
	defaultLogDir         = "~/.local/share/switchlog/logs"
	defaultExportDir      = "~/switchlog-edl"
	defaultAPIBind        = "127.0.0.1:7601"
	defaultSocketPath     = "~/.local/share/switchlog/switchlogd.sock"
	defaultFrameRate      = "25"
	defaultStalenessMs    = 5000
	defaultEventQueueSize = 256
	defaultEDLTitle       = "SWITCHLOG PROGRAM"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultNtfyTimeout    = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			LogDir:     defaultLogDir,
			ExportDir:  defaultExportDir,
			APIBind:    defaultAPIBind,
			SocketPath: defaultSocketPath,
		},
		Engine: Engine{
			FrameRate:            defaultFrameRate,
			StalenessThresholdMs: defaultStalenessMs,
			EventQueueSize:       defaultEventQueueSize,
		},
		EDL: EDL{
			Title: defaultEDLTitle,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
			SessionStop:    true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
