package config

const (
	defaultAPIURL         = "https://api.opensubtitles.org/xml-rpc"
	defaultUserAgent      = "opensubtitles-download 1.0"
	defaultRequestTimeout = 45
	defaultLanguages      = "eng"
	defaultHistoryDir     = "~/.local/state/subfetch"
	defaultLogLevel       = "info"
	defaultLogFormat      = "console"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Catalog: Catalog{
			APIURL:         defaultAPIURL,
			UserAgent:      defaultUserAgent,
			RequestTimeout: defaultRequestTimeout,
		},
		Subtitles: Subtitles{
			Languages:   defaultLanguages,
			DownloadAll: false,
		},
		History: History{
			Enabled: true,
			Dir:     defaultHistoryDir,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
