package config

const (
	defaultLogDir          = "~/.local/share/imagecollect/logs"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultTagIndex        = true
	defaultCoarseHashSize  = 8
	defaultPreciseHashSize = 8
	defaultHighfreqFactor  = 4
	defaultWorkers         = 1
	defaultDupDirName      = "dups"
	defaultOrganizeCopy    = true
)

// DefaultHeights are the height buckets images are sorted into, ascending.
var DefaultHeights = []int{480, 720, 1080, 1440, 2160, 4320}

// DefaultRatios are the aspect ratio buckets images are sorted into.
var DefaultRatios = []Ratio{
	{Width: 1, Height: 1, Name: "square"},
	{Width: 5, Height: 4, Name: "ratio 1.25"},
	{Width: 4, Height: 3, Name: "ratio 1.33"},
	{Width: 8, Height: 5, Name: "ratio 1.6"},
	{Width: 16, Height: 9, Name: "widescreen"},
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir: defaultCacheDir(),
			LogDir:   defaultLogDir,
		},
		Cache: Cache{
			TagIndex: defaultTagIndex,
		},
		Dedup: Dedup{
			CoarseHashSize:  defaultCoarseHashSize,
			PreciseHashSize: defaultPreciseHashSize,
			HighfreqFactor:  defaultHighfreqFactor,
			Workers:         defaultWorkers,
			DupDirName:      defaultDupDirName,
		},
		Organize: Organize{
			Copy:    defaultOrganizeCopy,
			Heights: append([]int(nil), DefaultHeights...),
			Ratios:  append([]Ratio(nil), DefaultRatios...),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
