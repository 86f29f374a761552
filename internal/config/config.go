package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Logger   Logger
	Export   ExportConfig
	Tools    ToolsConfig
	Redis    RedisConfig
	Postgres DBConfig
	S3       S3Config
}

type ServerConfig struct {
	AppVersion      string
	Port            string
	Mode            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type Logger struct {
	Development       bool
	DisableCaller     bool
	DisableStacktrace bool
	Encoding          string
	Level             string
}

type ExportConfig struct {
	WorkDir           string
	OutputDir         string
	DefaultDuration   float64
	DefaultVoice      string
	DefaultTheme      string
	Parallelism       int
	MaxConcurrentJobs int
	QueueSize         int
	MaxCPUUsage       float64
	CPUCheckInterval  time.Duration
	Retention         time.Duration
	SweepInterval     time.Duration
	PublicBaseURL     string
}

type ToolsConfig struct {
	MarpPath     string
	EdgeTTSPath  string
	FFmpegPath   string
	FFprobePath  string
	Timeout      time.Duration
	Width        int
	Height       int
	FrameRate    int
	VideoCodec   string
	Preset       string
	CRF          int
	AudioBitrate string
	SampleRate   int
}

type RedisConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	DB            int
	MinIdleConns  int
	PoolSize      int
	PoolTimeout   int
	TLS           bool
	EventsChannel string
}

type DBConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	PgDriver string
}

type S3Config struct {
	Enabled       bool
	Endpoint      string
	Region        string
	AccessKey     string
	SecretKey     string
	Bucket        string
	Prefix        string
	PresignExpire time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.appVersion", "1.0.0")
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.mode", "development")
	v.SetDefault("server.readTimeout", 10*time.Second)
	v.SetDefault("server.writeTimeout", 60*time.Second)
	v.SetDefault("server.shutdownTimeout", 30*time.Second)

	v.SetDefault("logger.encoding", "console")
	v.SetDefault("logger.level", "info")

	v.SetDefault("export.workDir", "tmp_exports")
	v.SetDefault("export.outputDir", "exports")
	v.SetDefault("export.defaultDuration", 5.0)
	v.SetDefault("export.defaultVoice", "en-US-AriaNeural")
	v.SetDefault("export.defaultTheme", "default")
	v.SetDefault("export.parallelism", 4)
	v.SetDefault("export.maxConcurrentJobs", 2)
	v.SetDefault("export.queueSize", 16)
	v.SetDefault("export.maxCPUUsage", 0.0)
	v.SetDefault("export.cpuCheckInterval", 10*time.Second)
	v.SetDefault("export.retention", time.Hour)
	v.SetDefault("export.sweepInterval", 5*time.Minute)
	v.SetDefault("export.publicBaseURL", "/api/v1/exports")

	v.SetDefault("tools.marpPath", "marp")
	v.SetDefault("tools.edgeTTSPath", "edge-tts")
	v.SetDefault("tools.ffmpegPath", "ffmpeg")
	v.SetDefault("tools.ffprobePath", "ffprobe")
	v.SetDefault("tools.timeout", 5*time.Minute)
	v.SetDefault("tools.width", 1920)
	v.SetDefault("tools.height", 1080)
	v.SetDefault("tools.frameRate", 30)
	v.SetDefault("tools.videoCodec", "libx264")
	v.SetDefault("tools.preset", "medium")
	v.SetDefault("tools.crf", 23)
	v.SetDefault("tools.audioBitrate", "192k")
	v.SetDefault("tools.sampleRate", 44100)

	v.SetDefault("redis.redisAddr", ":6379")
	v.SetDefault("redis.poolSize", 10)
	v.SetDefault("redis.poolTimeout", 5)
	v.SetDefault("redis.eventsChannel", "slidecast:export-jobs")

	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslMode", "require")
	v.SetDefault("postgres.pgDriver", "pgx")

	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.prefix", "exports")
	v.SetDefault("s3.presignExpire", 15*time.Minute)
}

// LoadConfig reads filename. A missing file is not an error: defaults and
// environment variables (EXPORT_WORKDIR, TOOLS_FFMPEGPATH, ...) still apply.
func LoadConfig(filename string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(filename)
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFound) || errors.Is(err, fs.ErrNotExist) {
			return v, nil
		}
		return nil, err
	}
	return v, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c.Export.WorkDir == "" {
		return fmt.Errorf("export.workDir is required")
	}
	if c.Export.OutputDir == "" {
		return fmt.Errorf("export.outputDir is required")
	}
	if c.Export.DefaultDuration < 1 || c.Export.DefaultDuration > 30 {
		return fmt.Errorf("export.defaultDuration must be within [1, 30], got %v", c.Export.DefaultDuration)
	}
	if c.Export.Parallelism < 1 {
		return fmt.Errorf("export.parallelism must be positive, got %d", c.Export.Parallelism)
	}
	if c.Export.Retention <= 0 {
		return fmt.Errorf("export.retention must be positive, got %v", c.Export.Retention)
	}
	if c.Export.MaxConcurrentJobs < 0 {
		return fmt.Errorf("export.maxConcurrentJobs must not be negative, got %d", c.Export.MaxConcurrentJobs)
	}
	if c.Tools.Width <= 0 || c.Tools.Height <= 0 || c.Tools.FrameRate <= 0 {
		return fmt.Errorf("tools width, height and frameRate must be positive")
	}
	if c.S3.Enabled && c.S3.Bucket == "" {
		return fmt.Errorf("s3.bucket is required when s3 is enabled")
	}
	return nil
}
