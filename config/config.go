package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/xeptore/scdl/redact"
)

const (
	defaultFileName = "config.yaml"
	clientIDEnvKey  = "SOUNDCLOUD_CLIENT_ID"
)

type Config struct {
	Log        Log        `yaml:"log"`
	SoundCloud SoundCloud `yaml:"soundcloud"`
	Downloader Downloader `yaml:"downloader"`
}

func (c *Config) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Dict("log", c.Log.ToDict()).
		Dict("soundcloud", c.SoundCloud.ToDict()).
		Dict("downloader", c.Downloader.ToDict())
}

func (c *Config) setDefaults() {
	c.Log.setDefaults()
	c.SoundCloud.setDefaults()
	c.Downloader.setDefaults()
}

func (c *Config) validate() error {
	if err := c.Log.validate(); nil != err {
		return fmt.Errorf("log config validation failed: %v", err)
	}

	if err := c.SoundCloud.validate(); nil != err {
		return fmt.Errorf("soundcloud config validation failed: %v", err)
	}

	if err := c.Downloader.validate(); nil != err {
		return fmt.Errorf("downloader config validation failed: %v", err)
	}

	return nil
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Log) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("level", c.Level).
		Str("format", c.Format)
}

func (c *Log) setDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}

	if c.Format == "" {
		c.Format = "auto"
	}
}

func (c *Log) validate() error {
	if !slices.Contains([]string{"trace", "debug", "info", "warn", "error", "fatal", "panic"}, c.Level) {
		return fmt.Errorf(
			"level must be one of: trace, debug, info, warn, error, fatal, panic, got: %s",
			c.Level,
		)
	}

	if !slices.Contains([]string{"json", "pretty", "auto"}, c.Format) {
		return fmt.Errorf("format must be 'json', 'pretty' or 'auto', got: %s", c.Format)
	}

	return nil
}

type SoundCloud struct {
	LandingURL string              `yaml:"landing_url"`
	APIURL     string              `yaml:"api_url"`
	ClientID   string              `yaml:"-"`
	Retry      SoundCloudRetry     `yaml:"retry"`
	Timeouts   SoundCloudTimeouts  `yaml:"timeouts"`
	RateLimit  SoundCloudRateLimit `yaml:"rate_limit"`
}

func (c *SoundCloud) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("landing_url", c.LandingURL).
		Str("api_url", c.APIURL).
		Str("client_id", redact.String(c.ClientID)).
		Dict("retry", c.Retry.ToDict()).
		Dict("timeouts", c.Timeouts.ToDict()).
		Dict("rate_limit", c.RateLimit.ToDict())
}

func (c *SoundCloud) setDefaults() {
	if c.LandingURL == "" {
		c.LandingURL = "https://soundcloud.com"
	}

	if c.APIURL == "" {
		c.APIURL = "https://api-v2.soundcloud.com"
	}

	c.Retry.setDefaults()
	c.Timeouts.setDefaults()
	c.RateLimit.setDefaults()
}

func (c *SoundCloud) validate() error {
	if err := validateHTTPURL(c.LandingURL); nil != err {
		return fmt.Errorf("landing_url is invalid: %v", err)
	}

	if err := validateHTTPURL(c.APIURL); nil != err {
		return fmt.Errorf("api_url is invalid: %v", err)
	}

	if err := c.Timeouts.validate(); nil != err {
		return fmt.Errorf("timeouts config validation failed: %v", err)
	}

	if err := c.RateLimit.validate(); nil != err {
		return fmt.Errorf("rate_limit config validation failed: %v", err)
	}

	return nil
}

func validateHTTPURL(s string) error {
	u, err := url.Parse(s)
	if nil != err {
		return err
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("missing host")
	}

	return nil
}

// SoundCloudRetry uses pointers so that an explicit zero in the file is kept.
type SoundCloudRetry struct {
	MaxRetries         *uint `yaml:"max_retries"`
	RetryOnAuthFailure *bool `yaml:"retry_on_auth_failure"`
}

func (c *SoundCloudRetry) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Uint("max_retries", c.MaxRetriesValue()).
		Bool("retry_on_auth_failure", c.RetryOnAuthFailureValue())
}

func (c *SoundCloudRetry) setDefaults() {
	if c.MaxRetries == nil {
		c.MaxRetries = lo.ToPtr[uint](1)
	}

	if c.RetryOnAuthFailure == nil {
		c.RetryOnAuthFailure = lo.ToPtr(true)
	}
}

func (c *SoundCloudRetry) MaxRetriesValue() uint {
	return lo.FromPtrOr(c.MaxRetries, 1)
}

func (c *SoundCloudRetry) RetryOnAuthFailureValue() bool {
	return lo.FromPtrOr(c.RetryOnAuthFailure, true)
}

// SoundCloudTimeouts values are in seconds.
type SoundCloudTimeouts struct {
	Discovery     int `yaml:"discovery"`
	APIRequest    int `yaml:"api_request"`
	Waveform      int `yaml:"waveform"`
	DownloadTrack int `yaml:"download_track"`
	HLSSegment    int `yaml:"hls_segment"`
}

func (c *SoundCloudTimeouts) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Int("discovery", c.Discovery).
		Int("api_request", c.APIRequest).
		Int("waveform", c.Waveform).
		Int("download_track", c.DownloadTrack).
		Int("hls_segment", c.HLSSegment)
}

func (c *SoundCloudTimeouts) setDefaults() {
	if c.Discovery == 0 {
		c.Discovery = 10
	}

	if c.APIRequest == 0 {
		c.APIRequest = 10
	}

	if c.Waveform == 0 {
		c.Waveform = 5
	}

	if c.DownloadTrack == 0 {
		c.DownloadTrack = 300
	}

	if c.HLSSegment == 0 {
		c.HLSSegment = 30
	}
}

func (c *SoundCloudTimeouts) validate() error {
	if c.Discovery < 0 {
		return errors.New("discovery must be greater than 0")
	}

	if c.APIRequest < 0 {
		return errors.New("api_request must be greater than 0")
	}

	if c.Waveform < 0 {
		return errors.New("waveform must be greater than 0")
	}

	if c.DownloadTrack < 0 {
		return errors.New("download_track must be greater than 0")
	}

	if c.HLSSegment < 0 {
		return errors.New("hls_segment must be greater than 0")
	}

	return nil
}

func (c *SoundCloudTimeouts) DiscoveryDuration() time.Duration {
	return time.Duration(c.Discovery) * time.Second
}

func (c *SoundCloudTimeouts) APIRequestDuration() time.Duration {
	return time.Duration(c.APIRequest) * time.Second
}

func (c *SoundCloudTimeouts) WaveformDuration() time.Duration {
	return time.Duration(c.Waveform) * time.Second
}

func (c *SoundCloudTimeouts) DownloadTrackDuration() time.Duration {
	return time.Duration(c.DownloadTrack) * time.Second
}

func (c *SoundCloudTimeouts) HLSSegmentDuration() time.Duration {
	return time.Duration(c.HLSSegment) * time.Second
}

// SoundCloudRateLimit with zero RequestsPerSecond disables limiting.
type SoundCloudRateLimit struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

func (c *SoundCloudRateLimit) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Float64("requests_per_second", c.RequestsPerSecond).
		Int("burst", c.Burst)
}

func (c *SoundCloudRateLimit) setDefaults() {
	if c.Burst == 0 {
		c.Burst = 1
	}
}

func (c *SoundCloudRateLimit) validate() error {
	if c.RequestsPerSecond < 0 {
		return errors.New("requests_per_second must not be negative")
	}

	if c.Burst < 0 {
		return errors.New("burst must be greater than 0")
	}

	return nil
}

type Downloader struct {
	Dir                string `yaml:"dir"`
	SegmentConcurrency int    `yaml:"segment_concurrency"`
	SegmentRetries     int    `yaml:"segment_retries"`
	FFmpegPath         string `yaml:"ffmpeg_path"`
}

func (c *Downloader) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("dir", c.Dir).
		Int("segment_concurrency", c.SegmentConcurrency).
		Int("segment_retries", c.SegmentRetries).
		Str("ffmpeg_path", c.FFmpegPath)
}

func (c *Downloader) setDefaults() {
	if c.Dir == "" {
		c.Dir = "./downloads"
	}

	if c.SegmentConcurrency == 0 {
		c.SegmentConcurrency = 4
	}

	if c.SegmentRetries == 0 {
		c.SegmentRetries = 3
	}

	if c.FFmpegPath == "" {
		c.FFmpegPath = "ffmpeg"
	}
}

func (c *Downloader) validate() error {
	if c.SegmentConcurrency < 0 {
		return errors.New("segment_concurrency must be greater than 0")
	}

	if c.SegmentRetries < 0 {
		return errors.New("segment_retries must not be negative")
	}

	if i, err := os.Stat(c.Dir); nil != err {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to stat dir: %v", err)
		}
	} else if !i.IsDir() {
		return errors.New("dir must be a directory")
	}

	return nil
}

// Default returns a validated configuration built purely from defaults and
// the environment.
func Default() *Config {
	var conf Config
	conf.SoundCloud.ClientID = os.Getenv(clientIDEnvKey)
	conf.setDefaults()

	return &conf
}

// Load reads filename, falling back to config.yaml. A missing config.yaml is
// not an error, an explicitly named missing file is.
func Load(filename string) (*Config, error) {
	path := lo.Ternary(len(filename) > 0, filename, defaultFileName)

	var conf Config
	data, err := os.ReadFile(path)
	if nil != err {
		if !errors.Is(err, os.ErrNotExist) || len(filename) > 0 {
			return nil, fmt.Errorf("failed to read config file %s: %v", path, err)
		}
	} else if err := yaml.Unmarshal(data, &conf); nil != err {
		return nil, fmt.Errorf("failed to parse config file %s: %v", path, err)
	}

	conf.SoundCloud.ClientID = os.Getenv(clientIDEnvKey)
	conf.setDefaults()

	if err := conf.validate(); nil != err {
		return nil, fmt.Errorf("configuration validation failed: %v", err)
	}

	return &conf, nil
}
