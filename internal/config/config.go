// Package config holds the externally configurable mixer and play
// defaults: Default*() literals, plus MixerFromEnv layering environment
// overrides on top of DefaultMixer. The mixer package keeps its own
// matching defaults in DefaultOptions/DefaultPlayOptions.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// MixerConfig is the externally configurable subset of mixer.Options.
type MixerConfig struct {
	SampleRate  float32
	NumChannels int
	IsLoopback  bool
}

// DefaultMixer returns the default mixer configuration.
func DefaultMixer() MixerConfig {
	return MixerConfig{
		SampleRate:  48000.0,
		NumChannels: 16,
		IsLoopback:  false,
	}
}

// MixerFromEnv returns the mixer configuration with GOMIXER_* environment
// overrides applied: start from the default, then let any set env var win.
func MixerFromEnv() MixerConfig {
	cfg := DefaultMixer()

	if sr := getEnvFloat("GOMIXER_SAMPLE_RATE", 0); sr > 0 {
		cfg.SampleRate = sr
	}
	if nc := getEnvInt("GOMIXER_NUM_CHANNELS", 0); nc > 0 {
		cfg.NumChannels = nc
	}
	if lb := os.Getenv("GOMIXER_LOOPBACK"); lb != "" {
		cfg.IsLoopback = lb == "1" || lb == "true"
	}

	return cfg
}

// PlayDefaults is the externally configurable subset of mixer.PlayOptions.
type PlayDefaults struct {
	Channel          int
	Volume           float32
	Pan              float32
	DelayBeforePlay  float32
	StartTimeSecs    float32
	LoopCount        uint32
	CrossFadeInSecs  float32
	CrossFadeOutSecs float32
	FadeInSecs       float32
}

// AnyMixerChannel means "pick the first free channel".
const AnyMixerChannel = -1

// LoopForever is the sentinel loop count meaning "loop indefinitely".
const LoopForever = ^uint32(0)

// DefaultPlay returns the default per-play options.
func DefaultPlay() PlayDefaults {
	return PlayDefaults{
		Channel:          AnyMixerChannel,
		Volume:           1.0,
		Pan:              0,
		DelayBeforePlay:  0,
		StartTimeSecs:    0,
		LoopCount:        1,
		CrossFadeInSecs:  0.0,
		CrossFadeOutSecs: 0.040,
		FadeInSecs:       0.0,
	}
}

// LoadDotEnv loads a .env file if present. Missing files are not an error;
// it is only a convenience for local demo runs.
func LoadDotEnv(path string) {
	_ = godotenv.Load(path)
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float32) float32 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			return float32(f)
		}
	}
	return fallback
}
