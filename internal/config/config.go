// Package config owns the settings profile: loading it from a flat JSON blob,
// merging partial updates, and repairing malformed values field by field.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/chatforge/chatforge/internal/response"
)

const (
	appName        = "chatforge"
	configFileName = ".chatforge"
)

// Settings is the profile consumed by the response engine and analytics.
// It is immutable until replaced: updates produce a new value, callers never
// mutate a shared instance. ModelType and Temperature are advisory metadata
// only; no generative model is invoked. EnableTyping and EnableSound are
// threaded through untouched for collaborators.
type Settings struct {
	Personality     response.Personality `json:"personality"`
	ResponseSpeed   int                  `json:"responseSpeed"`
	EnableSentiment bool                 `json:"enableSentiment"`
	EnableTyping    bool                 `json:"enableTyping"`
	EnableSound     bool                 `json:"enableSound"`
	MaxTokens       int                  `json:"maxTokens"`
	ModelType       string               `json:"modelType"`
	Temperature     float64              `json:"temperature"`
}

// Defaults returns the boot-state profile.
func Defaults() Settings {
	return Settings{
		Personality:     response.Friendly,
		ResponseSpeed:   3,
		EnableSentiment: true,
		EnableTyping:    true,
		EnableSound:     true,
		MaxTokens:       150,
		ModelType:       "gpt-3.5",
		Temperature:     0.7,
	}
}

// Load reads the settings blob. A missing file yields defaults. Known keys
// override defaults field by field (merge semantics, never a full replace);
// unknown keys are ignored; out-of-range values are repaired to their
// defaults. An unparsable file also yields defaults, with the parse error
// returned so the caller can log it; loading never fails hard.
func Load(path string) (Settings, error) {
	v := viper.New()
	v.SetConfigType("json")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configFileName)
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}
	v.SetEnvPrefix(appName)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			return Defaults(), nil
		}
		return Defaults(), fmt.Errorf("read settings: %w", err)
	}

	return fromViper(v), nil
}

// fromViper applies each known key over the defaults. Keys that are absent
// leave the default untouched.
func fromViper(v *viper.Viper) Settings {
	s := Defaults()

	if v.IsSet("personality") {
		s.Personality = response.Personality(v.GetString("personality"))
	}
	if v.IsSet("responseSpeed") {
		s.ResponseSpeed = v.GetInt("responseSpeed")
	}
	if v.IsSet("enableSentiment") {
		s.EnableSentiment = v.GetBool("enableSentiment")
	}
	if v.IsSet("enableTyping") {
		s.EnableTyping = v.GetBool("enableTyping")
	}
	if v.IsSet("enableSound") {
		s.EnableSound = v.GetBool("enableSound")
	}
	if v.IsSet("maxTokens") {
		s.MaxTokens = v.GetInt("maxTokens")
	}
	if v.IsSet("modelType") {
		s.ModelType = v.GetString("modelType")
	}
	if v.IsSet("temperature") {
		s.Temperature = v.GetFloat64("temperature")
	}

	return s.Repaired()
}

// ApplyPartial merges a partial update over s. Unknown keys are ignored and
// the result is repaired, so a bad patch can degrade a field to its default
// but never corrupt the profile.
func ApplyPartial(s Settings, patch map[string]any) Settings {
	for key, raw := range patch {
		switch key {
		case "personality":
			s.Personality = response.Personality(cast.ToString(raw))
		case "responseSpeed":
			s.ResponseSpeed = cast.ToInt(raw)
		case "enableSentiment":
			s.EnableSentiment = cast.ToBool(raw)
		case "enableTyping":
			s.EnableTyping = cast.ToBool(raw)
		case "enableSound":
			s.EnableSound = cast.ToBool(raw)
		case "maxTokens":
			s.MaxTokens = cast.ToInt(raw)
		case "modelType":
			s.ModelType = cast.ToString(raw)
		case "temperature":
			s.Temperature = cast.ToFloat64(raw)
		}
	}
	return s.Repaired()
}

// Repaired returns a copy with every out-of-range field reset to its default.
func (s Settings) Repaired() Settings {
	d := Defaults()

	if !s.Personality.Valid() {
		s.Personality = d.Personality
	}
	if s.ResponseSpeed < 1 || s.ResponseSpeed > 5 {
		s.ResponseSpeed = d.ResponseSpeed
	}
	if s.MaxTokens <= 0 {
		s.MaxTokens = d.MaxTokens
	}
	if s.ModelType == "" {
		s.ModelType = d.ModelType
	}
	if s.Temperature < 0 || s.Temperature > 1 {
		s.Temperature = d.Temperature
	}

	return s
}

// Save writes the profile as an indented JSON blob.
func Save(path string, s Settings) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
