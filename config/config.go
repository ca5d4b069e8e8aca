package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Settings is the full runtime configuration: world generation, hover
// tuning, and the serving surface.
type Settings struct {
	Seed     int64          `json:"seed" mapstructure:"seed"`
	LogLevel string         `json:"logLevel" mapstructure:"logLevel"`
	Planet   PlanetSettings `json:"planet" mapstructure:"planet"`
	Craters  CraterSettings `json:"craters" mapstructure:"craters"`
	Hover    HoverSettings  `json:"hover" mapstructure:"hover"`
	Server   ServerSettings `json:"server" mapstructure:"server"`
}

// PlanetSettings controls terrain generation.
type PlanetSettings struct {
	Radius         float64 `json:"radius" mapstructure:"radius"`
	HeightScale    float64 `json:"heightScale" mapstructure:"heightScale"`
	Subdivisions   int     `json:"subdivisions" mapstructure:"subdivisions"`
	MeshRefinement bool    `json:"meshRefinement" mapstructure:"meshRefinement"`
	RidgeFrequency float64 `json:"ridgeFrequency" mapstructure:"ridgeFrequency"`
	RidgeSharpness float64 `json:"ridgeSharpness" mapstructure:"ridgeSharpness"`
	RidgeWeight    float64 `json:"ridgeWeight" mapstructure:"ridgeWeight"`
}

// CraterSettings controls crater generation.
type CraterSettings struct {
	Count           int     `json:"count" mapstructure:"count"`
	MinSize         float64 `json:"minSize" mapstructure:"minSize"`
	MaxSize         float64 `json:"maxSize" mapstructure:"maxSize"`
	DepthFactor     float64 `json:"depthFactor" mapstructure:"depthFactor"`
	RimHeightFactor float64 `json:"rimHeightFactor" mapstructure:"rimHeightFactor"`
}

// HoverSettings tunes the vehicle. Zero values fall back to the
// physics package defaults derived from the planet radius.
type HoverSettings struct {
	TargetHeight float64 `json:"targetHeight" mapstructure:"targetHeight"`
	Stiffness    float64 `json:"stiffness" mapstructure:"stiffness"`
	Damping      float64 `json:"damping" mapstructure:"damping"`
	ThrustForce  float64 `json:"thrustForce" mapstructure:"thrustForce"`
	TurnRate     float64 `json:"turnRate" mapstructure:"turnRate"`
}

// ServerSettings controls the websocket serving surface.
type ServerSettings struct {
	Port   int `json:"port" mapstructure:"port"`
	TickMs int `json:"tickMs" mapstructure:"tickMs"`
}

const configName = "hoverplanet.cfg.json"

// Load reads configuration from hoverplanet.cfg.json in configDir,
// falling back to defaults for anything unset. A missing file is not an
// error; a malformed one is.
func Load(configDir string) (Settings, error) {
	viper.SetDefault("seed", 1)
	viper.SetDefault("logLevel", "info")

	viper.SetDefault("planet.radius", 200.0)
	viper.SetDefault("planet.heightScale", 0.06)
	viper.SetDefault("planet.subdivisions", 5)
	viper.SetDefault("planet.meshRefinement", false)
	viper.SetDefault("planet.ridgeFrequency", 4.0)
	viper.SetDefault("planet.ridgeSharpness", 2.5)
	viper.SetDefault("planet.ridgeWeight", 0.3)

	viper.SetDefault("craters.count", 40)
	viper.SetDefault("craters.minSize", 8.0)
	viper.SetDefault("craters.maxSize", 40.0)
	viper.SetDefault("craters.depthFactor", 0.08)
	viper.SetDefault("craters.rimHeightFactor", 0.6)

	viper.SetDefault("hover.targetHeight", 4.0)
	viper.SetDefault("hover.stiffness", 60.0)
	viper.SetDefault("hover.damping", 12.0)
	viper.SetDefault("hover.thrustForce", 55.0)
	viper.SetDefault("hover.turnRate", 1.8)

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.tickMs", 16)

	viper.SetConfigName(configName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return s, nil
}
