/*
This pkg is the system-wide configuration. Everything has a default (see
Default), and a YAML file can override any part of it:

	api:
	  addr: localhost:3501
	  readTimeout: 5s
	kmeans:
	  k: 3
	  strategy: kmeans++
	data:
	  size: 100
	log:
	  level: debug
*/
package cfg

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"kmviz/core/logutil"
	"kmviz/pkg/kmeans"
)

// Duration is a time.Duration which reads/writes as "5s", "250ms" etc.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std converts to time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// API configures the HTTP server (core/api).
type API struct {
	// Address of the API / web server.
	Addr         string   `yaml:"addr"`
	ReadTimeout  Duration `yaml:"readTimeout"`
	WriteTimeout Duration `yaml:"writeTimeout"`
	// StepDelay is the pause between steps pushed over the stream endpoint.
	StepDelay Duration `yaml:"stepDelay"`
}

// KMeans configures new runs.
type KMeans struct {
	// K is the default cluster count.
	K int `yaml:"k"`
	// Strategy is the default initialization strategy name.
	Strategy string `yaml:"strategy"`
	// MaxSteps bounds every 'run to convergence', 0 is unbounded.
	MaxSteps int `yaml:"maxSteps"`
	// Tolerance for the convergence check, 0 is exact equality.
	Tolerance float64 `yaml:"tolerance"`
}

// Data configures generated data sets (core/dataset).
type Data struct {
	Size int     `yaml:"size"`
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
	// Seed of the initial data set, later sets are seeded from time.
	Seed int64 `yaml:"seed"`
}

// Config is the whole thing.
type Config struct {
	API    API               `yaml:"api"`
	KMeans KMeans            `yaml:"kmeans"`
	Data   Data              `yaml:"data"`
	Log    logutil.LogConfig `yaml:"log"`
}

// Default gives the built-in config.
func Default() Config {
	return Config{
		API: API{
			Addr:         "localhost:3501",
			ReadTimeout:  Duration(5 * time.Second),
			WriteTimeout: Duration(5 * time.Second),
			StepDelay:    Duration(500 * time.Millisecond),
		},
		KMeans: KMeans{
			K:         3,
			Strategy:  string(kmeans.UniformRandom),
			MaxSteps:  1000,
			Tolerance: 0,
		},
		Data: Data{
			Size: 100,
			Min:  0,
			Max:  10,
			Seed: 42,
		},
		Log: logutil.LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a YAML file on top of Default. An empty path gives Default.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, c.Validate()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse reads YAML on top of Default.
func Parse(b []byte) (Config, error) {
	c := Default()
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("parse config: %w", err)
	}
	return c, c.Validate()
}

// Validate checks that the config can actually be used.
func (c *Config) Validate() error {
	var errs []error
	if c.API.Addr == "" {
		errs = append(errs, errors.New("api.addr is empty"))
	}
	if c.KMeans.K <= 0 {
		errs = append(errs, fmt.Errorf("kmeans.k must be positive, got %d", c.KMeans.K))
	}
	if _, err := kmeans.ParseStrategy(c.KMeans.Strategy); err != nil {
		errs = append(errs, fmt.Errorf("kmeans.strategy: %w", err))
	}
	if c.KMeans.MaxSteps < 0 {
		errs = append(errs, fmt.Errorf("kmeans.maxSteps is negative: %d", c.KMeans.MaxSteps))
	}
	if c.KMeans.Tolerance < 0 {
		errs = append(errs, fmt.Errorf("kmeans.tolerance is negative: %v", c.KMeans.Tolerance))
	}
	if c.Data.Size <= 0 {
		errs = append(errs, fmt.Errorf("data.size must be positive, got %d", c.Data.Size))
	}
	if c.Data.Max <= c.Data.Min {
		errs = append(errs, fmt.Errorf("data.max (%v) must exceed data.min (%v)", c.Data.Max, c.Data.Min))
	}
	if _, err := logutil.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// KMeansConfig gives the engine config for new runs.
func (c *Config) KMeansConfig() kmeans.Config {
	s, _ := kmeans.ParseStrategy(c.KMeans.Strategy)
	return kmeans.Config{K: c.KMeans.K, Strategy: s}
}

// KMeansOptions gives the engine options for new runs.
func (c *Config) KMeansOptions() []kmeans.Option {
	return []kmeans.Option{
		kmeans.WithMaxSteps(c.KMeans.MaxSteps),
		kmeans.WithTolerance(c.KMeans.Tolerance),
	}
}
