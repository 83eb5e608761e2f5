package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig reports contradictory or malformed search bounds.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the search bounds. Zero maxima (MaxInit, MaxSlen, MaxClen)
// mean "unbounded"; a zero Limit means "derive one from the text".
type Config struct {
	// MinInit and MaxInit bound the length of the initialization prefix.
	MinInit int `yaml:"minInit" json:"minInit"`
	MaxInit int `yaml:"maxInit" json:"maxInit"`
	// MinTape and MaxTape bound the rightmost cell the prefix may use.
	MinTape int `yaml:"minTape" json:"minTape"`
	MaxTape int `yaml:"maxTape" json:"maxTape"`
	// MaxNodeCost caps the symbols spent printing one byte.
	MaxNodeCost int `yaml:"maxNodeCost" json:"maxNodeCost"`
	// MaxLoops caps the outer loop iterations simulated per shape.
	MaxLoops int `yaml:"maxLoops" json:"maxLoops"`
	MinSlen  int `yaml:"minSlen" json:"minSlen"`
	MaxSlen  int `yaml:"maxSlen" json:"maxSlen"`
	// MinClen and MaxClen count the c-segment's symbols except the last
	// return "<", so ">++<" has length 3.
	MinClen int `yaml:"minClen" json:"minClen"`
	MaxClen int `yaml:"maxClen" json:"maxClen"`
	// Limit is the longest program of interest, inclusive.
	Limit        int  `yaml:"limit" json:"limit"`
	RollingLimit bool `yaml:"rollingLimit" json:"rollingLimit"`
	UniqueCells  bool `yaml:"uniqueCells" json:"uniqueCells"`
	// TailLoops lets the tail zip to zero cells with "[<]" and "[>]" and
	// print runs of cells with "[.<]" and "[.>]".
	TailLoops   bool `yaml:"tailLoops" json:"tailLoops"`
	FullProgram bool `yaml:"fullProgram" json:"fullProgram"`
	// Verify re-runs every solution on the reference machine.
	Verify  bool `yaml:"verify" json:"verify"`
	Workers int  `yaml:"workers" json:"workers"`
}

// DefaultConfig returns the stock bounds.
func DefaultConfig() Config {
	return Config{
		MinInit:     14,
		MinTape:     1,
		MaxTape:     1250,
		MaxNodeCost: 20,
		MaxLoops:    30000,
		MinSlen:     1,
		MinClen:     1,
		Workers:     runtime.GOMAXPROCS(0),
	}
}

// Validate rejects contradictory bounds before any search work starts.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}
	if c.MaxTape <= 0 {
		bad("maxTape must be positive, got %d", c.MaxTape)
	}
	if c.MaxNodeCost <= 0 {
		bad("maxNodeCost must be positive, got %d", c.MaxNodeCost)
	}
	if c.MaxLoops <= 0 {
		bad("maxLoops must be positive, got %d", c.MaxLoops)
	}
	if c.MinInit < 0 || c.MinTape < 0 || c.MinSlen < 0 || c.MinClen < 0 || c.Limit < 0 {
		bad("minimums and limit must not be negative")
	}
	if c.MaxInit > 0 && c.MinInit > c.MaxInit {
		bad("minInit %d > maxInit %d", c.MinInit, c.MaxInit)
	}
	if c.MinTape > c.MaxTape {
		bad("minTape %d > maxTape %d", c.MinTape, c.MaxTape)
	}
	if c.MaxSlen > 0 && c.MinSlen > c.MaxSlen {
		bad("minSlen %d > maxSlen %d", c.MinSlen, c.MaxSlen)
	}
	if c.MaxClen > 0 && c.MinClen > c.MaxClen {
		bad("minClen %d > maxClen %d", c.MinClen, c.MaxClen)
	}
	if c.Workers < 0 {
		bad("workers must not be negative, got %d", c.Workers)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// ── Config files ────────────────────────────────────────────────────

// LoadConfigFile overlays the settings in path onto c. Files ending in
// .json are read with gjson; anything else is parsed as YAML.
func LoadConfigFile(path string, c *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return applyJSONConfig(data, c)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: parse %s: %w", ErrInvalidConfig, path, err)
	}
	return nil
}

func applyJSONConfig(data []byte, c *Config) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("%w: malformed JSON config", ErrInvalidConfig)
	}
	root := gjson.ParseBytes(data)
	ints := map[string]*int{
		"minInit":     &c.MinInit,
		"maxInit":     &c.MaxInit,
		"minTape":     &c.MinTape,
		"maxTape":     &c.MaxTape,
		"maxNodeCost": &c.MaxNodeCost,
		"maxLoops":    &c.MaxLoops,
		"minSlen":     &c.MinSlen,
		"maxSlen":     &c.MaxSlen,
		"minClen":     &c.MinClen,
		"maxClen":     &c.MaxClen,
		"limit":       &c.Limit,
		"workers":     &c.Workers,
	}
	bools := map[string]*bool{
		"rollingLimit": &c.RollingLimit,
		"uniqueCells":  &c.UniqueCells,
		"tailLoops":    &c.TailLoops,
		"fullProgram":  &c.FullProgram,
		"verify":       &c.Verify,
	}
	var errs []error
	root.ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		if p, ok := ints[k]; ok {
			if value.Type != gjson.Number {
				errs = append(errs, fmt.Errorf("%s: want a number, got %s", k, value.Raw))
			} else {
				*p = int(value.Int())
			}
		} else if p, ok := bools[k]; ok {
			if !value.IsBool() {
				errs = append(errs, fmt.Errorf("%s: want a bool, got %s", k, value.Raw))
			} else {
				*p = value.Bool()
			}
		} else {
			errs = append(errs, fmt.Errorf("unknown key %q", k))
		}
		return true
	})
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
