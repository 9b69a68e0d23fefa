// Package rewrite implements the two-phase rewrite tracker: it
// consumes the raw Change stream from diff.TreeDiffer and correlates
// Addition/Deletion pairs into Rewrite events, by identity first and
// similarity second.
package rewrite

import "dario.cat/mergo"

// CopySource names where copy tracking looks for sources. Sourcing
// from the whole left-hand tree rather than only the files already
// touched by this diff is left for a future variant.
type CopySource uint8

const (
	FromSetOfChangedFiles CopySource = iota
)

// CopyConfig enables copy detection alongside rename detection.
type CopyConfig struct {
	Source CopySource
	// Percentage overrides Config.Percentage for copy matching when
	// set; nil falls back to Config.Percentage.
	Percentage *float32
}

// Config controls rewrite and copy detection thresholds.
type Config struct {
	Copies     *CopyConfig
	Percentage *float32
	Limit      int
}

func f32(v float32) *float32 { return &v }

// Default returns the package defaults: no copy tracking, a 0.5
// similarity threshold, a candidate-pair limit of 1000.
func Default() Config {
	return Config{
		Copies:     nil,
		Percentage: f32(0.5),
		Limit:      1000,
	}
}

// Merge overlays override onto Default(), using dario.cat/mergo the
// way go-git merges partial configuration fragments. Unset pointer
// fields (Copies, Percentage) and a zero Limit in override are left
// at their default.
func Merge(override Config) (Config, error) {
	cfg := Default()
	if err := mergo.Merge(&cfg, override, mergo.WithOverride); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromMap maps a config-file-shaped view of `diff.renames` /
// `diff.renameLimit` onto a Config, performing the three-way mapping
// (disabled / renames / renames-and-copies) without pulling in a
// config file parser. ok is false if `diff.renames` is absent or maps
// to "disabled", meaning rewrite tracking should not run at all.
func FromMap(m map[string]string) (cfg Config, ok bool, err error) {
	renames, present := m["diff.renames"]
	if !present {
		return Config{}, false, nil
	}

	var copies *CopyConfig
	switch renames {
	case "false", "0", "no", "off":
		return Config{}, false, nil
	case "true", "1", "yes", "on":
		copies = nil
	case "copies", "copy":
		copies = &CopyConfig{Source: FromSetOfChangedFiles}
	default:
		return Config{}, false, &ErrInvalidConfig{Key: "diff.renames", Value: renames}
	}

	cfg = Default()
	cfg.Copies = copies

	if limStr, present := m["diff.renameLimit"]; present {
		limit, err := parsePositiveInt(limStr)
		if err != nil {
			return Config{}, false, &ErrInvalidConfig{Key: "diff.renameLimit", Value: limStr}
		}
		cfg.Limit = limit
	}

	return cfg, true, nil
}

func parsePositiveInt(s string) (int, error) {
	n := 0
	if s == "" {
		return 0, errEmpty
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, errEmpty
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}
