package workqueue

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk form of Options.
//
//	workers:
//	  pool_size: 5
//	  signal_capacity: 256
//	  overflow: saturate
//	  priorities:
//	    normal: 10
//	    critical: 5
//	    hypercritical: 0
//	  lock:
//	    spin_limit: 64
//	    backoff_initial: 1us
//	    backoff_max: 200us
type FileConfig struct {
	Workers WorkersConfig `yaml:"workers" json:"workers"`
}

// WorkersConfig configures the class pools.
type WorkersConfig struct {
	PoolSize        int            `yaml:"pool_size" json:"pool_size"`
	SignalCapacity  int64          `yaml:"signal_capacity" json:"signal_capacity"`
	Overflow        string         `yaml:"overflow" json:"overflow"`
	Priorities      map[string]int `yaml:"priorities" json:"priorities"`
	DisablePriority bool           `yaml:"disable_priority" json:"disable_priority"`
	StrictPriority  bool           `yaml:"strict_priority" json:"strict_priority"`
	PinWorkers      bool           `yaml:"pin_workers" json:"pin_workers"`
	Lock            LockConfig     `yaml:"lock" json:"lock"`
}

// LockConfig tunes the queue spin locks.
type LockConfig struct {
	SpinLimit      int    `yaml:"spin_limit" json:"spin_limit"`
	BackoffInitial string `yaml:"backoff_initial" json:"backoff_initial"`
	BackoffMax     string `yaml:"backoff_max" json:"backoff_max"`
}

// LoadFile reads a YAML (.yaml, .yml) or JSON (.json) config file.
func LoadFile(path string) (*FileConfig, error) {
	var decode func([]byte, any) error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		decode = yaml.Unmarshal
	case ".json":
		decode = json.Unmarshal
	default:
		return nil, fmt.Errorf("workqueue: config %s: unsupported format %q", path, ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("workqueue: read config: %w", err)
	}

	fc := &FileConfig{}
	if err := decode(data, fc); err != nil {
		return nil, fmt.Errorf("workqueue: parse config %s: %w", path, err)
	}
	return fc, nil
}

// LoadOptions reads path and converts it to Options with defaults filled.
func LoadOptions(path string) (Options, error) {
	fc, err := LoadFile(path)
	if err != nil {
		return Options{}, err
	}
	return fc.ToOptions()
}

// ToOptions converts the file form into Options. Unset fields keep their
// defaults; priorities not named in the file keep DefaultPriorities.
func (f *FileConfig) ToOptions() (Options, error) {
	wc := f.Workers
	opts := Options{
		PoolSize:        wc.PoolSize,
		SignalCapacity:  wc.SignalCapacity,
		DisablePriority: wc.DisablePriority,
		StrictPriority:  wc.StrictPriority,
		PinWorkers:      wc.PinWorkers,
		SpinLimit:       wc.Lock.SpinLimit,
		Priorities:      append([]int(nil), DefaultPriorities[:]...),
	}

	overflow, err := ParseOverflowPolicy(wc.Overflow)
	if err != nil {
		return opts, err
	}
	opts.Overflow = overflow

	for name, nice := range wc.Priorities {
		c, err := ParseClass(name)
		if err != nil {
			return opts, err
		}
		opts.Priorities[c] = nice
	}

	if wc.Lock.BackoffInitial != "" {
		d, err := time.ParseDuration(wc.Lock.BackoffInitial)
		if err != nil {
			return opts, fmt.Errorf("workqueue: lock backoff_initial: %w", err)
		}
		opts.LockBackoffInitial = d
	}
	if wc.Lock.BackoffMax != "" {
		d, err := time.ParseDuration(wc.Lock.BackoffMax)
		if err != nil {
			return opts, fmt.Errorf("workqueue: lock backoff_max: %w", err)
		}
		opts.LockBackoffMax = d
	}

	opts.FillDefaults()
	if err := opts.validate(); err != nil {
		return opts, err
	}
	return opts, nil
}
