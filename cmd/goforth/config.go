package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/jcorbin/goforth"
)

// config collects every knob of the command; it may be loaded from a YAML
// file, with any flags given on the command line taking precedence.
type config struct {
	DictCells        uint32        `yaml:"dict_cells"`
	StackCells       uint32        `yaml:"stack_cells"`
	ReturnStackCells uint32        `yaml:"return_stack_cells"`
	HeapLimit        uint          `yaml:"heap_limit"`
	NoStackCheck     bool          `yaml:"no_stack_check"`
	Charset          string        `yaml:"charset"`
	Timeout          time.Duration `yaml:"timeout"`
	Trace            bool          `yaml:"trace"`
	LogTime          string        `yaml:"log_time"`
	Evaluate         []string      `yaml:"evaluate"`
	Include          []string      `yaml:"include"`
}

func loadConfig(name string, cfg *config) error {
	data, err := ioutil.ReadFile(name)
	if err != nil {
		return err
	}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return fmt.Errorf("invalid config %v: %w", name, err)
	}
	return nil
}

type stringsFlag []string

func (sf *stringsFlag) String() string     { return fmt.Sprint(*sf) }
func (sf *stringsFlag) Set(s string) error { *sf = append(*sf, s); return nil }

// parseConfig parses command line flags over any -config file.
func parseConfig(fs *flag.FlagSet, args []string) (cfg config, err error) {
	var (
		configFile string
		flagCfg    config
		evaluate   stringsFlag
	)
	fs.StringVar(&configFile, "config", "", "load settings from a YAML file")
	fs.DurationVar(&flagCfg.Timeout, "timeout", 0, "specify a time limit")
	fs.BoolVar(&flagCfg.Trace, "trace", false, "enable VM step logging")
	fs.StringVar(&flagCfg.LogTime, "log-time", "", "strftime format to prefix log lines with")
	fs.Var(uint32Flag{&flagCfg.DictCells}, "dict-cells", "dictionary size in cells")
	fs.Var(uint32Flag{&flagCfg.StackCells}, "stack-cells", "data stack depth in cells")
	fs.UintVar(&flagCfg.HeapLimit, "heap-limit", 0, "limit ALLOCATEd memory in bytes")
	fs.StringVar(&flagCfg.Charset, "charset", "", "terminal character set, e.g. latin1 or cp1252")
	fs.Var(&evaluate, "e", "evaluate a line of Forth before QUIT; may be repeated")
	fs.BoolVar(&flagCfg.NoStackCheck, "no-stack-check", false, "disable stack bounds checking")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if configFile != "" {
		if err := loadConfig(configFile, &cfg); err != nil {
			return cfg, err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "timeout":
			cfg.Timeout = flagCfg.Timeout
		case "trace":
			cfg.Trace = flagCfg.Trace
		case "log-time":
			cfg.LogTime = flagCfg.LogTime
		case "dict-cells":
			cfg.DictCells = flagCfg.DictCells
		case "stack-cells":
			cfg.StackCells = flagCfg.StackCells
		case "heap-limit":
			cfg.HeapLimit = flagCfg.HeapLimit
		case "charset":
			cfg.Charset = flagCfg.Charset
		case "no-stack-check":
			cfg.NoStackCheck = flagCfg.NoStackCheck
		}
	})
	cfg.Evaluate = append(cfg.Evaluate, evaluate...)
	cfg.Include = append(cfg.Include, fs.Args()...)
	return cfg, nil
}

// options returns the VM options that the configuration implies.
func (cfg config) options() []goforth.VMOption {
	var opts []goforth.VMOption
	if cfg.DictCells != 0 {
		opts = append(opts, goforth.WithDictCells(cfg.DictCells))
	}
	if cfg.StackCells != 0 {
		opts = append(opts, goforth.WithStackCells(cfg.StackCells))
	}
	if cfg.ReturnStackCells != 0 {
		opts = append(opts, goforth.WithReturnStackCells(cfg.ReturnStackCells))
	}
	if cfg.HeapLimit != 0 {
		opts = append(opts, goforth.WithHeapLimit(cfg.HeapLimit))
	}
	if cfg.NoStackCheck {
		opts = append(opts, goforth.WithStackCheck(false))
	}
	return opts
}

type uint32Flag struct{ p *uint32 }

func (f uint32Flag) String() string {
	if f.p == nil {
		return "0"
	}
	return fmt.Sprint(*f.p)
}

func (f uint32Flag) Set(s string) error {
	var n uint32
	if _, err := fmt.Sscan(s, &n); err != nil {
		return err
	}
	*f.p = n
	return nil
}
