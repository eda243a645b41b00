package config

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

type Validator interface {
	Validate() error
}

type Config struct {
	instance   *viper.Viper
	opts       ConfigOptions
	files      []string
	watchOnce  sync.Once
	watchMutex sync.RWMutex
}

type ConfigOptions struct {
	BasePath  string
	FileName  string
	FileType  string
	EnvPrefix string
	// Mode picks the overlay files. Empty means CurrentMode().
	Mode      Mode
	WatchAble bool
	OnChange  func(e fsnotify.Event)
}
