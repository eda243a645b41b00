package redis_client

import (
	"fmt"
	"time"
)

type Config struct {
	Host        string        `mapstructure:"host" json:"host" yaml:"host" default:"127.0.0.1"`
	Port        string        `mapstructure:"port" json:"port" yaml:"port" default:"6379"`
	Password    string        `mapstructure:"password" json:"password" yaml:"password"`
	DB          int           `mapstructure:"db" json:"db" yaml:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout" json:"dialTimeout" yaml:"dial_timeout" default:"5s"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}
