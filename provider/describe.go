package provider

import (
	"github.com/leeforge/logprovider/logging"
)

// LoggerInfo is the listing view of a registered logger.
type LoggerInfo struct {
	Name       string        `json:"name"`
	Handlers   []HandlerInfo `json:"handlers"`
	Processors []string      `json:"processors"`
}

// HandlerInfo describes one handler of a logger.
type HandlerInfo struct {
	Type      string `json:"type"`
	Level     string `json:"level"`
	Formatter string `json:"formatter"`
	Bubble    bool   `json:"bubble"`
}

// Describe lists every logger of c in insertion order.
func Describe(c *Collection) []LoggerInfo {
	infos := make([]LoggerInfo, 0, c.Count())
	for _, l := range c.All() {
		infos = append(infos, DescribeLogger(l))
	}
	return infos
}

func DescribeLogger(l logging.Logger) LoggerInfo {
	info := LoggerInfo{
		Name:       l.Name(),
		Handlers:   make([]HandlerInfo, 0, len(l.Handlers())),
		Processors: make([]string, 0, len(l.Processors())),
	}
	for _, h := range l.Handlers() {
		info.Handlers = append(info.Handlers, HandlerInfo{
			Type:      logging.KindOf(h),
			Level:     h.Level().String(),
			Formatter: logging.KindOf(h.Formatter()),
			Bubble:    h.Bubble(),
		})
	}
	for _, p := range l.Processors() {
		info.Processors = append(info.Processors, logging.KindOf(p))
	}
	return info
}
