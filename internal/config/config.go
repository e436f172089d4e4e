package config

import (
	"fmt"
	"time"

	"github.com/jaminalder/codex-reversi/internal/domain"
	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
)

type Config struct {
	ListenOn          string        `json:",default=0.0.0.0:8080"`
	Variant           string        `json:",default=cell,options=cell|intersection"`
	HeartbeatInterval time.Duration `json:",default=15s"`
	Log               logx.LogConf
}

// Load reads a config file; the format follows the file extension.
func Load(path string) (Config, error) {
	var c Config
	if err := conf.Load(path, &c); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return c, nil
}

// DefaultVariant resolves the configured variant.
func (c Config) DefaultVariant() (domain.Variant, error) {
	return domain.VariantByName(c.Variant)
}
