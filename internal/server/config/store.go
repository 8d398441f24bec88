package config

import (
	"fmt"

	"github.com/yndnr/hashguard/pkg/securemap"
)

// MapConfig returns the securemap construction parameters.
func (c *ServerConfig) MapConfig() securemap.Config {
	return securemap.Config{
		Capacity:           c.Map.Capacity,
		MaxChainLength:     c.Map.MaxChainLength,
		CollisionWindow:    c.Map.CollisionWindow,
		MaxCollisionEvents: c.Map.MaxCollisionEvents,
		ExpandThreshold:    c.Map.ExpandThreshold,
	}
}

// MapOptions returns the securemap options selected by the configuration,
// with log as the map logger when non-nil.
func (c *ServerConfig) MapOptions(log securemap.Logger) ([]securemap.Option, error) {
	digest := securemap.DigestByName(c.Map.Digest)
	if digest == nil {
		return nil, fmt.Errorf("unknown digest %q", c.Map.Digest)
	}
	opts := []securemap.Option{securemap.WithDigest(digest)}
	if log != nil {
		opts = append(opts, securemap.WithLogger(log))
	}
	return opts, nil
}
