package config

import "github.com/coordkit/coordctl/internal/center"

// Pool converts the file entries into the candidate pool the facade
// resolves against.
func Pool(cfg Config) center.Pool {
	pool := make(center.Pool, len(cfg.Centers))
	for _, entry := range cfg.Centers {
		pool[entry.Name] = center.Config{
			Name:  entry.Name,
			Type:  entry.Type,
			Roles: entry.Roles,
			Props: entry.Props,
		}
	}
	return pool
}
