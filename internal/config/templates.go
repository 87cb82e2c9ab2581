package config

import (
	"fmt"
	"os"
)

func Template() string {
	return coordTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(coordTemplate), 0o600)
}

const coordTemplate = `admin_addr = ":9600"
schemas = ["orders"]

[[centers]]
name = "etcd-main"
type = "etcd"
roles = "configCenter"

[centers.props]
endpoints = "127.0.0.1:2379"
overwrite = "false"

[[centers]]
name = "redis-state"
type = "redis"
roles = "registryCenter,metadataCenter"

[centers.props]
addr = "127.0.0.1:6379"
keyPrefix = "coordctl"
`
