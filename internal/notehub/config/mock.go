package config

import (
	"net"
	"strconv"
)

// MockConfig представляет настройки локального mock API.
type MockConfig struct {
	Host  string `yaml:"host" env:"NOTEHUB_MOCK_HOST" env-default:"127.0.0.1"`
	Port  int    `yaml:"port" env:"NOTEHUB_MOCK_PORT" env-default:"8081"`
	Token string `yaml:"token" env:"NOTEHUB_MOCK_TOKEN"`
	Seed  int    `yaml:"seed" env:"NOTEHUB_MOCK_SEED" env-default:"0"`
}

// GetAddress возвращает адрес mock API.
func (c *MockConfig) GetAddress() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
