package config

import "time"

// DefaultBaseURL адрес публичного NoteHub API.
const DefaultBaseURL = "https://notehub-public.goit.study/api"

// APIConfig представляет настройки подключения к NoteHub API.
type APIConfig struct {
	BaseURL string        `yaml:"base_url" env:"NOTEHUB_API_BASE_URL" env-default:"https://notehub-public.goit.study/api"`
	Token   string        `yaml:"token" env:"NOTEHUB_TOKEN"`
	PerPage int           `yaml:"per_page" env:"NOTEHUB_API_PER_PAGE" env-default:"12"`
	Timeout time.Duration `yaml:"timeout" env:"NOTEHUB_API_TIMEOUT" env-default:"0s"`
}
