package config

import "time"

// UIConfig представляет настройки контроллера просмотра.
type UIConfig struct {
	Debounce          time.Duration `yaml:"debounce" env:"NOTEHUB_UI_DEBOUNCE" env-default:"500ms"`
	StaleTime         time.Duration `yaml:"stale_time" env:"NOTEHUB_UI_STALE_TIME" env-default:"0s"`
	ResetPageOnSearch bool          `yaml:"reset_page_on_search" env:"NOTEHUB_UI_RESET_PAGE_ON_SEARCH" env-default:"false"`
}
