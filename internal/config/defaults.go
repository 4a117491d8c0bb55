package config

var defaults = map[string]any{
	"server_url": "",
	"log_level":  "warn",
	"log_format": "text",

	"http_timeout": 30,
	"user_agent":   "",

	"storage.type":        "sqlite",
	"storage.sqlite.path": "session.db",
	"storage.file.path":   "session.yaml",
}

func Defaults() map[string]any {
	values := make(map[string]any)
	for k, v := range defaults {
		values[k] = v
	}
	return values
}
