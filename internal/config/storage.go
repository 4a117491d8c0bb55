package config

const (
	StorageSQLite = "sqlite"
	StorageFile   = "file"
	StorageMemory = "memory"
)

type Storage struct {
	Type   string         `mapstructure:"type"`
	SQLite *SQLiteStorage `mapstructure:"sqlite,omitempty"`
	File   *FileStorage   `mapstructure:"file,omitempty"`
}

type SQLiteStorage struct {
	Path string `mapstructure:"path,omitempty"`
}

type FileStorage struct {
	Path string `mapstructure:"path,omitempty"`
}
