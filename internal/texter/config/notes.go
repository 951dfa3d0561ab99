package config

// Поддерживаемые хранилища заметок.
const (
	BackendPostgres = "postgres"
	BackendCouchDB  = "couchdb"
)

// NotesConfig содержит настройки движка заметок.
type NotesConfig struct {
	Backend      string `yaml:"backend" env:"TEXTER_NOTES_BACKEND" env-default:"postgres"`
	PageSize     int    `yaml:"page_size" env:"TEXTER_NOTES_PAGE_SIZE" env-default:"50"`
	StrictDelete bool   `yaml:"strict_delete" env:"TEXTER_NOTES_STRICT_DELETE" env-default:"false"`
}
