package config

import (
	"fmt"
	"net/url"
)

// CouchDBConfig содержит настройки подключения к CouchDB.
type CouchDBConfig struct {
	URL      string `yaml:"url" env:"TEXTER_COUCHDB_URL" env-default:"http://localhost:5984"`
	User     string `yaml:"user" env:"TEXTER_COUCHDB_USER" env-default:"admin"`
	Password string `yaml:"password" env:"TEXTER_COUCHDB_PASSWORD" env-default:"admin"`
	Database string `yaml:"database" env:"TEXTER_COUCHDB_DB" env-default:"notes"`
}

// GetDSN возвращает адрес CouchDB с учетными данными.
func (c *CouchDBConfig) GetDSN() (string, error) {
	u, err := url.Parse(c.URL)
	if err != nil {
		return "", fmt.Errorf("parse couchdb url: %w", err)
	}
	if c.User != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}
	return u.String(), nil
}
