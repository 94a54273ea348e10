package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yizeng/gab/gin/gorm/sweet-shop/internal/config"
)

func open(dialector gorm.Dialector) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
	})
}

func OpenPostgres(conf *config.PostgresConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%v port=%v user=%v password=%v dbname=%v sslmode=disable",
		conf.Host, conf.Port, conf.User, conf.Password, conf.DB,
	)

	return open(postgres.Open(dsn))
}

func OpenPostgresWithURL(url string) (*gorm.DB, error) {
	return open(postgres.Open(url))
}

// OpenWithURL dispatches on the URL scheme. The metrics reader shares this:
// its DATABASE_URL may point at the sqlite file used in development or at
// the postgres instance backing the main API.
func OpenWithURL(url string) (*gorm.DB, error) {
	if strings.HasPrefix(url, "sqlite") {
		parts := strings.SplitN(url, "///", 2)
		path := parts[len(parts)-1]

		return open(sqlite.Open(path))
	}

	return OpenPostgresWithURL(url)
}
