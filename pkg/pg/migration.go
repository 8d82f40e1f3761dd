package pg

import (
	"io/fs"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

// Migrate applies every pending goose migration found in dir. When fsys is
// nil the directory is read from disk, otherwise from fsys (an embed.FS).
func Migrate(cfg Config, fsys fs.FS, dir string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "goose dialect")
	}
	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)

	db, err := newSqlConnection(cfg)
	if err != nil {
		return errors.Wrap(err, "open postgres")
	}
	defer db.Close()

	if err = goose.Up(db, dir); err != nil {
		return errors.Wrap(err, "goose up")
	}
	return nil
}

// MigrationStatus logs the applied state of every migration.
func MigrationStatus(cfg Config, fsys fs.FS, dir string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "goose dialect")
	}
	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)

	db, err := newSqlConnection(cfg)
	if err != nil {
		return errors.Wrap(err, "open postgres")
	}
	defer db.Close()

	return goose.Status(db, dir)
}
