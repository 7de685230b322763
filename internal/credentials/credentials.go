// Package credentials persists the Brewfather user ID and API key.
//
// The pair is always written and read together. Two backends exist: a YAML
// file and a SQLite key-value table.
package credentials

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Storage drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Credentials is the Brewfather user ID and API key pair.
type Credentials struct {
	UserID string `yaml:"user_id" json:"userId"`
	APIKey string `yaml:"api_key" json:"apiKey"`
}

// Validate validates the credentials.
func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.UserID, validation.Required),
		validation.Field(&c.APIKey, validation.Required),
	)
}

// Masked returns the API key with everything but the last four characters hidden.
func (c Credentials) Masked() string {
	if len(c.APIKey) <= 4 {
		return strings.Repeat("*", len(c.APIKey))
	}
	return strings.Repeat("*", len(c.APIKey)-4) + c.APIKey[len(c.APIKey)-4:]
}

// Store loads and saves the credential pair.
type Store interface {
	// Load returns apperr.ErrNoCredentials when nothing complete has been saved.
	Load(ctx context.Context) (Credentials, error)
	// Save validates and writes both fields together.
	Save(ctx context.Context, c Credentials) error
	Close() error
}

// Open opens the store for driver at path.
func Open(driver, path string) (Store, error) {
	switch driver {
	case DriverFile, "":
		return NewFileStore(path)
	case DriverSQLite:
		return OpenSQLite(path)
	}
	return nil, fmt.Errorf("credentials: unknown driver %q", driver)
}
