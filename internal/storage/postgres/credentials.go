package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/openleadr/openleadr-go/internal/auth"
	"github.com/openleadr/openleadr-go/internal/storage"
	"github.com/openleadr/openleadr-go/wire"
)

// credentialStore verifies the credentials of the internal OAuth provider.
// Secrets are stored bcrypt-hashed.
type credentialStore struct {
	db *pgxpool.Pool
}

func (s *credentialStore) CheckCredentials(ctx context.Context, clientID, clientSecret string) (storage.Credentials, bool) {
	var (
		hash   string
		scopes string
	)
	err := s.db.QueryRow(ctx,
		`SELECT secret_hash, scopes FROM client_credential WHERE client_id = $1`,
		clientID).Scan(&hash, &scopes)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.Credentials{}, false
	}
	if err != nil {
		log.Error().Err(err).Msg("credential lookup failed")
		return storage.Credentials{}, false
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(clientSecret)) != nil {
		return storage.Credentials{}, false
	}
	return storage.Credentials{
		ClientID: wire.Identifier(clientID),
		Scopes:   auth.ParseScopes(scopes),
	}, true
}

// UpsertCredential registers or replaces a client of the internal OAuth
// provider. Used by deployment tooling, not routed over HTTP.
func (s *Storage) UpsertCredential(ctx context.Context, clientID, clientSecret string, scopes auth.Scopes) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(clientSecret), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO client_credential (client_id, secret_hash, scopes)
		VALUES ($1, $2, $3)
		ON CONFLICT (client_id) DO UPDATE SET secret_hash = excluded.secret_hash,
		                                      scopes = excluded.scopes`,
		clientID, string(hash), scopes.String())
	return err
}
