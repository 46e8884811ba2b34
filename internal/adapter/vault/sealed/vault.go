package sealed

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"dayplan/internal/adapter/repo/gorm/model"
	"dayplan/internal/app/ports"

	"golang.org/x/crypto/chacha20poly1305"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Vault stores provider credentials sealed with XChaCha20-Poly1305. The
// sealing scheme is invisible to everything above this adapter.
type Vault struct {
	db   *gorm.DB
	aead cipher.AEAD
}

func New(db *gorm.DB, key []byte) (*Vault, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("vault key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("init vault cipher: %w", err)
	}
	return &Vault{db: db, aead: aead}, nil
}

func (v *Vault) Get(ctx context.Context, ownerID string) (ports.Credentials, error) {
	var row model.CalendarConnection
	err := v.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Credentials{}, ports.ErrNotFound
		}
		return ports.Credentials{}, err
	}
	raw, err := v.open(row.SealedBlob, ownerID)
	if err != nil {
		return ports.Credentials{}, err
	}
	return ports.Credentials{Raw: raw}, nil
}

func (v *Vault) Put(ctx context.Context, ownerID string, creds ports.Credentials) error {
	blob, err := v.seal(creds.Raw, ownerID)
	if err != nil {
		return err
	}
	row := model.CalendarConnection{
		OwnerID:    ownerID,
		SealedBlob: blob,
		UpdatedAt:  time.Now().UTC(),
	}
	return v.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"sealed_blob", "updated_at"}),
		}).
		Create(&row).Error
}

func (v *Vault) Clear(ctx context.Context, ownerID string) error {
	return v.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Delete(&model.CalendarConnection{}).Error
}

// seal prepends a fresh random nonce; the owner id is bound as
// additional data so a blob cannot be replayed for another owner.
func (v *Vault) seal(plaintext []byte, ownerID string) ([]byte, error) {
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return v.aead.Seal(nonce, nonce, plaintext, []byte(ownerID)), nil
}

func (v *Vault) open(blob []byte, ownerID string) ([]byte, error) {
	if len(blob) < chacha20poly1305.NonceSizeX {
		return nil, errors.New("sealed credential blob too short")
	}
	nonce, ciphertext := blob[:chacha20poly1305.NonceSizeX], blob[chacha20poly1305.NonceSizeX:]
	raw, err := v.aead.Open(nil, nonce, ciphertext, []byte(ownerID))
	if err != nil {
		return nil, fmt.Errorf("unseal credentials: %w", err)
	}
	return raw, nil
}
