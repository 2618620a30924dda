package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"sahayakseva/backend/models"
)

// ProfileKey is the fixed key the profile is stored under.
const ProfileKey = "userProfile"

type ProfileStore struct {
	kv KV
}

func NewProfileStore(kv KV) *ProfileStore {
	return &ProfileStore{kv: kv}
}

func (s *ProfileStore) Save(ctx context.Context, p models.UserProfile) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	return s.kv.Set(ctx, ProfileKey, string(b))
}

// Load returns ErrNotFound when nothing is stored. Content that does not decode
// is removed and also reported as ErrNotFound.
func (s *ProfileStore) Load(ctx context.Context) (*models.UserProfile, error) {
	raw, err := s.kv.Get(ctx, ProfileKey)
	if err != nil {
		return nil, err
	}
	var p *models.UserProfile
	if err := json.Unmarshal([]byte(raw), &p); err != nil || p == nil {
		if cerr := s.Clear(ctx); cerr != nil {
			return nil, errors.Join(ErrNotFound, cerr)
		}
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *ProfileStore) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, ProfileKey)
}
