package app

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nobita6986/BatchTranscriber/internal/domain"
	"github.com/nobita6986/BatchTranscriber/internal/logger"
	"github.com/nobita6986/BatchTranscriber/internal/store"
)

// CredentialService owns both credential sets: the named transcription keys
// and the single caption-acquisition key. Resolution reads the persisted
// state fresh on every call, there is no caching layer.
type CredentialService struct {
	Repo       *store.DB
	Settings   *store.SettingsRepo
	Logger     *logger.Logger
	DefaultKey string
}

func NewCredentialService(repo *store.DB, settings *store.SettingsRepo, defaultKey string, log *logger.Logger) *CredentialService {
	return &CredentialService{
		Repo:       repo,
		Settings:   settings,
		Logger:     log.WithComponent("credentials"),
		DefaultKey: defaultKey,
	}
}

// ResolveTranscriptionKey returns the secret for the active credential,
// falling back to the system-wide default, then to empty.
func (s *CredentialService) ResolveTranscriptionKey() string {
	activeID, err := s.Settings.Get(store.SettingActiveCredentialID)
	if err == nil && activeID != "" {
		cred, err := s.Repo.GetCredential(activeID)
		if err == nil && cred != nil && cred.SecretValue != "" {
			return cred.SecretValue
		}
	}
	return s.DefaultKey
}

// ResolveCaptionKey returns the persisted premium caption key, no fallback.
func (s *CredentialService) ResolveCaptionKey() string {
	key, err := s.Settings.Get(store.SettingCaptionAPIKey)
	if err != nil {
		return ""
	}
	return key
}

func (s *CredentialService) SetCaptionKey(key string) error {
	if key == "" {
		return s.Settings.Delete(store.SettingCaptionAPIKey)
	}
	return s.Settings.Set(store.SettingCaptionAPIKey, key)
}

func (s *CredentialService) List() ([]*domain.CredentialConfig, error) {
	return s.Repo.ListCredentials()
}

func (s *CredentialService) Add(name, secret string) (*domain.CredentialConfig, error) {
	if name == "" || secret == "" {
		return nil, fmt.Errorf("credential name and secret are required")
	}
	cred := &domain.CredentialConfig{
		ID:          uuid.New().String(),
		Name:        name,
		SecretValue: secret,
		CreatedAt:   time.Now(),
	}
	if err := s.Repo.CreateCredential(cred); err != nil {
		return nil, err
	}
	s.Logger.Info("Credential added", "credential_id", cred.ID, "name", name)
	return cred, nil
}

func (s *CredentialService) Delete(id string) error {
	activeID, err := s.Settings.Get(store.SettingActiveCredentialID)
	if err == nil && activeID == id {
		_ = s.Settings.Delete(store.SettingActiveCredentialID)
	}
	return s.Repo.DeleteCredential(id)
}

func (s *CredentialService) SetActive(id string) error {
	if id == "" {
		return s.Settings.Delete(store.SettingActiveCredentialID)
	}
	cred, err := s.Repo.GetCredential(id)
	if err != nil {
		return err
	}
	if cred == nil {
		return fmt.Errorf("credential not found")
	}
	return s.Settings.Set(store.SettingActiveCredentialID, id)
}

func (s *CredentialService) ActiveID() string {
	id, err := s.Settings.Get(store.SettingActiveCredentialID)
	if err != nil {
		return ""
	}
	return id
}
