package application

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/glowcast/glowcast/internal/domain/entity"
	repo "github.com/glowcast/glowcast/internal/domain/repository"
	"github.com/glowcast/glowcast/pkg/credential"
	"github.com/glowcast/glowcast/pkg/helpers"
	"github.com/glowcast/glowcast/pkg/mailer"
)

// Service carries the identity use-cases: registration, login, profile
// management, and password reset. Stream keys and points live in their own
// services; all three share the repository.
type Service struct {
	Repo             repo.UserRepository
	JWT              *helpers.JWTManager
	GCS              *storage.Client
	GCSBucket        string
	Pub              *helpers.RabbitPublisher
	Logger           *logrus.Logger
	ES               *elasticsearch.Client
	ESStreamersIndex string
	ResetPasswordURL string
	ResetTokenTTL    time.Duration
	MailSendEnabled  bool
	Now              func() time.Time
}

func NewService(r repo.UserRepository, jwt *helpers.JWTManager, logger *logrus.Logger) *Service {
	return &Service{
		Repo:          r,
		JWT:           jwt,
		Logger:        logger,
		ResetTokenTTL: 30 * time.Minute,
		Now:           time.Now,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	ClientIP string
}

// Register creates a new identity. Uniqueness is not pre-checked; the store's
// unique indexes are authoritative and violations surface as DuplicateError.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	salt, err := credential.NewSalt()
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Username:      in.Username,
		UsernameLower: strings.ToLower(in.Username),
		Email:         strings.ToLower(in.Email),
		PasswordHash:  credential.Derive(in.Password, salt),
		PasswordSalt:  salt,
		Pic:           entity.DefaultPic,
		Status:        entity.DefaultStatus,
		ClientIP:      in.ClientIP,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}
	s.logf("user registered", logrus.Fields{"user_id": u.ID, "username": u.Username})
	_ = s.indexStreamer(ctx, u)
	return u, nil
}

// Authenticate resolves a login attempt to an identity or ErrInvalidCredentials.
// The identifier is an email when it contains '@', a username otherwise.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (*entity.User, error) {
	var (
		u   *entity.User
		err error
	)
	if strings.Contains(identifier, "@") {
		u, err = s.Repo.GetByEmail(ctx, strings.ToLower(identifier))
	} else {
		u, err = s.Repo.GetByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.debugf("login: unknown identifier", logrus.Fields{"identifier": identifier})
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !credential.Verify(password, u.PasswordSalt, u.PasswordHash) {
		s.debugf("login: bad password", logrus.Fields{"user_id": u.ID})
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

type LoginResult struct {
	User      *entity.User
	Token     string
	ExpiresAt time.Time
}

// Login authenticates and issues the signed bearer token.
func (s *Service) Login(ctx context.Context, identifier, password, clientIP string) (*LoginResult, error) {
	u, err := s.Authenticate(ctx, identifier, password)
	if err != nil {
		return nil, err
	}
	token, exp, err := s.JWT.Issue(u.ID, u.Username)
	if err != nil {
		return nil, err
	}
	if clientIP != "" {
		// advisory only; a failure here must not fail the login
		if uErr := s.Repo.UpdateClientIP(ctx, u.ID, clientIP); uErr != nil {
			s.debugf("client ip update failed", logrus.Fields{"user_id": u.ID, "error": uErr.Error()})
		}
	}
	return &LoginResult{User: u, Token: token, ExpiresAt: exp}, nil
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// GetStreamer returns the public view of a streamer by username.
func (s *Service) GetStreamer(ctx context.Context, username string) (*entity.User, error) {
	u, err := s.Repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

type UpdateProfileInput struct {
	Title      *string
	Game       *string
	WithGame   *bool
	Live       *bool
	WithGoal   *bool
	Goal       *int64
	GoalReward *string
	Twitter    *string
	FirstSite  *string
	Bio        *string
}

// UpdateProfile applies the provided fields to the caller's stream profile.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := u.Stream
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Game != nil {
		p.Game = *in.Game
	}
	if in.WithGame != nil {
		p.WithGame = *in.WithGame
	}
	if in.Live != nil {
		p.Live = *in.Live
	}
	if in.WithGoal != nil {
		p.WithGoal = *in.WithGoal
	}
	if in.Goal != nil {
		if *in.Goal < 0 {
			return nil, ErrInvalidAmount
		}
		p.Goal = *in.Goal
	}
	if in.GoalReward != nil {
		p.GoalReward = *in.GoalReward
	}
	if in.Twitter != nil {
		p.Twitter = *in.Twitter
	}
	if in.FirstSite != nil {
		p.FirstSite = *in.FirstSite
	}
	if in.Bio != nil {
		p.Bio = *in.Bio
	}
	if err := s.Repo.UpdateProfile(ctx, userID, p); err != nil {
		return nil, err
	}
	u.Stream = p
	_ = s.indexStreamer(ctx, u)
	return u, nil
}

// BanViewer adds a username to the streamer's ban list; UnbanViewer removes it.
func (s *Service) BanViewer(ctx context.Context, userID, viewer string) error {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	if u.Stream.IsBanned(viewer) {
		return nil
	}
	u.Stream.BannedUsers = append(u.Stream.BannedUsers, viewer)
	return s.Repo.UpdateProfile(ctx, userID, u.Stream)
}

func (s *Service) UnbanViewer(ctx context.Context, userID, viewer string) error {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	kept := u.Stream.BannedUsers[:0]
	for _, b := range u.Stream.BannedUsers {
		if b != viewer {
			kept = append(kept, b)
		}
	}
	u.Stream.BannedUsers = kept
	return s.Repo.UpdateProfile(ctx, userID, u.Stream)
}

// UploadAvatar stores a profile picture in GCS and records its public URL.
func (s *Service) UploadAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string) (string, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return "", errors.New("gcs not configured")
	}
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", userID, id+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", err
	}
	if err := s.Repo.UpdatePic(ctx, userID, url); err != nil {
		return "", err
	}
	u.Pic = url
	_ = s.indexStreamer(ctx, u)
	return url, nil
}

// ChangePassword re-derives the credential with a fresh salt.
func (s *Service) ChangePassword(ctx context.Context, userID, newPassword string) error {
	salt, err := credential.NewSalt()
	if err != nil {
		return err
	}
	return s.Repo.UpdatePassword(ctx, userID, credential.Derive(newPassword, salt), salt)
}

// RequestPasswordReset mints a reset token for the account behind email, if
// any, and enqueues the reset mail. Callers always report success so the
// endpoint cannot be used to probe for accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.Repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.debugf("reset requested for unknown email", logrus.Fields{"email": email})
			return nil
		}
		return err
	}
	tok, err := newResetToken()
	if err != nil {
		return err
	}
	expires := s.Now().Add(s.ResetTokenTTL)
	if err := s.Repo.SetResetToken(ctx, u.ID, tok, expires.Unix()); err != nil {
		return err
	}
	if s.Pub != nil && s.MailSendEnabled {
		job := mailer.EmailJob{
			To:       u.Email,
			Template: mailer.TemplateResetPassword,
			Data: map[string]any{
				"Username":  u.Username,
				"ResetLink": s.ResetPasswordURL + "?token=" + tok,
				"ExpiresAt": expires.UTC().Format(time.RFC3339),
			},
		}
		if pErr := s.Pub.PublishJSON(ctx, job); pErr != nil {
			s.logf("reset mail enqueue failed", logrus.Fields{"user_id": u.ID, "error": pErr.Error()})
		}
	}
	return nil
}

// ConfirmPasswordReset consumes a reset token and installs the new password.
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return ErrInvalidResetToken
	}
	u, err := s.Repo.GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	if s.Now().After(u.ResetExpires) {
		_ = s.Repo.ClearResetToken(ctx, u.ID)
		return ErrInvalidResetToken
	}
	if err := s.ChangePassword(ctx, u.ID, newPassword); err != nil {
		return err
	}
	return s.Repo.ClearResetToken(ctx, u.ID)
}

// DeleteAccount removes the identity. Idempotent by id.
func (s *Service) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.Repo.Delete(ctx, userID); err != nil {
		return err
	}
	s.deleteStreamerIndex(ctx, userID)
	return nil
}

func newResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// indexStreamer pushes the public streamer document to Elasticsearch,
// best-effort. Secrets never reach the index.
func (s *Service) indexStreamer(ctx context.Context, u *entity.User) error {
	if s.ES == nil || s.ESStreamersIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":       u.ID,
		"username": u.Username,
		"pic":      u.Pic,
		"status":   u.Status,
		"title":    u.Stream.Title,
		"game":     u.Stream.Game,
		"live":     u.Stream.Live,
		"bio":      u.Stream.Bio,
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESStreamersIndex, DocumentID: u.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.debugf("es index failed", logrus.Fields{"user_id": u.ID, "error": err.Error()})
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.debugf("es index response error", logrus.Fields{"user_id": u.ID, "status": res.Status()})
	}
	return nil
}

func (s *Service) deleteStreamerIndex(ctx context.Context, userID string) {
	if s.ES == nil || s.ESStreamersIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESStreamersIndex, DocumentID: userID}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if res, err := req.Do(c, s.ES); err == nil {
		_ = res.Body.Close()
	}
}

// SearchStreamers performs a multi_match search over username, title, and game.
func (s *Service) SearchStreamers(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESStreamersIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"username^2", "title", "game"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESStreamersIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

func (s *Service) logf(msg string, fields logrus.Fields) {
	if s.Logger != nil {
		s.Logger.WithFields(fields).Info(msg)
	}
}

func (s *Service) debugf(msg string, fields logrus.Fields) {
	if s.Logger != nil {
		s.Logger.WithFields(fields).Debug(msg)
	}
}
