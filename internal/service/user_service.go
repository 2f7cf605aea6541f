package service

import (
	"context"
	"errors"
	"log"
	"path"

	"github.com/craft-market/internal/models"
	"github.com/craft-market/internal/repository"
	"github.com/craft-market/internal/storage"
	"github.com/craft-market/pkg/crypto"
)

var (
	ErrTokenMismatch = errors.New("login credentials do not match this user")
)

// imageFolder is the object-storage prefix profile images live under
const imageFolder = "user"

// UserService handles account lifecycle operations
type UserService struct {
	users repository.UserRepository
	blobs storage.BlobStore
}

// NewUserService creates a new UserService
func NewUserService(users repository.UserRepository, blobs storage.BlobStore) *UserService {
	return &UserService{
		users: users,
		blobs: blobs,
	}
}

// CreateUserRequest represents the admin create request. The account has
// no password until one is set.
type CreateUserRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Email   string `json:"email" binding:"required,email"`
	Address string `json:"address" binding:"max=255"`
}

// UpdateUserRequest represents the profile update request
type UpdateUserRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Email   string `json:"email" binding:"required,email"`
	Address string `json:"address" binding:"max=255"`
}

// UpdatePasswordRequest represents the password change request. The new
// password cap is bcrypt's 72-byte input limit.
type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=72"`
}

// UserSummary is the projection returned by list and get operations.
// Password and token never leave the service.
type UserSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Image   string `json:"image"`
}

func summarize(u *models.User) UserSummary {
	return UserSummary{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Address: u.Address,
		Image:   u.Image,
	}
}

// Create creates a passwordless user profile
func (s *UserService) Create(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	user := &models.User{
		Name:    req.Name,
		Email:   req.Email,
		Address: req.Address,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// List returns summaries of all users
func (s *UserService) List(ctx context.Context) ([]UserSummary, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, summarize(&users[i]))
	}
	return summaries, nil
}

// GetByID returns a single user summary
func (s *UserService) GetByID(ctx context.Context, id string) (*UserSummary, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	summary := summarize(user)
	return &summary, nil
}

// Update updates name, email and address. Email uniqueness is re-checked
// when the email changes.
func (s *UserService) Update(ctx context.Context, id string, req *UpdateUserRequest) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != user.Email {
		exists, err := s.users.ExistsByEmail(ctx, req.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrEmailTaken
		}
	}

	user.Name = req.Name
	user.Email = req.Email
	user.Address = req.Address
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateRole overwrites the user's role
func (s *UserService) UpdateRole(ctx context.Context, id, role string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdatePassword verifies the old password before storing a new hash
func (s *UserService) UpdatePassword(ctx context.Context, id string, req *UpdatePasswordRequest) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !user.HasPassword() || !crypto.CheckPassword(req.OldPassword, *user.Password) {
		return ErrWrongPassword
	}

	hash, err := crypto.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	user.Password = &hash
	return s.users.Update(ctx, user)
}

// Delete removes a user (admin path), then best-effort deletes their
// profile image from storage
func (s *UserService) Delete(ctx context.Context, id string) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.cleanupImage(ctx, user.Image)
	return nil
}

// DeleteSelf removes the caller's own account. The bearer token must
// literally match the token stored at last login; handicrafts are
// reassigned to the sentinel owner and likes/history rows removed in one
// transaction before the row is deleted.
func (s *UserService) DeleteSelf(ctx context.Context, id, bearerToken string) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if _, err := decodeToken(bearerToken); err != nil {
		return ErrTokenMismatch
	}
	if user.Token == "" || user.Token != bearerToken {
		return ErrTokenMismatch
	}

	if err := s.users.DeleteWithDependents(ctx, id); err != nil {
		return err
	}

	s.cleanupImage(ctx, user.Image)
	return nil
}

// cleanupImage deletes a non-default profile image object. Failures are
// logged and not propagated; the row deletion already happened.
func (s *UserService) cleanupImage(ctx context.Context, image string) {
	if image == "" {
		return
	}
	fileName := path.Base(image)
	if fileName == models.DefaultImage {
		return
	}
	key := imageFolder + "/" + fileName
	if err := s.blobs.DeleteObject(ctx, key); err != nil {
		log.Printf("failed to delete image %s: %v", key, err)
	}
}
