package service

import (
	"context"

	"github.com/spec-kit/booking-service/internal/domain"
	"github.com/spec-kit/booking-service/internal/repository"
)

// FileService records uploaded avatar metadata and attaches it to the
// uploading user. The handler is responsible for writing bytes to disk.
type FileService struct {
	files repository.FileRepository
	users repository.UserRepository
}

// NewFileService constructs the service.
func NewFileService(files repository.FileRepository, users repository.UserRepository) *FileService {
	return &FileService{files: files, users: users}
}

// StoreAvatar persists the file record and sets it as the user's avatar.
func (s *FileService) StoreAvatar(ctx context.Context, userID, originalName, diskName string) (*domain.File, error) {
	file := &domain.File{Name: originalName, Path: diskName}
	if err := s.files.Create(ctx, file); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.AvatarID = &file.ID
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return file, nil
}
