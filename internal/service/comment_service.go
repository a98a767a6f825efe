package service

import (
	"context"
	"strings"

	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/repository"
)

type CommentService interface {
	Add(ctx context.Context, authorID, postID int64, text string) (*model.Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]*model.Comment, error)
}

type commentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) CommentService {
	return &commentService{commentRepo: commentRepo, postRepo: postRepo}
}

func (s *commentService) Add(ctx context.Context, authorID, postID int64, text string) (*model.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, invalid("text", "must not be blank")
	}
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, notFound(err, "post")
	}
	c := &model.Comment{PostID: postID, AuthorID: authorID, Text: text}
	if err := s.commentRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *commentService) ListByPost(ctx context.Context, postID int64) ([]*model.Comment, error) {
	return s.commentRepo.ListByPost(ctx, postID)
}
