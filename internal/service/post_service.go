package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/repository"
)

// PostInput 创建或编辑帖子的可变字段
type PostInput struct {
	Text    string
	GroupID *int64
	Image   *string
}

// PostDetail 帖子详情：帖子本身、评论（新在前）和作者发帖总数
type PostDetail struct {
	Post        *model.Post
	Comments    []*model.Comment
	AuthorPosts int64
}

type PostService interface {
	Create(ctx context.Context, authorID int64, in PostInput) (*model.Post, error)
	Get(ctx context.Context, postID int64) (*model.Post, error)
	Update(ctx context.Context, editorID, postID int64, in PostInput) (*model.Post, error)
	Delete(ctx context.Context, editorID, postID int64) error
	Detail(ctx context.Context, postID int64) (*PostDetail, error)
	CountByAuthor(ctx context.Context, authorID int64) (int64, error)
}

type postService struct {
	postRepo    repository.PostRepository
	groupRepo   repository.GroupRepository
	commentRepo repository.CommentRepository
}

func NewPostService(postRepo repository.PostRepository, groupRepo repository.GroupRepository, commentRepo repository.CommentRepository) PostService {
	return &postService{postRepo: postRepo, groupRepo: groupRepo, commentRepo: commentRepo}
}

func (s *postService) validate(ctx context.Context, in PostInput) error {
	if strings.TrimSpace(in.Text) == "" {
		return invalid("text", "must not be blank")
	}
	if in.GroupID != nil {
		if _, err := s.groupRepo.GetByID(ctx, *in.GroupID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalid("group", "does not exist")
			}
			return err
		}
	}
	return nil
}

func (s *postService) Create(ctx context.Context, authorID int64, in PostInput) (*model.Post, error) {
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}
	post := &model.Post{
		AuthorID: authorID,
		Text:     in.Text,
		GroupID:  in.GroupID,
		Image:    in.Image,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) Get(ctx context.Context, postID int64) (*model.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, notFound(err, "post")
	}
	return post, nil
}

// Update 仅作者本人可编辑，作者字段保持不变
func (s *postService) Update(ctx context.Context, editorID, postID int64, in PostInput) (*model.Post, error) {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != editorID {
		return nil, ErrForbidden
	}
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}
	post.Text = in.Text
	post.GroupID = in.GroupID
	post.Image = in.Image
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, notFound(err, "post")
	}
	return s.Get(ctx, postID)
}

func (s *postService) Delete(ctx context.Context, editorID, postID int64) error {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != editorID {
		return ErrForbidden
	}
	return notFound(s.postRepo.Delete(ctx, postID), "post")
}

func (s *postService) Detail(ctx context.Context, postID int64) (*PostDetail, error) {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	count, err := s.postRepo.Count(ctx, repository.ByAuthor(post.AuthorID))
	if err != nil {
		return nil, err
	}
	return &PostDetail{Post: post, Comments: comments, AuthorPosts: count}, nil
}

func (s *postService) CountByAuthor(ctx context.Context, authorID int64) (int64, error) {
	return s.postRepo.Count(ctx, repository.ByAuthor(authorID))
}
