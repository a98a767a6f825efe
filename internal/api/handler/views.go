package handler

import (
	"context"
	"time"

	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/service"
)

type GroupRef struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

type PostView struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	AuthorID  int64     `json:"author_id"`
	Group     *GroupRef `json:"group,omitempty"`
	Image     *string   `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type FeedView struct {
	Posts       []PostView `json:"posts"`
	Page        int        `json:"page"`
	PageSize    int        `json:"page_size"`
	Total       int64      `json:"total"`
	NumPages    int        `json:"num_pages"`
	HasNext     bool       `json:"has_next"`
	HasPrevious bool       `json:"has_previous"`
}

type UserView struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type CommentView struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func userView(u *model.User) UserView {
	return UserView{ID: u.ID, Username: u.Username, FirstName: u.FirstName, LastName: u.LastName}
}

// postViews resolves authors and groups with one lookup each. A group that
// no longer exists is left out of the view.
func (h *Handler) postViews(ctx context.Context, posts []*model.Post) ([]PostView, error) {
	authorIDs := make([]int64, 0, len(posts))
	groupIDs := make([]int64, 0, len(posts))
	for _, p := range posts {
		authorIDs = append(authorIDs, p.AuthorID)
		if p.GroupID != nil {
			groupIDs = append(groupIDs, *p.GroupID)
		}
	}
	authors, err := h.userService.GetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	groups, err := h.groupService.GetByIDs(ctx, groupIDs)
	if err != nil {
		return nil, err
	}

	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		v := PostView{
			ID:        p.ID,
			Text:      p.Text,
			AuthorID:  p.AuthorID,
			Image:     p.Image,
			CreatedAt: p.CreatedAt,
		}
		if a, ok := authors[p.AuthorID]; ok {
			v.Author = a.Username
		}
		if p.GroupID != nil {
			if g, ok := groups[*p.GroupID]; ok {
				v.Group = &GroupRef{Slug: g.Slug, Title: g.Title}
			}
		}
		views = append(views, v)
	}
	return views, nil
}

func (h *Handler) feedView(ctx context.Context, p *service.FeedPage) (*FeedView, error) {
	posts, err := h.postViews(ctx, p.Posts)
	if err != nil {
		return nil, err
	}
	return &FeedView{
		Posts:       posts,
		Page:        p.Number,
		PageSize:    p.PageSize,
		Total:       p.Total,
		NumPages:    p.NumPages,
		HasNext:     p.HasNext,
		HasPrevious: p.HasPrevious,
	}, nil
}
