package service

import (
	"care_training_backend/internal/model"
	"care_training_backend/internal/repository"
	"care_training_backend/internal/util"
	"care_training_backend/pkg/database"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

type CreateThreadRequest struct {
	ModuleID *uint  `json:"moduleId"`
	Title    string `json:"title" validate:"required,notblank,max=255"`
	Content  string `json:"content" validate:"required,notblank"`
}

type ReplyRequest struct {
	ParentID *string `json:"parentId" validate:"omitempty,uuid"`
	Content  string  `json:"content" validate:"required,notblank"`
}

// ReplyNode 回复树节点，子节点按创建时间排序
type ReplyNode struct {
	model.ForumReply
	Children []*ReplyNode `json:"children"`
}

type ThreadDetail struct {
	model.ForumThread
	Replies []*ReplyNode `json:"replies"`
}

type LikeResult struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

type ForumService struct {
	Repo       *repository.ForumRepository
	ModuleRepo *repository.ModuleRepository
	Hub        ForumPublisher
	Now        func() time.Time
}

func NewForumService(repo *repository.ForumRepository, moduleRepo *repository.ModuleRepository, hub ForumPublisher) *ForumService {
	return &ForumService{
		Repo:       repo,
		ModuleRepo: moduleRepo,
		Hub:        hub,
		Now:        time.Now,
	}
}

func (s *ForumService) CreateThread(authorID uint, req CreateThreadRequest) (*model.ForumThread, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	if req.ModuleID != nil {
		if _, err := s.ModuleRepo.FindByID(*req.ModuleID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, util.NewNotFoundError("module", *req.ModuleID)
			}
			return nil, err
		}
	}

	now := s.Now()
	thread := &model.ForumThread{
		ModuleID:       req.ModuleID,
		AuthorID:       authorID,
		Title:          strings.TrimSpace(req.Title),
		Content:        req.Content,
		LastActivityAt: now,
	}
	thread.CreatedAt = now
	if err := s.Repo.CreateThread(thread); err != nil {
		return nil, err
	}
	return thread, nil
}

func (s *ForumService) ListThreads(moduleID *uint, page, limit int) (*util.PageResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	threads, total, err := s.Repo.ListThreads(moduleID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return &util.PageResponse{List: threads, Total: total, Page: page, Limit: limit}, nil
}

func (s *ForumService) findThread(id string) (*model.ForumThread, error) {
	thread, err := s.Repo.FindThread(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.NewNotFoundError("thread", id)
	}
	return thread, err
}

// GetThread 帖子和完整回复树
func (s *ForumService) GetThread(id string) (*ThreadDetail, error) {
	thread, err := s.findThread(id)
	if err != nil {
		return nil, err
	}
	replies, err := s.Repo.ListReplies(id)
	if err != nil {
		return nil, err
	}
	return &ThreadDetail{ForumThread: *thread, Replies: BuildReplyTree(replies)}, nil
}

// BuildReplyTree replies 需按创建时间排好序；父节点缺失的回复挂到顶层
func BuildReplyTree(replies []model.ForumReply) []*ReplyNode {
	nodes := make(map[string]*ReplyNode, len(replies))
	for _, r := range replies {
		nodes[r.ID] = &ReplyNode{ForumReply: r, Children: []*ReplyNode{}}
	}

	roots := []*ReplyNode{}
	for _, r := range replies {
		node := nodes[r.ID]
		if r.ParentID != nil {
			if parent, ok := nodes[*r.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}

// Reply 父回复必须属于同一帖子，嵌套层数不超过 MaxReplyDepth
func (s *ForumService) Reply(authorID uint, threadID string, req ReplyRequest) (*model.ForumReply, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	if _, err := s.findThread(threadID); err != nil {
		return nil, err
	}

	reply := &model.ForumReply{
		ThreadID: threadID,
		AuthorID: authorID,
		Content:  req.Content,
	}
	if req.ParentID != nil {
		parent, err := s.Repo.FindReply(*req.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, util.NewNotFoundError("reply", *req.ParentID)
			}
			return nil, err
		}
		if parent.ThreadID != threadID {
			return nil, util.NewValidationError("invalid parent reply",
				util.FieldError{Field: "parentId", Error: "parent reply belongs to another thread"})
		}
		if parent.Depth+1 > model.MaxReplyDepth {
			return nil, util.NewValidationError("invalid parent reply",
				util.FieldError{Field: "parentId", Error: fmt.Sprintf("replies nest at most %d levels", model.MaxReplyDepth)})
		}
		reply.ParentID = &parent.ID
		reply.Depth = parent.Depth + 1
	}

	now := s.Now()
	reply.CreatedAt = now
	if err := s.Repo.CreateReply(reply, now); err != nil {
		return nil, err
	}
	s.publish(ForumEvent{Type: EventReplyCreated, ThreadID: threadID, Data: reply})
	return reply, nil
}

// ToggleLike 同一用户再次点赞即取消
func (s *ForumService) ToggleLike(userID uint, contentType model.ForumContentType, id string) (*LikeResult, error) {
	var threadID string
	switch contentType {
	case model.ForumThreadContent:
		thread, err := s.findThread(id)
		if err != nil {
			return nil, err
		}
		threadID = thread.ID
	case model.ForumReplyContent:
		reply, err := s.Repo.FindReply(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, util.NewNotFoundError("reply", id)
			}
			return nil, err
		}
		threadID = reply.ThreadID
	default:
		return nil, util.NewValidationError("invalid content type",
			util.FieldError{Field: "contentType", Error: "must be thread or reply"})
	}

	liked, likes, err := s.Repo.ToggleLike(userID, contentType, id)
	if err != nil {
		// 并发点赞时另一请求已写入
		if database.IsDuplicateKey(err) {
			return nil, util.NewConflictError("like already recorded", true)
		}
		return nil, err
	}
	result := &LikeResult{Liked: liked, Likes: likes}
	s.publish(ForumEvent{
		Type:     EventLikeUpdated,
		ThreadID: threadID,
		Data: map[string]interface{}{
			"contentType": contentType,
			"contentId":   id,
			"likes":       likes,
		},
	})
	return result, nil
}

func (s *ForumService) publish(event ForumEvent) {
	if s.Hub != nil {
		s.Hub.Publish(event)
	}
}
