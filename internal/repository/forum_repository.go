package repository

import (
	"care_training_backend/internal/model"
	"errors"
	"time"

	"gorm.io/gorm"
)

type ForumRepository struct {
	DB *gorm.DB
}

func NewForumRepository(db *gorm.DB) *ForumRepository {
	return &ForumRepository{DB: db}
}

func (r *ForumRepository) CreateThread(thread *model.ForumThread) error {
	return r.DB.Create(thread).Error
}

func (r *ForumRepository) FindThread(id string) (*model.ForumThread, error) {
	var thread model.ForumThread
	err := r.DB.Preload("Author").First(&thread, "id = ?", id).Error
	return &thread, err
}

// ListThreads moduleID 为 nil 时返回全部，按最近活跃排序
func (r *ForumRepository) ListThreads(moduleID *uint, offset, limit int) ([]model.ForumThread, int64, error) {
	var threads []model.ForumThread
	var total int64

	query := r.DB.Model(&model.ForumThread{})
	if moduleID != nil {
		query = query.Where("module_id = ?", *moduleID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Author").
		Order("last_activity_at desc, created_at desc").
		Offset(offset).Limit(limit).
		Find(&threads).Error
	return threads, total, err
}

func (r *ForumRepository) FindReply(id string) (*model.ForumReply, error) {
	var reply model.ForumReply
	err := r.DB.First(&reply, "id = ?", id).Error
	return &reply, err
}

// ListReplies 平铺返回，service 层组装成树
func (r *ForumRepository) ListReplies(threadID string) ([]model.ForumReply, error) {
	var replies []model.ForumReply
	err := r.DB.Preload("Author").
		Where("thread_id = ?", threadID).
		Order("created_at asc, id asc").
		Find(&replies).Error
	return replies, err
}

// CreateReply 写入回复并更新帖子的回复数和活跃时间
func (r *ForumRepository) CreateReply(reply *model.ForumReply, at time.Time) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reply).Error; err != nil {
			return err
		}
		return tx.Model(&model.ForumThread{}).
			Where("id = ?", reply.ThreadID).
			Updates(map[string]interface{}{
				"reply_count":      gorm.Expr("reply_count + 1"),
				"last_activity_at": at,
			}).Error
	})
}

// ToggleLike 已点赞则取消，返回当前是否点赞及最新点赞数
func (r *ForumRepository) ToggleLike(userID uint, contentType model.ForumContentType, contentID string) (bool, int, error) {
	target := likeTarget(contentType)
	if target == nil {
		return false, 0, errors.New("unknown content type")
	}

	var liked bool
	var likes int
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var like model.ForumLike
		err := tx.Where("user_id = ? AND content_type = ? AND content_id = ?", userID, contentType, contentID).First(&like).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			// 点赞
			if err := tx.Create(&model.ForumLike{UserID: userID, ContentType: contentType, ContentID: contentID}).Error; err != nil {
				return err
			}
			if err := tx.Model(target).Where("id = ?", contentID).Update("likes", gorm.Expr("likes + 1")).Error; err != nil {
				return err
			}
			liked = true
		case err != nil:
			return err
		default:
			// 取消点赞
			if err := tx.Delete(&like).Error; err != nil {
				return err
			}
			if err := tx.Model(target).Where("id = ? AND likes > 0", contentID).Update("likes", gorm.Expr("likes - 1")).Error; err != nil {
				return err
			}
		}

		return tx.Model(target).Where("id = ?", contentID).Select("likes").Scan(&likes).Error
	})
	return liked, likes, err
}

func likeTarget(contentType model.ForumContentType) interface{} {
	switch contentType {
	case model.ForumThreadContent:
		return &model.ForumThread{}
	case model.ForumReplyContent:
		return &model.ForumReply{}
	}
	return nil
}
