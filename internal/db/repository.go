package db

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/porchlight-social/porchlight/internal/models"
)

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// postCount is the scan target for grouped per-post count queries.
type postCount struct {
	PostID int64 `gorm:"column:post_id"`
	Count  int64 `gorm:"column:count"`
}

// ProfileRepository provides profile-related database operations
type ProfileRepository struct {
	*Repository
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(repo *Repository) *ProfileRepository {
	return &ProfileRepository{Repository: repo}
}

// GetByID retrieves a profile by ID
func (r *ProfileRepository) GetByID(ctx context.Context, id int64) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// GetByIDs retrieves multiple profiles by IDs in one query
func (r *ProfileRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var profiles []*models.Profile
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// GetByHandles retrieves profiles whose handle is in the given set.
// Handles with no matching profile are simply absent from the result.
func (r *ProfileRepository) GetByHandles(ctx context.Context, handles []string) ([]*models.Profile, error) {
	if len(handles) == 0 {
		return nil, nil
	}
	var profiles []*models.Profile
	if err := r.db.WithContext(ctx).Where("handle IN ?", handles).Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// Create creates a new profile
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	err := r.db.WithContext(ctx).Create(profile).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.ErrHandleTaken
	}
	return err
}

// Update updates a profile. A handle collision maps to ErrHandleTaken.
func (r *ProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	err := r.db.WithContext(ctx).Save(profile).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.ErrHandleTaken
	}
	return err
}

// PostRepository provides post-related database operations
type PostRepository struct {
	*Repository
}

// NewPostRepository creates a new post repository
func NewPostRepository(repo *Repository) *PostRepository {
	return &PostRepository{Repository: repo}
}

// GetByID retrieves a post by ID
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// GetByIDs retrieves multiple posts by IDs in one query
func (r *PostRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var posts []*models.Post
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// ListRecent retrieves the most recent posts, newest first
func (r *PostRepository) ListRecent(ctx context.Context, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// Create creates a new post
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// EchoRepository provides echo-related database operations
type EchoRepository struct {
	*Repository
}

// NewEchoRepository creates a new echo repository
func NewEchoRepository(repo *Repository) *EchoRepository {
	return &EchoRepository{Repository: repo}
}

// ListRecent retrieves the most recent echoes across all posts, newest first
func (r *EchoRepository) ListRecent(ctx context.Context, limit int) ([]*models.Echo, error) {
	var echoes []*models.Echo
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&echoes).Error; err != nil {
		return nil, err
	}
	return echoes, nil
}

// Create inserts an echo. A second echo of the same post by the same user
// hits the composite primary key and is silently dropped; the returned
// bool reports whether a row was actually written.
func (r *EchoRepository) Create(ctx context.Context, echo *models.Echo) (bool, error) {
	tx := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(echo)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// Delete removes an echo by its (post, user) pair
func (r *EchoRepository) Delete(ctx context.Context, postID, userID int64) (bool, error) {
	tx := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.Echo{})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// CountByPostIDs returns the echo count per post for the given set, in one query
func (r *EchoRepository) CountByPostIDs(ctx context.Context, postIDs []int64) (map[int64]int64, error) {
	return r.countGrouped(ctx, &models.Echo{}, postIDs)
}

// PostIDsEchoedBy returns which of the given posts the user has echoed
func (r *EchoRepository) PostIDsEchoedBy(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	return r.membership(ctx, &models.Echo{}, userID, postIDs)
}

// LikeRepository provides like-related database operations
type LikeRepository struct {
	*Repository
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(repo *Repository) *LikeRepository {
	return &LikeRepository{Repository: repo}
}

// Create inserts a like; duplicate (post, user) pairs are silently dropped
func (r *LikeRepository) Create(ctx context.Context, like *models.Like) (bool, error) {
	tx := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(like)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// Delete removes a like by its (post, user) pair
func (r *LikeRepository) Delete(ctx context.Context, postID, userID int64) (bool, error) {
	tx := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.Like{})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// CountByPostIDs returns the like count per post for the given set, in one query
func (r *LikeRepository) CountByPostIDs(ctx context.Context, postIDs []int64) (map[int64]int64, error) {
	return r.countGrouped(ctx, &models.Like{}, postIDs)
}

// PostIDsLikedBy returns which of the given posts the user has liked
func (r *LikeRepository) PostIDsLikedBy(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	return r.membership(ctx, &models.Like{}, userID, postIDs)
}

// ReplyRepository provides reply-related database operations
type ReplyRepository struct {
	*Repository
}

// NewReplyRepository creates a new reply repository
func NewReplyRepository(repo *Repository) *ReplyRepository {
	return &ReplyRepository{Repository: repo}
}

// ListByPostID retrieves all replies to one post, oldest first
func (r *ReplyRepository) ListByPostID(ctx context.Context, postID int64) ([]*models.Reply, error) {
	var replies []*models.Reply
	if err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&replies).Error; err != nil {
		return nil, err
	}
	return replies, nil
}

// Create creates a new reply
func (r *ReplyRepository) Create(ctx context.Context, reply *models.Reply) error {
	return r.db.WithContext(ctx).Create(reply).Error
}

// CountByPostIDs returns the reply count per post for the given set, in one query
func (r *ReplyRepository) CountByPostIDs(ctx context.Context, postIDs []int64) (map[int64]int64, error) {
	return r.countGrouped(ctx, &models.Reply{}, postIDs)
}

// NotificationRepository provides notification-related database operations
type NotificationRepository struct {
	*Repository
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(repo *Repository) *NotificationRepository {
	return &NotificationRepository{Repository: repo}
}

// Create creates a new notification
func (r *NotificationRepository) Create(ctx context.Context, notif *models.Notification) error {
	return r.db.WithContext(ctx).Create(notif).Error
}

// ListByRecipient retrieves a recipient's notifications, newest first
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID int64, limit int) ([]*models.Notification, error) {
	var notifs []*models.Notification
	if err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifs).Error; err != nil {
		return nil, err
	}
	return notifs, nil
}

// CountUnread counts a recipient's unread notifications
func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// MarkRead marks one notification read, scoped to its recipient.
// Returns false when no row belongs to that recipient.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, recipientID int64) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("read", true)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// MarkAllRead marks every unread notification of one recipient read,
// leaving other recipients untouched
func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Update("read", true).Error
}

// countGrouped runs one grouped count query over (post_id IN set)
func (r *Repository) countGrouped(ctx context.Context, model interface{}, postIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}
	var rows []postCount
	if err := r.db.WithContext(ctx).
		Model(model).
		Select("post_id, COUNT(*) AS count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.PostID] = row.Count
	}
	return counts, nil
}

// membership runs one query answering "which of these posts does the
// user have a row for"
func (r *Repository) membership(ctx context.Context, model interface{}, userID int64, postIDs []int64) (map[int64]bool, error) {
	member := make(map[int64]bool, len(postIDs))
	if len(postIDs) == 0 {
		return member, nil
	}
	var ids []int64
	if err := r.db.WithContext(ctx).
		Model(model).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		member[id] = true
	}
	return member, nil
}
