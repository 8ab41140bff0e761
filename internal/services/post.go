package services

import (
	"context"
	"errors"
	"unicode/utf8"

	"whiteboard/internal/datastore"
	"whiteboard/internal/interfaces"
	"whiteboard/internal/models"
	"whiteboard/internal/pkg"
	"whiteboard/internal/pkg/caching"

	"github.com/google/uuid"
	"github.com/samber/do"
	"go.uber.org/zap"
)

const CodeFlairNotApplied = "flair_not_applied"

type ServicePost struct {
	container *do.Injector
	store     datastore.Store
	cache     caching.Cache
	locker    interfaces.Locker
	logger    *zap.Logger
	clock     Clock

	serviceConfig      *ServiceConfig
	serviceActivity    *ServiceActivity
	serviceAchievement *ServiceAchievement
	serviceFlair       *ServiceFlair
	serviceUser        *ServiceUser
}

func NewServicePost(container *do.Injector) (*ServicePost, error) {
	store, err := do.Invoke[datastore.Store](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	locker, err := do.Invoke[interfaces.Locker](container)
	if err != nil {
		return nil, err
	}

	logger, err := do.Invoke[*zap.Logger](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	serviceActivity, err := do.Invoke[*ServiceActivity](container)
	if err != nil {
		return nil, err
	}

	serviceAchievement, err := do.Invoke[*ServiceAchievement](container)
	if err != nil {
		return nil, err
	}

	serviceFlair, err := do.Invoke[*ServiceFlair](container)
	if err != nil {
		return nil, err
	}

	serviceUser, err := do.Invoke[*ServiceUser](container)
	if err != nil {
		return nil, err
	}

	return &ServicePost{
		container, store, cache, locker, logger.Named("post"), invokeClock(container),
		serviceConfig, serviceActivity, serviceAchievement, serviceFlair, serviceUser,
	}, nil
}

type CreatePostInput struct {
	BoardID string
	Content string
	FlairID string
}

// PostResult reports the post itself and, separately, the optional flair
// applied with it. A failed flair never undoes the post.
type PostResult struct {
	Outcome
	Post                  *models.PostView `json:"post,omitempty"`
	Currency              *models.Amount   `json:"currency,omitempty"`
	Flair                 *FlairResult     `json:"flair,omitempty"`
	CompletedAchievements []string         `json:"completed_achievements,omitempty"`
}

type CommentResult struct {
	Outcome
	Comment               *models.Comment    `json:"comment"`
	Post                  *models.BumpedPost `json:"post"`
	CompletedAchievements []string           `json:"completed_achievements,omitempty"`
}

func cleanContent(content string, maxLength int) (string, error) {
	content = pkg.Sanitize(content)
	if content == "" {
		return "", ErrContentRequired
	}
	if utf8.RuneCountInString(content) > maxLength {
		return "", ErrContentTooLong
	}
	return content, nil
}

func (service *ServicePost) ListBoards(ctx context.Context) ([]*models.Board, error) {
	return caching.UseCache(ctx, service.cache, DBKeyBoards(), CACHE_TTL_15_MINS, func() ([]*models.Board, error) {
		return service.store.ListBoards(ctx)
	})
}

func (service *ServicePost) board(ctx context.Context, boardID string) (*models.Board, error) {
	boards, err := service.ListBoards(ctx)
	if err != nil {
		return nil, err
	}
	for _, board := range boards {
		if board.ID == boardID {
			return board, nil
		}
	}
	return nil, ErrBoardNotFound
}

func (service *ServicePost) CanPostToday(ctx context.Context, userID uuid.UUID) (bool, error) {
	posted, err := service.store.HasPostOnDay(ctx, userID, pkg.CalendarDay(service.clock()))
	if err != nil {
		return false, err
	}
	return !posted, nil
}

// CreatePost writes the user's post for today. The one-post-per-day rule is
// enforced by the insert itself, so concurrent requests cannot both succeed.
func (service *ServicePost) CreatePost(ctx context.Context, userID uuid.UUID, input CreatePostInput) (*PostResult, error) {
	maxLength := service.serviceConfig.GetInt(ctx, CONFIG_POST_MAX_LENGTH, DEFAULT_POST_MAX_LENGTH)
	content, err := cleanContent(input.Content, maxLength)
	if err != nil {
		return nil, err
	}
	if _, err := service.board(ctx, input.BoardID); err != nil {
		return nil, err
	}

	rewards := service.serviceActivity.Rewards(ctx)
	now := service.clock()
	post := &models.Post{
		ID:        uuid.New(),
		BoardID:   input.BoardID,
		UserID:    userID,
		Content:   content,
		PostDay:   pkg.CalendarDay(now),
		CreatedAt: now,
		UpdatedAt: now,
	}

	result := &PostResult{CompletedAchievements: []string{}}
	var update *ActivityUpdate
	err = withUserLock(ctx, service.locker, userID, func() error {
		return service.store.RunInTx(ctx, func(ctx context.Context, repo datastore.Repository) error {
			inserted, err := repo.InsertPost(ctx, post)
			if err != nil {
				return err
			}
			if !inserted {
				return reject(CodeAlreadyPostedToday, "you have already posted today")
			}

			update, err = service.serviceActivity.RecordActivityInTx(ctx, repo, userID, models.ActivityPosted, rewards)
			if err != nil {
				return err
			}
			result.CompletedAchievements = append(result.CompletedAchievements, update.CompletedAchievements...)

			count, err := repo.CountPostsByUser(ctx, userID)
			if err != nil {
				return err
			}
			if count == 1 {
				awarded, err := service.serviceAchievement.AwardFirstPostInTx(ctx, repo, userID)
				if err != nil {
					return err
				}
				result.CompletedAchievements = append(result.CompletedAchievements, awarded...)
			}

			completed, err := service.serviceAchievement.AdvanceInTx(ctx, repo, userID, models.TriggerPosts, 1)
			if err != nil {
				return err
			}
			result.CompletedAchievements = append(result.CompletedAchievements, completed...)

			account, err := repo.GetCurrencyAccount(ctx, userID)
			if err != nil && !errors.Is(err, datastore.ErrNotFound) {
				return err
			}
			balance := account.Balance()
			result.Currency = &balance
			return nil
		})
	})
	if outcome, ok := asRejection(err); ok {
		return &PostResult{Outcome: countRejection(outcome)}, nil
	}
	if err != nil {
		return nil, err
	}

	metricPosts.Inc()
	update.observe()
	result.Outcome = accepted()

	if input.FlairID != "" {
		result.Flair = service.attachFlair(ctx, userID, post.ID, input.FlairID)
	}

	result.Post, err = service.GetPost(ctx, userID, post.ID)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (service *ServicePost) attachFlair(ctx context.Context, userID uuid.UUID, postID uuid.UUID, flairID string) *FlairResult {
	flair, err := service.serviceFlair.ApplyFlair(ctx, userID, postID, flairID)
	if err != nil {
		service.logger.Warn("apply flair to new post", zap.Stringer("post", postID), zap.String("flair", flairID), zap.Error(err))
		return &FlairResult{Outcome: Outcome{Code: CodeFlairNotApplied, Message: err.Error()}}
	}
	if flair.Rejected() {
		service.logger.Warn("apply flair to new post", zap.Stringer("post", postID), zap.String("flair", flairID), zap.String("code", flair.Code))
	}
	return flair
}

// UpdatePost changes the content of the caller's own post.
func (service *ServicePost) UpdatePost(ctx context.Context, userID uuid.UUID, postID uuid.UUID, content string) (*PostResult, error) {
	maxLength := service.serviceConfig.GetInt(ctx, CONFIG_POST_MAX_LENGTH, DEFAULT_POST_MAX_LENGTH)
	content, err := cleanContent(content, maxLength)
	if err != nil {
		return nil, err
	}

	err = withUserLock(ctx, service.locker, userID, func() error {
		return service.store.RunInTx(ctx, func(ctx context.Context, repo datastore.Repository) error {
			post, err := repo.GetPost(ctx, postID)
			if errors.Is(err, datastore.ErrNotFound) {
				return ErrPostNotFound
			}
			if err != nil {
				return err
			}
			if post.UserID != userID {
				return reject(CodeForbidden, "you can only edit your own posts")
			}

			post.Content = content
			post.UpdatedAt = service.clock()
			return repo.UpdatePostContent(ctx, post)
		})
	})
	if outcome, ok := asRejection(err); ok {
		return &PostResult{Outcome: countRejection(outcome)}, nil
	}
	if err != nil {
		return nil, err
	}

	view, err := service.GetPost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	return &PostResult{Outcome: accepted(), Post: view}, nil
}

func (service *ServicePost) GetPost(ctx context.Context, viewer uuid.UUID, postID uuid.UUID) (*models.PostView, error) {
	post, err := service.store.GetPost(ctx, postID)
	if errors.Is(err, datastore.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}

	views, err := service.views(ctx, []*models.Post{post}, viewer)
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// ListPosts returns a board's feed, most recently bumped first.
func (service *ServicePost) ListPosts(ctx context.Context, viewer uuid.UUID, boardID string, page, limit int) ([]*models.PostView, error) {
	if _, err := service.board(ctx, boardID); err != nil {
		return nil, err
	}

	limit, offset := pkg.Paginate(page, limit, POSTS_MAX_LIMIT)
	posts, err := service.store.ListPostsByBoard(ctx, boardID, limit, offset)
	if err != nil {
		return nil, err
	}
	return service.views(ctx, posts, viewer)
}

func (service *ServicePost) views(ctx context.Context, posts []*models.Post, viewer uuid.UUID) ([]*models.PostView, error) {
	views := make([]*models.PostView, 0, len(posts))
	if len(posts) == 0 {
		return views, nil
	}

	ids := make([]uuid.UUID, 0, len(posts))
	for _, post := range posts {
		ids = append(ids, post.ID)
	}

	stats, err := service.store.ListPostStats(ctx, ids, viewer)
	if err != nil {
		return nil, err
	}

	applications, err := service.store.ListPostFlairs(ctx, ids...)
	if err != nil {
		return nil, err
	}
	flairs := groupApplied(applications)

	authors := map[uuid.UUID]*models.Profile{}
	for _, post := range posts {
		if _, ok := authors[post.UserID]; ok {
			continue
		}
		profile, err := service.serviceUser.FindProfileByID(ctx, post.UserID)
		if err != nil && !errors.Is(err, datastore.ErrNotFound) {
			return nil, err
		}
		authors[post.UserID] = profile
	}

	for _, post := range posts {
		view := &models.PostView{
			Post:      *post,
			PostStats: stats[post.ID],
			Author:    authors[post.UserID],
			Flairs:    flairs[post.ID],
		}
		if view.Flairs == nil {
			view.Flairs = map[models.FlairType][]*models.FlairItem{}
		}
		views = append(views, view)
	}
	return views, nil
}

// CreateComment adds a comment, bumps the parent post on behalf of the
// commenter and records the day's comment activity.
func (service *ServicePost) CreateComment(ctx context.Context, userID uuid.UUID, postID uuid.UUID, content string) (*CommentResult, error) {
	maxLength := service.serviceConfig.GetInt(ctx, CONFIG_COMMENT_MAX_LENGTH, DEFAULT_COMMENT_MAX_LENGTH)
	content, err := cleanContent(content, maxLength)
	if err != nil {
		return nil, err
	}

	rewards := service.serviceActivity.Rewards(ctx)
	result := &CommentResult{CompletedAchievements: []string{}}
	var update *ActivityUpdate
	err = withUserLock(ctx, service.locker, userID, func() error {
		return service.store.RunInTx(ctx, func(ctx context.Context, repo datastore.Repository) error {
			if _, err := repo.GetPost(ctx, postID); err != nil {
				if errors.Is(err, datastore.ErrNotFound) {
					return ErrPostNotFound
				}
				return err
			}

			now := service.clock()
			comment := &models.Comment{
				ID:        uuid.New(),
				PostID:    postID,
				UserID:    userID,
				Content:   content,
				CreatedAt: now,
			}
			if err := repo.InsertComment(ctx, comment); err != nil {
				return err
			}

			bumped, err := service.bumpTx(ctx, repo, postID, userID)
			if err != nil {
				return err
			}

			update, err = service.serviceActivity.RecordActivityInTx(ctx, repo, userID, models.ActivityCommented, rewards)
			if err != nil {
				return err
			}

			completed, err := service.serviceAchievement.AdvanceInTx(ctx, repo, userID, models.TriggerComments, 1)
			if err != nil {
				return err
			}

			result.Comment = comment
			result.Post = bumped
			result.CompletedAchievements = append(append(result.CompletedAchievements, update.CompletedAchievements...), completed...)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	update.observe()
	result.Outcome = accepted()
	return result, nil
}

// BumpPostOnComment moves a post back to the top of its board. The push count
// only ever grows and the bump is attributed to userID.
func (service *ServicePost) BumpPostOnComment(ctx context.Context, postID uuid.UUID, userID uuid.UUID) (*models.BumpedPost, error) {
	var bumped *models.BumpedPost
	err := service.store.RunInTx(ctx, func(ctx context.Context, repo datastore.Repository) error {
		var err error
		bumped, err = service.bumpTx(ctx, repo, postID, userID)
		return err
	})
	return bumped, err
}

func (service *ServicePost) bumpTx(ctx context.Context, repo datastore.Repository, postID uuid.UUID, userID uuid.UUID) (*models.BumpedPost, error) {
	post, err := repo.BumpPost(ctx, postID, userID, service.clock())
	if errors.Is(err, datastore.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}

	count, err := repo.CountComments(ctx, postID)
	if err != nil {
		return nil, err
	}

	return &models.BumpedPost{
		ID:           post.ID,
		PushCount:    post.PushCount,
		UpdatedAt:    post.UpdatedAt,
		LastBumpedBy: post.LastBumpedBy,
		CommentCount: count,
	}, nil
}

func (service *ServicePost) ListComments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	if _, err := service.store.GetPost(ctx, postID); err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	comments, err := service.store.ListComments(ctx, postID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return comments, nil
}
