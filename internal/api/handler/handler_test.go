package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"whiteboard/internal/datastore"
	"whiteboard/internal/datastore/memstore"
	"whiteboard/internal/interfaces"
	"whiteboard/internal/models"
	"whiteboard/internal/pkg/caching"
	"whiteboard/internal/pkg/limiter"
	"whiteboard/internal/pkg/locker"
	"whiteboard/internal/services"

	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type HandlerTestSuite struct {
	suite.Suite

	ctx            context.Context
	handler        http.Handler
	container      *do.Injector
	authentication *services.Authentication
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

// SetupTest gives every test a fresh seeded store and router.
func (s *HandlerTestSuite) SetupTest() {
	s.ctx = context.Background()
	store := memstore.New()
	err := store.RunInTx(s.ctx, func(ctx context.Context, repo datastore.Repository) error {
		return datastore.SeedCatalog(ctx, repo, datastore.DefaultCatalog(time.Now()))
	})
	s.Require().NoError(err)

	cache, err := caching.NewCacheRedis(nil, true)
	s.Require().NoError(err)
	s.authentication, err = services.NewAuthentication("test-secret")
	s.Require().NoError(err)

	s.container = do.New()
	do.ProvideValue[datastore.Store](s.container, store)
	do.ProvideValue[caching.Cache](s.container, cache)
	do.ProvideValue[caching.ReadOnlyCache](s.container, cache)
	do.ProvideValue[interfaces.Locker](s.container, locker.NewLocal())
	do.ProvideValue[interfaces.Limiter](s.container, limiter.NewLocalLimiter())
	do.ProvideValue(s.container, zap.NewNop())
	do.ProvideValue(s.container, s.authentication)
	services.Provide(s.container)

	s.handler, err = New(&Config{Container: s.container, Mode: "release", Origins: []string{"*"}})
	s.Require().NoError(err)
}

func (s *HandlerTestSuite) token(username string) (uuid.UUID, string) {
	user := &models.UserFromAuth{ID: uuid.New(), Username: username}
	token, err := s.authentication.CreateToken(user)
	s.Require().NoError(err)
	return user.ID, token
}

func (s *HandlerTestSuite) request(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerTestSuite) outcome(rec *httptest.ResponseRecorder) services.Outcome {
	var outcome services.Outcome
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &outcome))
	return outcome
}

// post creates a post for token and returns its path under /api/v1.
func (s *HandlerTestSuite) post(authorID uuid.UUID, token string) string {
	rec := s.request(http.MethodPost, "/api/v1/posts", token, `{"board_id":"general","content":"hello board"}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	servicePost := do.MustInvoke[*services.ServicePost](s.container)
	posts, err := servicePost.ListPosts(s.ctx, authorID, "general", 1, 10)
	s.Require().NoError(err)
	s.Require().NotEmpty(posts)
	return "/api/v1/posts/" + posts[0].ID.String()
}

func (s *HandlerTestSuite) TestBoardsArePublic() {
	rec := s.request(http.MethodGet, "/api/v1/boards", "", "")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "general")
}

func (s *HandlerTestSuite) TestEngagementRequiresSession() {
	rec := s.request(http.MethodGet, "/api/v1/user/me", "", "")
	s.GreaterOrEqual(rec.Code, http.StatusBadRequest)

	rec = s.request(http.MethodGet, "/api/v1/user/me", "not-a-token", "")
	s.GreaterOrEqual(rec.Code, http.StatusBadRequest)

	_, token := s.token("chalk")
	rec = s.request(http.MethodGet, "/api/v1/user/me", token, "")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "chalk")
}

func (s *HandlerTestSuite) TestSecondPostSameDayIsTooManyRequests() {
	userID, token := s.token("poster")
	s.post(userID, token)

	rec := s.request(http.MethodPost, "/api/v1/posts", token, `{"board_id":"general","content":"again"}`)
	s.Equal(http.StatusTooManyRequests, rec.Code)
	outcome := s.outcome(rec)
	s.False(outcome.Success)
	s.Equal(services.CodeAlreadyPostedToday, outcome.Code)

	rec = s.request(http.MethodGet, "/api/v1/user/can-post", token, "")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "false")
}

func (s *HandlerTestSuite) TestCreatePostValidation() {
	_, token := s.token("poster")

	rec := s.request(http.MethodPost, "/api/v1/posts", token, `{"content":"no board"}`)
	s.GreaterOrEqual(rec.Code, http.StatusBadRequest)

	rec = s.request(http.MethodPost, "/api/v1/posts", token, `{"board_id":"nope","content":"x"}`)
	s.GreaterOrEqual(rec.Code, http.StatusBadRequest)

	rec = s.request(http.MethodGet, "/api/v1/posts/not-a-uuid", token, "")
	s.GreaterOrEqual(rec.Code, http.StatusBadRequest)
}

func (s *HandlerTestSuite) TestUpdateOtherUsersPostIsForbidden() {
	authorID, author := s.token("author")
	_, other := s.token("other")
	path := s.post(authorID, author)

	rec := s.request(http.MethodPatch, path, other, `{"content":"theirs now"}`)
	s.Equal(http.StatusForbidden, rec.Code)
	s.Equal(services.CodeForbidden, s.outcome(rec).Code)

	rec = s.request(http.MethodPatch, path, author, `{"content":"still mine"}`)
	s.Equal(http.StatusOK, rec.Code)

	rec = s.request(http.MethodPost, path+"/comments", other, `{"content":"nice"}`)
	s.Equal(http.StatusOK, rec.Code)
	rec = s.request(http.MethodGet, path+"/comments", author, "")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "nice")
}

func (s *HandlerTestSuite) TestApplyFlairOnOtherUsersPost() {
	authorID, author := s.token("author")
	_, other := s.token("other")
	path := s.post(authorID, author)
	postID := strings.TrimPrefix(path, "/api/v1/posts/")

	rec := s.request(http.MethodPost, "/api/v1/engagement/flairs", other, `{"post_id":"`+postID+`","flair_id":"border-chalk"}`)
	s.Equal(http.StatusForbidden, rec.Code)
	s.Equal(services.CodeNotOwner, s.outcome(rec).Code)

	rec = s.request(http.MethodGet, path+"/flairs", author, "")
	s.Equal(http.StatusOK, rec.Code)
}

func (s *HandlerTestSuite) TestCheckInTwiceIsBadRequest() {
	_, token := s.token("early")

	rec := s.request(http.MethodPost, "/api/v1/engagement/check-in", token, "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec = s.request(http.MethodPost, "/api/v1/engagement/check-in", token, "")
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(services.CodeAlreadyCheckedIn, s.outcome(rec).Code)

	rec = s.request(http.MethodGet, "/api/v1/leaderboard/streak", token, "")
	s.Equal(http.StatusOK, rec.Code)

	rec = s.request(http.MethodGet, "/api/v1/engagement/currency/history", token, "")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), services.REASON_CHECK_IN)
}

func (s *HandlerTestSuite) TestPullWithoutFundsIsBadRequest() {
	_, token := s.token("broke")

	rec := s.request(http.MethodPost, "/api/v1/engagement/gacha/pull", token, `{"collection_id":"classroom-basics"}`)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(services.CodeInsufficientFunds, s.outcome(rec).Code)

	rec = s.request(http.MethodPost, "/api/v1/engagement/gacha/pull", token, `{}`)
	s.GreaterOrEqual(rec.Code, http.StatusBadRequest)

	rec = s.request(http.MethodGet, "/api/v1/engagement/gacha", token, "")
	s.Equal(http.StatusOK, rec.Code)
}

func (s *HandlerTestSuite) TestWritesAreRateLimited() {
	serviceConfig := do.MustInvoke[*services.ServiceConfig](s.container)
	s.Require().NoError(serviceConfig.SetConfig(s.ctx, services.CONFIG_WRITE_RATE_LIMIT_PER_MINUTE, "1"))

	authorID, author := s.token("author")
	path := s.post(authorID, author)
	body := `{"post_id":"` + strings.TrimPrefix(path, "/api/v1/posts/") + `"}`

	_, token := s.token("eager")
	rec := s.request(http.MethodPost, "/api/v1/thumbs", token, body)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), services.ThumbAdded)

	rec = s.request(http.MethodPost, "/api/v1/thumbs", token, body)
	s.GreaterOrEqual(rec.Code, http.StatusBadRequest)

	// reads are not limited
	rec = s.request(http.MethodGet, "/api/v1/engagement/activities", token, "")
	s.Equal(http.StatusOK, rec.Code)
}

func TestRejectionStatus(t *testing.T) {
	cases := map[string]int{
		services.CodeForbidden:          http.StatusForbidden,
		services.CodeNotOwner:           http.StatusForbidden,
		services.CodeAlreadyPostedToday: http.StatusTooManyRequests,
		services.CodeInsufficientFunds:  http.StatusBadRequest,
		services.CodeNotClaimable:       http.StatusBadRequest,
	}
	for code, status := range cases {
		if got := rejectionStatus(code); got != status {
			t.Errorf("rejectionStatus(%q) = %d, want %d", code, got, status)
		}
	}
}
