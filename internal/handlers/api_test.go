package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/pawhub/backend/internal/router"
	"github.com/pawhub/backend/validators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAPI(t *testing.T) *echo.Echo {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	e := echo.New()
	e.Validator = validators.NewValidator()
	router.SetupRoutes(e, db, nil)
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func signup(t *testing.T, e *echo.Echo, name string) string {
	t.Helper()

	rec := doJSON(t, e, http.MethodPost, "/api/v1/auth/signup", "", map[string]any{
		"first_name": name,
		"last_name":  "Tester",
		"email":      fmt.Sprintf("%s@example.com", name),
		"password":   "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	token, ok := decodeBody(t, rec)["token"].(string)
	require.True(t, ok)
	return token
}

func TestSignupAndSignin(t *testing.T) {
	e := setupAPI(t)

	signup(t, e, "alice")

	rec := doJSON(t, e, http.MethodPost, "/api/v1/auth/signin", "", map[string]any{
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, decodeBody(t, rec)["token"])

	rec = doJSON(t, e, http.MethodPost, "/api/v1/auth/signin", "", map[string]any{
		"email":    "alice@example.com",
		"password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	e := setupAPI(t)

	rec := doJSON(t, e, http.MethodGet, "/api/v1/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReactionAndFollowFlow(t *testing.T) {
	e := setupAPI(t)

	ownerToken := signup(t, e, "owner")
	fanToken := signup(t, e, "fan")

	// Owner lists an animal.
	rec := doJSON(t, e, http.MethodPost, "/api/v1/animals", ownerToken, map[string]any{
		"name":    "Rex",
		"species": "dog",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	animalID := decodeBody(t, rec)["id"].(float64)

	// Fan follows the animal with default preferences.
	rec = doJSON(t, e, http.MethodPost, "/api/v1/follows", fanToken, map[string]any{
		"target_type": "animals.animal",
		"target_id":   animalID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Following again is a duplicate.
	rec = doJSON(t, e, http.MethodPost, "/api/v1/follows", fanToken, map[string]any{
		"target_type": "animals.animal",
		"target_id":   animalID,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Fan likes the animal.
	rec = doJSON(t, e, http.MethodPost, "/api/v1/reactions", fanToken, map[string]any{
		"reactable_type": "animals.animal",
		"reactable_id":   animalID,
		"reaction_type":  "LIKE",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	target := fmt.Sprintf("reactable_type=animals.animal&reactable_id=%d", int(animalID))

	rec = doJSON(t, e, http.MethodGet, "/api/v1/reactions/has-reaction?"+target, fanToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotZero(t, decodeBody(t, rec)["reaction_id"])

	rec = doJSON(t, e, http.MethodGet, "/api/v1/reactions/count-likes?"+target, fanToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["total_likes"])

	// Both ledger mutations notified the owner.
	rec = doJSON(t, e, http.MethodGet, "/api/v1/notifications", ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decodeBody(t, rec)["total"])

	rec = doJSON(t, e, http.MethodGet, "/api/v1/notifications/unread-count", ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decodeBody(t, rec)["unread_count"])

	// The fan got nothing.
	rec = doJSON(t, e, http.MethodGet, "/api/v1/notifications/unread-count", fanToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decodeBody(t, rec)["unread_count"])

	// Unlike is idempotent: both calls answer 204.
	rec = doJSON(t, e, http.MethodDelete, "/api/v1/reactions/remove-like?"+target, fanToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, e, http.MethodDelete, "/api/v1/reactions/remove-like?"+target, fanToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, e, http.MethodGet, "/api/v1/reactions/count-likes?"+target, fanToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decodeBody(t, rec)["total_likes"])

	followTarget := fmt.Sprintf("target_type=animals.animal&target_id=%d", int(animalID))

	rec = doJSON(t, e, http.MethodGet, "/api/v1/follows/followers-count?"+followTarget, ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["followers_count"])

	rec = doJSON(t, e, http.MethodDelete, "/api/v1/follows/unfollow?"+followTarget, fanToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, e, http.MethodGet, "/api/v1/follows/is-following?"+followTarget, fanToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decodeBody(t, rec)["follow_id"])
}

func TestReactionTypeReplacement(t *testing.T) {
	e := setupAPI(t)

	ownerToken := signup(t, e, "owner")
	fanToken := signup(t, e, "fan")

	rec := doJSON(t, e, http.MethodPost, "/api/v1/animals", ownerToken, map[string]any{
		"name":    "Rex",
		"species": "dog",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	animalID := decodeBody(t, rec)["id"].(float64)

	// A WOW reaction notifies nobody and counts no likes.
	rec = doJSON(t, e, http.MethodPost, "/api/v1/reactions", fanToken, map[string]any{
		"reactable_type": "animals.animal",
		"reactable_id":   animalID,
		"reaction_type":  "WOW",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	reactionID := decodeBody(t, rec)["id"].(float64)

	target := fmt.Sprintf("reactable_type=animals.animal&reactable_id=%d", int(animalID))

	rec = doJSON(t, e, http.MethodGet, "/api/v1/reactions/count-likes?"+target, fanToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decodeBody(t, rec)["total_likes"])

	// Only the author may replace the type.
	rec = doJSON(t, e, http.MethodPut, fmt.Sprintf("/api/v1/reactions/%d", int(reactionID)), ownerToken, map[string]any{
		"reaction_type": "LIKE",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Replacing WOW with LIKE turns the counter on and notifies the owner.
	rec = doJSON(t, e, http.MethodPut, fmt.Sprintf("/api/v1/reactions/%d", int(reactionID)), fanToken, map[string]any{
		"reaction_type": "LIKE",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "LIKE", decodeBody(t, rec)["reaction_type"])

	rec = doJSON(t, e, http.MethodGet, "/api/v1/reactions/count-likes?"+target, fanToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["total_likes"])

	rec = doJSON(t, e, http.MethodGet, "/api/v1/notifications/unread-count", ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["unread_count"])

	// An unrecognized type never reaches the ledger.
	rec = doJSON(t, e, http.MethodPut, fmt.Sprintf("/api/v1/reactions/%d", int(reactionID)), fanToken, map[string]any{
		"reaction_type": "MEH",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFollowersCountRejectsUnfollowableKind(t *testing.T) {
	e := setupAPI(t)
	token := signup(t, e, "alice")

	rec := doJSON(t, e, http.MethodGet, "/api/v1/follows/followers-count?target_type=posts.post&target_id=1", token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "users.organization or animals.animal")
}

func TestFollowRejectsUnknownPreferenceKey(t *testing.T) {
	e := setupAPI(t)
	token := signup(t, e, "alice")

	rec := doJSON(t, e, http.MethodPost, "/api/v1/follows", token, map[string]any{
		"target_type":              "animals.animal",
		"target_id":                7,
		"notification_preferences": map[string]bool{"postz": true},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "FOLLOW_UNSUPPORTED_PREFERENCE_KEY")
}

func TestCommentValidationCodesSurfaceAsBadRequest(t *testing.T) {
	e := setupAPI(t)

	ownerToken := signup(t, e, "owner")
	reviewerToken := signup(t, e, "reviewer")

	rec := doJSON(t, e, http.MethodPost, "/api/v1/organizations", ownerToken, map[string]any{
		"type":  "shelter",
		"name":  "Happy Paws",
		"email": "hp@example.org",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	orgID := decodeBody(t, rec)["id"].(float64)

	// Organization comments require a rating.
	rec = doJSON(t, e, http.MethodPost, "/api/v1/comments", reviewerToken, map[string]any{
		"content_type": "users.organization",
		"object_id":    orgID,
		"body":         "lovely shelter",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "COMMENT_RATING_REQUIRED")

	rec = doJSON(t, e, http.MethodPost, "/api/v1/comments", reviewerToken, map[string]any{
		"content_type": "users.organization",
		"object_id":    orgID,
		"body":         "lovely shelter",
		"rating":       5,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// One rating per reviewer per organization.
	rec = doJSON(t, e, http.MethodPost, "/api/v1/comments", reviewerToken, map[string]any{
		"content_type": "users.organization",
		"object_id":    orgID,
		"body":         "changed my mind",
		"rating":       2,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "COMMENT_RATING_ALREADY_EXISTS")

	// The organization carries the aggregate.
	rec = doJSON(t, e, http.MethodGet, fmt.Sprintf("/api/v1/organizations/%d", int(orgID)), reviewerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(5), decodeBody(t, rec)["rating"])
}

func TestPostFanOutToFollowers(t *testing.T) {
	e := setupAPI(t)

	ownerToken := signup(t, e, "owner")
	fanToken := signup(t, e, "fan")

	rec := doJSON(t, e, http.MethodPost, "/api/v1/animals", ownerToken, map[string]any{
		"name":    "Rex",
		"species": "dog",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	animalID := decodeBody(t, rec)["id"].(float64)

	rec = doJSON(t, e, http.MethodPost, "/api/v1/follows", fanToken, map[string]any{
		"target_type": "animals.animal",
		"target_id":   animalID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, e, http.MethodPost, "/api/v1/posts", ownerToken, map[string]any{
		"content":   "Rex learned to sit!",
		"animal_id": animalID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// A post without a parent is rejected.
	rec = doJSON(t, e, http.MethodPost, "/api/v1/posts", ownerToken, map[string]any{
		"content": "orphan post",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, e, http.MethodGet, "/api/v1/notifications", fanToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, float64(1), body["total"])

	results := body["results"].([]any)
	first := results[0].(map[string]any)
	assert.Equal(t, "added a new post", first["verb"])
	assert.Equal(t, "animal", first["target_type"])
	assert.Equal(t, animalID, first["target_id"])
	assert.Equal(t, "Rex", first["target_label"])

	// Mark it read; only the recipient may.
	notificationID := int(first["id"].(float64))

	rec = doJSON(t, e, http.MethodPatch, fmt.Sprintf("/api/v1/notifications/%d", notificationID), ownerToken, map[string]any{
		"is_read": true,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, e, http.MethodPatch, fmt.Sprintf("/api/v1/notifications/%d", notificationID), fanToken, map[string]any{
		"is_read": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, e, http.MethodGet, "/api/v1/notifications/unread-count", fanToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decodeBody(t, rec)["unread_count"])
}

func TestMembershipLifecycleNotifications(t *testing.T) {
	e := setupAPI(t)

	ownerToken := signup(t, e, "owner")
	inviteeToken := signup(t, e, "invitee")

	rec := doJSON(t, e, http.MethodPost, "/api/v1/organizations", ownerToken, map[string]any{
		"type":  "shelter",
		"name":  "Happy Paws",
		"email": "hp@example.org",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	orgID := int(decodeBody(t, rec)["id"].(float64))

	// The invitee's user id is 2: first signup claims 1.
	rec = doJSON(t, e, http.MethodPost, fmt.Sprintf("/api/v1/organizations/%d/members", orgID), ownerToken, map[string]any{
		"user_id": 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Invitee confirms; the owner is notified with the classified type.
	rec = doJSON(t, e, http.MethodPost, fmt.Sprintf("/api/v1/organizations/%d/members/confirm", orgID), inviteeToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, e, http.MethodGet, "/api/v1/notifications", ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, float64(1), body["total"])

	first := body["results"].([]any)[0].(map[string]any)
	assert.Equal(t, "confirmed the invitation", first["verb"])
	assert.Equal(t, "organization_invite_confirmed", first["type"])
	assert.Equal(t, "Happy Paws", first["target_label"])

	// Non-members cannot invite.
	rec = doJSON(t, e, http.MethodPost, fmt.Sprintf("/api/v1/organizations/%d/members", orgID), inviteeToken, map[string]any{
		"user_id": 1,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
