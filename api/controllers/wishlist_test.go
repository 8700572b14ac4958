package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopmart/shopmart-backend/internal/catalog"
	"github.com/shopmart/shopmart-backend/internal/wishlist"
	pkgerrors "github.com/shopmart/shopmart-backend/pkg/errors"
)

type stubWishlistService struct {
	products []catalog.Product
	result   *wishlist.ToggleResult
	ids      []string
	err      error

	gotSession   string
	gotProductID string
}

func (s *stubWishlistService) Refresh(_ context.Context, sessionID string) ([]catalog.Product, error) {
	s.gotSession = sessionID
	return s.products, s.err
}

func (s *stubWishlistService) Toggle(_ context.Context, sessionID, productID string) (*wishlist.ToggleResult, error) {
	s.gotSession = sessionID
	s.gotProductID = productID
	return s.result, s.err
}

func (s *stubWishlistService) LikedIDs(_ context.Context, sessionID string) ([]string, error) {
	s.gotSession = sessionID
	return s.ids, s.err
}

func TestWishlistFetch(t *testing.T) {
	svc := &stubWishlistService{products: []catalog.Product{{ID: "p1"}}}

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/v1/wishlist", nil), "s1")
	rec := httptest.NewRecorder()
	WishlistFetch(svc, testLogger())(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s1", svc.gotSession)
}

func TestWishlistFetchUnauthorized(t *testing.T) {
	svc := &stubWishlistService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to use the wishlist")}

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/v1/wishlist", nil), "s1")
	rec := httptest.NewRecorder()
	WishlistFetch(svc, testLogger())(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "sign in to use the wishlist")
}

func TestWishlistToggle(t *testing.T) {
	svc := &stubWishlistService{result: &wishlist.ToggleResult{Message: "added", Liked: true}}

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/wishlist", strings.NewReader(`{"product_id":"p3"}`)), "s1")
	rec := httptest.NewRecorder()
	WishlistToggle(svc, testLogger())(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p3", svc.gotProductID)

	var body wishlist.ToggleResult
	decodeData(t, rec, &body)
	assert.True(t, body.Liked)
	assert.Equal(t, "added", body.Message)
}

func TestWishlistToggleRequiresProductID(t *testing.T) {
	svc := &stubWishlistService{}

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/wishlist", strings.NewReader(`{}`)), "s1")
	rec := httptest.NewRecorder()
	WishlistToggle(svc, testLogger())(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.gotProductID)
}

func TestWishlistLikedIDs(t *testing.T) {
	svc := &stubWishlistService{ids: []string{"p1", "p2"}}

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/v1/wishlist/ids", nil), "s1")
	rec := httptest.NewRecorder()
	WishlistLikedIDs(svc, testLogger())(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string][]string
	decodeData(t, rec, &body)
	assert.Equal(t, []string{"p1", "p2"}, body["product_ids"])
}
