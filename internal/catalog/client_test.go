package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	pkgerrors "github.com/shopmart/shopmart-backend/pkg/errors"
)

func TestListProductsDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/products", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":2,"data":[
			{"_id":"p1","title":"Mouse","price":19.99,"imageCover":"img1","ratingsAverage":4.5},
			{"_id":"p2","title":"Keyboard","price":49.5,"priceAfterDiscount":39.5,"discount":20,"imageCover":"img2"}
		]}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	products, err := client.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.Equal(t, "p1", products[0].ID)
	require.Equal(t, "Mouse", products[0].Title)
	require.Equal(t, "19.99", products[0].Price.String())
	require.Equal(t, "19.99", products[0].EffectivePrice().String())
	require.Equal(t, "39.5", products[1].EffectivePrice().String())
}

func TestGetCategorySingleEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/categories/c1", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{"_id":"c1","name":"Electronics","slug":"electronics"}}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	category, err := client.GetCategory(context.Background(), "c1")
	require.NoError(t, err)
	require.Equal(t, "Electronics", category.Name)
}

func TestRemoteValidationMessageSurfacedVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"there is no user registered with this email address"}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = client.ForgotPassword(context.Background(), "nobody@example.com")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	require.Equal(t, "there is no user registered with this email address", typed.Message())
}

func TestTransportFailureIsDependencyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = client.ListBrands(context.Background())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeDependency, typed.Code())
}

func TestUpstreamServerErrorIsDependencyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = client.ListCategories(context.Background())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeDependency, typed.Code())
}

func TestWishlistSendsTokenHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "tok-123", r.Header.Get("token"))
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"data":[{"_id":"p1","title":"Mouse","price":10}]}`))
		case http.MethodPost:
			_, _ = w.Write([]byte(`{"status":"success","message":"Product added successfully to your wishlist"}`))
		}
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	items, err := client.GetWishlist(context.Background(), "tok-123")
	require.NoError(t, err)
	require.Len(t, items, 1)

	msg, err := client.ToggleWishlist(context.Background(), "tok-123", "p1")
	require.NoError(t, err)
	require.Equal(t, "Product added successfully to your wishlist", msg)
}

func TestWishlistWithoutTokenIsUnauthorized(t *testing.T) {
	client, err := NewClient("http://localhost:0")
	require.NoError(t, err)

	_, err = client.GetWishlist(context.Background(), " ")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())

	_, err = client.ToggleWishlist(context.Background(), "", "p1")
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}

func TestVerifyResetCodeRequiresCode(t *testing.T) {
	client, err := NewClient("http://localhost:0")
	require.NoError(t, err)

	_, err = client.VerifyResetCode(context.Background(), "  ")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}
