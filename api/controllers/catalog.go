package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shopmart/shopmart-backend/api/responses"
	"github.com/shopmart/shopmart-backend/internal/catalog"
	pkgerrors "github.com/shopmart/shopmart-backend/pkg/errors"
	"github.com/shopmart/shopmart-backend/pkg/logger"
)

// CatalogService is the slice of the upstream gateway the catalog routes use.
type CatalogService interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	ListCategories(ctx context.Context) ([]catalog.Category, error)
	GetCategory(ctx context.Context, id string) (*catalog.Category, error)
	ListCategorySubcategories(ctx context.Context, categoryID string) ([]catalog.Subcategory, error)
	ListSubcategories(ctx context.Context) ([]catalog.Subcategory, error)
	ListBrands(ctx context.Context) ([]catalog.Brand, error)
}

// ProductsList proxies the upstream product listing.
func ProductsList(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		products, err := svc.ListProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

// CategoriesList proxies the upstream category listing.
func CategoriesList(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		categories, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

// CategoryDetail proxies a single category lookup.
func CategoryDetail(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		category, err := svc.GetCategory(r.Context(), chi.URLParam(r, "categoryId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, category)
	}
}

// CategorySubcategories proxies the subcategories nested under a category.
func CategorySubcategories(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		subcategories, err := svc.ListCategorySubcategories(r.Context(), chi.URLParam(r, "categoryId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, subcategories)
	}
}

// SubcategoriesList proxies the flat subcategory listing.
func SubcategoriesList(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		subcategories, err := svc.ListSubcategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, subcategories)
	}
}

// BrandsList proxies the upstream brand listing.
func BrandsList(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		brands, err := svc.ListBrands(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, brands)
	}
}
