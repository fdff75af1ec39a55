package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/sathwikmerugu45/E-Commerce-Website/api/responses"
	"github.com/sathwikmerugu45/E-Commerce-Website/api/validators"
	"github.com/sathwikmerugu45/E-Commerce-Website/internal/catalog"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/enums"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/logger"
)

type catalogReader interface {
	List(ctx context.Context) (*catalog.Listing, error)
	Get(ctx context.Context, id uuid.UUID) (*catalog.ProductDTO, error)
}

// ProductsList returns the catalog narrowed by ?q, ?category and ?sort.
// Categories always cover the whole catalog so the filter bar stays stable.
func ProductsList(reader catalogReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reader == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("catalog"))
			return
		}

		rawSort, err := validators.ParseQueryEnum(r, "sort", string(enums.ProductSortName), enums.ProductSortValues()...)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sortBy, err := enums.ParseProductSort(rawSort)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := reader.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := r.URL.Query()
		responses.WriteSuccess(w, catalog.Listing{
			Products: catalog.Filter(listing.Products, catalog.Query{
				Search:   validators.SanitizeString(query.Get("q"), 200),
				Category: validators.SanitizeString(query.Get("category"), 120),
				Sort:     sortBy,
			}),
			Categories: listing.Categories,
		})
	}
}

func ProductGet(reader catalogReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reader == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("catalog"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := reader.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}
