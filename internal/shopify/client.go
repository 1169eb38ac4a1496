package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/EhsanAfzal005/Shopify-Review-App/internal/domain"
	"github.com/EhsanAfzal005/Shopify-Review-App/pkg/httpclient"
)

// HeaderAccessToken authenticates Admin API calls.
const HeaderAccessToken = "X-Shopify-Access-Token"

const productDetailsQuery = `
	query getProducts($ids: [ID!]!) {
		nodes(ids: $ids) {
			... on Product {
				id
				title
				featuredImage {
					url
				}
			}
		}
	}`

// CatalogClient looks up product details through the Shopify Admin GraphQL
// API. Calls go through a circuit breaker and are never retried, so a slow or
// failing Admin API degrades lookups immediately instead of stalling requests.
type CatalogClient struct {
	http       *httpclient.CircuitBreakerClient
	apiVersion string

	// BaseURL overrides the https://{shop} endpoint, for tests.
	BaseURL string
}

// NewCatalogClient creates an Admin API catalog client.
func NewCatalogClient(client *httpclient.Client, apiVersion string, logger *slog.Logger) *CatalogClient {
	breaker := httpclient.NewCircuitBreakerClient(
		client,
		httpclient.DefaultCircuitBreakerConfig("shopify-admin-api"),
		logger,
	)
	return &CatalogClient{http: breaker, apiVersion: apiVersion}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type productNode struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	FeaturedImage *struct {
		URL string `json:"url"`
	} `json:"featuredImage"`
}

type nodesResponse struct {
	Data struct {
		Nodes []*productNode `json:"nodes"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// ProductDetails resolves titles and featured images for the given product
// IDs, keyed by bare numeric ID. IDs that no longer exist are absent from
// the result.
func (c *CatalogClient) ProductDetails(ctx context.Context, shop, accessToken string, productIDs []string) (map[string]domain.ProductDetails, error) {
	if len(productIDs) == 0 {
		return map[string]domain.ProductDetails{}, nil
	}

	gids := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		gids = append(gids, domain.ProductGID(id))
	}

	payload, err := json.Marshal(graphqlRequest{
		Query:     productDetailsQuery,
		Variables: map[string]any{"ids": gids},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal graphql request: %w", err)
	}

	url := fmt.Sprintf("%s/admin/api/%s/graphql.json", c.endpoint(shop), c.apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderAccessToken, accessToken)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("query product details: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "shopify admin api")
	}

	var body nodesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode graphql response: %w", err)
	}
	if len(body.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %s", body.Errors[0].Message)
	}

	details := make(map[string]domain.ProductDetails, len(body.Data.Nodes))
	for _, node := range body.Data.Nodes {
		// deleted products come back as null nodes
		if node == nil || node.ID == "" {
			continue
		}
		d := domain.ProductDetails{Title: node.Title}
		if node.FeaturedImage != nil && node.FeaturedImage.URL != "" {
			url := node.FeaturedImage.URL
			d.Image = &url
		}
		details[domain.NumericProductID(node.ID)] = d
	}

	return details, nil
}

func (c *CatalogClient) endpoint(shop string) string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return "https://" + shop
}
