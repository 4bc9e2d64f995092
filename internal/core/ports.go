package core

import (
	"bizstate/pkg/domain"
	"context"
)

// PaymentRequest asks the gateway to charge a customer.
type PaymentRequest struct {
	BusinessID  domain.BusinessID
	CustomerID  domain.CustomerID
	OrderID     domain.OrderID
	Amount      float64
	Currency    string
	Description string
}

// PaymentResult is the gateway's answer. TransactionID and PaymentURL are optional.
type PaymentResult struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id,omitempty"`
	Message       string `json:"message"`
	PaymentURL    string `json:"payment_url,omitempty"`
}

// PaymentGateway charges customers. A returned error means the gateway could not be
// reached; a declined charge is a result with Success false.
type PaymentGateway interface {
	Charge(ctx context.Context, req PaymentRequest) (PaymentResult, error)
}

// ContentGenerator produces assistant content for a business.
type ContentGenerator interface {
	GenerateFlow(ctx context.Context, business domain.BusinessProfile, prompt string) (domain.Flow, error)
	DraftReply(ctx context.Context, business domain.BusinessProfile, ticket domain.Ticket) (string, error)
}

// CrawledPage is one page returned by a SiteCrawler.
type CrawledPage struct {
	URL     string
	Title   string
	Content string
}

// SiteCrawler fetches the readable pages of a website.
type SiteCrawler interface {
	Crawl(ctx context.Context, url string) ([]CrawledPage, error)
}
