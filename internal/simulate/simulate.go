// Package simulate provides deterministic in-process stand-ins for the payment gateway,
// content generator and site crawler. Each one waits for a configurable latency so
// callers exercise the same asynchronous paths as with real collaborators.
package simulate

import (
	"bizstate/internal/core"
	"bizstate/pkg/domain"
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"time"
	"unicode"
)

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Gateway approves charges up to DeclineAbove (no limit when zero).
type Gateway struct {
	Latency      time.Duration
	DeclineAbove float64
	seq          atomic.Int64
}

// Charge implements core.PaymentGateway.
func (g *Gateway) Charge(ctx context.Context, req core.PaymentRequest) (core.PaymentResult, error) {
	if err := wait(ctx, g.Latency); err != nil {
		return core.PaymentResult{}, err
	}
	if g.DeclineAbove > 0 && req.Amount > g.DeclineAbove {
		return core.PaymentResult{Success: false, Message: "card declined"}, nil
	}
	id := fmt.Sprintf("sim_txn_%04d", g.seq.Add(1))
	return core.PaymentResult{
		Success:       true,
		TransactionID: id,
		Message:       "approved",
		PaymentURL:    "https://pay.example/checkout/" + id,
	}, nil
}

// Generator builds flows and replies from the business profile without a model.
type Generator struct {
	Latency time.Duration
}

// GenerateFlow implements core.ContentGenerator. The flow greets with the configured
// greeting, lists active products and ends on a confirmation screen.
func (g *Generator) GenerateFlow(ctx context.Context, business domain.BusinessProfile, prompt string) (domain.Flow, error) {
	if err := wait(ctx, g.Latency); err != nil {
		return domain.Flow{}, err
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return domain.Flow{}, fmt.Errorf("prompt required")
	}
	greeting := business.AIConfig.Greeting
	if greeting == "" {
		greeting = "Welcome to " + business.Name
	}
	var catalog []domain.FlowComponent
	for _, p := range business.Products {
		if p.Active {
			catalog = append(catalog, domain.FlowComponent{Type: "option", Label: p.Name, Value: string(p.ID)})
		}
	}
	return domain.Flow{
		Name:    titleFor(prompt),
		Trigger: strings.ToLower(strings.Fields(prompt)[0]),
		Screens: []domain.FlowScreen{
			{ID: "welcome", Title: "Welcome", Components: []domain.FlowComponent{{Type: "text", Value: greeting}}},
			{ID: "catalog", Title: "Choose an item", Components: catalog},
			{ID: "confirm", Title: "Confirm", Components: []domain.FlowComponent{{Type: "button", Label: "Confirm"}}},
		},
	}, nil
}

func titleFor(prompt string) string {
	const maxTitle = 40
	runes := []rune(prompt)
	if len(runes) > maxTitle {
		runes = []rune(strings.TrimSpace(string(runes[:maxTitle])) + "...")
	}
	if len(runes) > 0 {
		runes[0] = unicode.ToUpper(runes[0])
	}
	return string(runes)
}

// DraftReply implements core.ContentGenerator.
func (g *Generator) DraftReply(ctx context.Context, business domain.BusinessProfile, ticket domain.Ticket) (string, error) {
	if err := wait(ctx, g.Latency); err != nil {
		return "", err
	}
	for _, f := range business.FAQs {
		if strings.Contains(strings.ToLower(ticket.Body), strings.ToLower(keyword(f.Question))) {
			return fmt.Sprintf("Thanks for reaching out about %q. %s\n\n%s", ticket.Subject, f.Answer, business.Name), nil
		}
	}
	return fmt.Sprintf("Thanks for reaching out about %q. We will get back to you shortly.\n\n%s", ticket.Subject, business.Name), nil
}

// keyword returns the first word of a question long enough to be distinctive.
func keyword(s string) string {
	for _, w := range strings.Fields(s) {
		if w = strings.Trim(w, "?.,!"); len(w) >= 4 {
			return w
		}
	}
	return s
}

// Crawler returns a fixed set of pages for any absolute http(s) URL.
type Crawler struct {
	Latency time.Duration
	Paths   []string // defaults to "/", "/about" and "/faq"
}

// Crawl implements core.SiteCrawler.
func (c *Crawler) Crawl(ctx context.Context, raw string) ([]core.CrawledPage, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("crawl: invalid url %q", raw)
	}
	if err := wait(ctx, c.Latency); err != nil {
		return nil, err
	}
	paths := c.Paths
	if len(paths) == 0 {
		paths = []string{"/", "/about", "/faq"}
	}
	pages := make([]core.CrawledPage, 0, len(paths))
	for _, p := range paths {
		page := *u
		page.Path = p
		title := strings.Trim(p, "/")
		if title == "" {
			title = "home"
		}
		pages = append(pages, core.CrawledPage{
			URL:     page.String(),
			Title:   u.Host + " " + title,
			Content: fmt.Sprintf("Content of the %s page at %s.", title, u.Host),
		})
	}
	return pages, nil
}
