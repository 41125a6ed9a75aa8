// Package notion publishes finished report summaries to a Notion
// database, one page per report.
package notion

import (
	"context"
	"fmt"
	"time"

	"github.com/jomei/notionapi"

	"github.com/mizanhq/mizan/internal/report"
)

// Service defines the Notion operations the publisher needs.
// This interface enables mocking and testing of Notion operations.
type Service interface {
	CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error)
}

// Client is the concrete implementation of Service using the official
// Notion SDK.
type Client struct {
	client *notionapi.Client
}

// NewClient creates a new Client with the provided API token.
func NewClient(token string) *Client {
	return &Client{
		client: notionapi.NewClient(notionapi.Token(token)),
	}
}

// CreatePage creates a new page in a Notion database with the given properties.
func (c *Client) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	req := &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(databaseID),
		},
		Properties: properties,
	}

	page, err := c.client.Page.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("CreatePage: %w", err)
	}

	return page, nil
}

// Publisher writes one Notion page per generated report, carrying the
// executive-summary headline figures.
type Publisher struct {
	service    Service
	databaseID string
}

// NewPublisher creates a publisher targeting one database.
func NewPublisher(service Service, databaseID string) *Publisher {
	return &Publisher{service: service, databaseID: databaseID}
}

// PublishSummary creates the report's summary page.
func (p *Publisher) PublishSummary(ctx context.Context, userID, reportID string, rep *report.Report) error {
	summary := rep.Sections.ExecutiveSummary
	if summary == nil {
		return fmt.Errorf("PublishSummary: report %s has no executive summary", reportID)
	}

	properties := buildSummaryProperties(userID, reportID, summary, rep.Metadata.Confidence)

	if _, err := p.service.CreatePage(ctx, p.databaseID, properties); err != nil {
		return fmt.Errorf("PublishSummary: report %s: %w", reportID, err)
	}
	return nil
}

// buildSummaryProperties maps the executive summary onto the database
// columns.
func buildSummaryProperties(userID, reportID string, summary *report.ExecutiveSummary, confidence float64) notionapi.Properties {
	return notionapi.Properties{
		"Report": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{Text: &notionapi.Text{Content: reportID}},
			},
		},
		"User": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{Text: &notionapi.Text{Content: userID}},
			},
		},
		"Health": notionapi.SelectProperty{
			Select: notionapi.Option{Name: summary.OverallHealth},
		},
		"Net Cashflow": notionapi.NumberProperty{
			Number: summary.NetCashflow,
		},
		"Net Worth": notionapi.NumberProperty{
			Number: summary.NetWorth,
		},
		"Tax Liability": notionapi.NumberProperty{
			Number: summary.TaxLiability,
		},
		"Alerts": notionapi.NumberProperty{
			Number: float64(summary.AlertCount),
		},
		"Confidence": notionapi.NumberProperty{
			Number: confidence,
		},
		"Generated": notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: dateNow(),
			},
		},
	}
}

func dateNow() *notionapi.Date {
	d := notionapi.Date(time.Now())
	return &d
}
