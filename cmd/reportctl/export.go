package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/garyjia/lease-reports/internal/application/service"
	"github.com/garyjia/lease-reports/internal/container"
	"github.com/garyjia/lease-reports/internal/domain/entity"
	"github.com/garyjia/lease-reports/internal/export"
	"github.com/garyjia/lease-reports/internal/report"
	"github.com/garyjia/lease-reports/pkg/utils"
)

type exportOptions struct {
	kind     string
	format   string
	from     string
	to       string
	title    string
	records  string
	outDir   string
	currency string
}

func newExportCommand(root *rootOptions) *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a payment report to PDF or XLSX",
		Long: `Render a payment report. With --records the payments are read from a
JSON file and no configuration is needed; otherwise they come from the
configured backend or local mirror and the export is recorded.`,
		Example: `  reportctl export --kind income --format pdf --from 2024-01-01 --to 2024-06-30 --records payments.json
  reportctl export -c configs/config.yaml --kind collection --format xlsx --from 2024-01-01 --to 2024-03-31`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.request()
			if err != nil {
				return err
			}

			var artifact *export.Artifact
			if opts.records != "" {
				artifact, err = exportFromFile(root, opts, req)
			} else {
				artifact, err = exportFromConfig(cmd.Context(), root, req)
			}
			if err != nil {
				return err
			}

			path := filepath.Join(opts.outDir, artifact.Filename)
			if err := os.MkdirAll(opts.outDir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			if err := os.WriteFile(path, artifact.Content, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d bytes)\n", path, len(artifact.Content))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.kind, "kind", string(report.KindIncome), "report kind: income, property, payment_methods, collection")
	cmd.Flags().StringVar(&opts.format, "format", string(export.FormatPDF), "output format: pdf or xlsx")
	cmd.Flags().StringVar(&opts.from, "from", "", "first day of the range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.to, "to", "", "last day of the range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.title, "title", "", "override the report title")
	cmd.Flags().StringVar(&opts.records, "records", "", "JSON file of payment records")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", ".", "output directory")
	cmd.Flags().StringVar(&opts.currency, "currency", utils.DefaultCurrency, "currency symbol, used with --records")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func (o *exportOptions) request() (service.ExportRequest, error) {
	kind, err := report.ParseKind(o.kind)
	if err != nil {
		return service.ExportRequest{}, err
	}
	format, err := export.ParseFormat(o.format)
	if err != nil {
		return service.ExportRequest{}, err
	}
	start, err := time.Parse(utils.ISODate, o.from)
	if err != nil {
		return service.ExportRequest{}, fmt.Errorf("invalid --from: %w", err)
	}
	end, err := time.Parse(utils.ISODate, o.to)
	if err != nil {
		return service.ExportRequest{}, fmt.Errorf("invalid --to: %w", err)
	}
	dateRange := report.DateRange{Start: start, End: end}
	if err := dateRange.Validate(); err != nil {
		return service.ExportRequest{}, err
	}
	return service.ExportRequest{Kind: kind, Format: format, DateRange: dateRange, Title: o.title}, nil
}

func exportFromFile(root *rootOptions, opts *exportOptions, req service.ExportRequest) (*export.Artifact, error) {
	payments, err := readPayments(opts.records)
	if err != nil {
		return nil, err
	}
	logger, err := root.logger()
	if err != nil {
		return nil, err
	}

	format := utils.NewFormatter(opts.currency, "")
	doc, err := report.NewBuilder(format).Build(req.Kind, req.DateRange, payments)
	if err != nil {
		return nil, err
	}
	if req.Title != "" {
		doc.Title = req.Title
	}

	var exporter export.Exporter = export.NewWorkbookExporter(format)
	if req.Format == export.FormatPDF {
		exporter = export.NewPDFExporter(export.PDFOptions{Compress: true})
	}
	return export.Run(exporter, doc, logger)
}

func exportFromConfig(ctx context.Context, root *rootOptions, req service.ExportRequest) (*export.Artifact, error) {
	var artifact *export.Artifact
	err := root.withContainer(ctx, func(c *container.Container) error {
		result, err := c.Services().Report.Export(ctx, req)
		if err != nil {
			return err
		}
		artifact = result.Artifact
		return nil
	})
	return artifact, err
}

// paymentRecord is the JSON shape accepted by --records. paid_at may be a
// plain date or an RFC 3339 timestamp.
type paymentRecord struct {
	ID           int64           `json:"id"`
	Reference    string          `json:"reference"`
	TenantName   string          `json:"tenant_name"`
	PropertyName string          `json:"property_name"`
	Source       string          `json:"source"`
	Method       string          `json:"method"`
	Status       string          `json:"status"`
	Amount       decimal.Decimal `json:"amount"`
	PaidAt       string          `json:"paid_at"`
}

func readPayments(path string) ([]*entity.Payment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	var records []paymentRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse records: %w", err)
	}

	payments := make([]*entity.Payment, 0, len(records))
	for i, r := range records {
		paidAt, err := parsePaidAt(r.PaidAt)
		if err != nil {
			return nil, fmt.Errorf("record %d (%s): %w", i, r.Reference, err)
		}
		payments = append(payments, &entity.Payment{
			ID:           r.ID,
			Reference:    r.Reference,
			TenantName:   r.TenantName,
			PropertyName: r.PropertyName,
			Source:       normalizeEnum(r.Source),
			Method:       normalizeEnum(r.Method),
			Status:       normalizeEnum(r.Status),
			Amount:       r.Amount,
			PaidAt:       paidAt,
		})
	}
	return payments, nil
}

// normalizeEnum matches the backend client, which stores lower-case values
func normalizeEnum(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func parsePaidAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(utils.ISODate, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid paid_at %q", raw)
	}
	return t.UTC(), nil
}
