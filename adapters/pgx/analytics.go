package pgx

import (
	"context"

	"github.com/samber/oops"

	"github.com/lborres/apothecary/core"
)

func (a *Adapter) CountPotions(ctx context.Context) (int64, error) {
	var n int64
	if err := a.pool.QueryRow(ctx, `SELECT count(*) FROM potions`).Scan(&n); err != nil {
		return 0, oops.Code("POTION_AGGREGATE_FAILED").With("aggregate", "count").Wrap(err)
	}
	return n, nil
}

func (a *Adapter) AverageScore(ctx context.Context) (*float64, error) {
	return a.aggregate(ctx, "average_score",
		`SELECT count(*), coalesce(avg((doc->>'score')::double precision), 0) FROM potions`)
}

func (a *Adapter) TotalPrice(ctx context.Context) (*float64, error) {
	return a.aggregate(ctx, "total_price",
		`SELECT count(*), coalesce(sum((doc->>'price')::double precision), 0) FROM potions`)
}

// aggregate runs a query returning (count, value) and maps an empty table to nil.
func (a *Adapter) aggregate(ctx context.Context, name, q string) (*float64, error) {
	var (
		n     int64
		value float64
	)
	if err := a.pool.QueryRow(ctx, q).Scan(&n, &value); err != nil {
		return nil, oops.Code("POTION_AGGREGATE_FAILED").With("aggregate", name).Wrap(err)
	}
	if n == 0 {
		return nil, nil
	}
	return &value, nil
}

func (a *Adapter) DistinctCategories(ctx context.Context) ([]string, error) {
	rows, err := a.pool.Query(ctx, `SELECT DISTINCT category
		FROM potions, jsonb_array_elements_text(coalesce(doc->'categories', '[]'::jsonb)) AS category
		ORDER BY category`)
	if err != nil {
		return nil, oops.Code("POTION_AGGREGATE_FAILED").With("aggregate", "categories").Wrap(err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, oops.Code("POTION_SCAN_FAILED").Wrap(err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("POTION_AGGREGATE_FAILED").With("aggregate", "categories").Wrap(err)
	}
	return categories, nil
}

func (a *Adapter) AverageScoreByVendor(ctx context.Context) ([]core.VendorScore, error) {
	rows, err := a.pool.Query(ctx, `SELECT doc->>'vendorId' AS vendor_id, avg((doc->>'score')::double precision)
		FROM potions
		GROUP BY vendor_id
		ORDER BY vendor_id`)
	if err != nil {
		return nil, oops.Code("POTION_AGGREGATE_FAILED").With("aggregate", "vendor_scores").Wrap(err)
	}
	defer rows.Close()

	scores := []core.VendorScore{}
	for rows.Next() {
		var s core.VendorScore
		if err := rows.Scan(&s.VendorID, &s.AverageScore); err != nil {
			return nil, oops.Code("POTION_SCAN_FAILED").Wrap(err)
		}
		scores = append(scores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("POTION_AGGREGATE_FAILED").With("aggregate", "vendor_scores").Wrap(err)
	}
	return scores, nil
}
