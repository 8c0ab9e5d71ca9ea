// Package pricing computes package subtotals, stacked discounts, and
// totals. All arithmetic is carried in integer cents; percentage discounts
// round half-up to the nearest cent. The engine holds only its discount
// configuration and is safe for concurrent use.
package pricing
