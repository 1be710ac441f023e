// Package tabular reads book metadata imports and writes incomplete-metadata
// exports as spreadsheets (.xlsx), CSV files or Parquet files.
package tabular
