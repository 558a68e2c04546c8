// Package churches implements tenant profile management and aggregate
// statistics. Stats are recomputed from a full tenant scan on every request;
// nothing is cached or incrementally maintained.
package churches
