// Package frame provides a column-ordered tabular view of query results,
// plus a Parquet snapshot format for moving graphs between databases and
// analytical tooling.
//
// A Frame unions the keys of every row it holds. Columns appear in
// first-seen order and missing cells are nil. Nested maps in result
// values are flattened into dot-separated columns and lists into indexed
// columns, so a record field `n` holding {"a": {"b": 1}} contributes the
// column "n.a.b".
package frame
