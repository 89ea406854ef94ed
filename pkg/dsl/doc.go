/*
Package dsl provides a fluent builder for programmatically constructing
collection snapshots.

It lets developers define desired states in type-checked Go instead of
external YAML or JSON files. This is particularly useful for tests, examples
and dynamically generated collections.

Example usage:

	b := dsl.New()

	b.Section("inbox").
		Title("Inbox").
		RowWith("a", map[string]any{"text": "Buy milk"}).
		Row("b")

	b.Section("done").
		Title("Done")

	snap, err := b.Build()
	// ... diff against another snapshot, or feed a Controller's Ensure.
*/
package dsl
