// Package bags locates photo collections ("bags") under a bags root and counts the
// recognized image files stored in each bag's photos directory.
package bags
